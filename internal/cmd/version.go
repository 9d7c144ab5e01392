package cmd

import (
	"fmt"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
)

var versionExtended bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version. With --extended, also print commit, build date, Go version, and the SSOT versions.",
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	identity := GetAppIdentity()

	fmt.Printf("%s %s\n", identity.BinaryName, versionInfo.Version)
	if !versionExtended {
		return nil
	}

	fmt.Printf("Commit: %s\n", versionInfo.Commit)
	fmt.Printf("Built: %s\n", versionInfo.BuildDate)
	fmt.Printf("Go: %s\n", runtime.Version())
	fmt.Printf("\n")

	ssot := crucible.GetVersion()
	fmt.Printf("Gofulmen: %s\n", ssot.Gofulmen)
	fmt.Printf("Crucible: %s\n", ssot.Crucible)
	return nil
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&versionExtended, "extended", "e", false, "print commit, build, and SSOT details")
}
