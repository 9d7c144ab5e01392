package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/worklane/worklane-cli/internal/config"
	"github.com/worklane/worklane-cli/internal/output"
)

var (
	cacheStatsOutput  string
	cacheClearPattern string
	cacheClearResolve bool
	cacheClearYes     bool
	cacheClearOutput  string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear the local response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry counts and size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(cacheStatsOutput)
		if err != nil {
			return err
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		stats, err := db.GetCacheStats(cmd.Context())
		if err != nil {
			return err
		}

		rendered, err := output.Render(format, output.CacheStats(stats))
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		if format != output.FormatJSON {
			fmt.Printf("Database: %s\n", getDBPath())
		}
		return nil
	},
}

// getDBPath returns the resolved database path from config
func getDBPath() string {
	cfg := config.GetConfig()
	if cfg == nil {
		return config.DefaultStorePath()
	}
	if cfg.Store.URL != "" {
		return cfg.Store.URL
	}
	dbPath := cfg.Store.Path
	if dbPath == "" {
		dbPath = config.DefaultStorePath()
	}
	if absPath, err := filepath.Abs(dbPath); err == nil {
		return absPath
	}
	return dbPath
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached API responses",
	Long: `Remove cached API responses.

With --pattern only endpoints containing the pattern are removed.
Without a pattern the whole response cache is wiped, which requires
--yes. --resolve additionally drops cached name resolutions for the
configured organization.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(cacheClearOutput)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		pattern := strings.TrimSpace(cacheClearPattern)
		if pattern == "" && !cacheClearYes {
			return errors.New("clearing the whole cache requires --yes (or use --pattern)")
		}

		db, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		responses, err := db.InvalidateQueryCache(cmd.Context(), pattern)
		if err != nil {
			return err
		}

		var resolutions int64
		if cacheClearResolve {
			tenant := ""
			if cfg := config.GetConfig(); cfg != nil {
				tenant = cfg.API.OrganizationID
			}
			resolutions, err = db.PurgeResolveCache(cmd.Context(), tenant)
			if err != nil {
				return err
			}
		}

		return writeCacheClearResult(format, pattern, responses, resolutions, cacheClearResolve)
	},
}

func writeCacheClearResult(format output.Format, pattern string, responses, resolutions int64, withResolve bool) error {
	if format == output.FormatJSON {
		result := map[string]any{
			"pattern":   pattern,
			"responses": responses,
		}
		if withResolve {
			result["resolutions"] = resolutions
		}
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(payload))
		return nil
	}

	if pattern == "" {
		fmt.Printf("Cleared %d cached response(s)\n", responses)
	} else {
		fmt.Printf("Cleared %d cached response(s) matching %q\n", responses, pattern)
	}
	if withResolve {
		fmt.Printf("Cleared %d cached resolution(s)\n", resolutions)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheStatsCmd.Flags().StringVar(&cacheStatsOutput, "output", string(output.FormatTable), "Output format: table, json, markdown")
	cacheClearCmd.Flags().StringVar(&cacheClearPattern, "pattern", "", "Only clear endpoints containing this pattern")
	cacheClearCmd.Flags().BoolVar(&cacheClearResolve, "resolve", false, "Also clear cached name resolutions")
	cacheClearCmd.Flags().BoolVar(&cacheClearYes, "yes", false, "Confirm clearing the whole cache")
	cacheClearCmd.Flags().StringVar(&cacheClearOutput, "output", string(output.FormatTable), "Output format: table, json")
}
