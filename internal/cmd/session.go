package cmd

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/worklane/worklane-cli/internal/config"
	"github.com/worklane/worklane-cli/internal/core"
	"github.com/worklane/worklane-cli/internal/core/api"
	"github.com/worklane/worklane-cli/internal/core/engine"
	"github.com/worklane/worklane-cli/internal/core/resolver"
	"github.com/worklane/worklane-cli/internal/core/store"
	"github.com/worklane/worklane-cli/internal/output"
)

// session bundles the wiring resource commands share: the open store, the
// API client, and the resolver on top of it.
type session struct {
	cfg     *config.Config
	db      *store.Store
	client  *api.Client
	res     *resolver.Resolver
	limiter *engine.Limiter
}

func (s *session) Close() {
	if s != nil && s.db != nil {
		_ = s.db.Close() // nolint:errcheck // best-effort cleanup; errors logged internally
	}
}

// openSession opens the store and builds the client stack from the
// command's cache flags.
func openSession(cmd *cobra.Command) (*session, error) {
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return nil, err
	}
	refresh, err := cmd.Flags().GetBool("refresh")
	if err != nil {
		return nil, err
	}

	db, err := openStore(cmd.Context())
	if err != nil {
		return nil, err
	}

	cfg := config.GetConfig()
	if cfg == nil {
		_ = db.Close()
		return nil, errors.New("config not loaded")
	}

	copts := clientOptions{noCache: noCache, refresh: refresh, logger: componentLogger()}
	client, limiter := buildClient(cfg, db, copts)
	res := buildResolver(cfg, client, db, copts)

	return &session{cfg: cfg, db: db, client: client, res: res, limiter: limiter}, nil
}

// addResourceFlags registers the flags every resource command carries.
func addResourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("output", "table", "Output format: table, json, markdown")
	cmd.Flags().Bool("no-cache", false, "Skip cache lookup")
	cmd.Flags().Bool("refresh", false, "Bypass cache reads but store fresh results")
}

// outputFormat reads and parses the command's --output flag.
func outputFormat(cmd *cobra.Command) (output.Format, error) {
	value, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", err
	}
	return output.ParseFormat(value)
}

// filterParams renders resolved filter values as JSON:API query params.
func filterParams(filters map[string]string) url.Values {
	params := url.Values{}
	for key, value := range filters {
		params.Set("filter["+key+"]", value)
	}
	return params
}

// renderDocument prints a document with its resolved-filter section, if
// any filters were rewritten.
func renderDocument(format output.Format, doc *output.Document, meta map[string]core.FilterResolution) error {
	if section := output.FilterSection(meta); section != nil {
		doc.Sections = append(doc.Sections, *section)
	}

	rendered, err := output.Render(format, doc)
	if err != nil {
		return err
	}
	if rendered != "" {
		fmt.Println(rendered)
	}
	return nil
}
