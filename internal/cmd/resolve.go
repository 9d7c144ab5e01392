package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/worklane/worklane-cli/internal/config"
	"github.com/worklane/worklane-cli/internal/core"
	"github.com/worklane/worklane-cli/internal/core/resolver"
	"github.com/worklane/worklane-cli/internal/observability"
	"github.com/worklane/worklane-cli/internal/output"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <query>...",
	Short: "Resolve human-friendly queries to resource ids",
	Long: `Resolve emails, names, and reference numbers to Worklane resource ids.

The resource type is detected from the query shape (email, PRJ-/P- number,
D-/DEAL- number) unless --type pins it. Numeric ids pass through unchanged.

Examples:
  worklane resolve bob@example.com
  worklane resolve "Website Redesign" --type project --first
  worklane resolve "Design" --type service --scope 500321 -q
  worklane resolve --file queries.yaml --output json`,
	Args: cobra.ArbitraryArgs,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().String("type", "", "Resource type: person, project, company, deal, service (default: detect)")
	resolveCmd.Flags().String("scope", "", "Project id bounding service lookups")
	resolveCmd.Flags().Bool("first", false, "Return only the top match")
	resolveCmd.Flags().Bool("require-unique", false, "Fail when more than one match remains")
	resolveCmd.Flags().Bool("exact-only", false, "Drop fuzzy matches")
	resolveCmd.Flags().BoolP("quiet", "q", false, "Print exactly one id, or fail")
	resolveCmd.Flags().String("file", "", "Read queries from file or stdin with - (YAML list or one per line)")
	resolveCmd.Flags().String("output", "table", "Output format: table, json, markdown")
	resolveCmd.Flags().String("out", "", "Write output to a file (default stdout)")
	resolveCmd.Flags().Bool("no-cache", false, "Skip cache lookup")
	resolveCmd.Flags().Bool("refresh", false, "Bypass cache reads but store fresh results")
	resolveCmd.Flags().Int("concurrency", 0, "Concurrent resolutions for multiple queries (default: workers config)")
}

// resolveOutcome is one query's result in batch mode. Failures stay
// attached to their query instead of aborting the run.
type resolveOutcome struct {
	Query   string            `json:"query"`
	Matches []core.Resolution `json:"matches,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	typeValue, err := cmd.Flags().GetString("type")
	if err != nil {
		return err
	}
	scope, err := cmd.Flags().GetString("scope")
	if err != nil {
		return err
	}
	first, err := cmd.Flags().GetBool("first")
	if err != nil {
		return err
	}
	requireUnique, err := cmd.Flags().GetBool("require-unique")
	if err != nil {
		return err
	}
	exactOnly, err := cmd.Flags().GetBool("exact-only")
	if err != nil {
		return err
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}
	queriesFile, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	refresh, err := cmd.Flags().GetBool("refresh")
	if err != nil {
		return err
	}
	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}

	formatValue, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	queries, err := resolveQueries(args, queriesFile)
	if err != nil {
		return err
	}

	sink, err := openSink(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()

	opts := resolver.Options{
		Scope:         strings.TrimSpace(scope),
		First:         first,
		RequireUnique: requireUnique || quiet,
		ExactOnly:     exactOnly,
	}
	if trimmed := strings.TrimSpace(typeValue); trimmed != "" {
		resourceType, ok := core.ParseResourceType(trimmed)
		if !ok {
			return fmt.Errorf("unknown resource type %q (person, project, company, deal, service)", trimmed)
		}
		opts.Type = resourceType
	}

	ctx := cmd.Context()
	startedAt := time.Now()

	db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup; errors logged internally

	cfg := config.GetConfig()
	if cfg == nil {
		return errors.New("config not loaded")
	}

	copts := clientOptions{noCache: noCache, refresh: refresh, logger: componentLogger()}
	client, _ := buildClient(cfg, db, copts)
	res := buildResolver(cfg, client, db, copts)

	if len(queries) == 1 {
		matches, err := res.Resolve(ctx, queries[0], opts)
		if err != nil {
			return err
		}
		if quiet {
			fmt.Fprintln(sink, matches[0].ID)
			return nil
		}
		rendered, err := output.Render(format, output.Resolutions(queries[0], matches))
		if err != nil {
			return err
		}
		if rendered != "" {
			fmt.Fprintln(sink, rendered)
		}
		return nil
	}

	if concurrency <= 0 {
		concurrency = cfg.Workers
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	outcomes := runResolveBatch(ctx, res, queries, opts, concurrency)

	if quiet {
		var firstErr error
		for _, outcome := range outcomes {
			if outcome.Error != "" {
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %s", outcome.Query, outcome.Error)
				}
				continue
			}
			fmt.Fprintln(sink, outcome.Matches[0].ID)
		}
		return firstErr
	}

	docs := make([]*output.Document, 0, len(outcomes))
	for _, outcome := range outcomes {
		docs = append(docs, outcomeDocument(outcome))
	}
	rendered, err := output.RenderAll(format, docs)
	if err != nil {
		return err
	}
	if rendered != "" {
		fmt.Fprintln(sink, rendered)
	}

	if format != output.FormatJSON {
		logResolveThroughput(len(queries), startedAt)
	}
	return nil
}

// runResolveBatch fans queries out over a bounded worker pool. One
// query's failure never cancels the others.
func runResolveBatch(ctx context.Context, res *resolver.Resolver, queries []string, opts resolver.Options, concurrency int) []resolveOutcome {
	outcomes := make([]resolveOutcome, len(queries))
	jobs := make(chan int)

	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range jobs {
			if err := ctx.Err(); err != nil {
				outcomes[idx] = resolveOutcome{Query: queries[idx], Error: err.Error()}
				continue
			}
			matches, err := res.Resolve(ctx, queries[idx], opts)
			outcome := resolveOutcome{Query: queries[idx], Matches: matches}
			if err != nil {
				outcome.Matches = nil
				outcome.Error = err.Error()
			}
			outcomes[idx] = outcome
		}
	}

	if concurrency > len(queries) {
		concurrency = len(queries)
	}
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go worker()
	}

	for i := range queries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

func outcomeDocument(outcome resolveOutcome) *output.Document {
	if outcome.Error != "" {
		return &output.Document{
			Title: fmt.Sprintf("Matches for %q", outcome.Query),
			Sections: []output.Section{
				{Title: "Error", Lines: []string{outcome.Error}},
			},
			Raw: outcome,
		}
	}

	doc := output.Resolutions(outcome.Query, outcome.Matches)
	doc.Raw = outcome
	return doc
}

func logResolveThroughput(count int, startedAt time.Time) {
	if count <= 0 {
		return
	}
	elapsed := time.Since(startedAt)
	if elapsed <= 0 {
		return
	}
	rate := float64(count) / elapsed.Seconds()
	observability.CLILogger.Info(
		"Resolve throughput",
		zap.Int("queries", count),
		zap.Duration("elapsed", elapsed),
		zap.Float64("rate_per_sec", rate),
	)
}
