package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/elex-datasource/internal/config"
	"github.com/pfrederiksen/elex-datasource/internal/datasource"
	_ "github.com/pfrederiksen/elex-datasource/internal/datasource/nc"
	_ "github.com/pfrederiksen/elex-datasource/internal/datasource/sd"
	_ "github.com/pfrederiksen/elex-datasource/internal/datasource/wv"
	"github.com/pfrederiksen/elex-datasource/internal/election"
	"github.com/pfrederiksen/elex-datasource/internal/filter"
	"github.com/pfrederiksen/elex-datasource/internal/logger"
	"github.com/pfrederiksen/elex-datasource/internal/scraper"
	"github.com/pfrederiksen/elex-datasource/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagState   string
	flagYear    int
	flagDataDir string
	flagConfig  string
	flagFormat  string
	flagSort    string
	flagVerbose bool
	flagSave    bool
	flagNewOnly bool

	flagNames            []string
	flagElections        []string
	flagDates            string
	flagPreProcessedOnly bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "elex-datasource",
		Short: "Map state election results files to standardized names and URLs",
		Long: `A CLI tool that maps a state's elections to standardized, sortable filenames
and the URLs their raw results files can be fetched from, substituting
pre-processed CSV mirrors where the original format is unsupported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagState, "state", "", "State code (e.g., wv)")
	pf.IntVar(&flagYear, "year", 0, "Election year (0 for all years)")
	pf.StringVar(&flagDataDir, "data-dir", "", "Data directory with per-state reference files (overrides config)")
	pf.StringVar(&flagConfig, "config", "~/.config/elex-datasource/config.yaml", "Path to YAML config file")
	pf.StringVar(&flagFormat, "format", "text", "Output format: text or json")
	pf.StringVar(&flagSort, "sort", "none", "Sort order: none, filename, name or election")
	pf.BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	mappingsCmd := &cobra.Command{
		Use:   "mappings",
		Short: "List metadata records for raw results files",
		Args:  cobra.NoArgs,
		RunE:  runMappings,
	}
	mappingsCmd.Flags().BoolVar(&flagSave, "save", false, "Save the mappings snapshot to the data directory")
	mappingsCmd.Flags().BoolVar(&flagNewOnly, "new-only", false, "Only output mappings missing from the saved snapshot")
	addFilterFlags(mappingsCmd)

	forURLCmd := &cobra.Command{
		Use:   "mappings-for-url <url>",
		Short: "List metadata records whose raw URL matches",
		Args:  cobra.ExactArgs(1),
		RunE:  runMappingsForURL,
	}
	addFilterFlags(forURLCmd)

	cmd.AddCommand(
		mappingsCmd,
		&cobra.Command{
			Use:   "target-urls",
			Short: "List raw source URLs",
			Args:  cobra.NoArgs,
			RunE:  runTargetURLs,
		},
		&cobra.Command{
			Use:   "filename-url-pairs",
			Short: "List generated filenames with the URL to fetch each from",
			Args:  cobra.NoArgs,
			RunE:  runFilenameURLPairs,
		},
		&cobra.Command{
			Use:   "unprocessed",
			Short: "List original files behind pre-processed mirrors",
			Args:  cobra.NoArgs,
			RunE:  runUnprocessed,
		},
		forURLCmd,
		&cobra.Command{
			Use:   "states",
			Short: "List supported state codes",
			Args:  cobra.NoArgs,
			RunE:  runStates,
		},
	)

	return cmd
}

func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceVar(&flagNames, "name", nil, "Only jurisdictions whose name contains this (repeatable)")
	f.StringSliceVar(&flagElections, "election", nil, "Only elections whose slug contains this (repeatable)")
	f.StringVar(&flagDates, "dates", "", "Date range: 2012, 2012-2016 or 2012-05-08..2012-11-06")
	f.BoolVar(&flagPreProcessedOnly, "pre-processed-only", false, "Only mappings with a pre-processed mirror")
}

// buildFilter assembles the mapping filter from flags
func buildFilter() (*filter.Filter, error) {
	f := filter.NewFilter()
	f.Names = flagNames
	f.Elections = flagElections
	f.PreProcessedOnly = flagPreProcessedOnly

	if flagDates != "" {
		from, to, err := filter.ParseDateRange(flagDates)
		if err != nil {
			return nil, fmt.Errorf("invalid dates: %w", err)
		}
		f.DateFrom, f.DateTo = from, to
	}
	return f, nil
}

// runEnv is what every datasource command needs
type runEnv struct {
	ds     datasource.Datasource
	store  *storage.Storage
	filter *filter.Filter
	format OutputFormat
	order  SortOrder
}

// setup validates flags, loads config and wires the datasource
func setup(cmd *cobra.Command) (*runEnv, error) {
	state := strings.ToLower(strings.TrimSpace(flagState))
	if state == "" {
		return nil, fmt.Errorf("--state is required")
	}
	if flagYear < 0 {
		return nil, fmt.Errorf("invalid year: %d", flagYear)
	}

	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return nil, fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	order := SortOrder(strings.ToLower(flagSort))
	if !order.Valid() {
		return nil, fmt.Errorf("invalid sort: %s (must be none, filename, name or election)", flagSort)
	}

	mf, err := buildFilter()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadFile(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	sc := scraper.NewWithOptions(scraper.Options{
		Timeout:      cfg.HTTP.Timeout,
		UserAgent:    cfg.HTTP.UserAgent,
		RateLimitRPS: cfg.HTTP.RateLimitRPS,
	})

	ds, err := datasource.New(state, datasource.Deps{
		Elections: store,
		Reference: store,
		Links:     sc,
		Mirror:    datasource.Mirror{Org: cfg.Mirror.GithubOrg, Branch: cfg.Mirror.Branch},
		State:     cfg.State(state),
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Configured datasource", logger.Fields{
		"state":    state,
		"year":     flagYear,
		"data_dir": store.DataDir(),
		"filter":   mf.String(),
	})

	return &runEnv{ds: ds, store: store, filter: mf, format: format, order: order}, nil
}

func (e *runEnv) newResult() *OutputResult {
	return NewOutputResult(e.ds.State(), flagYear)
}

func (e *runEnv) write(cmd *cobra.Command, result *OutputResult) error {
	if err := WriteOutput(cmd.OutOrStdout(), result, e.format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	logger.Debug("Run metrics", logger.Fields{"metrics": logger.GetMetricsSnapshot()})
	return nil
}

func runMappings(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}

	mappings, err := env.ds.Mappings(cmd.Context(), flagYear)
	if err != nil {
		return fmt.Errorf("building mappings: %w", err)
	}

	// The snapshot always holds the unfiltered run; filters only shape the output.
	if flagSave {
		path, err := env.store.SaveMappings(env.ds.State(), flagYear, mappings)
		if err != nil {
			return fmt.Errorf("saving mappings: %w", err)
		}
		logger.Info("Saved mappings", logger.Fields{"path": path, "count": len(mappings)})
	}

	output := env.filter.Apply(mappings)
	sortMappings(output, env.order)

	if flagNewOnly {
		output, err = env.newMappings(output)
		if err != nil {
			return err
		}
	}

	result := env.newResult()
	result.SetMappings(output)
	return env.write(cmd, result)
}

// newMappings diffs mappings against the saved snapshot, logging changed records.
// Without a snapshot every mapping is new.
func (e *runEnv) newMappings(mappings []election.Mapping) ([]election.Mapping, error) {
	var previous []election.Mapping
	snapshot, err := e.store.LoadMappings(e.ds.State())
	switch {
	case err == nil:
		previous = snapshot.Mappings
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("No saved mappings snapshot", logger.Fields{"state": e.ds.State()})
	default:
		return nil, fmt.Errorf("loading saved mappings: %w", err)
	}

	diff := election.Diff(previous, mappings)
	for _, c := range diff.Changes {
		logger.Info("Mapping changed", logger.Fields{
			"filename": c.Filename,
			"change":   c.ChangeType,
			"old":      c.OldValue,
			"new":      c.NewValue,
		})
	}
	logger.AddCounter("mappings.new", int64(len(diff.New)))
	return diff.New, nil
}

func runTargetURLs(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}

	urls, err := env.ds.TargetURLs(cmd.Context(), flagYear)
	if err != nil {
		return fmt.Errorf("listing target urls: %w", err)
	}
	sortURLs(urls, env.order)

	result := env.newResult()
	result.SetURLs(urls)
	return env.write(cmd, result)
}

func runFilenameURLPairs(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}

	pairs, err := env.ds.FilenameURLPairs(cmd.Context(), flagYear)
	if err != nil {
		return fmt.Errorf("listing filename url pairs: %w", err)
	}
	sortPairs(pairs, env.order)

	result := env.newResult()
	result.SetPairs(pairs)
	return env.write(cmd, result)
}

func runUnprocessed(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}

	pairs, err := env.ds.UnprocessedFilenameURLPairs(cmd.Context(), flagYear)
	if err != nil {
		return fmt.Errorf("listing unprocessed files: %w", err)
	}
	sortPairs(pairs, env.order)

	result := env.newResult()
	result.SetPairs(pairs)
	return env.write(cmd, result)
}

func runMappingsForURL(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}

	mappings, err := env.ds.MappingsForURL(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("looking up mappings for url: %w", err)
	}
	mappings = env.filter.Apply(mappings)
	sortMappings(mappings, env.order)

	result := env.newResult()
	result.Year = 0
	result.SetMappings(mappings)
	return env.write(cmd, result)
}

func runStates(cmd *cobra.Command, args []string) error {
	for _, state := range datasource.States() {
		fmt.Fprintln(cmd.OutOrStdout(), state)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	os.Exit(execute(NewRootCmd()))
}

// execute runs cmd and returns the process exit code. Failures are logged and
// echoed to the command's stderr.
func execute(cmd *cobra.Command) int {
	logger.SetDefault(logger.New(logger.LevelInfo, cmd.ErrOrStderr()))

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("Command failed", nil, err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
