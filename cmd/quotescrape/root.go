package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/pevans/quotescrape/config"
	"github.com/pevans/quotescrape/discovery"
	"github.com/pevans/quotescrape/export"
	"github.com/pevans/quotescrape/history"
	"github.com/spf13/cobra"
)

// options holds values shared by every command.
type options struct {
	configPath string
	quiet      bool

	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{
		stdout: stdout,
		stderr: stderr,
		logger: log.New(stderr, "", log.LstdFlags),
	}

	cmd := &cobra.Command{
		Use:   "quotescrape [OUTPUT]",
		Short: "Scrape every quote from a paginated listing into a CSV file",
		Long: `quotescrape walks the listing at the base URL page by page, following
each "next" link until the last page, and writes every quote it finds to a
CSV file with the columns text, author and tags.

Example usage:
  quotescrape                         # Write quotes.csv
  quotescrape out.csv                 # Write out.csv
  quotescrape --max-pages 2           # Stop after two pages
  quotescrape --history-db runs.db    # Record the run in a ledger
  quotescrape history list            # Show recorded runs`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.OutputPath = args[0]
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runScrape(cmd.Context(), cfg, opts)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is ~/.quotescrape/config.yaml)")
	cmd.PersistentFlags().String("history-db", "", "SQLite run ledger (disabled when empty)")

	cmd.Flags().String("base-url", "", "listing URL to start from")
	cmd.Flags().Duration("timeout", 0, "per-request timeout (0 means none)")
	cmd.Flags().Int("max-pages", 0, "stop after this many pages (0 means no limit)")
	cmd.Flags().String("user-agent", "", "User-Agent header to send")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print progress")

	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

// loadConfig resolves defaults, config file and environment, then applies
// any flag the user set explicitly.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("max-pages") {
		cfg.MaxPages, _ = flags.GetInt("max-pages")
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}
	if flags.Changed("history-db") {
		cfg.HistoryDSN, _ = flags.GetString("history-db")
	}
	if flags.Changed("addr") {
		cfg.ServeAddr, _ = flags.GetString("addr")
	}

	return cfg, nil
}

// runScrape crawls every page and writes the CSV only when all pages
// succeeded.
func runScrape(ctx context.Context, cfg *config.Config, opts *options) error {
	var observer discovery.Observer
	if !opts.quiet {
		observer = discovery.LogObserver{Logger: log.New(opts.stdout, "", 0)}
	}

	ledger := startLedger(cfg, opts.logger)
	defer ledger.close()

	fetcher := discovery.NewHTTPFetcher(cfg.Timeout, cfg.UserAgent)
	crawler := discovery.NewCrawler(fetcher, cfg.ScraperConfig(), observer)

	result, err := crawler.Run(ctx)
	if err != nil {
		ledger.finish(0, 0, err)
		return err
	}

	if err := export.WriteFile(cfg.OutputPath, result.Quotes); err != nil {
		ledger.finish(len(result.Pages), 0, err)
		return err
	}

	ledger.finish(len(result.Pages), len(result.Quotes), nil)

	fmt.Fprintf(opts.stdout, "Quotes successfully written to %s\n", cfg.OutputPath)
	return nil
}

// runLedger records one scrape in the history store. Every method is a
// no-op on a nil ledger, and failures are logged rather than returned.
type runLedger struct {
	store  *history.RunStore
	run    *history.Run
	logger *log.Logger
}

// startLedger opens the history store and records a running entry. It
// returns nil when history is disabled or cannot be opened.
func startLedger(cfg *config.Config, logger *log.Logger) *runLedger {
	if cfg.HistoryDSN == "" {
		return nil
	}

	store, err := history.NewRunStore(cfg.HistoryDSN)
	if err != nil {
		logger.Printf("WARN: Failed to open run history %s: %v", cfg.HistoryDSN, err)
		return nil
	}

	run, err := store.StartRun(cfg.BaseURL, cfg.OutputPath)
	if err != nil {
		logger.Printf("WARN: Failed to record run start: %v", err)
		store.Close()
		return nil
	}

	return &runLedger{store: store, run: run, logger: logger}
}

func (l *runLedger) finish(pages, quotes int, runErr error) {
	if l == nil {
		return
	}
	if err := l.store.FinishRun(l.run.RunID, pages, quotes, runErr); err != nil {
		l.logger.Printf("WARN: Failed to record run %s: %v", l.run.RunID, err)
	}
}

func (l *runLedger) close() {
	if l == nil {
		return
	}
	l.store.Close()
}
