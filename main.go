package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"propertyedge/config"
	"propertyedge/models"
	"propertyedge/scraper/rightmove"
	"propertyedge/services"
	"propertyedge/storage"
	"propertyedge/utils"
	"propertyedge/web"
)

const importBatchSize = 5000

// cli carries what every command needs once the root pre-run has loaded it.
type cli struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *utils.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "propertyedge",
		Short: "PropertyEdge values UK property listings against recent sold prices",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.configPath != "" {
				os.Setenv("PROPERTYEDGE_CONFIG", c.configPath)
			}
			c.cfg = config.Load()
			if c.logLevel != "" {
				c.cfg.LogLevel = c.logLevel
			}
			c.logger = utils.NewLoggerWithOptions(utils.LoggerOptions{Level: c.cfg.LogLevel})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "YAML config file (overrides PROPERTYEDGE_CONFIG)")
	pf.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		c.serveCommand(),
		c.analyzeCommand(),
		c.showCommand(),
		c.historyCommand(),
		c.importPPDCommand(),
	)
	return root
}

func (c *cli) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			analyzer, cleanup, err := c.newAnalyzer(ctx, store)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = c.cfg.HTTPAddr
			}
			handler := web.NewHandler(analyzer, store, c.logger, c.cfg.HistoryLimit)
			srv := web.NewServer(addr, web.NewRouter(handler, c.logger), c.logger)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR or :5050)")
	return cmd
}

func (c *cli) analyzeCommand() *cobra.Command {
	var printReport bool
	cmd := &cobra.Command{
		Use:   "analyze URL...",
		Short: "Analyse one or more Rightmove listings and store the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			analyzer, cleanup, err := c.newAnalyzer(ctx, store)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			var done []models.AnalysisSummary
			for _, r := range analyzer.AnalyzeBatch(ctx, args) {
				if r.Err != nil {
					fmt.Fprintf(out, "  ✗ %s: %v\n", r.URL, r.Err)
					continue
				}
				s := storage.Summarize(r.Analysis)
				done = append(done, s)
				fmt.Fprintf(out, "  ✓ #%d property %s → /a/%d (score %s)\n",
					s.ID, s.PropertyID, s.ID, scoreOf(s))
				if printReport {
					fmt.Fprintf(out, "\n%s\n\n", r.Analysis.Report)
				}
			}

			insights := services.NewInsightService(c.logger)
			insights.Print(out, insights.Generate(done))

			if len(done) == 0 {
				return errors.New("no listing could be analysed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&printReport, "markdown", false, "print each markdown report")
	return cmd
}

func (c *cli) showCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a stored analysis report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid analysis id %q", args[0])
			}

			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			a, err := store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(a)
			}
			_, err = fmt.Fprintln(out, a.Report)
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full analysis as JSON")
	return cmd
}

func (c *cli) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent analyses with summary insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if limit <= 0 {
				limit = c.cfg.HistoryLimit
			}
			rows, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range rows {
				label := ""
				if r.Label != nil {
					label = *r.Label
				}
				fmt.Fprintf(out, "  #%-5d %s  %-12s %6s  %s\n",
					r.ID, r.CreatedAt.UTC().Format("2006-01-02 15:04"), r.PropertyID, scoreOf(r), label)
			}

			insights := services.NewInsightService(c.logger)
			insights.Print(out, insights.Generate(rows))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of analyses to include (default HISTORY_LIMIT)")
	return cmd
}

func (c *cli) importPPDCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-ppd FILE...",
		Short: "Load HM Land Registry Price Paid CSV files into the comps database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if c.cfg.PPDDatabaseURL == "" {
				return errors.New("PPD_DATABASE_URL is not set")
			}
			ppd, err := storage.NewPPDStore(ctx, c.cfg.PPDDatabaseURL)
			if err != nil {
				return err
			}
			defer ppd.Close()

			for _, path := range args {
				if err := c.importFile(ctx, ppd, path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (c *cli) importFile(ctx context.Context, ppd *storage.PPDStore, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	start := time.Now()
	reader := storage.NewPPDReader(f)
	var total int64
	err = reader.ReadAll(importBatchSize, func(batch []storage.PPDSale) error {
		n, err := ppd.Import(ctx, batch)
		total += n
		if err != nil {
			return err
		}
		c.logger.Debug("[import] %s: %d rows so far", path, total)
		return nil
	})
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	c.logger.Info("[import] %s: %d sales loaded, %d rows skipped in %s",
		path, total, reader.Skipped, time.Since(start).Round(time.Millisecond))
	return nil
}

func (c *cli) openStore() (storage.AnalysisStore, error) {
	if c.cfg.StorageBackend == "memory" {
		c.logger.Warn("[storage] Using in-memory store: analyses are lost on exit")
		return storage.NewMemoryStore(), nil
	}
	store, err := storage.NewPostgresStore(c.cfg.DSN())
	if err != nil {
		c.logger.Error("[storage] Failed to connect to PostgreSQL: %v", err)
		c.logger.Error("[storage] Make sure Docker is running: docker compose up -d, or set STORAGE_BACKEND=memory")
		return nil, err
	}
	return store, nil
}

// newAnalyzer wires fetcher, scraper, comps and cleaner. The returned
// cleanup releases the browser and the comps pool.
func (c *cli) newAnalyzer(ctx context.Context, store storage.AnalysisStore) (*services.Analyzer, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var fetcher rightmove.Fetcher
	switch c.cfg.FetchMode {
	case "browser":
		bf := rightmove.NewBrowserFetcher(c.cfg.ChromeBin, c.cfg.FetchTimeout(), c.logger)
		cleanups = append(cleanups, bf.Close)
		fetcher = bf
	default:
		fetcher = rightmove.NewHTTPFetcher(c.cfg.FetchTimeout())
	}

	scraper := rightmove.New(fetcher, &utils.RetryConfig{
		MaxAttempts: c.cfg.MaxRetries,
		BaseDelay:   c.cfg.RetryBaseDelay(),
		Logger:      c.logger,
	}, c.logger)

	var comps storage.CompFinder
	if c.cfg.PPDDatabaseURL != "" {
		ppd, err := storage.NewPPDStore(ctx, c.cfg.PPDDatabaseURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, ppd.Close)
		comps = ppd
	} else {
		c.logger.Warn("[analyzer] PPD_DATABASE_URL not set: valuations will have no sold comps")
	}

	analyzer := services.NewAnalyzer(scraper, services.NewCleaner(c.logger), comps, store, c.logger,
		services.AnalyzerOptions{
			CompMonths:     c.cfg.CompMonths,
			CompLimit:      c.cfg.CompLimit,
			MaxConcurrency: c.cfg.MaxConcurrency,
			RateLimitMs:    c.cfg.RateLimitMs,
		})
	return analyzer, cleanup, nil
}

func scoreOf(s models.AnalysisSummary) string {
	if s.Score == nil {
		return "n/a"
	}
	return strconv.Itoa(*s.Score)
}
