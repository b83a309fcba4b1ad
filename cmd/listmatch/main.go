package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/listmatch/internal/config"
	"github.com/listmatch/internal/ingest"
	"github.com/listmatch/internal/logging"
	"github.com/listmatch/internal/match"
	"github.com/listmatch/internal/schema"
	"github.com/listmatch/internal/store"
	"github.com/listmatch/internal/web"
)

var configDir string

func main() {
	rootCmd := &cobra.Command{
		Use:   "listmatch",
		Short: "Fuzzy list matching by name and address",
		Long:  `Match the people in one CSV file against a larger master list by name and address, tolerating typos, abbreviations, and formatting differences`,
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Directory holding listmatch.yaml")

	rootCmd.AddCommand(createMatchCmd())
	rootCmd.AddCommand(createSchemaCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createPingCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// createMatchCmd creates the match subcommand
func createMatchCmd() *cobra.Command {
	var strategies []string
	var thresholds []string
	var outDir string
	var workers int
	var save bool
	var keepRoles bool

	cmd := &cobra.Command{
		Use:   "match [fileA.csv] [fileB.csv]",
		Short: "Match two CSV files",
		Long:  `Match every row of the smaller file against the larger master file and write one results CSV per strategy plus the rows nothing matched`,
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()

			a, err := ingest.ReadTable(args[0])
			if err != nil {
				log.Fatalf("Failed to read %s: %v", args[0], err)
			}
			b, err := ingest.ReadTable(args[1])
			if err != nil {
				log.Fatalf("Failed to read %s: %v", args[1], err)
			}

			input, master := a, b
			if !keepRoles {
				input, master = ingest.AssignRoles(a, b)
				if input != a {
					fmt.Printf("Note: %s is larger, using it as the master list\n", a.Name)
				}
			}
			inputPath := args[0]
			if input != a {
				inputPath = args[1]
			}

			opts := cfg.MatchOptions()
			if workers > 0 {
				opts.Workers = workers
			}
			for _, arg := range thresholds {
				name, value, ok := strings.Cut(arg, "=")
				if !ok {
					log.Fatalf("Invalid threshold %q, want Strategy=Value", arg)
				}
				s, err := match.ParseStrategy(name)
				if err != nil {
					log.Fatalf("Invalid threshold %q: %v", arg, err)
				}
				v, err := strconv.ParseFloat(value, 64)
				if err != nil {
					log.Fatalf("Invalid threshold %q: %v", arg, err)
				}
				opts.Thresholds[s] = v
			}
			opts.Progress = func(done, total int) {
				if done%100 == 0 || done == total {
					fmt.Printf("\r  scored %d/%d rows", done, total)
				}
				if done == total {
					fmt.Println()
				}
			}

			var wanted []match.Strategy
			for _, name := range strategies {
				s, err := match.ParseStrategy(name)
				if err != nil {
					log.Fatalf("%v", err)
				}
				wanted = append(wanted, s)
			}

			started := time.Now()
			res, err := match.NewRunner(opts).Run(input.Data(), master.Data(), wanted)
			if err != nil {
				log.Fatalf("Match run failed: %v", err)
			}

			if outDir == "" {
				outDir = ingest.ResultsDir(inputPath, time.Now())
			}
			files, err := ingest.WriteResults(outDir, res.Matched, res.Masters, res.OpensMissing)
			if err != nil {
				log.Fatalf("Failed to write results: %v", err)
			}
			unmatched := res.Unmatched()
			unmatchedFile, err := ingest.WriteUnmatched(outDir, input, unmatched)
			if err != nil {
				log.Fatalf("Failed to write unmatched rows: %v", err)
			}

			fmt.Printf("\n=== Match Results ===\n")
			fmt.Printf("Input: %s (%d rows)\n", input.Name, input.Len())
			fmt.Printf("Master: %s (%d rows)\n", master.Name, master.Len())
			for _, s := range match.Strategies() {
				if reason, ok := res.Skipped[s]; ok {
					fmt.Printf("%-17s skipped: %s\n", s, reason)
					continue
				}
				recs, ok := res.Matched[s]
				if !ok {
					continue
				}
				fmt.Printf("%-17s threshold %.1f, matches %d\n", s, opts.Thresholds[s], len(recs))
			}
			fmt.Printf("Unmatched rows: %d\n", len(unmatched))
			fmt.Printf("Elapsed: %s\n", time.Since(started).Round(time.Millisecond))

			fmt.Printf("\nResults written to %s\n", outDir)
			for _, f := range files {
				fmt.Printf("  %s\n", f)
			}
			if unmatchedFile != "" {
				fmt.Printf("  %s\n", unmatchedFile)
			}

			if save {
				saveRuns(cfg, opts, input, master, res)
			}
		},
	}

	cmd.Flags().StringSliceVar(&strategies, "strategy", nil, "Strategies to run (FullName, LastNameAddress, FullAddress); default all")
	cmd.Flags().StringSliceVar(&thresholds, "threshold", nil, "Threshold overrides as Strategy=Value")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default <input>_RESULTS_<timestamp>)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of parallel workers (0 = all cores)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the run to the configured database")
	cmd.Flags().BoolVar(&keepRoles, "no-auto-roles", false, "Keep argument order instead of making the larger file the master")

	return cmd
}

func saveRuns(cfg *config.Config, opts match.Options, input, master *ingest.Table, res *match.RunResult) {
	if cfg.DatabaseURL == "" {
		log.Fatalf("Failed to save runs: database.url is not configured")
	}
	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	for _, s := range match.Strategies() {
		recs, ok := res.Matched[s]
		if !ok {
			continue
		}
		id, err := st.SaveRun(ctx, store.RunInfo{
			InputName:  input.Name,
			MasterName: master.Name,
			InputRows:  input.Len(),
			MasterRows: master.Len(),
			Strategy:   s,
			Threshold:  opts.Thresholds[s],
		}, recs)
		if err != nil {
			log.Fatalf("Failed to save %s run: %v", s, err)
		}
		fmt.Printf("Saved %s run %s\n", s, id)
	}
}

// createSchemaCmd creates the schema inspection subcommand
func createSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [file.csv]",
		Short: "Show how a file's headers map to match fields",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			t, err := ingest.ReadTable(args[0])
			if err != nil {
				log.Fatalf("Failed to read %s: %v", args[0], err)
			}

			mapping, err := schema.Detect(t.Headers)
			if err != nil {
				log.Fatalf("Schema detection failed: %v", err)
			}

			fmt.Println("=== Detected Columns ===")
			fmt.Println("Field        | Source              | Derivation")
			fmt.Println("-------------|---------------------|-----------")
			for _, f := range schema.Fields() {
				fm, ok := mapping[f]
				if !ok {
					continue
				}
				fmt.Printf("%-12s | %-19s | %s\n", f, fm.Source, fm.Derivation)
			}

			report := schema.EvaluateMatchTypes(mapping)
			fmt.Printf("\n=== Match Types ===\n")
			for _, s := range match.Strategies() {
				elig, _ := report.For(string(s))
				if elig.Enabled {
					fmt.Printf("%-17s available\n", s)
				} else {
					fmt.Printf("%-17s unavailable: %s (requires %s)\n", s, elig.Reason, strings.Join(elig.Requires, " and "))
				}
			}

			unmapped := schema.Unmapped(t.Headers, mapping)
			if len(unmapped) > 0 {
				fmt.Printf("\n=== Unmapped Headers ===\n")
				for _, u := range unmapped {
					if u.Suggestion != "" {
						fmt.Printf("%s (did you mean %s?)\n", u.Header, u.Suggestion)
					} else {
						fmt.Println(u.Header)
					}
				}
			}
		},
	}
}

// createServeCmd creates the API server subcommand
func createServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the matching API server",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				log.Fatalf("Failed to build logger: %v", err)
			}
			defer logger.Sync()

			var st *store.Store
			if cfg.DatabaseURL != "" {
				st, err = store.Open(cfg.DatabaseURL)
				if err != nil {
					log.Fatalf("Failed to connect to database: %v", err)
				}
				if err := st.EnsureSchema(context.Background()); err != nil {
					log.Fatalf("Failed to ensure database schema: %v", err)
				}
			}

			if err := web.NewServer(cfg.HTTPAddr, cfg.MatchOptions(), st, logger).Start(); err != nil {
				log.Fatalf("Server failed: %v", err)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

// createPingCmd creates a command to test database connectivity
func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			if cfg.DatabaseURL == "" {
				log.Fatalf("database.url is not configured")
			}

			st, err := store.Open(cfg.DatabaseURL)
			if err != nil {
				log.Fatalf("Failed to connect to database: %v", err)
			}
			defer st.Close()

			fmt.Println("Database connection successful!")

			runs, err := st.RecentRuns(context.Background(), 5)
			if err != nil {
				log.Printf("Error listing saved runs: %v", err)
				return
			}
			if len(runs) == 0 {
				fmt.Println("No saved runs yet")
				return
			}
			fmt.Printf("Most recent runs:\n")
			for _, r := range runs {
				fmt.Printf("  %s  %-17s %s vs %s  %d matches\n",
					r.CreatedAt.Format("2006-01-02 15:04"), r.Strategy, r.InputName, r.MasterName, r.Matches)
			}
		},
	}
}
