package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wverbeek/gamewire/internal/config"
	"github.com/wverbeek/gamewire/internal/database"
	"github.com/wverbeek/gamewire/internal/llm"
	"github.com/wverbeek/gamewire/internal/notify"
	"github.com/wverbeek/gamewire/internal/pipeline"
	"github.com/wverbeek/gamewire/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "gamewire",
	Short:   "Automated game-news publication pipeline",
	Long:    "gamewire scans RSS feeds and podcast shows, filters out duplicates, and publishes rewritten articles on an editorial schedule.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Secrets (API keys, scan token) may live in a local .env.
		_ = godotenv.Load()

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(podcastsCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("gamewire", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/gamewire/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, shows, and the generation provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store and schedule status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Articles:")
		fmt.Printf("  Total published: %d\n", stats.TotalArticles)
		fmt.Printf("  Published today: %d\n", stats.PublishedToday)
		fmt.Printf("  Reviews: %d\n", stats.Reviews)
		fmt.Printf("  Podcast episodes: %d\n", stats.Podcasts)
		fmt.Println("\nSources:")
		fmt.Printf("  Feeds configured: %d\n", len(cfg.Sources.Feeds))
		fmt.Printf("  Active shows: %d\n", len(cfg.ActiveShows()))
		return nil
	},
}

// --- scan command ---

var (
	forceScan  bool
	forceCount int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan feeds and publish new articles within the run budget",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, db, err := buildRunner()
		if err != nil {
			return err
		}
		defer db.Close()

		result, err := runner.Scan(context.Background(), forceScan, forceCount)
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&forceScan, "force", false, "Bypass admission control")
	scanCmd.Flags().IntVar(&forceCount, "count", 1, "Max articles when forcing (1-20)")
}

var podcastsCmd = &cobra.Command{
	Use:   "podcasts",
	Short: "Scan active podcast shows for new episodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, db, err := buildRunner()
		if err != nil {
			return err
		}
		defer db.Close()

		result, err := runner.PodcastScan(context.Background())
		if err != nil {
			return err
		}
		printResult(result)
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP trigger server",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, db, err := buildRunner()
		if err != nil {
			return err
		}
		defer db.Close()

		token := os.Getenv(cfg.Server.TokenEnv)
		if token == "" {
			log.Printf("warning: %s not set, trigger endpoints will reject all requests", cfg.Server.TokenEnv)
		}

		port := cfg.Server.Port
		if servePort != 0 {
			port = servePort
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		return server.Serve(db, runner, token, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
}

func buildRunner() (*pipeline.Runner, *database.DB, error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}

	gen := cfg.Generation
	provider := llm.CreateProvider(gen.Provider, gen.Model, gen.OllamaURL, gen.OpenAIModel, gen.APIKeyEnv)

	notifier := notify.New(notify.Config{
		ImageWebhookURL: cfg.Notify.ImageWebhookURL,
		SiteBaseURL:     cfg.Site.BaseURL,
		SitemapPingURLs: cfg.Notify.SitemapPingURLs,
		IndexNowURL:     cfg.Notify.IndexNowURL,
		IndexNowKey:     os.Getenv(cfg.Notify.IndexNowKeyEnv),
	})

	return pipeline.New(cfg, db, provider, notifier), db, nil
}

func printResult(result *pipeline.Result) {
	if result.Skipped {
		fmt.Printf("Skipped: %s\n", result.Reason)
		return
	}

	fmt.Printf("Fetched %d items, %d new candidates\n", result.Fetched, result.Candidates)
	for _, item := range result.Items {
		if item.Status == "ok" {
			fmt.Printf("  ok    [%s] %s -> %s\n", item.Category, item.Title, item.Slug)
		} else {
			fmt.Printf("  error [%s] %s: %s\n", item.Category, item.Title, item.Error)
		}
	}
	fmt.Printf("Published %d article(s)\n", result.Published())
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "gamewire.db")
	return database.Open(dbPath)
}
