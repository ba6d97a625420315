package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/venue-scout/internal/config"
	"github.com/jonathan/venue-scout/internal/creds"
	"github.com/jonathan/venue-scout/internal/pipeline"
	"github.com/jonathan/venue-scout/internal/types"
)

var extractCommand = &cobra.Command{
	Use:   "extract",
	Short: "Extract a karaoke schedule from a social-media target URL",
	Long: `Runs the full extraction flow for one target: strategy fallback across authenticated API, headless browser, and public meta scraping, then AI normalization and time validation.

If the stored session has expired and automated login fails, you will be prompted for credentials on stdin. Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runExtractCmd,
}

var (
	extractConfigPath  string
	extractURL         string
	extractKind        string
	extractSessionFile string
	extractAPIKey      string
	extractWorkers     int
	extractHeadless    bool
	extractVerbose     bool
)

func init() {
	// Config file flag (processed first)
	extractCommand.Flags().StringVar(&extractConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	extractCommand.Flags().StringVarP(&extractURL, "url", "u", "", "Target URL to extract (required)")
	extractCommand.Flags().StringVarP(&extractKind, "kind", "k", string(types.KindProfile), "Target kind: profile, group, or single-photo")
	extractCommand.Flags().StringVar(&extractSessionFile, "session-file", "", "Path to the persisted session file")
	extractCommand.Flags().IntVar(&extractWorkers, "workers", 0, "Max parallel photo workers (0 = hardware parallelism)")
	extractCommand.Flags().BoolVar(&extractHeadless, "headless", true, "Run the browser headless")
	extractCommand.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	extractCommand.Flags().StringVar(&extractAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	rootCmd.AddCommand(extractCommand)
}

func runExtractCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if extractConfigPath != "" {
		loadedCfg, err := config.LoadConfig(extractConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
		if extractVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", extractConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("session-file") {
		cfg.SessionFile = extractSessionFile
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = extractAPIKey
	}
	if cmd.Flags().Changed("workers") {
		cfg.WorkerCap = extractWorkers
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = extractHeadless
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = extractVerbose
	}

	// Step 3: Apply defaults for unset values
	defaults := config.Config{
		SessionFile: "session.json",
		Headless:    true,
	}
	cfg = cfg.MergeWithDefaults(defaults)

	// Step 4: Validate required fields
	if extractURL == "" {
		return fmt.Errorf("--url is required")
	}
	kind := types.TargetKind(extractKind)
	if !types.ValidKind(kind) {
		return fmt.Errorf("invalid --kind %q: must be profile, group, or single-photo", extractKind)
	}

	// Step 5: API Key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	// Step 6: Account credentials for the automated login attempt
	if cfg.Email == "" {
		cfg.Email = os.Getenv("SCOUT_EMAIL")
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv("SCOUT_PASSWORD")
	}

	// Step 7: Wire the interactive credential prompt and run
	broker := creds.NewBroker()
	go serveCredentialPrompts(broker)

	runner, err := pipeline.NewRunner(ctx, pipeline.Options{
		Config: &cfg,
		Broker: broker,
	})
	if err != nil {
		return err
	}
	defer func() { _ = runner.Close() }()

	result, err := runner.Extract(ctx, extractURL, kind)
	if result != nil {
		// The diagnostics trail is reported even on terminal failure.
		out, merr := json.MarshalIndent(result, "", "  ")
		if merr == nil {
			fmt.Println(string(out))
		}
	}
	return err
}

// serveCredentialPrompts answers broker requests from stdin. It runs until
// the process exits; each request is a blocking email/password prompt.
func serveCredentialPrompts(broker *creds.Broker) {
	reader := bufio.NewReader(os.Stdin)
	for req := range broker.Requests() {
		fmt.Printf("\n%s\n", req.Message)

		fmt.Print("Email: ")
		email, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		fmt.Print("Password: ")
		password, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		broker.Respond(creds.Response{
			Type:      creds.TypeResponse,
			RequestID: req.RequestID,
			Email:     strings.TrimSpace(email),
			Password:  strings.TrimSpace(password),
		})
	}
}
