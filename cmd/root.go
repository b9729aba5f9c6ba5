package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/qbitrelay/config"
	"github.com/s0up4200/qbitrelay/qbittorrent"
	"github.com/s0up4200/qbitrelay/relay"
	"github.com/s0up4200/qbitrelay/telegram"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "qbitrelay",
	Short: "Relay torrents from Telegram to qBittorrent",
	Long: `qbitrelay is a Telegram bot that forwards magnet links and .torrent
files from an allow-listed set of users to a qBittorrent instance.

Running without a subcommand starts the bot.`,
	PersistentPreRunE: initializeApp,
	RunE:              runBot,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and logger
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// runBot wires the components together and runs the bot until it is
// interrupted or shut down through the chat command.
func runBot(cmd *cobra.Command, args []string) error {
	daemonURL, err := cfg.QBittorrent.ResolveURL()
	if err != nil {
		return err
	}
	logger.Info().Str("daemon_url", daemonURL).Msg("Using qBittorrent endpoint")

	allowed := relay.ParseAllowedUsers(cfg.Telegram.AllowedUserIDs, logger)
	if len(allowed) == 0 {
		return fmt.Errorf("telegram.allowed_user_ids contains no valid user ids")
	}
	logger.Info().Int("count", len(allowed)).Msg("Allow-list loaded")

	// Fail fast on a malformed endpoint instead of on the first message.
	if _, err := qbittorrent.NewClient(daemonURL, logger); err != nil {
		return fmt.Errorf("failed to create qBittorrent client: %w", err)
	}

	shutdown := relay.NewShutdownSignal()

	tgBot, err := telegram.NewBot(cfg.Telegram.Token, shutdown, logger)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}

	handler := relay.NewHandler(relay.HandlerConfig{
		Gate: relay.NewGate(allowed, cfg.ShutdownPhrase),
		NewClient: func() (relay.Submitter, error) {
			return qbittorrent.NewClient(daemonURL, logger)
		},
		Fetcher:  tgBot,
		Replier:  tgBot,
		Shutdown: shutdown,
		Username: cfg.QBittorrent.Username,
		Password: cfg.QBittorrent.Password,
	}, logger)
	tgBot.SetHandler(handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Msg("Bot started, waiting for messages")
	return tgBot.Run(ctx)
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to qBittorrent",
	Long:  `Test the login credentials against the configured qBittorrent instance and display its version.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	daemonURL, err := cfg.QBittorrent.ResolveURL()
	if err != nil {
		return err
	}

	fmt.Printf("Testing connection to qBittorrent at %s...\n", daemonURL)

	client, err := qbittorrent.NewClient(daemonURL, logger)
	if err != nil {
		return fmt.Errorf("failed to create qBittorrent client: %w", err)
	}

	ctx := context.Background()
	if err := client.Login(ctx, cfg.QBittorrent.Username, cfg.QBittorrent.Password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Println("✓ Login successful!")

	version, err := client.Version(ctx)
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}
	fmt.Printf("- qBittorrent version: %s\n", version)

	return nil
}
