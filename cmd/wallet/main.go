package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"raulwallet/cmd/wallet/app"
	"raulwallet/cmd/wallet/config"
	"raulwallet/cmd/wallet/ui"
	"raulwallet/internal/api"
	"raulwallet/internal/sandbox"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	serverURL string
	themeName string
	verbose   bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "raulwallet",
	Short: "RaulCoin wallet for the terminal",
	Long: `raulwallet is a terminal client for the RaulCoin wallet service.

Sign in with your alias and an authenticator code, check your balance,
send coins, and read your statement. Every sensitive action asks for a
fresh 6-digit code; nothing is stored locally between runs.

Run without arguments to start the interactive client.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if serverURL != "" {
			cfg.Server.URL = serverURL
		}
		if themeName != "" {
			cfg.UI.Theme = themeName
		}
		if verbose {
			cfg.Log.Level = "debug"
		}

		// The TUI owns the terminal, so logs always go to a file.
		logger, err = buildLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWallet()
	},
}

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Run a local wallet service for offline use",
	Long: `Starts a local stand-in for the hosted wallet service, backed by a
sqlite file. Point the client at it with --server or RAULWALLET_SERVER_URL,
for example:

  raulwallet sandbox --addr 127.0.0.1:8787
  RAULWALLET_SERVER_URL=http://127.0.0.1:8787/api raulwallet`,
	RunE: runSandbox,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("raulwallet %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "wallet service base URL")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "color theme: light, dark or auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	sandboxCmd.Flags().String("addr", "", "listen address (default from config)")
	sandboxCmd.Flags().String("db", "", "sqlite database path (default from config)")

	rootCmd.AddCommand(sandboxCmd)
	rootCmd.AddCommand(versionCmd)
}

func buildLogger(cfg config.Config) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return nil, err
	}

	level := zapcore.InfoLevel
	if err := level.Set(cfg.Log.Level); err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{cfg.Log.File}
	zcfg.ErrorOutputPaths = []string{cfg.Log.File}
	return zcfg.Build()
}

func runWallet() error {
	client := api.New(cfg.Server.URL, cfg.Server.Timeout, logger)
	styles := ui.NewStyles(ui.ThemeByName(cfg.UI.Theme))

	model := app.New(app.Deps{
		Service: client,
		Log:     logger,
		Styles:  styles,
	})

	logger.Info("starting wallet client",
		zap.String("server", cfg.Server.URL),
		zap.String("version", version))

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("wallet client failed: %w", err)
	}
	return nil
}

func runSandbox(cmd *cobra.Command, args []string) error {
	addr := cfg.Sandbox.Addr
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		addr = v
	}
	dbPath := cfg.Sandbox.DB
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		dbPath = v
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}
	store, err := sandbox.OpenStore(dbPath)
	if err != nil {
		return fmt.Errorf("open sandbox store: %w", err)
	}
	defer store.Close()

	svc := sandbox.NewService(store, logger, sandbox.DefaultConfig())
	fiberApp := svc.App()

	logger.Info("starting sandbox service",
		zap.String("addr", addr),
		zap.String("db", dbPath))
	fmt.Printf("sandbox listening on http://%s (db: %s)\n", addr, dbPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return fiberApp.Listen(addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down sandbox")
		return fiberApp.Shutdown()
	})
	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
