package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/JonMunkholm/dataview/internal/config"
	"github.com/JonMunkholm/dataview/internal/core"
	"github.com/JonMunkholm/dataview/internal/logging"
	"github.com/JonMunkholm/dataview/internal/tui"
	"github.com/JonMunkholm/dataview/internal/view"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options holds flag values. Flags left unset fall back to the
// environment configuration.
type options struct {
	pageSize  int
	timeout   time.Duration
	logFile   string
	exportDir string
	watch     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "dataview [file]",
		Short: "Browse a CSV, TXT, JSON or XML file as a table",
		Long: `dataview loads one csv, txt (tab separated), json or xml file, maps its
field names to canonical ones, normalizes values and shows the records as a
filterable, sortable, paginated table.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return runViewer(cmd, opts, path)
		},
	}

	cmd.PersistentFlags().IntVarP(&opts.pageSize, "page-size", "n", 0, "Records per page (default from VIEW_PAGE_SIZE)")
	cmd.PersistentFlags().DurationVarP(&opts.timeout, "timeout", "t", 0, "Timeout for loading the file (default from UPLOAD_TIMEOUT)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Write logs to this file (default from LOG_FILE)")
	cmd.Flags().StringVar(&opts.exportDir, "export-dir", "", "Directory for exported JSON (default: the file's directory)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reload the file whenever it changes")

	cmd.AddCommand(newExportCmd(opts))
	return cmd
}

// loadConfig reads .env and the environment, then applies flags that were
// set explicitly.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	// .env is optional; real env vars win over it here
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("page-size") {
		cfg.View.PageSize = opts.pageSize
	}
	if flags.Changed("timeout") {
		cfg.Upload.Timeout = opts.timeout
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = opts.logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging sends logs to the configured file, or to fallback when none
// is set. The returned func closes the file.
func setupLogging(cfg *config.Config, fallback io.Writer) (func(), error) {
	if cfg.Logging.File == "" {
		logging.Setup(fallback, cfg.Logging.Level, cfg.Logging.Format)
		return func() {}, nil
	}

	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logging.Setup(f, cfg.Logging.Level, cfg.Logging.Format)
	return func() { f.Close() }, nil
}

func runViewer(cmd *cobra.Command, opts *options, path string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	closeLog, err := setupLogging(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	loader, err := core.NewLoaderFromConfig(cfg)
	if err != nil {
		return err
	}

	m := tui.New(cmd.Context(), tui.Options{
		Path:      path,
		Loader:    loader,
		Engine:    view.NewEngine(cfg.View.PageSize, cfg.View.Placeholder),
		Timeout:   cfg.Upload.Timeout,
		ExportDir: opts.exportDir,
		Watch:     opts.watch,
	})
	defer m.Close()

	slog.Info("starting viewer", "file", path, "watch", opts.watch)

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
