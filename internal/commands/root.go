// Package commands provides the tarschat CLI.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evolvenxt/tarschat/internal/config"
	"github.com/evolvenxt/tarschat/internal/logging"
	"github.com/evolvenxt/tarschat/internal/models"
	"github.com/evolvenxt/tarschat/internal/render"
	"github.com/evolvenxt/tarschat/internal/tui"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootFlags are the persistent flags shared by every subcommand
type rootFlags struct {
	configPath string
	apiURL     string
	dataset    string
	verbose    bool
}

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "tarschat [question]",
		Short: "Terminal client for the EvolveNXT AI chat assistant",
		Long: `tarschat talks to the EvolveNXT AI chat API. Replies can be plain text,
charts drawn in the terminal, or follow-up options you can pick.

Examples:
  tarschat                              Start interactive chat
  tarschat chat -d DS-1                 Chat with dataset DS-1 selected
  tarschat "What is DS-1 revenue?"      Ask a single question
  tarschat ask -d DS-2 -o out.md "..."  Save the reply to a file
  echo "Summarize Q3" | tarschat        Read the question from stdin
  tarschat config set api_base_url https://api.example.com
  tarschat mock-server                  Serve a local mock API`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return deps.setup(flags)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = deps.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Out, "tarschat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if len(args) > 0 {
				return runAsk(cmd, deps, args[0], askOptions{})
			}

			stat, err := os.Stdin.Stat()
			if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				return runAsk(cmd, deps, string(data), askOptions{})
			}

			return runChat(cmd, deps)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default ~/.tarschat/config.json)")
	cmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Chat API base URL")
	cmd.PersistentFlags().StringVarP(&flags.dataset, "dataset", "d", "", "Dataset to start with (none, DS-1, DS-2)")
	cmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Debug-level logging")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewChatCmd(deps))
	cmd.AddCommand(NewAskCmd(deps))
	cmd.AddCommand(NewConfigCmd(deps))
	cmd.AddCommand(NewMockServerCmd(deps))

	return cmd
}

// setup loads configuration, applies flag overrides and opens the log file.
func (d *Dependencies) setup(flags *rootFlags) error {
	path := flags.configPath
	if path == "" {
		var err error
		path, err = config.GetConfigPath()
		if err != nil {
			return err
		}
	}
	d.configPath = path

	cfg, err := config.LoadConfigFrom(path)
	if err != nil {
		return err
	}
	if flags.apiURL != "" {
		cfg.APIBaseURL = flags.apiURL
	}
	if flags.dataset != "" {
		ds, ok := models.ParseDataset(flags.dataset)
		if !ok {
			return fmt.Errorf("unknown dataset %q (use none, DS-1 or DS-2)", flags.dataset)
		}
		cfg.Dataset = string(ds)
	}
	d.cfg = cfg

	if !render.SetTUITheme(cfg.TUITheme) {
		render.SetTUITheme(render.DefaultTUIThemeName)
	}
	tui.UpdateTheme()
	render.ClearCache()

	logPath, err := config.GetLogPath(cfg)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Path: logPath, Level: cfg.LogLevel, Verbose: flags.verbose})
	if err != nil {
		return err
	}
	d.logger = logger
	d.logger.Debug("configuration loaded",
		zap.String("config", path),
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.String("dataset", cfg.DatasetSelection().DisplayName()),
	)
	return nil
}

// Execute runs the root command
func Execute() {
	deps := NewDependencies()
	if err := NewRootCmd(deps).Execute(); err != nil {
		fmt.Fprintln(deps.Err, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}
