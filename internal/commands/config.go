package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evolvenxt/tarschat/internal/config"
	"github.com/evolvenxt/tarschat/internal/render"
)

// NewConfigCmd creates the config command with its subcommands
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show or change tarschat settings stored in ~/.tarschat/config.json.

Environment variables prefixed with TARSCHAT_ (for example
TARSCHAT_API_BASE_URL) override the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(deps)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(deps)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long:  "Change one setting. Keys: " + strings.Join(config.Keys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfig(deps, args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(deps.Out, deps.configPath)
			return nil
		},
	})

	return cmd
}

func showConfig(deps *Dependencies) error {
	fmt.Fprintf(deps.Out, "# %s\n", deps.configPath)
	for _, key := range config.Keys() {
		value, err := deps.cfg.Get(key)
		if err != nil {
			return err
		}
		if value == "" {
			value = "(unset)"
		}
		fmt.Fprintf(deps.Out, "%-24s %s\n", key, value)
	}
	return nil
}

func setConfig(deps *Dependencies, key, value string) error {
	// The file alone: env overrides must not be written back into it
	cfg, err := config.LoadFileConfig(deps.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if key == "tui_theme" {
		if _, ok := render.GetTUIThemeByName(cfg.TUITheme); !ok {
			return fmt.Errorf("unknown theme %q (available: %s)", value, strings.Join(render.TUIThemeNames(), ", "))
		}
	}
	if err := config.SaveConfigTo(deps.configPath, cfg); err != nil {
		return err
	}
	shown, _ := cfg.Get(key)
	fmt.Fprintf(deps.Out, "%s = %s\n", key, shown)
	return nil
}
