package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evolvenxt/tarschat/internal/chat"
	"github.com/evolvenxt/tarschat/internal/tui"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with TARS.

The transcript lives only for this session. Use /dataset to switch datasets,
Tab to pick a suggested follow-up, and /export <file> to save the transcript.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps)
		},
	}
}

func runChat(cmd *cobra.Command, deps *Dependencies) error {
	sender, err := deps.NewSender(deps.cfg, deps.logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctrl := chat.NewController(sender,
		chat.WithLogger(deps.logger),
		chat.WithDataset(deps.cfg.DatasetSelection()),
	)

	return deps.RunChat(cmd.Context(), ctrl, tui.Options{
		Markdown: deps.cfg.Markdown,
		Logger:   deps.logger,
	})
}
