package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/evolvenxt/tarschat/internal/api"
	"github.com/evolvenxt/tarschat/internal/chat"
	"github.com/evolvenxt/tarschat/internal/config"
	"github.com/evolvenxt/tarschat/internal/mockapi"
	"github.com/evolvenxt/tarschat/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewSender builds the chat API client from the loaded configuration.
	NewSender func(cfg config.Config, logger *zap.Logger) (api.Sender, error)

	// RunChat runs the interactive chat view until it exits.
	RunChat func(ctx context.Context, ctrl *chat.Controller, opts tui.Options) error

	// ServeMock runs the local mock API until ctx is cancelled.
	ServeMock func(ctx context.Context, addr string, h *mockapi.Handler, logger *zap.Logger) error

	CopyToClipboard func(text string) error

	// Interactive reports whether output goes to a terminal.
	Interactive func() bool

	Out io.Writer
	Err io.Writer

	// Set by the root command before any subcommand runs
	cfg        config.Config
	configPath string
	logger     *zap.Logger
}

// defaultSender builds the production HTTP client.
func defaultSender(cfg config.Config, logger *zap.Logger) (api.Sender, error) {
	return api.NewClient(cfg.APIBaseURL,
		api.WithTimeoutSeconds(cfg.RequestTimeoutSeconds),
		api.WithLogger(logger),
	)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewSender:       defaultSender,
		RunChat:         tui.RunChat,
		ServeMock:       mockapi.ListenAndServe,
		CopyToClipboard: clipboard.WriteAll,
		Interactive:     isStdoutTTY,
		Out:             os.Stdout,
		Err:             os.Stderr,
		logger:          zap.NewNop(),
	}
}
