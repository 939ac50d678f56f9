package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evolvenxt/tarschat/internal/mockapi"
)

// NewMockServerCmd creates the command that serves a local mock chat API
func NewMockServerCmd(deps *Dependencies) *cobra.Command {
	var addr string
	var legacy bool

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve a local mock of the chat API",
		Long: `Serve a local stand-in for the chat API on POST /chat.

Messages mentioning "revenue" or "chart", "share" or "pie", and "trend" or
"line" get chart replies. "help" returns follow-up options and "fail" returns
HTTP 500. Anything else is echoed back.

Point the client at it with:
  tarschat --api-url http://127.0.0.1:8000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runMockServer(ctx, deps, addr, legacy)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", mockapi.DefaultAddr, "Listen address")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "Embed charts in the response string instead of the tagged form")
	return cmd
}

func runMockServer(ctx context.Context, deps *Dependencies, addr string, legacy bool) error {
	h := mockapi.NewHandler(deps.logger)
	h.Legacy = legacy

	fmt.Fprintf(deps.Err, "Mock chat API on http://%s (Ctrl+C to stop)\n", addr)
	return deps.ServeMock(ctx, addr, h, deps.logger)
}
