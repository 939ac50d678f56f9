package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/evolvenxt/tarschat/internal/chart"
	"github.com/evolvenxt/tarschat/internal/chat"
	apierrors "github.com/evolvenxt/tarschat/internal/errors"
	"github.com/evolvenxt/tarschat/internal/models"
	"github.com/evolvenxt/tarschat/internal/render"
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)

	optionStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			PaddingLeft(2)
)

type askOptions struct {
	output string
	copy   bool
	raw    bool
}

// NewAskCmd creates the one-shot question command
func NewAskCmd(deps *Dependencies) *cobra.Command {
	opts := askOptions{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the reply",
		Long: `Send one question with an empty history and print TARS's reply.
The persistent --dataset/-d flag selects the dataset.

Charts are drawn in the terminal. Suggested follow-ups are listed below the
reply; run them with another 'tarschat ask'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, deps, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the reply to a file")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the reply to the clipboard")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the reply without decoration")

	return cmd
}

// runAsk sends one question and writes the reply
func runAsk(cmd *cobra.Command, deps *Dependencies, question string, opts askOptions) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	dataset := deps.cfg.DatasetSelection()
	raw := opts.raw || !deps.Interactive()

	sender, err := deps.NewSender(deps.cfg, deps.logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	// One question, no prior turns
	ctrl := chat.NewController(sender,
		chat.WithLogger(deps.logger),
		chat.WithDataset(dataset),
		chat.WithGreeting(""),
	)
	ctrl.SetDraft(question)
	pending, _ := ctrl.Submit()

	var spin *spinner
	if !raw {
		spin = newSpinner(deps.Err, fmt.Sprintf("Asking %s", dataset.DisplayName()))
		spin.start()
	}

	startTime := time.Now()
	res := ctrl.Send(cmd.Context(), pending)
	deps.logger.Debug("ask finished", zap.Duration("took", time.Since(startTime)))

	if res.Err != nil {
		if !raw {
			spin.stopWithError()
		}
		return fmt.Errorf("chat request failed: %w", res.Err)
	}
	if !raw {
		spin.stopWithSuccess("Done")
	}

	reply, _ := ctrl.Transcript().LastModel()
	view := render.BuildView(reply)
	if view.ChartErr != nil {
		deps.logger.Warn("chart payload rendered as text", zap.Error(view.ChartErr))
	}

	if opts.copy || deps.cfg.CopyToClipboard {
		copyReply(deps, reply.Content, raw)
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(plainBody(view, 80)), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !raw {
			successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Reply saved to %s", opts.output),
			)
			fmt.Fprintln(deps.Err, successMsg)
		}
		return nil
	}

	if raw {
		fmt.Fprint(deps.Out, plainBody(view, 80))
		for _, label := range view.Buttons {
			fmt.Fprintf(deps.Out, "\n- %s", label)
		}
		if len(view.Buttons) > 0 {
			fmt.Fprintln(deps.Out)
		}
		return nil
	}

	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	fmt.Fprintln(deps.Out, assistantLabelStyle.Render("✦ "+models.DefaultAssistantName))
	body := render.Body(view, render.OptionsFromConfig(deps.cfg.Markdown, contentWidth))
	fmt.Fprintln(deps.Out, assistantBubbleStyle.Width(bubbleWidth).Render(body))

	for _, label := range view.Buttons {
		fmt.Fprintln(deps.Out, optionStyle.Render("› "+label))
	}
	return nil
}

// plainBody is the undecorated reply: literal text, or caption and chart
func plainBody(view render.MessageView, width int) string {
	if !view.IsChart() {
		return view.Text
	}
	var sb strings.Builder
	if caption := strings.TrimSpace(view.Chart.Text); caption != "" {
		sb.WriteString(caption)
		sb.WriteString("\n\n")
	}
	sb.WriteString(chart.Render(view.Chart, width))
	sb.WriteString("\n")
	return sb.String()
}

func copyReply(deps *Dependencies, text string, quiet bool) {
	if err := deps.CopyToClipboard(text); err != nil {
		deps.logger.Warn("clipboard write failed", zap.Error(err))
		if !quiet {
			fmt.Fprintln(deps.Err, lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		}
		return
	}
	if !quiet {
		fmt.Fprintln(deps.Err, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
	}
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with details from typed errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
	} else {
		switch {
		case apierrors.IsTimeoutError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Raise request_timeout_seconds or try again"))
		case apierrors.IsNetworkError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: Check api_base_url with 'tarschat config show'"))
		case apierrors.IsParseError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: The server reply was not in the expected format"))
		}
	}

	return sb.String()
}
