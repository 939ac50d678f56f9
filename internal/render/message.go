package render

import (
	"strings"

	"github.com/evolvenxt/tarschat/internal/chart"
	"github.com/evolvenxt/tarschat/internal/models"
)

// MessageView is the display form of one transcript message. Exactly one of
// Text and Chart carries the body; Buttons are shown below it.
type MessageView struct {
	Role    string
	Text    string
	Chart   *chart.Payload
	Buttons []string
	// ChartErr is set when the content looked like a chart but did not parse.
	// Text then holds the raw content.
	ChartErr error
}

// IsChart reports whether the view renders a chart.
func (v MessageView) IsChart() bool {
	return v.Chart != nil
}

// BuildView maps a message to its view. It has no side effects.
//
// Model messages tagged as charts, or untagged ones whose content carries the
// chart marker, are parsed as chart payloads. Messages tagged as text are never
// sniffed. User content is always literal.
func BuildView(msg models.Message) MessageView {
	view := MessageView{Role: msg.Role, Text: msg.Content}

	if msg.IsModel() && wantsChart(msg) {
		payload, err := chart.Parse(msg.Content)
		if err != nil {
			view.ChartErr = err
		} else {
			view.Chart = payload
			view.Text = payload.Text
		}
	}

	if msg.HasOptions() {
		view.Buttons = append([]string(nil), msg.Options...)
	}
	return view
}

func wantsChart(msg models.Message) bool {
	switch msg.Kind {
	case models.KindChart:
		return true
	case models.KindText:
		return false
	default:
		return chart.LooksLikeChart(msg.Content)
	}
}

// Body renders the view's body for the terminal: markdown for model text,
// verbatim text for the user, and the chart below its caption.
func Body(view MessageView, opts Options) string {
	if view.IsChart() {
		var b strings.Builder
		if caption := strings.TrimSpace(view.Chart.Text); caption != "" {
			b.WriteString(markdownOrRaw(caption, opts))
			b.WriteString("\n\n")
		}
		b.WriteString(chart.Render(view.Chart, opts.Width))
		return b.String()
	}

	if view.Role != models.RoleModel || view.ChartErr != nil {
		return view.Text
	}
	return markdownOrRaw(view.Text, opts)
}

func markdownOrRaw(text string, opts Options) string {
	out, err := Markdown(text, opts)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
