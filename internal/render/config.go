package render

import (
	"os"

	"github.com/evolvenxt/tarschat/internal/config"
)

// OptionsFromConfig builds render options from the markdown section of the
// user configuration. GLAMOUR_STYLE overrides the configured style.
func OptionsFromConfig(md config.MarkdownConfig, width int) Options {
	opts := DefaultOptions().
		WithWidth(width).
		WithEmoji(md.EnableEmoji).
		WithPreserveNewLines(md.PreserveNewLines).
		WithTableWrap(md.TableWrap)

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		return opts.WithStyle(style)
	}
	if md.Style != "" {
		return opts.WithStyle(md.Style)
	}
	return opts
}
