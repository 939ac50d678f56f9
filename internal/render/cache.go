package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxIdle bounds the idle renderers kept per option set. The TUI renders
// from one goroutine and ask renders once, so a handful covers both.
const maxIdle = 4

// rendererCache hands out glamour renderers keyed by Options. A
// TermRenderer is not safe for concurrent Render calls, so each one is
// owned by a single caller between checkout and checkin.
type rendererCache struct {
	mu   sync.Mutex
	idle map[Options][]*glamour.TermRenderer
}

var renderers = &rendererCache{idle: make(map[Options][]*glamour.TermRenderer)}

func (c *rendererCache) checkout(opts Options) (*glamour.TermRenderer, error) {
	c.mu.Lock()
	free := c.idle[opts]
	if n := len(free); n > 0 {
		r := free[n-1]
		c.idle[opts] = free[:n-1]
		c.mu.Unlock()
		return r, nil
	}
	if _, ok := c.idle[opts]; !ok {
		c.idle[opts] = nil
	}
	c.mu.Unlock()

	return newRenderer(opts)
}

func (c *rendererCache) checkin(opts Options, r *glamour.TermRenderer) {
	if r == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.idle[opts]) < maxIdle {
		c.idle[opts] = append(c.idle[opts], r)
	}
}

func (c *rendererCache) idleCount(opts Options) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.idle[opts])
}

// newRenderer builds a TermRenderer. Style is a glamour standard style
// name or a path to a JSON style file.
func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	style := opts.Style
	if style == "" {
		style = StyleDark
	}

	ropts := []glamour.TermRendererOption{
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
	}
	if IsStandardStyle(style) {
		ropts = append(ropts, glamour.WithStandardStyle(style))
	} else {
		ropts = append(ropts, glamour.WithStylePath(style))
	}
	if opts.EnableEmoji {
		ropts = append(ropts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		ropts = append(ropts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(ropts...)
}

// ClearCache drops every idle renderer. Called when the theme or the
// terminal width changes.
func ClearCache() {
	renderers.mu.Lock()
	renderers.idle = make(map[Options][]*glamour.TermRenderer)
	renderers.mu.Unlock()
}

// CacheSize returns the number of distinct option sets seen since the last clear.
func CacheSize() int {
	renderers.mu.Lock()
	defer renderers.mu.Unlock()
	return len(renderers.idle)
}
