package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/evolvenxt/tarschat/internal/history"
	"github.com/evolvenxt/tarschat/internal/models"
)

const helpNotice = "/dataset [name]  /export <file.md|json|yaml>  /copy  /quit"

// runCommand handles slash commands typed into the input. It reports false
// when input is an ordinary message.
func (m *Model) runCommand(input string) (tea.Cmd, bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil, false
	}

	name := strings.ToLower(fields[0])
	arg := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))

	switch name {
	case "exit", "quit", "/exit", "/quit":
		if len(fields) == 1 {
			return tea.Quit, true
		}
		return nil, false

	case "/dataset", "/ds":
		m.clearInput()
		if arg == "" {
			m.openDatasetSelector()
			return nil, true
		}
		ds, ok := models.ParseDataset(arg)
		if !ok {
			m.notice = fmt.Sprintf("Unknown dataset %q. Choose none, DS-1 or DS-2", arg)
			return nil, true
		}
		m.selectDataset(ds)
		return nil, true

	case "/export":
		m.clearInput()
		if arg == "" {
			m.notice = "Usage: /export <file.md|file.json|file.yaml>"
			return nil, true
		}
		export := history.NewExport(m.ctrl.Messages(), m.ctrl.Dataset(), time.Now())
		path, err := history.WriteFile(arg, export)
		if err != nil {
			m.logger.Error("export failed", zap.String("path", arg), zap.Error(err))
			m.notice = "Export failed: " + err.Error()
			return nil, true
		}
		m.notice = "Transcript exported to " + path
		return nil, true

	case "/copy":
		m.clearInput()
		last, ok := m.ctrl.Transcript().LastModel()
		if !ok {
			m.notice = "Nothing to copy yet"
			return nil, true
		}
		if err := clipboard.WriteAll(last.Content); err != nil {
			m.logger.Warn("clipboard write failed", zap.Error(err))
			m.notice = "Could not copy to clipboard"
			return nil, true
		}
		m.notice = "Last reply copied to clipboard"
		return nil, true

	case "/help", "/?":
		m.clearInput()
		m.notice = helpNotice
		return nil, true
	}

	return nil, false
}

func (m *Model) clearInput() {
	m.textarea.Reset()
	m.ctrl.SetDraft("")
	m.err = nil
}
