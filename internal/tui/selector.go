package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/evolvenxt/tarschat/internal/models"
)

var datasetDescriptions = map[models.Dataset]string{
	models.DatasetNone: "General assistant, no dataset",
	models.DatasetDS1:  "Answers grounded in dataset DS-1",
	models.DatasetDS2:  "Answers grounded in dataset DS-2",
}

func (m *Model) openDatasetSelector() {
	m.selectingDataset = true
	m.datasetCursor = 0
	for i, ds := range models.AllDatasets() {
		if ds == m.ctrl.Dataset() {
			m.datasetCursor = i
		}
	}
	m.textarea.Blur()
}

func (m *Model) closeDatasetSelector() {
	m.selectingDataset = false
	m.textarea.Focus()
}

// updateDatasetSelection handles keys while the selector overlay is open
func (m Model) updateDatasetSelection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	datasets := models.AllDatasets()

	switch key := msg.String(); key {
	case "esc", "q":
		m.closeDatasetSelector()

	case "up", "k":
		m.datasetCursor--
		if m.datasetCursor < 0 {
			m.datasetCursor = len(datasets) - 1
		}

	case "down", "j":
		m.datasetCursor++
		if m.datasetCursor >= len(datasets) {
			m.datasetCursor = 0
		}

	case "enter":
		m.closeDatasetSelector()
		m.selectDataset(datasets[m.datasetCursor])

	case "1", "2", "3":
		idx := int(key[0] - '1')
		if idx < len(datasets) {
			m.closeDatasetSelector()
			m.selectDataset(datasets[idx])
		}
	}

	return m, nil
}

// renderDatasetSelector renders the dataset selection overlay
func (m Model) renderDatasetSelector() string {
	width := m.width - 8
	if width < 40 {
		width = 40
	}

	var content strings.Builder
	content.WriteString(selectorTitleStyle.Render("Select a dataset"))
	content.WriteString("\n\n")

	for i, ds := range models.AllDatasets() {
		cursor := "  "
		nameStyle := selectorItemStyle
		if i == m.datasetCursor {
			cursor = selectorCursorStyle.Render("▸ ")
			nameStyle = selectorSelectedStyle
		}

		line := fmt.Sprintf("%s%d. %s", cursor, i+1, nameStyle.Render(ds.DisplayName()))
		if ds == m.ctrl.Dataset() {
			line += selectorActiveStyle.Render(" (active)")
		}
		if desc := datasetDescriptions[ds]; desc != "" {
			line += hintStyle.Render(" - " + desc)
		}
		content.WriteString(line)
		content.WriteString("\n")
	}

	content.WriteString("\n")
	shortcuts := []string{
		statusKeyStyle.Render("↑↓") + statusDescStyle.Render(" Navigate"),
		statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Select"),
		statusKeyStyle.Render("Esc") + statusDescStyle.Render(" Cancel"),
	}
	content.WriteString(strings.Join(shortcuts, "  │  "))

	return selectorBoxStyle.Width(width).Render(content.String())
}
