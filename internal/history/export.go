// Package history exports the in-memory transcript to files on request.
// Nothing written here is ever read back by the client.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/evolvenxt/tarschat/internal/chart"
	"github.com/evolvenxt/tarschat/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
	ExportFormatYAML     ExportFormat = "yaml"
)

// FormatFromPath picks the export format from a file extension.
// Unknown extensions export as markdown.
func FormatFromPath(path string) ExportFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ExportFormatJSON
	case ".yaml", ".yml":
		return ExportFormatYAML
	default:
		return ExportFormatMarkdown
	}
}

// ExportMessage is the serialized form of one transcript entry
type ExportMessage struct {
	Role      string    `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Kind      string    `json:"kind,omitempty" yaml:"kind,omitempty"`
	Options   []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// ExportConversation is the serialized transcript
type ExportConversation struct {
	Title      string          `json:"title" yaml:"title"`
	Dataset    string          `json:"dataset" yaml:"dataset"`
	ExportedAt time.Time       `json:"exported_at" yaml:"exported_at"`
	Messages   []ExportMessage `json:"messages" yaml:"messages"`
}

// NewExport snapshots messages for export.
func NewExport(messages []models.Message, dataset models.Dataset, now time.Time) ExportConversation {
	export := ExportConversation{
		Title:      "Chat with " + dataset.DisplayName(),
		Dataset:    dataset.DisplayName(),
		ExportedAt: now,
		Messages:   make([]ExportMessage, len(messages)),
	}
	for i, msg := range messages {
		em := ExportMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			Kind:      string(msg.Kind),
			Timestamp: msg.CreatedAt,
		}
		if msg.HasOptions() {
			em.Options = append([]string(nil), msg.Options...)
		}
		export.Messages[i] = em
	}
	return export
}

// ToMarkdown renders the conversation as a markdown document
func (e ExportConversation) ToMarkdown() string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(e.Title)
	sb.WriteString("\n\n")
	sb.WriteString("**Dataset:** ")
	sb.WriteString(e.Dataset)
	sb.WriteString("\n")
	sb.WriteString("**Exported:** ")
	sb.WriteString(e.ExportedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d", len(e.Messages)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range e.Messages {
		role := "User"
		if msg.Role == models.RoleModel {
			role = models.DefaultAssistantName
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		if !msg.Timestamp.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.Timestamp.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		if isChart(msg) {
			sb.WriteString("```json\n")
			sb.WriteString(strings.TrimSpace(msg.Content))
			sb.WriteString("\n```\n")
		} else {
			sb.WriteString(msg.Content)
			sb.WriteString("\n")
		}

		for _, opt := range msg.Options {
			sb.WriteString("\n- [ ] ")
			sb.WriteString(opt)
		}
		if len(msg.Options) > 0 {
			sb.WriteString("\n")
		}

		if i < len(e.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

func isChart(msg ExportMessage) bool {
	if msg.Role != models.RoleModel {
		return false
	}
	switch models.ContentKind(msg.Kind) {
	case models.KindChart:
		return true
	case models.KindText:
		return false
	}
	return chart.LooksLikeChart(msg.Content)
}

// ToJSON serializes the conversation as indented JSON
func (e ExportConversation) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return data, nil
}

// ToYAML serializes the conversation as YAML
func (e ExportConversation) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return data, nil
}

// Encode serializes the conversation in the given format
func (e ExportConversation) Encode(format ExportFormat) ([]byte, error) {
	switch format {
	case ExportFormatJSON:
		return e.ToJSON()
	case ExportFormatYAML:
		return e.ToYAML()
	case ExportFormatMarkdown:
		return []byte(e.ToMarkdown()), nil
	}
	return nil, fmt.Errorf("unsupported export format: %s", format)
}

// WriteFile exports to path, choosing the format by extension.
// It returns the absolute path written.
func WriteFile(path string, e ExportConversation) (string, error) {
	path = expandHome(strings.TrimSpace(path))
	if path == "" {
		return "", fmt.Errorf("export path is empty")
	}

	data, err := e.Encode(FormatFromPath(path))
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve export path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return abs, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
