// Package mockapi serves a local stand-in for the chat backend so the client
// can be exercised without the hosted service.
package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/evolvenxt/tarschat/internal/models"
)

// chatRequest is the decoded POST body. Dataset is a pointer so null and a
// missing field are both "no dataset".
type chatRequest struct {
	History []models.HistoryEntry `json:"history"`
	Message string                `json:"message" binding:"required"`
	Dataset *string               `json:"dataset"`
}

// Handler answers /chat with canned replies chosen by keywords in the message.
type Handler struct {
	logger *zap.Logger
	// Legacy makes chart replies use the untagged form: the chart JSON is
	// serialized into the response string.
	Legacy bool
}

func NewHandler(logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger}
}

// Router builds the gin engine with the chat and health routes.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.accessLog())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST(models.ChatPath, h.Chat)
	return router
}

func (h *Handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Chat handles POST /chat.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dataset := models.DatasetNone
	if req.Dataset != nil {
		dataset, _ = models.ParseDataset(*req.Dataset)
	}
	h.logger.Debug("chat",
		zap.String("message", req.Message),
		zap.String("dataset", dataset.DisplayName()),
		zap.Int("history", len(req.History)),
	)

	msg := strings.ToLower(req.Message)
	switch {
	case strings.Contains(msg, "fail"):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "simulated backend failure"})
	case strings.Contains(msg, "pie") || strings.Contains(msg, "share"):
		h.chart(c, "pie", "Revenue share by region", pieRows)
	case strings.Contains(msg, "trend") || strings.Contains(msg, "line"):
		h.chart(c, "line", "Revenue trend", trendRows)
	case strings.Contains(msg, "chart") || strings.Contains(msg, "revenue"):
		h.chart(c, "bar", fmt.Sprintf("%s revenue and cost by quarter", dataset.DisplayName()), quarterRows)
	case strings.Contains(msg, "help") || strings.Contains(msg, "options"):
		c.JSON(http.StatusOK, gin.H{
			"response":     "Here are a few things I can show you:",
			"show_buttons": true,
			"buttons":      []string{"Revenue chart", "Regional share", "Yearly trend"},
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"response": fmt.Sprintf("[%s] You said: %s (%d earlier messages)",
				dataset.DisplayName(), req.Message, len(req.History)),
		})
	}
}

func (h *Handler) chart(c *gin.Context, kind, text string, rows []gin.H) {
	payload := gin.H{"text": text, "chart_type": kind, "data": rows}
	if !h.Legacy {
		c.JSON(http.StatusOK, gin.H{"response": text, "kind": "chart", "chart": payload})
		return
	}

	// gin.H is a map, so marshalled field order is alphabetical; write rows by hand
	// to keep the category key first as the real backend does.
	var sb strings.Builder
	fmt.Fprintf(&sb, `{"text":%q,"chart_type":%q,"data":[`, text, kind)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(orderedRow(row))
	}
	sb.WriteString("]}")
	c.JSON(http.StatusOK, gin.H{"response": sb.String()})
}

func orderedRow(row gin.H) string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, key := range rowKeys(row) {
		if i > 0 {
			sb.WriteString(",")
		}
		switch v := row[key].(type) {
		case string:
			fmt.Fprintf(&sb, "%q:%q", key, v)
		default:
			fmt.Fprintf(&sb, "%q:%v", key, v)
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// rowKeys puts the category key first, then the remaining keys in seriesOrder.
func rowKeys(row gin.H) []string {
	keys := make([]string, 0, len(row))
	for _, k := range []string{"period", "year"} {
		if _, ok := row[k]; ok {
			keys = append(keys, k)
		}
	}
	for _, k := range seriesOrder {
		if _, ok := row[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

var seriesOrder = []string{"revenue", "cost", "share"}

var quarterRows = []gin.H{
	{"period": "Q1", "revenue": 120, "cost": 80},
	{"period": "Q2", "revenue": 135, "cost": 84},
	{"period": "Q3", "revenue": 150, "cost": 95},
	{"period": "Q4", "revenue": 171, "cost": 99},
}

var pieRows = []gin.H{
	{"period": "North", "share": 42},
	{"period": "South", "share": 27},
	{"period": "East", "share": 19},
	{"period": "West", "share": 12},
}

var trendRows = []gin.H{
	{"year": "2021", "revenue": 410},
	{"year": "2022", "revenue": 465},
	{"year": "2023", "revenue": 530},
	{"year": "2024", "revenue": 576},
}
