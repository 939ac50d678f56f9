package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "github.com/evolvenxt/tarschat/internal/errors"
	"github.com/evolvenxt/tarschat/internal/models"
)

// maxResponseBytes caps how much of a reply body is read
const maxResponseBytes = 8 << 20

// Send posts req to the chat endpoint and parses the reply
func (c *Client) Send(ctx context.Context, req models.ChatRequest) (models.Reply, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return models.Reply{}, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return models.Reply{}, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		httpReq.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return models.Reply{}, apierrors.NewTimeoutError(c.endpoint)
		}
		return models.Reply{}, apierrors.NewNetworkErrorWithEndpoint("send chat", c.endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return models.Reply{}, apierrors.NewNetworkErrorWithEndpoint("read reply", c.endpoint, err)
	}

	c.logger.Debug("chat reply received",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	reply, err := ParseReply(body)
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return reply, err
	}

	// A non-2xx reply that still carries a response is shown like any other
	if err == nil {
		c.logger.Warn("chat reply with error status", zap.Int("status", resp.StatusCode))
		return reply, nil
	}
	return models.Reply{}, apierrors.NewAPIError(resp.StatusCode, c.endpoint, "chat request failed").WithBody(string(body))
}

// ParseReply decodes a chat endpoint response body.
//
// The envelope is {"response": ..., "show_buttons": bool, "buttons": [...]}.
// An optional "kind" field tags the reply: "chart" takes the chart from the
// "chart" object (or from "response" when that is an object), "text" turns
// off chart detection. Untagged replies are left for the renderer to sniff.
func ParseReply(body []byte) (models.Reply, error) {
	if !gjson.ValidBytes(body) {
		return models.Reply{}, apierrors.NewParseError("response body is not valid JSON", "")
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return models.Reply{}, apierrors.NewParseError("response body is not an object", "")
	}

	response := root.Get("response")
	if !response.Exists() || response.Type == gjson.Null {
		return models.Reply{}, apierrors.NewParseError("missing field", "response")
	}

	reply := models.Reply{
		ShowOptions: root.Get("show_buttons").Bool(),
	}

	// A structured response is kept in its serialized form
	if response.Type == gjson.String {
		reply.Text = response.String()
	} else {
		reply.Text = response.Raw
	}

	switch strings.ToLower(root.Get("kind").String()) {
	case string(models.KindChart):
		reply.Kind = models.KindChart
		if chart := root.Get("chart"); chart.IsObject() {
			reply.Text = withText(chart.Raw, response)
		} else if !response.IsObject() {
			return models.Reply{}, apierrors.NewParseError("chart reply without chart object", "chart")
		}
	case string(models.KindText):
		reply.Kind = models.KindText
	}

	for _, b := range root.Get("buttons").Array() {
		if label := strings.TrimSpace(b.String()); label != "" {
			reply.Options = append(reply.Options, label)
		}
	}

	return reply, nil
}

// withText returns the chart object with the reply text folded in as its
// "text" field, unless the chart already carries one.
func withText(chartRaw string, response gjson.Result) string {
	if gjson.Get(chartRaw, "text").Exists() || response.Type != gjson.String || response.String() == "" {
		return chartRaw
	}

	quoted, err := json.Marshal(response.String())
	if err != nil {
		return chartRaw
	}

	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(chartRaw), "{"))
	if strings.HasPrefix(rest, "}") {
		return `{"text":` + string(quoted) + `}`
	}
	return `{"text":` + string(quoted) + `,` + rest
}
