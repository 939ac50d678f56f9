package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evolvenxt/tarschat/internal/api"
	"github.com/evolvenxt/tarschat/internal/chat"
	"github.com/evolvenxt/tarschat/internal/config"
	apierrors "github.com/evolvenxt/tarschat/internal/errors"
	"github.com/evolvenxt/tarschat/internal/mockapi"
	"github.com/evolvenxt/tarschat/internal/models"
	"github.com/evolvenxt/tarschat/internal/tui"
)

// stubSender answers every request with the same reply or error
type stubSender struct {
	reply    models.Reply
	err      error
	requests []models.ChatRequest
}

func (s *stubSender) Send(ctx context.Context, req models.ChatRequest) (models.Reply, error) {
	s.requests = append(s.requests, req)
	return s.reply, s.err
}

type harness struct {
	deps       *Dependencies
	sender     *stubSender
	out        *bytes.Buffer
	errOut     *bytes.Buffer
	configPath string
	copied     []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	h := &harness{
		sender:     &stubSender{reply: models.Reply{Text: "Revenue was 120."}},
		out:        &bytes.Buffer{},
		errOut:     &bytes.Buffer{},
		configPath: filepath.Join(home, ".tarschat", "config.json"),
	}
	h.deps = &Dependencies{
		NewSender: func(cfg config.Config, logger *zap.Logger) (api.Sender, error) {
			return h.sender, nil
		},
		RunChat: func(ctx context.Context, ctrl *chat.Controller, opts tui.Options) error {
			return errors.New("RunChat not stubbed")
		},
		ServeMock: func(ctx context.Context, addr string, mh *mockapi.Handler, logger *zap.Logger) error {
			return errors.New("ServeMock not stubbed")
		},
		CopyToClipboard: func(text string) error {
			h.copied = append(h.copied, text)
			return nil
		},
		Interactive: func() bool { return false },
		Out:         h.out,
		Err:         h.errOut,
		logger:      zap.NewNop(),
	}
	return h
}

func (h *harness) run(args ...string) error {
	cmd := NewRootCmd(h.deps)
	cmd.SetArgs(append([]string{"--config", h.configPath}, args...))
	cmd.SetOut(h.out)
	cmd.SetErr(h.errOut)
	return cmd.Execute()
}

func TestRootCommand_Metadata(t *testing.T) {
	cmd := NewRootCmd(NewDependencies())
	assert.Equal(t, "tarschat [question]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"chat", "ask", "config", "mock-server"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootCommand_Version(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"short", []string{"-v"}},
		{"long", []string{"--version"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			require.NoError(t, h.run(tt.args...))
			assert.Equal(t, "tarschat "+Version+" (built "+BuildTime+")\n", h.out.String())
			assert.Empty(t, h.sender.requests)
		})
	}
}

func TestRootCommand_PositionalQuestion(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("What is DS-1 revenue?"))

	require.Len(t, h.sender.requests, 1)
	assert.Equal(t, "What is DS-1 revenue?", h.sender.requests[0].Message)
	assert.Equal(t, "Revenue was 120.", h.out.String())
}

func TestRootCommand_UnknownDataset(t *testing.T) {
	h := newHarness(t)
	err := h.run("-d", "DS-9", "ask", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown dataset "DS-9"`)
	assert.Empty(t, h.sender.requests)
}

func TestAsk_RawOutput(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("-d", "DS-1", "ask", "What is DS-1 revenue?"))

	require.Len(t, h.sender.requests, 1)
	req := h.sender.requests[0]
	assert.Empty(t, req.History)
	require.NotNil(t, req.Dataset)
	assert.Equal(t, "DS-1", *req.Dataset)
	assert.Equal(t, "Revenue was 120.", h.out.String())
	assert.Empty(t, h.errOut.String())
}

func TestAsk_NoDatasetSendsNull(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("ask", "hi"))
	require.Len(t, h.sender.requests, 1)
	assert.Nil(t, h.sender.requests[0].Dataset)
}

func TestAsk_ListsOptions(t *testing.T) {
	h := newHarness(t)
	h.sender.reply = models.Reply{
		Text:        "Pick one",
		Options:     []string{"Revenue chart", "Yearly trend"},
		ShowOptions: true,
	}
	require.NoError(t, h.run("ask", "help"))
	assert.Equal(t, "Pick one\n- Revenue chart\n- Yearly trend\n", h.out.String())
}

func TestAsk_HiddenOptionsNotListed(t *testing.T) {
	h := newHarness(t)
	h.sender.reply = models.Reply{Text: "Pick one", Options: []string{"A"}}
	require.NoError(t, h.run("ask", "help"))
	assert.Equal(t, "Pick one", h.out.String())
}

func TestAsk_ChartReply(t *testing.T) {
	h := newHarness(t)
	h.sender.reply = models.Reply{
		Text: `{"text":"Regional share","chart_type":"pie","data":[` +
			`{"period":"North","value":1},{"period":"South","value":1}]}`,
		Kind: models.KindChart,
	}
	require.NoError(t, h.run("ask", "share"))

	out := h.out.String()
	assert.True(t, strings.HasPrefix(out, "Regional share\n\n"), out)
	assert.Equal(t, 2, strings.Count(out, " 50%"))
	assert.NotContains(t, out, "chart_type")
}

func TestAsk_OutputFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "reply.md")
	require.NoError(t, h.run("ask", "-o", path, "hi"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Revenue was 120.", string(data))
	assert.Empty(t, h.out.String())
}

func TestAsk_Copy(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("ask", "--copy", "hi"))
	assert.Equal(t, []string{"Revenue was 120."}, h.copied)
}

func TestAsk_CopyFromConfig(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("config", "set", "copy_to_clipboard", "true"))
	require.NoError(t, h.run("ask", "hi"))
	assert.Equal(t, []string{"Revenue was 120."}, h.copied)
}

func TestAsk_CopyFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.deps.CopyToClipboard = func(string) error { return errors.New("no clipboard") }
	require.NoError(t, h.run("ask", "--copy", "hi"))
	assert.Equal(t, "Revenue was 120.", h.out.String())
}

func TestAsk_EmptyQuestion(t *testing.T) {
	h := newHarness(t)
	err := h.run("ask", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question cannot be empty")
	assert.Empty(t, h.sender.requests)
}

func TestAsk_RequestFailure(t *testing.T) {
	h := newHarness(t)
	h.sender.err = apierrors.NewNetworkErrorWithEndpoint("send", "http://localhost:8000/chat", errors.New("connection refused"))

	err := h.run("ask", "hi")
	require.Error(t, err)
	assert.True(t, apierrors.IsNetworkError(err))
	assert.Empty(t, h.out.String())

	msg := formatErrorMessage(err, "Error")
	assert.Contains(t, msg, "chat request failed")
	assert.Contains(t, msg, "Endpoint: http://localhost:8000/chat")
	assert.Contains(t, msg, "tarschat config show")
}

func TestAsk_SenderConstructionFails(t *testing.T) {
	h := newHarness(t)
	h.deps.NewSender = func(config.Config, *zap.Logger) (api.Sender, error) {
		return nil, errors.New("bad url")
	}
	err := h.run("ask", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create client")
}

func TestChat_Wiring(t *testing.T) {
	h := newHarness(t)
	var got *chat.Controller
	var gotOpts tui.Options
	h.deps.RunChat = func(ctx context.Context, ctrl *chat.Controller, opts tui.Options) error {
		got = ctrl
		gotOpts = opts
		return nil
	}

	require.NoError(t, h.run("--dataset", "ds2", "chat"))
	require.NotNil(t, got)
	assert.Equal(t, models.DatasetDS2, got.Dataset())
	require.Len(t, got.Messages(), 1)
	assert.Equal(t, models.Greeting, got.Messages()[0].Content)
	assert.NotNil(t, gotOpts.Logger)
	assert.Equal(t, config.DefaultConfig().Markdown, gotOpts.Markdown)
}

func TestChat_APIURLFlag(t *testing.T) {
	h := newHarness(t)
	var baseURL string
	h.deps.NewSender = func(cfg config.Config, logger *zap.Logger) (api.Sender, error) {
		baseURL = cfg.APIBaseURL
		return h.sender, nil
	}
	h.deps.RunChat = func(context.Context, *chat.Controller, tui.Options) error { return nil }

	require.NoError(t, h.run("--api-url", "http://example.test", "chat"))
	assert.Equal(t, "http://example.test", baseURL)
}

func TestConfig_ShowDefaults(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("config", "show"))

	out := h.out.String()
	assert.Contains(t, out, "# "+h.configPath)
	for _, key := range config.Keys() {
		assert.Contains(t, out, key)
	}
	assert.Contains(t, out, "http://localhost:8000")
	assert.Contains(t, out, "(unset)")
}

func TestConfig_SetPersists(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("config", "set", "dataset", "DS-1"))
	assert.Equal(t, "dataset = DS-1\n", h.out.String())

	cfg, err := config.LoadConfigFrom(h.configPath)
	require.NoError(t, err)
	assert.Equal(t, models.DatasetDS1, cfg.DatasetSelection())

	info, err := os.Stat(h.configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfig_SetDoesNotPersistEnv(t *testing.T) {
	h := newHarness(t)
	t.Setenv("TARSCHAT_API_BASE_URL", "http://env.example:9000")

	require.NoError(t, h.run("config", "set", "dataset", "DS-1"))

	data, err := os.ReadFile(h.configPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "env.example")

	cfg, err := config.LoadFileConfig(h.configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().APIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, models.DatasetDS1, cfg.DatasetSelection())
}

func TestConfig_SetRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "colour", "red"},
		{"bad dataset", "dataset", "DS-3"},
		{"bad timeout", "request_timeout_seconds", "-1"},
		{"unknown theme", "tui_theme", "solarized-neon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			require.Error(t, h.run("config", "set", tt.key, tt.value))
			_, err := os.Stat(h.configPath)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestConfig_Path(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("config", "path"))
	assert.Equal(t, h.configPath+"\n", h.out.String())
}

func TestMockServer_Wiring(t *testing.T) {
	h := newHarness(t)
	var gotAddr string
	var gotLegacy bool
	h.deps.ServeMock = func(ctx context.Context, addr string, mh *mockapi.Handler, logger *zap.Logger) error {
		gotAddr = addr
		gotLegacy = mh.Legacy
		return nil
	}

	require.NoError(t, h.run("mock-server", "--addr", "127.0.0.1:9999", "--legacy"))
	assert.Equal(t, "127.0.0.1:9999", gotAddr)
	assert.True(t, gotLegacy)
	assert.Contains(t, h.errOut.String(), "http://127.0.0.1:9999")
}

func TestMockServer_DefaultAddr(t *testing.T) {
	h := newHarness(t)
	var gotAddr string
	h.deps.ServeMock = func(ctx context.Context, addr string, mh *mockapi.Handler, logger *zap.Logger) error {
		gotAddr = addr
		return nil
	}
	require.NoError(t, h.run("mock-server"))
	assert.Equal(t, mockapi.DefaultAddr, gotAddr)
}
