package api

import (
	"io"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
)

// MockResponseBody is a mock implementation of io.ReadCloser for testing
type MockResponseBody struct {
	data   []byte
	pos    int
	closed bool
}

// NewMockResponseBody creates a new MockResponseBody with the given data
func NewMockResponseBody(data []byte) *MockResponseBody {
	return &MockResponseBody{data: data, pos: 0}
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (n int, err error) {
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n = copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	m.closed = true
	return nil
}

// MockHttpClient records requests and replays a canned response
type MockHttpClient struct {
	Response *fhttp.Response
	Err      error

	mu       sync.Mutex
	Requests []*fhttp.Request
	Bodies   [][]byte
}

// Do implements HTTPDoer
func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if req.Body != nil {
		body, _ := io.ReadAll(req.Body)
		m.Bodies = append(m.Bodies, body)
	}
	return m.Response, m.Err
}

func jsonResponse(status int, body string) *fhttp.Response {
	return &fhttp.Response{
		StatusCode: status,
		Body:       NewMockResponseBody([]byte(body)),
		Header:     make(fhttp.Header),
	}
}
