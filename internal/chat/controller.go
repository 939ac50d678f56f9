// Package chat wires the transcript, the input controller and the API client
// into the request/response loop of one chat view.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/evolvenxt/tarschat/internal/api"
	"github.com/evolvenxt/tarschat/internal/models"
	"github.com/evolvenxt/tarschat/internal/session"
	"github.com/evolvenxt/tarschat/internal/transcript"
)

// Pending is a request that has been accepted and is ready to be sent.
// It is immutable and safe to hand to another goroutine.
type Pending struct {
	Ticket  session.Ticket
	Request models.ChatRequest
}

// Result is the outcome of sending a Pending request
type Result struct {
	Generation uint64
	Reply      models.Reply
	Err        error
}

// Controller owns the state of one chat view
type Controller struct {
	transcript *transcript.Store
	session    *session.Session
	sender     api.Sender
	logger     *zap.Logger
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDataset preselects a dataset
func WithDataset(ds models.Dataset) Option {
	return func(c *Controller) {
		c.session.SelectDataset(ds)
	}
}

// WithGreeting replaces the greeting that seeds the transcript
func WithGreeting(greeting string) Option {
	return func(c *Controller) {
		c.transcript = transcript.New(greeting)
	}
}

// NewController creates a controller with a freshly seeded transcript
func NewController(sender api.Sender, opts ...Option) *Controller {
	c := &Controller{
		transcript: transcript.New(models.Greeting),
		session:    session.New(models.DatasetNone),
		sender:     sender,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Messages returns a snapshot of the transcript
func (c *Controller) Messages() []models.Message {
	return c.transcript.Messages()
}

// Transcript exposes the underlying store
func (c *Controller) Transcript() *transcript.Store {
	return c.transcript
}

// SetDraft replaces the draft text
func (c *Controller) SetDraft(text string) {
	c.session.SetDraft(text)
}

// Draft returns the draft text
func (c *Controller) Draft() string {
	return c.session.Draft()
}

// Busy reports whether a reply is awaited
func (c *Controller) Busy() bool {
	return c.session.Busy()
}

// Dataset returns the selected dataset
func (c *Controller) Dataset() models.Dataset {
	return c.session.Dataset()
}

// Submit is the primary send path. It returns ok == false without touching
// the transcript when the draft is blank or a request is already in flight.
// Otherwise the user message is appended and the returned Pending must be
// passed to Dispatch and then Apply.
func (c *Controller) Submit() (Pending, bool) {
	ticket, ok := c.session.Submit()
	if !ok {
		return Pending{}, false
	}
	return c.begin(ticket), true
}

// SelectOption is the follow-up option path: label stands in for the draft.
// It is not gated by the busy flag; a reply still in flight becomes stale
// and is discarded when it arrives.
func (c *Controller) SelectOption(label string) (Pending, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Pending{}, false
	}
	return c.begin(c.session.Begin(label)), true
}

func (c *Controller) begin(ticket session.Ticket) Pending {
	// History is the transcript as it was before this message
	history := c.transcript.Messages()
	c.transcript.Append(models.NewUserMessage(ticket.Text))

	c.logger.Debug("request accepted",
		zap.Uint64("generation", ticket.Generation),
		zap.String("dataset", string(ticket.Dataset)),
		zap.Int("history", len(history)),
	)

	return Pending{
		Ticket:  ticket,
		Request: models.NewChatRequest(history, ticket.Text, ticket.Dataset),
	}
}

// Dispatch performs the outbound call for p. It touches no controller state
// and may run on any goroutine.
func (c *Controller) Dispatch(ctx context.Context, p Pending) Result {
	reply, err := c.sender.Send(ctx, p.Request)
	return Result{Generation: p.Ticket.Generation, Reply: reply, Err: err}
}

// IsCurrent reports whether generation belongs to the newest request.
func (c *Controller) IsCurrent(generation uint64) bool {
	return c.session.Generation() == generation
}

// Apply records the outcome of a dispatched request. A reply for a superseded
// generation is discarded. A failed request appends nothing. The busy flag is
// cleared whenever the current generation completes, success or not.
// It reports whether a model message was appended.
func (c *Controller) Apply(res Result) bool {
	if !c.session.Finish(res.Generation) {
		c.logger.Info("discarding stale reply",
			zap.Uint64("generation", res.Generation),
			zap.Uint64("current", c.session.Generation()),
			zap.Error(res.Err),
		)
		return false
	}

	if res.Err != nil {
		c.logger.Error("chat request failed",
			zap.Uint64("generation", res.Generation),
			zap.Error(res.Err),
		)
		return false
	}

	c.transcript.Append(res.Reply.Message())
	return true
}

// Send runs Dispatch and Apply in sequence for callers without an event loop
func (c *Controller) Send(ctx context.Context, p Pending) Result {
	res := c.Dispatch(ctx, p)
	c.Apply(res)
	return res
}

// SelectDataset switches the dataset and appends one confirmation message
// naming it. The existing transcript is kept.
func (c *Controller) SelectDataset(ds models.Dataset) models.Message {
	c.session.SelectDataset(ds)
	msg := models.NewModelMessage(DatasetConfirmation(ds))
	msg.Kind = models.KindText
	c.transcript.Append(msg)
	c.logger.Debug("dataset selected", zap.String("dataset", ds.DisplayName()))
	return msg
}

// DatasetConfirmation is the text appended after a dataset switch
func DatasetConfirmation(ds models.Dataset) string {
	return fmt.Sprintf("You're now chatting with %s.", ds.DisplayName())
}
