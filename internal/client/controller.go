package client

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"rolechat/internal/models"
)

// ErrReplyPending is returned when Send is called while a previous send
// is still awaiting its reply. Overlapping sends are rejected rather
// than queued so two replies can never land out of order.
var ErrReplyPending = errors.New("a reply is still pending")

// Speech is the injected voice capability. Transcribe blocks until a
// final transcript is available or the context is cancelled. Speak is
// fire-and-forget; its failures never affect conversation state.
type Speech interface {
	Transcribe(ctx context.Context) (string, error)
	Speak(text string)
}

// Controller owns the in-memory ordered message list and the
// optimistic-update cycle for one conversation: append the user message
// immediately, round-trip to the backend, then reconcile the pending
// send into a bot reply or a synthesized error entry. Optimistic
// appends are never rolled back.
type Controller struct {
	api    *APIClient
	speech Speech

	mu       sync.Mutex
	messages []models.Message
	role     string
	typing   bool
	hydrated bool
}

// NewController builds a controller over the given API client. speech
// may be nil. The initial role is the first enumerated persona.
func NewController(api *APIClient, speech Speech) *Controller {
	return &Controller{
		api:    api,
		speech: speech,
		role:   models.DefaultRoles[0],
	}
}

// Hydrate seeds the local list from the backend's persisted history.
// It runs at most once per controller; call it again only after the
// identity changes (i.e. on a fresh controller).
func (c *Controller) Hydrate(ctx context.Context) error {
	c.mu.Lock()
	if c.hydrated {
		c.mu.Unlock()
		return nil
	}
	c.hydrated = true
	c.mu.Unlock()

	history, err := c.api.History(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Prior history goes in front of anything appended while fetching.
	c.messages = append(history, c.messages...)
	return nil
}

// Send runs one send/receive cycle. Blank input is a no-op with no
// network call. While a reply is outstanding further sends fail with
// ErrReplyPending. Every other failure is reconciled into a visible
// error entry, so the returned error is nil for a completed cycle even
// when the reply is a synthesized failure placeholder.
func (c *Controller) Send(ctx context.Context, text string) (models.Message, error) {
	trimmed := trimMessage(text)
	if trimmed == "" {
		return models.Message{}, nil
	}

	c.mu.Lock()
	if c.typing {
		c.mu.Unlock()
		return models.Message{}, ErrReplyPending
	}
	c.typing = true
	role := c.role
	userMsg := models.NewMessage(models.SenderUser, trimmed)
	c.messages = append(c.messages, userMsg)
	c.mu.Unlock()

	reply, err := c.api.SendMessage(ctx, trimmed, role)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.typing = false

	if err != nil {
		errMsg := models.NewErrorMessage(errorText(err))
		c.messages = append(c.messages, errMsg)
		return errMsg, nil
	}

	botMsg := models.NewMessage(models.SenderBot, reply)
	c.messages = append(c.messages, botMsg)
	if c.speech != nil {
		go c.speech.Speak(reply)
	}
	return botMsg, nil
}

// SendVoice captures a transcript through the speech capability and
// sends it as a regular message.
func (c *Controller) SendVoice(ctx context.Context) (models.Message, error) {
	if c.speech == nil {
		return models.Message{}, errors.New("speech capability not available")
	}
	transcript, err := c.speech.Transcribe(ctx)
	if err != nil {
		log.Printf("speech transcription failed: %v", err)
		return models.Message{}, err
	}
	return c.Send(ctx, transcript)
}

// Clear wipes the local list and truncates the backend record. The
// local wipe happens regardless of the backend outcome.
func (c *Controller) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
	return c.api.ClearHistory(ctx)
}

// Messages returns a copy of the current ordered list.
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Typing reports whether a reply is outstanding.
func (c *Controller) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

// SetRole selects the persona transmitted with subsequent sends. A role
// change never relabels earlier messages.
func (c *Controller) SetRole(role string) {
	trimmed := trimMessage(role)
	if trimmed == "" {
		return
	}
	c.mu.Lock()
	c.role = trimmed
	c.mu.Unlock()
}

// Role returns the persona currently in effect.
func (c *Controller) Role() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

func trimMessage(s string) string {
	return strings.TrimSpace(s)
}

func errorText(err error) string {
	switch {
	case errors.Is(err, ErrRequestTimeout):
		return "Request timed out. Please try again."
	case errors.Is(err, ErrServerUnreachable):
		return "Server unreachable. Please try again."
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "An error occurred."
}
