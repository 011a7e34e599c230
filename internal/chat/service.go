package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"rolechat/internal/history"
	"rolechat/internal/models"
)

// Output and latency ceilings are deliberate constants, not
// configuration: unbounded completions are a cost and latency hazard.
const (
	maxOutputTokens = 500
	temperature     = float32(0.7)
	requestTimeout  = 30 * time.Second
)

// Service turns one (message, role) pair into one model reply and, on
// success, records both sides of the exchange in the history store.
type Service struct {
	model       model.BaseChatModel
	store       history.Store
	development bool
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

func NewService(chatModel model.BaseChatModel, store history.Store, development bool) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat: model must not be nil")
	}
	if store == nil {
		return nil, errors.New("chat: history store must not be nil")
	}
	return &Service{model: chatModel, store: store, development: development}, nil
}

// Development reports whether error detail may be exposed to clients.
func (s *Service) Development() bool {
	return s.development
}

// SendMessage resolves one reply for the scope. The role is embedded
// into a deterministic system instruction; free-text roles work the same
// as the enumerated ones. Failures come back as *Error.
func (s *Service) SendMessage(ctx context.Context, scope, message, role string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", newError(ErrorInvalidInput, "empty_message", nil)
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return "", newError(ErrorInvalidInput, "missing_role", nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	out, err := s.model.Generate(callCtx,
		[]*schema.Message{
			schema.SystemMessage(systemPrompt(role)),
			schema.UserMessage(message),
		},
		model.WithMaxTokens(maxOutputTokens),
		model.WithTemperature(temperature),
	)
	if err != nil {
		return "", classifyUpstream(err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", newError(ErrorUpstream, "malformed_response", errors.New("provider returned no content"))
	}
	reply := out.Content

	// Persist only completed exchanges: user message first, reply second.
	if err := s.store.Append(ctx, scope, models.NewMessage(models.SenderUser, message)); err != nil {
		return "", newError(ErrorStorage, "history_append_user", err)
	}
	if err := s.store.Append(ctx, scope, models.NewMessage(models.SenderBot, reply)); err != nil {
		return "", newError(ErrorStorage, "history_append_reply", err)
	}
	return reply, nil
}

// History returns the scope's full ordered record.
func (s *Service) History(ctx context.Context, scope string) ([]models.Message, error) {
	messages, err := s.store.Read(ctx, scope)
	if err != nil {
		return nil, newError(ErrorStorage, "history_read", err)
	}
	return messages, nil
}

// ClearHistory truncates the scope's record.
func (s *Service) ClearHistory(ctx context.Context, scope string) error {
	if err := s.store.Clear(ctx, scope); err != nil {
		return newError(ErrorStorage, "history_clear", err)
	}
	return nil
}

func systemPrompt(role string) string {
	return fmt.Sprintf("You are a %s. Be helpful, friendly, and respond appropriately to your role.", role)
}

func classifyUpstream(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(ErrorUpstreamTimeout, "provider_timeout", err)
	}
	if status, ok := upstreamStatusCode(err); ok {
		switch {
		case status == 401 || status == 403:
			return newError(ErrorUpstreamAuth, "provider_rejected_credentials", err)
		case status == 429:
			return newError(ErrorUpstreamRateLimit, "provider_rate_limited", err)
		case status >= 400 && status < 500:
			return newError(ErrorUpstreamBadRequest, "provider_bad_request", err)
		}
		return newError(ErrorUpstream, "provider_error", err)
	}

	// Provider SDKs do not all expose status codes; fall back to the
	// message text.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid api key") || strings.Contains(msg, "authentication"):
		return newError(ErrorUpstreamAuth, "provider_rejected_credentials", err)
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota"):
		return newError(ErrorUpstreamRateLimit, "provider_rate_limited", err)
	case strings.Contains(msg, "400") || strings.Contains(msg, "bad request"):
		return newError(ErrorUpstreamBadRequest, "provider_bad_request", err)
	}
	return newError(ErrorUpstream, "provider_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
