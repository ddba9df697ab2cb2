// Package skill implements the voice-skill request dispatcher.
//
// The skill receives request envelopes from transports, picks the first
// registered handler that accepts the request, and returns the response
// envelope it builds. Handler errors, panics, and requests no handler
// accepts go through the exception handlers; the catch-all exception
// handler makes sure the user always hears an answer.
package skill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nadzzz/owlskill/internal/kitchenowl"
	"github.com/nadzzz/owlskill/internal/locale"
	"github.com/nadzzz/owlskill/internal/metrics"
)

var (
	// ErrInvalidRequest is returned for envelopes without a request type.
	ErrInvalidRequest = errors.New("invalid request envelope")

	// ErrNoHandler is raised when no handler accepts a request.
	ErrNoHandler = errors.New("no handler for request")
)

// ListService is the shopping list the intents operate on.
type ListService interface {
	ListItems(ctx context.Context) ([]string, error)
	AddItem(ctx context.Context, name string) error
	RemoveItem(ctx context.Context, name string) (kitchenowl.RemoveResult, error)
	CheckItem(ctx context.Context, name string) ([]int64, error)
}

// Input is what a handler gets to look at.
type Input struct {
	Envelope *RequestEnvelope
	T        *locale.Translator
	Logger   *slog.Logger
}

// RequestType returns the request type, e.g. "IntentRequest".
func (in *Input) RequestType() string { return in.Envelope.Request.Type }

// IntentName returns the intent name, or "" for non-intent requests.
func (in *Input) IntentName() string {
	if in.Envelope.Request.Intent == nil {
		return ""
	}
	return in.Envelope.Request.Intent.Name
}

// IsIntent reports whether the request is an IntentRequest for one of names.
func (in *Input) IsIntent(names ...string) bool {
	if in.RequestType() != IntentRequest {
		return false
	}
	got := in.IntentName()
	for _, n := range names {
		if got == n {
			return true
		}
	}
	return false
}

// Slot returns the value of the named slot, or "".
func (in *Input) Slot(name string) string {
	intent := in.Envelope.Request.Intent
	if intent == nil {
		return ""
	}
	return intent.Slots[name].Value
}

// Handler answers the requests it accepts.
type Handler interface {
	CanHandle(in *Input) bool
	Handle(ctx context.Context, in *Input) (*Response, error)
}

// ExceptionHandler turns a failed request into a response.
type ExceptionHandler interface {
	CanHandle(in *Input, err error) bool
	Handle(ctx context.Context, in *Input, err error) (*Response, error)
}

// Skill is the dispatcher. One Skill serves all transports.
type Skill struct {
	catalog           *locale.Catalog
	handlers          []Handler
	exceptionHandlers []ExceptionHandler

	// opened is set while the user is in a session started with a launch
	// request. It is process-wide.
	opened atomic.Bool
}

// New creates a skill with the shopping-list handlers registered.
func New(lists ListService, catalog *locale.Catalog) *Skill {
	s := &Skill{catalog: catalog}
	s.handlers = []Handler{
		launchHandler{s},
		addItemHandler{s, lists},
		listItemsHandler{s, lists},
		removeItemHandler{s, lists},
		checkItemHandler{s, lists},
		helpHandler{},
		cancelOrStopHandler{s},
		sessionEndedHandler{s},
		intentReflectorHandler{}, // last: it accepts any intent
	}
	s.exceptionHandlers = []ExceptionHandler{catchAllHandler{}}
	return s
}

// Opened reports whether a launch request opened the current session.
func (s *Skill) Opened() bool { return s.opened.Load() }

// Invoke processes one request envelope.
// This function is passed as the transport.Handler to each transport.
func (s *Skill) Invoke(ctx context.Context, env *RequestEnvelope) (*ResponseEnvelope, error) {
	if env == nil || env.Request.Type == "" {
		return nil, ErrInvalidRequest
	}

	start := time.Now()
	req := env.Request

	in := &Input{
		Envelope: env,
		T:        s.catalog.Translator(req.Locale),
	}
	in.Logger = slog.With("request_id", req.RequestID, "request_type", req.Type, "intent", in.IntentName(), "locale", in.T.Locale())
	in.Logger.Debug("dispatch started")

	outcome := "ok"
	resp, err := s.dispatch(ctx, in)
	if err != nil {
		outcome = "error"
		if errors.Is(err, ErrNoHandler) {
			outcome = "unhandled"
		}
		resp, err = s.handleException(ctx, in, err)
	}

	metrics.IntentsTotal.WithLabelValues(metricLabel(in), outcome).Inc()
	metrics.DispatchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		in.Logger.Error("dispatch failed", "error", err)
		return nil, err
	}

	in.Logger.Info("dispatch complete", "outcome", outcome, "duration", time.Since(start))

	out := &ResponseEnvelope{Version: "1.0", Response: resp}
	if env.Session != nil {
		out.SessionAttributes = env.Session.Attributes
	}
	return out, nil
}

// dispatch runs the first handler that accepts the request. A panicking
// handler is reported as an error.
func (s *Skill) dispatch(ctx context.Context, in *Input) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	for _, h := range s.handlers {
		if !h.CanHandle(in) {
			continue
		}
		resp, err = h.Handle(ctx, in)
		if err != nil {
			return nil, err
		}
		return resp, nil
	}
	return nil, fmt.Errorf("%w: type=%s intent=%s", ErrNoHandler, in.RequestType(), in.IntentName())
}

// otherLabel stands in for intents and request types outside the
// interaction model, which callers may name freely.
const otherLabel = "other"

var knownLabels = map[string]bool{
	LaunchRequest:       true,
	SessionEndedRequest: true,
	AddItemIntent:       true,
	ListItemsIntent:     true,
	RemoveItemIntent:    true,
	CheckItemIntent:     true,
	HelpIntent:          true,
	CancelIntent:        true,
	StopIntent:          true,
	NoIntent:            true,
}

// metricLabel returns the intent name, or the request type for non-intent
// requests, if it is part of the interaction model.
func metricLabel(in *Input) string {
	label := in.RequestType()
	if label == IntentRequest {
		label = in.IntentName()
	}
	if !knownLabels[label] {
		return otherLabel
	}
	return label
}

func (s *Skill) handleException(ctx context.Context, in *Input, cause error) (*Response, error) {
	for _, h := range s.exceptionHandlers {
		if h.CanHandle(in, cause) {
			return h.Handle(ctx, in, cause)
		}
	}
	return nil, cause
}
