package skill

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Intent names of the interaction model.
const (
	AddItemIntent    = "AddItemIntent"
	ListItemsIntent  = "ListItemsIntent"
	RemoveItemIntent = "RemoveItemIntent"
	CheckItemIntent  = "CheckItemIntent"
	HelpIntent       = "AMAZON.HelpIntent"
	CancelIntent     = "AMAZON.CancelIntent"
	StopIntent       = "AMAZON.StopIntent"
	NoIntent         = "AMAZON.NoIntent"
)

// itemSlot is the slot carrying the item name in the list intents.
const itemSlot = "item"

type launchHandler struct{ s *Skill }

func (h launchHandler) CanHandle(in *Input) bool { return in.RequestType() == LaunchRequest }

func (h launchHandler) Handle(_ context.Context, in *Input) (*Response, error) {
	h.s.opened.Store(true)
	msg := in.T.Text("launch.welcome")
	return NewResponseBuilder().Speak(msg).Ask(msg).Response(), nil
}

// followUp speaks msg and, inside an opened session, keeps listening with
// an "anything else?" reprompt.
func (s *Skill) followUp(in *Input, msg string) *ResponseBuilder {
	b := NewResponseBuilder().Speak(msg)
	if s.opened.Load() {
		b.Ask(in.T.Text("prompt.anything_else"))
	}
	return b
}

// askFor asks for a missing item name.
func askFor(in *Input, key string) *Response {
	msg := in.T.Text(key)
	return NewResponseBuilder().Speak(msg).Ask(msg).Response()
}

type addItemHandler struct {
	s     *Skill
	lists ListService
}

func (h addItemHandler) CanHandle(in *Input) bool { return in.IsIntent(AddItemIntent) }

func (h addItemHandler) Handle(ctx context.Context, in *Input) (*Response, error) {
	item := capitalize(strings.TrimSpace(in.Slot(itemSlot)))
	if item == "" {
		return askFor(in, "add.missing_item"), nil
	}

	if err := h.lists.AddItem(ctx, item); err != nil {
		in.Logger.Error("adding item failed", "item", item, "error", err)
		return h.s.followUp(in, in.T.Text("error.something_wrong")).Response(), nil
	}
	msg := in.T.Text("add.done", "item", item)
	if h.s.opened.Load() {
		msg += " " + in.T.Text("prompt.anything_else")
	}
	return h.s.followUp(in, msg).Response(), nil
}

type listItemsHandler struct {
	s     *Skill
	lists ListService
}

func (h listItemsHandler) CanHandle(in *Input) bool { return in.IsIntent(ListItemsIntent) }

func (h listItemsHandler) Handle(ctx context.Context, in *Input) (*Response, error) {
	items, err := h.lists.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	var msg string
	switch len(items) {
	case 0:
		msg = in.T.Text("list.empty")
	case 1:
		msg = in.T.Text("list.one", "item", items[0])
	default:
		msg = in.T.Text("list.many", "count", strconv.Itoa(len(items)), "items", in.T.Join(items))
	}

	b := h.s.followUp(in, msg)
	if len(items) > 0 {
		b.SimpleCard(in.T.Text("list.card_title"), strings.Join(items, "\n"))
	}
	return b.Response(), nil
}

type removeItemHandler struct {
	s     *Skill
	lists ListService
}

func (h removeItemHandler) CanHandle(in *Input) bool { return in.IsIntent(RemoveItemIntent) }

func (h removeItemHandler) Handle(ctx context.Context, in *Input) (*Response, error) {
	item := strings.TrimSpace(in.Slot(itemSlot))
	if item == "" {
		return askFor(in, "remove.missing_item"), nil
	}

	res, err := h.lists.RemoveItem(ctx, item)
	var msg string
	switch {
	case err != nil:
		in.Logger.Error("removing item failed", "item", item, "error", err)
		msg = in.T.Text("error.something_wrong")
	case res.Matched == 0:
		msg = in.T.Text("remove.not_found", "item", item)
	case res.Partial():
		msg = in.T.Text("remove.partial", "item", item)
	default:
		msg = in.T.Text("remove.done", "item", item)
	}
	return h.s.followUp(in, msg).Response(), nil
}

type checkItemHandler struct {
	s     *Skill
	lists ListService
}

func (h checkItemHandler) CanHandle(in *Input) bool { return in.IsIntent(CheckItemIntent) }

func (h checkItemHandler) Handle(ctx context.Context, in *Input) (*Response, error) {
	item := strings.TrimSpace(in.Slot(itemSlot))
	if item == "" {
		return askFor(in, "check.missing_item"), nil
	}

	ids, err := h.lists.CheckItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("checking item: %w", err)
	}
	key := "check.no"
	if len(ids) > 0 {
		key = "check.yes"
	}
	return h.s.followUp(in, in.T.Text(key, "item", item)).Response(), nil
}

type helpHandler struct{}

func (helpHandler) CanHandle(in *Input) bool { return in.IsIntent(HelpIntent) }

func (helpHandler) Handle(_ context.Context, in *Input) (*Response, error) {
	msg := in.T.Text("help")
	return NewResponseBuilder().Speak(msg).Ask(msg).Response(), nil
}

// cancelOrStopHandler also handles "no" to the "anything else?" prompt.
type cancelOrStopHandler struct{ s *Skill }

func (h cancelOrStopHandler) CanHandle(in *Input) bool {
	return in.IsIntent(CancelIntent, StopIntent, NoIntent)
}

func (h cancelOrStopHandler) Handle(_ context.Context, in *Input) (*Response, error) {
	// The platform sends no SessionEndedRequest when the skill ends the
	// session itself.
	h.s.opened.Store(false)
	return NewResponseBuilder().Speak(in.T.Text("stop.bye")).Response(), nil
}

type sessionEndedHandler struct{ s *Skill }

func (h sessionEndedHandler) CanHandle(in *Input) bool {
	return in.RequestType() == SessionEndedRequest
}

func (h sessionEndedHandler) Handle(_ context.Context, in *Input) (*Response, error) {
	h.s.opened.Store(false)
	req := in.Envelope.Request
	if req.Error != nil {
		in.Logger.Warn("session ended with error", "reason", req.Reason, "error_type", req.Error.Type, "error", req.Error.Message)
	} else {
		in.Logger.Debug("session ended", "reason", req.Reason)
	}
	return NewResponseBuilder().Response(), nil
}

// intentReflectorHandler repeats the name of any intent nothing else
// handled. It helps when testing the interaction model.
type intentReflectorHandler struct{}

func (intentReflectorHandler) CanHandle(in *Input) bool { return in.RequestType() == IntentRequest }

func (intentReflectorHandler) Handle(_ context.Context, in *Input) (*Response, error) {
	return NewResponseBuilder().Speak(in.T.Text("reflect", "intent", in.IntentName())).Response(), nil
}

type catchAllHandler struct{}

func (catchAllHandler) CanHandle(*Input, error) bool { return true }

func (catchAllHandler) Handle(_ context.Context, in *Input, err error) (*Response, error) {
	in.Logger.Error("request failed", "error", err)
	msg := in.T.Text("error.generic")
	return NewResponseBuilder().Speak(msg).Ask(msg).Response(), nil
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r := []rune(strings.ToLower(s))
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
