package skill

import (
	"fmt"
	"time"
)

// Request types sent by the voice platform.
const (
	LaunchRequest       = "LaunchRequest"
	IntentRequest       = "IntentRequest"
	SessionEndedRequest = "SessionEndedRequest"
)

// RequestEnvelope is the JSON body the voice platform posts for every user
// interaction.
// See https://developer.amazon.com/en-US/docs/alexa/custom-skills/request-and-response-json-reference.html
type RequestEnvelope struct {
	Version string   `json:"version"`
	Session *Session `json:"session,omitempty"`
	Context *Context `json:"context,omitempty"`
	Request Request  `json:"request"`
}

// Session describes the conversation the request belongs to. It is absent
// for requests made outside a session.
type Session struct {
	New         bool           `json:"new"`
	SessionID   string         `json:"sessionId"`
	Application Application    `json:"application"`
	User        User           `json:"user"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// Context carries the device and application state.
type Context struct {
	System System `json:"System"`
}

// System identifies the calling application and user.
type System struct {
	Application Application `json:"application"`
	User        User        `json:"user"`
}

// Application identifies the skill the request was made for.
type Application struct {
	ApplicationID string `json:"applicationId"`
}

// User identifies the account of the person speaking.
type User struct {
	UserID string `json:"userId"`
}

// Request is the part of the envelope that varies by request type.
type Request struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
	Locale    string `json:"locale,omitempty"`

	// Intent is set for IntentRequest.
	Intent *Intent `json:"intent,omitempty"`

	// Reason and Error are set for SessionEndedRequest.
	Reason string        `json:"reason,omitempty"`
	Error  *RequestError `json:"error,omitempty"`
}

// Time parses the request timestamp.
func (r Request) Time() (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing request timestamp %q: %w", r.Timestamp, err)
	}
	return ts, nil
}

// Intent is what the platform understood the user asked for.
type Intent struct {
	Name               string          `json:"name"`
	ConfirmationStatus string          `json:"confirmationStatus,omitempty"`
	Slots              map[string]Slot `json:"slots,omitempty"`
}

// Slot is a named value extracted from the utterance.
type Slot struct {
	Name               string `json:"name"`
	Value              string `json:"value,omitempty"`
	ConfirmationStatus string `json:"confirmationStatus,omitempty"`
}

// RequestError explains why a session ended with reason ERROR.
type RequestError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ApplicationID returns the application id the request was made for,
// preferring the context over the session.
func (e *RequestEnvelope) ApplicationID() string {
	if e.Context != nil && e.Context.System.Application.ApplicationID != "" {
		return e.Context.System.Application.ApplicationID
	}
	if e.Session != nil {
		return e.Session.Application.ApplicationID
	}
	return ""
}

// ResponseEnvelope is the JSON body returned to the voice platform.
type ResponseEnvelope struct {
	Version           string         `json:"version"`
	SessionAttributes map[string]any `json:"sessionAttributes,omitempty"`
	Response          *Response      `json:"response"`
}

// Response is what the device says and shows, and whether it keeps listening.
type Response struct {
	OutputSpeech *OutputSpeech `json:"outputSpeech,omitempty"`
	Reprompt     *Reprompt     `json:"reprompt,omitempty"`
	Card         *Card         `json:"card,omitempty"`

	// ShouldEndSession is omitted unless a reprompt keeps the session open;
	// the platform then decides.
	ShouldEndSession *bool `json:"shouldEndSession,omitempty"`
}

// OutputSpeech is spoken text.
type OutputSpeech struct {
	Type string `json:"type"` // always "PlainText"
	Text string `json:"text"`
}

// Reprompt is spoken if the user doesn't answer.
type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

// Card is shown in the companion app.
type Card struct {
	Type    string `json:"type"` // always "Simple"
	Title   string `json:"title"`
	Content string `json:"content"`
}
