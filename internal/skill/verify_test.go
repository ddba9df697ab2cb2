package skill

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEnvelope = `{
  "version": "1.0",
  "session": {
    "new": false,
    "sessionId": "amzn1.echo-api.session.1",
    "application": {"applicationId": "amzn1.ask.skill.session"},
    "user": {"userId": "amzn1.ask.account.1"}
  },
  "context": {
    "System": {
      "application": {"applicationId": "amzn1.ask.skill.owl"},
      "user": {"userId": "amzn1.ask.account.1"}
    }
  },
  "request": {
    "type": "IntentRequest",
    "requestId": "amzn1.echo-api.request.1",
    "timestamp": "2026-10-18T12:00:00Z",
    "locale": "en-US",
    "intent": {
      "name": "AddItemIntent",
      "confirmationStatus": "NONE",
      "slots": {"item": {"name": "item", "value": "milk", "confirmationStatus": "NONE"}}
    }
  }
}`

func decodeSample(t *testing.T) *RequestEnvelope {
	t.Helper()
	var env RequestEnvelope
	require.NoError(t, json.Unmarshal([]byte(sampleEnvelope), &env))
	return &env
}

func TestEnvelopeDecoding(t *testing.T) {
	env := decodeSample(t)

	assert.Equal(t, "amzn1.ask.skill.owl", env.ApplicationID(), "context wins over session")
	in := &Input{Envelope: env}
	assert.True(t, in.IsIntent(AddItemIntent))
	assert.Equal(t, "milk", in.Slot("item"))
	assert.Equal(t, "", in.Slot("quantity"))

	ts, err := env.Request.Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), ts)

	env.Context = nil
	assert.Equal(t, "amzn1.ask.skill.session", env.ApplicationID())
}

func TestVerifier(t *testing.T) {
	now := func() time.Time { return time.Date(2026, 10, 18, 12, 1, 0, 0, time.UTC) }

	t.Run("accepts matching request", func(t *testing.T) {
		v := Verifier{ApplicationID: "amzn1.ask.skill.owl", Tolerance: 150 * time.Second, Now: now}
		assert.NoError(t, v.Verify(decodeSample(t)))
	})

	t.Run("rejects other application", func(t *testing.T) {
		v := Verifier{ApplicationID: "amzn1.ask.skill.other"}
		assert.ErrorIs(t, v.Verify(decodeSample(t)), ErrApplicationMismatch)
	})

	t.Run("rejects stale request", func(t *testing.T) {
		v := Verifier{Tolerance: 30 * time.Second, Now: now}
		assert.ErrorIs(t, v.Verify(decodeSample(t)), ErrStaleRequest)
	})

	t.Run("rejects request from the future", func(t *testing.T) {
		env := decodeSample(t)
		env.Request.Timestamp = "2026-10-18T12:10:00Z"
		v := Verifier{Tolerance: 150 * time.Second, Now: now}
		assert.ErrorIs(t, v.Verify(env), ErrStaleRequest)
	})

	t.Run("rejects unparsable timestamp", func(t *testing.T) {
		env := decodeSample(t)
		env.Request.Timestamp = "yesterday"
		v := Verifier{Tolerance: time.Minute, Now: now}
		assert.ErrorIs(t, v.Verify(env), ErrStaleRequest)
	})

	t.Run("zero value accepts anything well-formed", func(t *testing.T) {
		env := decodeSample(t)
		env.Request.Timestamp = ""
		assert.NoError(t, Verifier{}.Verify(env))
	})

	t.Run("rejects empty request", func(t *testing.T) {
		assert.ErrorIs(t, Verifier{}.Verify(&RequestEnvelope{}), ErrInvalidRequest)
	})
}

func TestResponseBuilder(t *testing.T) {
	r := NewResponseBuilder().Speak("hi").Response()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"outputSpeech":{"type":"PlainText","text":"hi"}}`, string(data))

	r = NewResponseBuilder().Speak("hi").Ask("still there?").SimpleCard("T", "C").Response()
	data, err = json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"outputSpeech":{"type":"PlainText","text":"hi"},
		"reprompt":{"outputSpeech":{"type":"PlainText","text":"still there?"}},
		"card":{"type":"Simple","title":"T","content":"C"},
		"shouldEndSession":false
	}`, string(data))
}
