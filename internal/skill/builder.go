package skill

// ResponseBuilder assembles a Response.
type ResponseBuilder struct {
	resp Response
}

// NewResponseBuilder returns a builder for an empty response.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{}
}

// Speak sets the spoken output.
func (b *ResponseBuilder) Speak(text string) *ResponseBuilder {
	b.resp.OutputSpeech = &OutputSpeech{Type: "PlainText", Text: text}
	return b
}

// Ask sets the reprompt and keeps the session open for an answer.
func (b *ResponseBuilder) Ask(text string) *ResponseBuilder {
	b.resp.Reprompt = &Reprompt{OutputSpeech: OutputSpeech{Type: "PlainText", Text: text}}
	keepOpen := false
	b.resp.ShouldEndSession = &keepOpen
	return b
}

// SimpleCard attaches a text card for the companion app.
func (b *ResponseBuilder) SimpleCard(title, content string) *ResponseBuilder {
	b.resp.Card = &Card{Type: "Simple", Title: title, Content: content}
	return b
}

// Response returns the built response.
func (b *ResponseBuilder) Response() *Response {
	r := b.resp
	return &r
}
