package ports

// Responder produces automatic replies for a listening endpoint.
// Respond is called on the scheduler thread for every frame read; returning
// ok=false sends nothing.
type Responder interface {
	Respond(message string) (reply string, ok bool)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(message string) (string, bool)

// Respond calls f(message).
func (f ResponderFunc) Respond(message string) (string, bool) { return f(message) }
