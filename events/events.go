package events

// EventHandler is the interface of the call back function for receiving
// events.
type EventHandler func(Event)

// Event is used to type restrict the Events
type Event interface {
	isEvent()
}

// Trace is useful to see some details of what's going on
type Trace struct {
	ID      string
	Message string
	event
}

// ResolveStart marks the beginning of one interpolation call. ID identifies
// the call in all subsequent events.
type ResolveStart struct {
	ID string
	event
}

// Pass reports one scan/replace pass over the working text.
type Pass struct {
	ID      string
	Number  int
	Matches int
	event
}

// Dispatch indicates a placeholder is being handed to its command handler.
type Dispatch struct {
	ID      string
	Command string
	Path    string
	event
}

// UnknownCommand indicates a placeholder named a command with no registered
// handler; it resolved to its default value.
type UnknownCommand struct {
	ID      string
	Command string
	event
}

// CommandError indicates a handler failed internally and the placeholder
// degraded to its default value.
type CommandError struct {
	ID      string
	Command string
	Path    string
	Error   error
	event
}

// CacheHit indicates a structured fetch was served from the per-call entry
// cache.
type CacheHit struct {
	ID      string
	Command string
	Path    string
	event
}

// FetchError indicates a structured fetch failed and the placeholder
// degraded to its default value.
type FetchError struct {
	ID      string
	Command string
	Path    string
	Error   error
	event
}

// ResolveDone marks the end of one interpolation call.
type ResolveDone struct {
	ID     string
	Passes int
	event
}

// Event interface type fulfillment
type event struct{}

func (event) isEvent() {}
