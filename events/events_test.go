package events

import (
	"testing"
)

var (
	_ Event = (*Trace)(nil)
	_ Event = (*ResolveStart)(nil)
	_ Event = (*Pass)(nil)
	_ Event = (*Dispatch)(nil)
	_ Event = (*UnknownCommand)(nil)
	_ Event = (*CommandError)(nil)
	_ Event = (*CacheHit)(nil)
	_ Event = (*FetchError)(nil)
	_ Event = (*ResolveDone)(nil)
)

func TestEvents(t *testing.T) {
	var event EventHandler
	event = func(e Event) {
		switch e.(type) {
		case Trace, ResolveStart, Pass, Dispatch, UnknownCommand,
			CommandError, CacheHit, FetchError, ResolveDone:
		default:
			t.Errorf("Bad event type: %T", e)
		}
	}
	event(Trace{})
	event(Dispatch{})
	event(ResolveDone{})
}
