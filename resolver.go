package subst

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/subst-go/subst/events"
)

// errNilEntry guards against a Fetcher returning neither an entry nor an
// error; the match degrades to its default like any other fetch failure.
var errNilEntry = errors.New("fetch returned no entry")

// ResolverInput is used as input when creating the Resolver.
type ResolverInput struct {
	// Registry supplies the command handlers. It is owned by the caller
	// and held by reference, never copied; registrations made after the
	// Resolver is created are visible to it. A nil Registry is treated as
	// an empty one.
	Registry *Registry

	// DisableCache turns off per-call memoization of structured fetches.
	DisableCache bool

	// CacheFailures keeps a failed structured fetch cached for the
	// remainder of the call instead of retrying it on every reference.
	CacheFailures bool

	// EventHandler receives resolution lifecycle events. Optional.
	EventHandler events.EventHandler
}

// Resolver interpolates placeholder expressions against the handlers in
// its Registry. Compiling the grammar at construction is the only failure
// point; Interpolate itself always returns a string. A single Resolver is
// safe for concurrent use.
type Resolver struct {
	matcher  *matcher
	registry *Registry

	cache         bool
	cacheFailures bool
	events        events.EventHandler
}

// NewResolver creates a Resolver around the given registry.
func NewResolver(i ResolverInput) (*Resolver, error) {
	m, err := newMatcher()
	if err != nil {
		return nil, err
	}
	registry := i.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Resolver{
		matcher:       m,
		registry:      registry,
		cache:         !i.DisableCache,
		cacheFailures: i.CacheFailures,
		events:        i.EventHandler,
	}, nil
}

// Interpolate resolves every placeholder in s and returns the fully
// substituted text. It never fails: unknown commands, unresolvable paths
// and handler failures all degrade to the placeholder's default value or
// the empty string.
//
// Resolution runs scan/replace passes to a fixed point. Each pass scans
// the working text once, dispatches every non-escaped match and replaces
// all occurrences of each match's full text with its resolved value, so
// nested placeholders resolve inside out across passes. A final pass then
// collapses every escaped $${...} to literal ${...} text, which is not
// reprocessed.
func (r *Resolver) Interpolate(ctx context.Context, s string) string {
	id := uuid.NewString()
	r.event(events.ResolveStart{ID: id})

	var store *Store
	if r.cache {
		store = NewStore()
	}

	passes := 0
	for {
		matches := r.matcher.findAll(s)
		if len(matches) == 0 {
			break
		}
		passes++
		r.event(events.Pass{ID: id, Number: passes, Matches: len(matches)})

		escapedOnly := true
		for _, ph := range matches {
			if ph.Escaped {
				continue
			}
			escapedOnly = false
			s = strings.ReplaceAll(s, ph.Full, r.resolve(ctx, id, store, ph))
		}

		// A pass of nothing but escape markers can make no progress; stop
		// here rather than rescanning them forever.
		if escapedOnly {
			break
		}
	}

	s = r.unescape(s)
	r.event(events.ResolveDone{ID: id, Passes: passes})
	return s
}

// resolve produces the substitution value for one non-escaped match.
func (r *Resolver) resolve(ctx context.Context, id string, store *Store, ph Placeholder) string {
	// Trivial ${} matches carry nothing to dispatch.
	if ph.Command == "" {
		return ""
	}

	in := Input{
		Command: ph.Command,
		Path:    ph.Path,
		Field:   ph.Field,
		Default: ph.Default,
	}

	g, ok := r.registry.lookup(in.Command)
	if !ok {
		// Nothing is invoked for an unknown command; the placeholder's own
		// default is all it can resolve to.
		r.event(events.UnknownCommand{ID: id, Command: in.Command})
		return in.Default
	}

	r.event(events.Dispatch{ID: id, Command: in.Command, Path: in.Path})

	g.Lock()
	defer g.Unlock()

	if f, ok := g.command.(Fetcher); ok {
		return r.fetch(ctx, id, store, f, in)
	}

	out, err := g.command.Process(ctx, in)
	if err != nil {
		log.Printf("[WARN] (resolver) %s: %v", in.Command, err)
		r.event(events.CommandError{
			ID: id, Command: in.Command, Path: in.Path, Error: err,
		})
		return in.Default
	}
	return out
}

// fetch resolves a structured provider through the per-call entry cache,
// fetching at most once per (command, path) and projecting the requested
// field per match. Whether a failed fetch is retried on the next reference
// is the CacheFailures policy.
func (r *Resolver) fetch(ctx context.Context, id string, store *Store, f Fetcher, in Input) string {
	var res Result
	var cached bool
	if store != nil {
		res, cached = store.Recall(in.Command, in.Path)
	}

	if cached {
		r.event(events.CacheHit{ID: id, Command: in.Command, Path: in.Path})
	} else {
		res.Entry, res.Err = f.Fetch(ctx, in)
		if res.Err == nil && res.Entry == nil {
			res.Err = errNilEntry
		}
		if store != nil && (res.Err == nil || r.cacheFailures) {
			store.Save(in.Command, in.Path, res)
		}
	}

	if res.Err != nil {
		log.Printf("[WARN] (resolver) %s: %v", in.Command, res.Err)
		r.event(events.FetchError{
			ID: id, Command: in.Command, Path: in.Path, Error: res.Err,
		})
		return in.Default
	}

	if v, ok := res.Entry.Project(in.Field); ok {
		return v
	}
	return in.Default
}

// unescape strips the escape marker from every remaining escaped match,
// turning $${...} into the literal text ${...}.
func (r *Resolver) unescape(s string) string {
	for _, ph := range r.matcher.findAll(s) {
		if !ph.Escaped {
			continue
		}
		s = strings.ReplaceAll(s, ph.Full, strings.TrimPrefix(ph.Full, "$"))
	}
	return s
}

func (r *Resolver) event(e events.Event) {
	if r.events != nil {
		r.events(e)
	}
}
