package product

import (
	"errors"
	"fmt"
	"sync"

	"shelfscan/internal/inferring"
)

// Resolver is the cascade the coordinator invokes, at most once per distinct
// code
type Resolver interface {
	Resolve(input ScanInput) (*AnalysisResult, error)
}

// Session is the ephemeral per-screen scan state. It is created when a scan
// screen opens and reset when the user cancels, a result is accepted, or an
// unrecoverable error occurs. Only the Coordinator mutates it.
type Session struct {
	LastResolvedCode string
	InFlight         bool
}

// FailureKind classifies unrecoverable resolution failures for the
// presentation layer
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureInvalidInput
	FailureNotConfigured
	FailureUpstream
	FailureUnknown
)

// String returns the failure kind name
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "None"
	case FailureInvalidInput:
		return "InvalidInput"
	case FailureNotConfigured:
		return "NotConfigured"
	case FailureUpstream:
		return "UpstreamUnavailable"
	default:
		return "Unknown"
	}
}

// ScanOutcome is the tagged result of handling one scan event
type ScanOutcome struct {
	// Dropped is true when the event was ignored: a resolution was already in
	// flight, or the code matched the last resolved one
	Dropped bool
	// Result is set when the cascade reached a terminal state; whether manual
	// entry is needed is carried on the result itself
	Result *AnalysisResult
	// Failure classifies Err when the cascade could not run to completion
	Failure FailureKind
	Err     error
}

// Coordinator maps raw scan and manual-entry events onto at most one in-flight
// cascade invocation per distinct code, and classifies the end state for the
// presentation layer
type Coordinator struct {
	resolver Resolver
	store    ItemStore

	mu      sync.Mutex
	session Session
}

// NewCoordinator creates a Coordinator with a fresh session
func NewCoordinator(resolver Resolver, store ItemStore) *Coordinator {
	return &Coordinator{
		resolver: resolver,
		store:    store,
	}
}

// Session returns a snapshot of the current session state
func (c *Coordinator) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Reset abandons the current session. An in-flight resolution is allowed to
// complete; its result is simply discarded by the caller.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = Session{}
}

// HandleScan processes one scan or manually entered code. Repeated frames of
// the same code and events arriving while a resolution is in flight are
// dropped, not queued.
func (c *Coordinator) HandleScan(code string) ScanOutcome {
	c.mu.Lock()
	if c.session.InFlight {
		c.mu.Unlock()
		return ScanOutcome{Dropped: true}
	}
	if code != "" && code == c.session.LastResolvedCode {
		c.mu.Unlock()
		return ScanOutcome{Dropped: true}
	}
	c.session.InFlight = true
	c.mu.Unlock()

	result, err := c.resolver.Resolve(ScanInput{Code: code})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.InFlight = false

	if err != nil {
		// Permit an immediate retry of the same code
		c.session.LastResolvedCode = ""
		return ScanOutcome{Failure: classify(err), Err: err}
	}

	c.session.LastResolvedCode = code
	return ScanOutcome{Result: result}
}

// Accept saves a resolved or manually entered item through the persistence
// gateway. On failure the session is left intact so the save can be retried
// without re-running the cascade; on success the session resets.
func (c *Coordinator) Accept(item NewItem) (*Item, error) {
	stored, err := c.store.AddItem(item)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	c.mu.Lock()
	c.session = Session{}
	c.mu.Unlock()
	return stored, nil
}

// classify maps a resolution error onto the stable failure taxonomy
func classify(err error) FailureKind {
	switch {
	case errors.Is(err, ErrInputRequired):
		return FailureInvalidInput
	case errors.Is(err, inferring.ErrNotConfigured):
		return FailureNotConfigured
	case errors.Is(err, inferring.ErrUnavailable):
		return FailureUpstream
	default:
		return FailureUnknown
	}
}
