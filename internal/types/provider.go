package types

import (
	"context"
	"iter"
)

// Provider opens chat sessions against a conversational backend.
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// Open establishes one backend session. Every session must be closed.
	Open(ctx context.Context) (Session, error)
}

// Session is a single backend conversation carrying exactly one turn.
type Session interface {
	// SendTurn sends the prompt to the backend model and returns the
	// correlation id generated for the chat. It does not wait for a reply.
	SendTurn(ctx context.Context, prompt, model string) (string, error)

	// Contents yields assistant text increments in arrival order until the
	// backend signals the end of the reply. The sequence is single-use.
	Contents(ctx context.Context) iter.Seq[string]

	// Outcome reports why Contents ended. It is OutcomePending while the
	// sequence is still being consumed.
	Outcome() Outcome

	// Close releases the connection. Safe to call more than once.
	Close() error
}

// Outcome is the terminal reason of a session's content stream.
type Outcome string

// Outcome values
const (
	OutcomePending      Outcome = "pending"
	OutcomeCompleted    Outcome = "completed"     // backend reported the chat as created
	OutcomeBackendError Outcome = "backend_error" // backend sent an ERROR frame
	OutcomeDisconnected Outcome = "disconnected"  // connection closed or heartbeat lost
	OutcomeFailed       Outcome = "failed"        // unexpected receive error
	OutcomeCanceled     Outcome = "canceled"      // caller went away
	OutcomeAbandoned    Outcome = "abandoned"     // consumer stopped pulling early
)
