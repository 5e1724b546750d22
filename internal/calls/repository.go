package calls

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("calls: not found")

// Repository is the persistence contract for calls and transcripts.
//
// Correctness note: terminal transitions and the create path must be atomic
// statements (conflict-target upserts, guarded updates). Concurrent delivery
// of the same call id is expected; read-then-write sequences are not safe
// here.
type Repository interface {
	// Create inserts a new in-progress call. Returns false when a row for
	// (organization_id, external_call_id) already exists (duplicate start
	// delivery); that is not an error.
	Create(ctx context.Context, c Call) (created bool, err error)

	// FindByExternalID looks up a call within a tenant by the provider call id.
	FindByExternalID(ctx context.Context, organizationID, externalCallID string) (Call, error)

	// CompleteIfInProgress applies the terminal completed state. Returns
	// false when the call was already terminal (replayed event); the update
	// is not reapplied.
	CompleteIfInProgress(ctx context.Context, callID string, upd CompletionUpdate) (bool, error)

	// MarkFailedIfInProgress transitions the call to failed. Returns false
	// when the call was already terminal.
	MarkFailedIfInProgress(ctx context.Context, callID string) (bool, error)

	// UpsertTranscript replaces the transcript for a call wholesale,
	// keyed by call_id.
	UpsertTranscript(ctx context.Context, callID string, messages []TranscriptMessage) error
}

// Reader provides the dashboard read paths.
type Reader interface {
	ListRecent(ctx context.Context, organizationID string, limit int) ([]Call, error)
	GetByID(ctx context.Context, organizationID, callID string) (Call, error)
	GetTranscript(ctx context.Context, callID string) (Transcript, error)
}
