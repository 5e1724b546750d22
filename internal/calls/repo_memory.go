package calls

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is a simple in-memory call repository for tests and early
// development. It mirrors the atomicity guarantees of the Postgres
// implementation (create-once, terminal-once) under a single mutex.
type MemoryRepo struct {
	mu sync.Mutex

	Calls       map[string]Call       // by internal id
	Transcripts map[string]Transcript // by call id

	clock func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		Calls:       map[string]Call{},
		Transcripts: map[string]Transcript{},
		clock:       time.Now,
	}
}

func (r *MemoryRepo) Create(ctx context.Context, c Call) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Calls {
		if existing.OrganizationID == c.OrganizationID && existing.ExternalCallID == c.ExternalCallID {
			return false, nil
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.clock().UTC()
	}
	r.Calls[c.ID] = c
	return true, nil
}

func (r *MemoryRepo) FindByExternalID(ctx context.Context, organizationID, externalCallID string) (Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Calls {
		if c.OrganizationID == organizationID && c.ExternalCallID == externalCallID {
			return c, nil
		}
	}
	return Call{}, ErrNotFound
}

func (r *MemoryRepo) CompleteIfInProgress(ctx context.Context, callID string, upd CompletionUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Calls[callID]
	if !ok || c.Status != CallStatusInProgress {
		return false, nil
	}
	c.Status = CallStatusCompleted
	if upd.EndedAt != nil {
		c.EndedAt = upd.EndedAt
	}
	if upd.DurationSeconds != nil {
		c.DurationSeconds = *upd.DurationSeconds
	}
	if upd.RecordingURL != "" {
		c.RecordingURL = upd.RecordingURL
	}
	if upd.Summary != "" {
		c.Summary = upd.Summary
	}
	if upd.Sentiment != "" {
		c.Sentiment = upd.Sentiment
	}
	if upd.Outcome != "" {
		c.Outcome = upd.Outcome
	}
	r.Calls[callID] = c
	return true, nil
}

func (r *MemoryRepo) MarkFailedIfInProgress(ctx context.Context, callID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Calls[callID]
	if !ok || c.Status != CallStatusInProgress {
		return false, nil
	}
	c.Status = CallStatusFailed
	r.Calls[callID] = c
	return true, nil
}

func (r *MemoryRepo) UpsertTranscript(ctx context.Context, callID string, messages []TranscriptMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.Transcripts[callID]
	if !ok {
		t = Transcript{ID: uuid.NewString(), CallID: callID, CreatedAt: r.clock().UTC()}
	}
	t.Messages = messages
	r.Transcripts[callID] = t
	return nil
}

func (r *MemoryRepo) ListRecent(ctx context.Context, organizationID string, limit int) ([]Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, 0)
	for _, c := range r.Calls {
		if c.OrganizationID == organizationID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, organizationID, callID string) (Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Calls[callID]
	if !ok || c.OrganizationID != organizationID {
		return Call{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) GetTranscript(ctx context.Context, callID string) (Transcript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.Transcripts[callID]
	if !ok {
		return Transcript{}, ErrNotFound
	}
	return t, nil
}
