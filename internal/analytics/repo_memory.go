package analytics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory rollup repository for tests and early
// development. Accumulation is atomic under the mutex, matching the
// single-statement guarantee of the Postgres implementation.
type MemoryRepo struct {
	mu sync.Mutex

	// Rows keyed by organization_id|date.
	Rows map[string]DailyAnalytics
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{Rows: map[string]DailyAnalytics{}}
}

func (r *MemoryRepo) Accumulate(ctx context.Context, organizationID, date string, d CallDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := organizationID + "|" + date
	row, ok := r.Rows[key]
	if !ok {
		row = DailyAnalytics{
			ID:             uuid.NewString(),
			OrganizationID: organizationID,
			Date:           date,
			CreatedAt:      time.Now().UTC(),
		}
	}
	row.TotalCalls += d.TotalCalls
	row.AnsweredCalls += d.AnsweredCalls
	row.MissedCalls += d.MissedCalls
	row.AppointmentsBooked += d.AppointmentsBooked
	row.TotalDurationSeconds += d.DurationSeconds
	if row.TotalCalls > 0 {
		row.AvgDurationSeconds = row.TotalDurationSeconds / row.TotalCalls
	} else {
		row.AvgDurationSeconds = 0
	}
	r.Rows[key] = row
	return nil
}

func (r *MemoryRepo) Range(ctx context.Context, organizationID, from, to string) ([]DailyAnalytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []DailyAnalytics
	for _, row := range r.Rows {
		if row.OrganizationID != organizationID {
			continue
		}
		if row.Date < from || row.Date > to {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Get returns the rollup row for one day, for test assertions.
func (r *MemoryRepo) Get(organizationID, date string) (DailyAnalytics, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.Rows[organizationID+"|"+date]
	return row, ok
}
