package analytics

import "time"

// DailyAnalytics is one rollup row per (organization_id, date).
//
// AvgDurationSeconds is always recomputed from the running sums
// (total_duration_seconds / total_calls), never maintained as a streaming
// mean, so replays and concurrency cannot drift the average.
type DailyAnalytics struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organization_id" db:"organization_id"`

	// Date is the server-clock calendar day (UTC) the events were recorded
	// on, not the call date.
	Date string `json:"date" db:"date"`

	TotalCalls         int `json:"total_calls" db:"total_calls"`
	AnsweredCalls      int `json:"answered_calls" db:"answered_calls"`
	MissedCalls        int `json:"missed_calls" db:"missed_calls"`
	AppointmentsBooked int `json:"appointments_booked" db:"appointments_booked"`

	TotalDurationSeconds int `json:"total_duration_seconds" db:"total_duration_seconds"`
	AvgDurationSeconds   int `json:"avg_duration_seconds" db:"avg_duration_seconds"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CallDelta is one call's contribution to a daily rollup.
type CallDelta struct {
	TotalCalls         int
	AnsweredCalls      int
	MissedCalls        int
	AppointmentsBooked int
	DurationSeconds    int
}

// DateKey formats a timestamp as the rollup day key.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Summary aggregates rollup rows over a date range for dashboard reads.
type Summary struct {
	OrganizationID string `json:"organization_id"`
	From           string `json:"from"`
	To             string `json:"to"`

	TotalCalls         int `json:"total_calls"`
	AnsweredCalls      int `json:"answered_calls"`
	MissedCalls        int `json:"missed_calls"`
	AppointmentsBooked int `json:"appointments_booked"`

	TotalDurationSeconds int `json:"total_duration_seconds"`
	AvgDurationSeconds   int `json:"avg_duration_seconds"`

	Days []DailyAnalytics `json:"days"`
}
