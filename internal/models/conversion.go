package models

import "time"

// ConversionStatus tracks the compensation state of a lead→student
// conversion whose lead deletion did not go through.
type ConversionStatus string

const (
	// ConversionPendingLeadDelete marks a conversion whose student insert
	// succeeded but whose lead deletion failed; both records are live.
	ConversionPendingLeadDelete ConversionStatus = "PENDING_LEAD_DELETE"
	ConversionResolved          ConversionStatus = "RESOLVED"
)

// ConversionLog is the compensating-action record for a partially failed
// conversion. The retry endpoint drains pending entries.
type ConversionLog struct {
	ID         string           `db:"id" json:"id"`
	LeadID     string           `db:"lead_id" json:"lead_id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	Status     ConversionStatus `db:"status" json:"status"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	ResolvedAt *time.Time       `db:"resolved_at" json:"resolved_at,omitempty"`
}
