package models

// ApplicationStatus tracks a university application's outcome. Statuses are
// freely settable after creation; there are no transition restrictions.
type ApplicationStatus string

const (
	ApplicationPending            ApplicationStatus = "Pending"
	ApplicationOfferConditional   ApplicationStatus = "Offer Received (Conditional)"
	ApplicationOfferUnconditional ApplicationStatus = "Offer Received (Unconditional)"
	ApplicationRejected           ApplicationStatus = "Rejected"
	ApplicationWaitlisted         ApplicationStatus = "Waitlisted"
)

// UniversityApplication is a single university submission owned by one student.
type UniversityApplication struct {
	ID             string            `db:"id" json:"id"`
	StudentID      string            `db:"student_id" json:"-"`
	UniversityName string            `db:"university_name" json:"university_name"`
	Course         string            `db:"course" json:"course"`
	Status         ApplicationStatus `db:"status" json:"status"`
}

// ValidApplicationStatus reports whether the status is one of the five
// recognised outcomes.
func ValidApplicationStatus(status ApplicationStatus) bool {
	switch status {
	case ApplicationPending, ApplicationOfferConditional, ApplicationOfferUnconditional,
		ApplicationRejected, ApplicationWaitlisted:
		return true
	}
	return false
}
