package models

// StatusCount is one slice of a grouped count, keyed by a status label.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

// CountryCount is the number of enrolled students targeting one country.
type CountryCount struct {
	Country string `db:"country" json:"country"`
	Count   int    `db:"count" json:"count"`
}

// MonthCount is the number of enrollments dated within one calendar month.
// Month uses the YYYY-MM form.
type MonthCount struct {
	Month string `db:"month" json:"month"`
	Count int    `db:"count" json:"count"`
}

// DashboardOverview is the landing-page aggregate. TotalBalance sums every
// student ledger: received minus payments minus refunds across the agency.
type DashboardOverview struct {
	TotalLeads         int            `json:"total_leads"`
	TotalStudents      int            `json:"total_students"`
	LeadsByStatus      []StatusCount  `json:"leads_by_status"`
	StudentsByCountry  []CountryCount `json:"students_by_country"`
	StudentsByStatus   []StatusCount  `json:"students_by_status"`
	EnrollmentsByMonth []MonthCount   `json:"enrollments_by_month"`
	TotalBalance       float64        `json:"total_balance"`
}
