package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the display format used for timeline and ledger dates.
const DateLayout = "2006-01-02"

// ProcessSteps is the fixed pipeline every student walks through, in order.
// The sequence is global: all students share the same fifteen stages.
var ProcessSteps = []string{
	"File opening",
	"Uni Apply Doc Collection",
	"LOR and SOP",
	"University Application",
	"Conditional Offer letter",
	"Documents Prepare",
	"Unconditional offer letter",
	"Student payment",
	"Tution fee",
	"Visa doc Collect",
	"Embassy fee payment",
	"Visa application",
	"Visa",
	"Final Student payment",
	"Depart",
}

// TimelineEntry records the completion state of one pipeline stage.
type TimelineEntry struct {
	Step          string `json:"step"`
	IsCompleted   bool   `json:"is_completed"`
	DateCompleted string `json:"date_completed,omitempty"`
}

// Timeline is a student's copy of the pipeline. It persists as a JSONB
// column on the student row.
type Timeline []TimelineEntry

// NewTimeline returns the full pipeline with only the first stage completed,
// dated to enrolledAt. This is the state every converted student starts in.
func NewTimeline(enrolledAt time.Time) Timeline {
	timeline := make(Timeline, len(ProcessSteps))
	for i, step := range ProcessSteps {
		timeline[i] = TimelineEntry{Step: step}
		if i == 0 {
			timeline[i].IsCompleted = true
			timeline[i].DateCompleted = enrolledAt.Format(DateLayout)
		}
	}
	return timeline
}

// Toggle flips the completion flag of the named stage and returns a new
// timeline; the receiver is not mutated. Completing a stage stamps its date,
// un-completing clears it. An unknown step name returns an unchanged copy.
// Stages toggle independently: completing stage 10 before stage 5 is allowed.
func (t Timeline) Toggle(step string, now time.Time) Timeline {
	updated := make(Timeline, len(t))
	copy(updated, t)
	for i := range updated {
		if updated[i].Step != step {
			continue
		}
		updated[i].IsCompleted = !updated[i].IsCompleted
		if updated[i].IsCompleted {
			updated[i].DateCompleted = now.Format(DateLayout)
		} else {
			updated[i].DateCompleted = ""
		}
	}
	return updated
}

// CurrentStatus derives the student's pipeline position: the step name of
// the last completed entry in sequence order, or the first step if nothing
// is completed yet.
func (t Timeline) CurrentStatus() string {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].IsCompleted {
			return t[i].Step
		}
	}
	if len(t) > 0 {
		return t[0].Step
	}
	return ""
}

// Value implements driver.Valuer for JSONB storage.
func (t Timeline) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB storage.
func (t *Timeline) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported timeline scan type %T", src)
	}
}
