package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ProgramType is the degree level a student or lead is pursuing.
type ProgramType string

const (
	ProgramBachelor ProgramType = "Bachelor"
	ProgramMasters  ProgramType = "Masters"
	ProgramPhD      ProgramType = "PhD"
)

// LanguageTestType enumerates recognised language/aptitude tests.
type LanguageTestType string

const (
	LanguageTestIELTS    LanguageTestType = "IELTS"
	LanguageTestPTE      LanguageTestType = "PTE"
	LanguageTestTOEFL    LanguageTestType = "TOEFL"
	LanguageTestDuolingo LanguageTestType = "Duolingo"
	LanguageTestGMAT     LanguageTestType = "GMAT"
	LanguageTestGRE      LanguageTestType = "GRE"
	LanguageTestNone     LanguageTestType = "N/A"
)

// LanguageTestInfo captures a test result. Scores stay free-text to
// tolerate the different band scales across tests.
type LanguageTestInfo struct {
	TestType       LanguageTestType `json:"test_type"`
	Score          string           `json:"score,omitempty"`
	NoBandLessThan string           `json:"no_band_less_than,omitempty"`
}

// Value implements driver.Valuer for JSONB storage.
func (l LanguageTestInfo) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage.
func (l *LanguageTestInfo) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Address is a Bangladeshi postal address.
type Address struct {
	Upazila  string `json:"upazila"`
	District string `json:"district"`
	Division string `json:"division"`
}

// Value implements driver.Valuer for JSONB storage.
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB storage.
func (a *Address) Scan(src interface{}) error {
	return scanJSON(src, a)
}

// AcademicInfo is the academic-score shape shared by leads and students.
// Every field is optional free text regardless of program; which fields the
// UI shows for a given program is a presentation concern only.
type AcademicInfo struct {
	SSCGpa       string `db:"ssc_gpa" json:"ssc_gpa,omitempty"`
	HSCGpa       string `db:"hsc_gpa" json:"hsc_gpa,omitempty"`
	BachelorCgpa string `db:"bachelor_cgpa" json:"bachelor_cgpa,omitempty"`
	MastersGpa   string `db:"masters_gpa" json:"masters_gpa,omitempty"`
	CollegeName  string `db:"college_name" json:"college_name,omitempty"`
}

// Student is an enrolled case file. The identifier follows the
// CA-<program>-<country>-<year>-<serial> grammar, see GenerateStudentID.
// CurrentStatus is always derived from Timeline via CurrentStatus(); it is
// stored denormalized for listing but recomputed on every timeline mutation.
type Student struct {
	ID             string           `db:"id" json:"id"`
	Name           string           `db:"name" json:"name"`
	Phone          string           `db:"phone" json:"phone"`
	Email          string           `db:"email" json:"email"`
	TargetCountry  string           `db:"target_country" json:"target_country"`
	Program        ProgramType      `db:"program" json:"program"`
	CurrentStatus  string           `db:"current_status" json:"current_status"`
	Source         string           `db:"source" json:"source"`
	ReferralPerson string           `db:"referral_person" json:"referral_person,omitempty"`
	AgentName      string           `db:"agent_name" json:"agent_name"`
	EnrollmentDate string           `db:"enrollment_date" json:"enrollment_date"`
	Address        Address          `db:"address" json:"address"`
	LanguageTest   LanguageTestInfo `db:"language_test" json:"language_test"`
	AcademicInfo
	Timeline  Timeline  `db:"timeline" json:"timeline"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail is the full case file: the student row plus its owned
// collections and the derived ledger balance.
type StudentDetail struct {
	Student
	Applications []UniversityApplication `json:"applications"`
	Transactions []Transaction           `json:"transactions"`
	Notes        []Note                  `json:"notes"`
	Balance      float64                 `json:"balance"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Country   string
	AgentName string
	Status    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

func scanJSON(src, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported json scan type %T", src)
	}
}
