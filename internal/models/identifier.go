package models

import (
	"fmt"
	"strings"
	"time"
)

// GenerateStudentID synthesizes the human-readable case identifier
// CA-<program>-<country>-<year>-<serial>:
//
//	program  Masters→MA, Bachelor→BA, PhD→PH, anything else→OT
//	country  first two characters upper-cased, OT when empty
//	year     last two digits of now's year
//	serial   existingCount+1, zero-padded to three digits
//
// The function is pure: no uniqueness check is performed against stored
// students, so a stale count snapshot can produce a duplicate.
func GenerateStudentID(program ProgramType, country string, existingCount int, now time.Time) string {
	programCode := "OT"
	switch program {
	case ProgramMasters:
		programCode = "MA"
	case ProgramBachelor:
		programCode = "BA"
	case ProgramPhD:
		programCode = "PH"
	}

	if country == "" {
		country = "OT"
	}
	countryRunes := []rune(strings.ToUpper(country))
	if len(countryRunes) > 2 {
		countryRunes = countryRunes[:2]
	}
	countryCode := string(countryRunes)

	yearCode := now.Format("06")
	serial := fmt.Sprintf("%03d", existingCount+1)

	return fmt.Sprintf("CA-%s-%s-%s-%s", programCode, countryCode, yearCode, serial)
}
