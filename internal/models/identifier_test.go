package models

import (
	"fmt"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestGenerateStudentID(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		program  ProgramType
		country  string
		existing int
		want     string
	}{
		{"masters uk", ProgramMasters, "UK", 4, "CA-MA-UK-26-005"},
		{"bachelor usa truncated", ProgramBachelor, "USA", 0, "CA-BA-US-26-001"},
		{"phd lowercase country", ProgramPhD, "canada", 11, "CA-PH-CA-26-012"},
		{"unknown program", ProgramType("Diploma"), "DE", 0, "CA-OT-DE-26-001"},
		{"empty country", ProgramMasters, "", 2, "CA-MA-OT-26-003"},
		{"single letter country", ProgramMasters, "x", 0, "CA-MA-X-26-001"},
		{"multibyte country", ProgramMasters, "中国", 0, "CA-MA-中国-26-001"},
		{"accented country", ProgramBachelor, "Österreich", 0, "CA-BA-ÖS-26-001"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GenerateStudentID(tc.program, tc.country, tc.existing, now))
		})
	}
}

func TestGenerateStudentIDKeepsValidUTF8(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	// Country names come from a free-form settings list, so the code must
	// truncate on characters, never mid-rune.
	for _, country := range []string{"中国", "日本", "বাংলাদেশ", "Österreich"} {
		id := GenerateStudentID(ProgramMasters, country, 0, now)
		assert.True(t, utf8.ValidString(id), "id %q for country %q", id, country)
	}
}

func TestGenerateStudentIDUsesYearOfGeneration(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2031, 12, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "CA-MA-UK-25-001", GenerateStudentID(ProgramMasters, "UK", 0, jan))
	assert.Equal(t, "CA-MA-UK-31-001", GenerateStudentID(ProgramMasters, "UK", 0, dec))
}

func TestGenerateStudentIDSerialPadding(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "CA-MA-UK-26-100", GenerateStudentID(ProgramMasters, "UK", 99, now))
	// The serial field overflows its three digits past 999 rather than wrap.
	assert.Equal(t, fmt.Sprintf("CA-MA-UK-26-%d", 1000), GenerateStudentID(ProgramMasters, "UK", 999, now))
}
