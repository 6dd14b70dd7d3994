package models

import "time"

// LeadStatus is a prospective applicant's contact state.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "New"
	LeadStatusContacted LeadStatus = "Contacted"
	// LeadStatusConverted is terminal: conversion deletes the lead, so no
	// stored lead ever carries this status. It exists only to reject
	// attempts to set it through a plain status update.
	LeadStatusConverted LeadStatus = "Converted to Student"
)

// Lead is a prospective applicant captured before enrollment.
type Lead struct {
	ID             string           `db:"id" json:"id"`
	Name           string           `db:"name" json:"name"`
	Phone          string           `db:"phone" json:"phone"`
	Email          string           `db:"email" json:"email,omitempty"`
	TargetCountry  string           `db:"target_country" json:"target_country"`
	Program        ProgramType      `db:"program" json:"program"`
	Course         string           `db:"course" json:"course"`
	Source         string           `db:"source" json:"source"`
	ReferralPerson string           `db:"referral_person" json:"referral_person,omitempty"`
	Status         LeadStatus       `db:"status" json:"status"`
	LanguageTest   LanguageTestInfo `db:"language_test" json:"language_test"`
	AcademicInfo
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LeadFilter encapsulates allowed search parameters for listing leads.
type LeadFilter struct {
	Search    string
	Status    LeadStatus
	Source    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
