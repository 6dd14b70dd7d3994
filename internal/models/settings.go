package models

import (
	"encoding/json"
	"time"
)

// Settings keys stored in the settings table. Each value is a JSON document:
// branding is an object, the rest are plain string lists.
const (
	SettingBranding  = "branding"
	SettingCounselors = "counselors"
	SettingSources    = "sources"
	SettingCountries  = "countries"
	SettingPersons    = "persons"
)

// Branding holds the consultancy's display identity.
type Branding struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}

// Setting is one key/value configuration row. Values are replaced wholesale
// on every mutation; there is no partial or delta sync.
type Setting struct {
	Key       string          `db:"key" json:"key"`
	Value     json.RawMessage `db:"value" json:"value"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// SettingsBundle is the fully loaded configuration used by the application.
// Lists keep insertion order; entries are not deduplicated.
type SettingsBundle struct {
	Branding        Branding `json:"branding"`
	Counselors      []string `json:"counselors"`
	Sources         []string `json:"sources"`
	Countries       []string `json:"countries"`
	ReferralPersons []string `json:"persons"`
}
