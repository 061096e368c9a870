package model

import "time"

// Setting is a key-value row in the settings table. AI provider
// configuration and the Excel import marker live here.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
