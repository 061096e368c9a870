package model

import "time"

// DefaultTitle is stored when a record is saved without a title.
const DefaultTitle = "Untitled"

// Status is the review state of a saved translation.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusNeedsRevision Status = "needs_revision"
	StatusGood          Status = "good"
	StatusFinal         Status = "final"
)

// Statuses lists every status in review order.
var Statuses = []Status{StatusDraft, StatusNeedsRevision, StatusGood, StatusFinal}

var statusLabels = map[Status]string{
	StatusDraft:         "مسوّدة",
	StatusNeedsRevision: "بحاجة تنقيح",
	StatusGood:          "جيدة",
	StatusFinal:         "نهائية",
}

// Valid reports whether s is one of the four review states.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the Arabic label shown in the review form.
func (s Status) Label() string {
	return statusLabels[s]
}

// ParseStatus accepts a stored value, an English name or an Arabic label.
// The second return is false for anything unrecognized.
func ParseStatus(value string) (Status, bool) {
	switch value {
	case "draft", "Draft", "مسوّدة", "مسودة":
		return StatusDraft, true
	case "needs_revision", "NeedsRevision", "Needs Revision", "بحاجة تنقيح":
		return StatusNeedsRevision, true
	case "good", "Good", "جيدة":
		return StatusGood, true
	case "final", "Final", "نهائية":
		return StatusFinal, true
	}
	return StatusDraft, false
}

// Translation is one archived translation with its review metadata.
type Translation struct {
	ID          int64
	Title       string
	SourceText  string
	Style       string
	Model       string
	Translation string
	Notes       string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExemplarPair is a saved (source, translation) pair offered to the
// personal-style prompt.
type ExemplarPair struct {
	SourceText  string
	Translation string
}
