// Package domain defines core domain types, constants, and validation for the
// Upkeep extraction pipeline. It acts as the validation gate at pipeline entry points.
package domain

import "time"

// Appliance identifies the appliance a manual search runs for.
type Appliance struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	ModelNumber string `json:"model_number"`
	Type        string `json:"type,omitempty"`
}

// SearchResult is a candidate manual located on the web.
// When Note is set the URL is a manufacturer support page rather than a
// direct PDF link, and callers must not treat it as downloadable.
type SearchResult struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Note  string `json:"note,omitempty"`
}

// FetchedFile is a downloaded manual held in memory.
type FetchedFile struct {
	Name  string `json:"name"`
	Bytes []byte `json:"-"`
}

// Frequency classifies how often a maintenance task recurs.
type Frequency string

const (
	FreqDaily      Frequency = "daily"
	FreqWeekly     Frequency = "weekly"
	FreqMonthly    Frequency = "monthly"
	FreqQuarterly  Frequency = "quarterly"
	FreqSemiAnnual Frequency = "semi_annual"
	FreqAnnual     Frequency = "annual"
	FreqAsNeeded   Frequency = "as_needed"
	FreqCustom     Frequency = "custom"
)

// ValidFrequencies is the set of recognised recurrence classes.
var ValidFrequencies = map[Frequency]bool{
	FreqDaily: true, FreqWeekly: true, FreqMonthly: true,
	FreqQuarterly: true, FreqSemiAnnual: true, FreqAnnual: true,
	FreqAsNeeded: true, FreqCustom: true,
}

// IntervalDays returns the nominal recurrence interval. Zero means the
// frequency has no fixed interval (as_needed, custom).
func (f Frequency) IntervalDays() int {
	switch f {
	case FreqDaily:
		return 1
	case FreqWeekly:
		return 7
	case FreqMonthly:
		return 30
	case FreqQuarterly:
		return 91
	case FreqSemiAnnual:
		return 182
	case FreqAnnual:
		return 365
	}
	return 0
}

// NextDue computes the next due date from the last performed date.
// Returns the zero time when the frequency has no fixed interval.
func (f Frequency) NextDue(last time.Time) time.Time {
	days := f.IntervalDays()
	if days == 0 || last.IsZero() {
		return time.Time{}
	}
	return last.AddDate(0, 0, days)
}

// TaskCandidate is a maintenance task mined from manual text.
type TaskCandidate struct {
	Name                string    `json:"task_name"`
	Description         string    `json:"description"`
	Frequency           Frequency `json:"frequency"`
	ExtractedFromManual bool      `json:"extracted_from_manual"`
}

// DedupKey is the uniqueness key for task deduplication.
func (t TaskCandidate) DedupKey() string {
	return dedupKey(t.Name, t.Frequency)
}

// LabelInfo holds fields parsed from an appliance rating label photo.
// Every field is independently optional; an empty field means the label
// did not yield that value, which is an expected outcome.
type LabelInfo struct {
	Brand        string `json:"brand,omitempty"`
	ModelNumber  string `json:"model_number,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
}
