package model

import (
	"strings"
	"time"
)

// Record types carried by the unified dataset.
const (
	RecordObservation = "observation"
	RecordEvent       = "event"
	RecordTarget      = "target"
)

// Impact directions.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

// dateLayouts are tried in order when parsing observation dates.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01", "2006"}

// Record is one row of the unified dataset. Columns the analysis does not
// use are dropped by the loader.
type Record struct {
	RecordType       string   `yaml:"record_type"`
	RecordID         string   `yaml:"record_id"`
	Pillar           string   `yaml:"pillar"`
	IndicatorCode    string   `yaml:"indicator_code"`
	ObservationDate  string   `yaml:"observation_date"`
	ValueNumeric     *float64 `yaml:"value_numeric"`
	Category         string   `yaml:"category"`
	Description      string   `yaml:"description"`
	SourceName       string   `yaml:"source_name"`
	ParentID         string   `yaml:"parent_id"`
	RelatedIndicator string   `yaml:"related_indicator"`
	ImpactDirection  string   `yaml:"impact_direction"`
	ImpactMagnitude  *float64 `yaml:"impact_magnitude"`
	LagMonths        *int     `yaml:"lag_months"`
}

// Date parses ObservationDate. ok is false when the date is empty or unparseable.
func (r Record) Date() (t time.Time, ok bool) {
	return ParseDate(r.ObservationDate)
}

// ParseDate parses a dataset date string, coercing failures to ok=false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Event is a point-in-time occurrence such as a policy or product launch.
type Event struct {
	RecordID    string
	Category    string
	Date        time.Time
	HasDate     bool
	Description string
}

// EventFromRecord converts an event row.
func EventFromRecord(r Record) Event {
	d, ok := r.Date()
	return Event{
		RecordID:    r.RecordID,
		Category:    r.Category,
		Date:        d,
		HasDate:     ok,
		Description: r.Description,
	}
}

// ImpactLink is a believed causal edge from an event to an indicator.
type ImpactLink struct {
	ParentID         string   `yaml:"parent_id"`
	RelatedIndicator string   `yaml:"related_indicator"`
	ImpactDirection  string   `yaml:"impact_direction"`
	ImpactMagnitude  *float64 `yaml:"impact_magnitude"`
	LagMonths        *int     `yaml:"lag_months"`
	Pillar           string   `yaml:"pillar"`
}

// Lag returns LagMonths, defaulting to 0.
func (l ImpactLink) Lag() int {
	if l.LagMonths == nil {
		return 0
	}
	return *l.LagMonths
}

// Decreasing reports whether the link pushes the indicator down.
func (l ImpactLink) Decreasing() bool {
	return l.ImpactDirection == DirectionDecrease
}

// LinkFromRecord converts a unified row carrying a parent reference.
func LinkFromRecord(r Record) ImpactLink {
	return ImpactLink{
		ParentID:         r.ParentID,
		RelatedIndicator: r.RelatedIndicator,
		ImpactDirection:  r.ImpactDirection,
		ImpactMagnitude:  r.ImpactMagnitude,
		LagMonths:        r.LagMonths,
		Pillar:           r.Pillar,
	}
}

// Dataset is everything one analysis run reads. ImpactLinks may be empty when
// the links only exist as parent-referencing rows of Records.
type Dataset struct {
	Records     []Record     `yaml:"unified_data"`
	ImpactLinks []ImpactLink `yaml:"impact_links"`
}

// Events returns the event rows in record order.
func (d *Dataset) Events() []Event {
	var out []Event
	for _, r := range d.Records {
		if r.RecordType == RecordEvent {
			out = append(out, EventFromRecord(r))
		}
	}
	return out
}

// Observations returns the observation rows in record order.
func (d *Dataset) Observations() []Record {
	return d.byType(RecordObservation)
}

// Targets returns the policy target rows for indicatorCode, or every target
// when indicatorCode is empty.
func (d *Dataset) Targets(indicatorCode string) []Record {
	var out []Record
	for _, r := range d.byType(RecordTarget) {
		if indicatorCode == "" || r.IndicatorCode == indicatorCode {
			out = append(out, r)
		}
	}
	return out
}

func (d *Dataset) byType(recordType string) []Record {
	var out []Record
	for _, r := range d.Records {
		if r.RecordType == recordType {
			out = append(out, r)
		}
	}
	return out
}

// Links returns the impact-link table, or the parent-referencing unified rows
// when no table was supplied.
func (d *Dataset) Links() []ImpactLink {
	if len(d.ImpactLinks) > 0 {
		return d.ImpactLinks
	}
	var out []ImpactLink
	for _, r := range d.Records {
		if strings.TrimSpace(r.ParentID) != "" {
			out = append(out, LinkFromRecord(r))
		}
	}
	return out
}

// Float returns a pointer to v. Handy for literals of optional fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
