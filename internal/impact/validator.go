package impact

import (
	"math"
	"time"

	"InclusionSentinel/internal/logger"
	"InclusionSentinel/internal/model"
)

// Reasons reported when a validation cannot run.
const (
	ReasonNoLink      = "No impact link found"
	ReasonNoEvent     = "Event not found"
	ReasonNoMagnitude = "Impact magnitude not specified"
	ReasonNoEventDate = "Event date not available"
)

// Period is the observation window of a historical change.
type Period struct {
	Start time.Time
	End   time.Time
}

// ValidationResult compares a modelled effect to an observed change.
// RelativeErrorPct is nil when the observed change is zero.
type ValidationResult struct {
	Validated        bool
	Reason           string
	EventID          string
	IndicatorCode    string
	EventDate        time.Time
	PredictedImpact  float64
	ObservedChange   float64
	Difference       float64
	RelativeErrorPct *float64
	LagMonths        int
	ImpactMagnitude  float64
}

// Validator back-tests event effects against known indicator changes.
type Validator struct {
	Policy Policy
	Events []model.Event
	Links  []model.ImpactLink
}

// NewValidator creates a Validator over one run's events and links.
func NewValidator(policy Policy, events []model.Event, links []model.ImpactLink) *Validator {
	return &Validator{Policy: policy, Events: events, Links: links}
}

// Validate models the event's gradual effect and compares its value at the
// end of period with observedChange. Missing links, events or magnitudes are
// reported through Validated=false rather than an error.
func (v *Validator) Validate(indicatorCode, eventID string, observedChange float64, period Period) ValidationResult {
	logger.Log.Infof("validating %s impact on %s", eventID, indicatorCode)
	res := ValidationResult{EventID: eventID, IndicatorCode: indicatorCode, ObservedChange: observedChange}

	var link *model.ImpactLink
	for i := range v.Links {
		if v.Links[i].ParentID == eventID && v.Links[i].RelatedIndicator == indicatorCode {
			link = &v.Links[i]
			break
		}
	}
	if link == nil {
		res.Reason = ReasonNoLink
		return res
	}

	var event *model.Event
	for i := range v.Events {
		if v.Events[i].RecordID == eventID {
			event = &v.Events[i]
			break
		}
	}
	if event == nil {
		res.Reason = ReasonNoEvent
		return res
	}
	if !event.HasDate {
		res.Reason = ReasonNoEventDate
		return res
	}
	if link.ImpactMagnitude == nil || math.IsNaN(*link.ImpactMagnitude) {
		res.Reason = ReasonNoMagnitude
		return res
	}

	magnitude := *link.ImpactMagnitude
	lag := link.Lag()
	curve := v.Policy.EffectOverTime(event.Date, magnitude, lag, Gradual)
	predicted := curve.ValueAt(period.End)

	diff := math.Abs(observedChange - predicted)
	res.Validated = true
	res.EventDate = event.Date
	res.PredictedImpact = predicted
	res.Difference = diff
	res.LagMonths = lag
	res.ImpactMagnitude = magnitude
	if observedChange != 0 {
		rel := diff / math.Abs(observedChange) * 100
		res.RelativeErrorPct = &rel
	}
	return res
}
