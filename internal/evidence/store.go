// Package evidence keeps impacts documented in comparable countries and turns
// them into estimates when local data is too thin to calibrate an event.
package evidence

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"InclusionSentinel/internal/logger"
	"InclusionSentinel/internal/model"
)

// Aggregation methods accepted by Estimate.
const (
	MethodMedian = "median"
	MethodMean   = "mean"
	MethodMin    = "min"
	MethodMax    = "max"
)

// ReasonNoEvidence is reported when nothing matches the requested key.
const ReasonNoEvidence = "No comparable evidence available"

// Evidence is one documented impact from another market.
type Evidence struct {
	EventType       string  `json:"event_type"`
	Country         string  `json:"country"`
	Indicator       string  `json:"indicator"`
	ImpactMagnitude float64 `json:"impact_magnitude"`
	LagMonths       int     `json:"lag_months"`
	Source          string  `json:"source"`
	Notes           string  `json:"notes,omitempty"`
}

// Estimate aggregates the evidence for one (event type, indicator) key.
type Estimate struct {
	Estimated       bool     `json:"estimated"`
	Reason          string   `json:"reason,omitempty"`
	ImpactMagnitude float64  `json:"impact_magnitude"`
	LagMonths       int      `json:"lag_months"`
	EvidenceCount   int      `json:"evidence_count"`
	Countries       []string `json:"countries,omitempty"`
	Method          string   `json:"method,omitempty"`
}

// Store is a JSON-file backed evidence collection, safe for concurrent use.
// An empty file path keeps the store in memory only.
type Store struct {
	mu       sync.Mutex
	state    *state
	filePath string
}

// Open loads the store from filePath, starting empty when the file is absent.
func Open(filePath string) (*Store, error) {
	st := &state{Entries: map[string][]Evidence{}}
	if filePath != "" {
		var err error
		st, err = loadState(filePath)
		if err != nil {
			return nil, fmt.Errorf("load evidence %s: %w", filePath, err)
		}
	}
	return &Store{state: st, filePath: filePath}, nil
}

func key(eventType, indicator string) string {
	return eventType + "_" + indicator
}

// Add appends an entry and persists the store.
func (s *Store) Add(e Evidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(e.EventType, e.Indicator)
	s.state.Entries[k] = append(s.state.Entries[k], e)
	logger.Log.Infof("Added evidence: %s - %s on %s", e.Country, e.EventType, e.Indicator)

	return s.save()
}

// Get returns a copy of the entries for (eventType, indicator).
func (s *Store) Get(eventType, indicator string) []Evidence {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.state.Entries[key(eventType, indicator)]
	out := make([]Evidence, len(entries))
	copy(out, entries)
	return out
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.state.Entries))
	for k := range s.state.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Estimate aggregates magnitudes and lags with method. Unknown methods fall
// back to the median. The aggregated lag is truncated toward zero.
func (s *Store) Estimate(eventType, indicator, method string) Estimate {
	entries := s.Get(eventType, indicator)
	if len(entries) == 0 {
		return Estimate{Estimated: false, Reason: ReasonNoEvidence}
	}

	magnitudes := make([]float64, len(entries))
	lags := make([]float64, len(entries))
	countries := make([]string, len(entries))
	for i, e := range entries {
		magnitudes[i] = e.ImpactMagnitude
		lags[i] = float64(e.LagMonths)
		countries[i] = e.Country
	}

	agg := aggregator(method)
	return Estimate{
		Estimated:       true,
		ImpactMagnitude: agg(magnitudes),
		LagMonths:       int(math.Trunc(agg(lags))),
		EvidenceCount:   len(entries),
		Countries:       countries,
		Method:          method,
	}
}

// FillLinks returns a copy of links where every link without a magnitude
// takes the estimate for its event's category and indicator. Links with an
// estimate also take its lag when they have none. n counts filled links.
func (s *Store) FillLinks(links []model.ImpactLink, events []model.Event, method string) (out []model.ImpactLink, n int) {
	category := make(map[string]string, len(events))
	for _, e := range events {
		if _, dup := category[e.RecordID]; !dup {
			category[e.RecordID] = e.Category
		}
	}

	out = make([]model.ImpactLink, len(links))
	copy(out, links)
	for i, l := range out {
		if l.ImpactMagnitude != nil && !math.IsNaN(*l.ImpactMagnitude) {
			continue
		}
		cat, ok := category[l.ParentID]
		if !ok || cat == "" {
			continue
		}
		est := s.Estimate(cat, l.RelatedIndicator, method)
		if !est.Estimated {
			continue
		}
		out[i].ImpactMagnitude = model.Float(est.ImpactMagnitude)
		if l.LagMonths == nil {
			out[i].LagMonths = model.Int(est.LagMonths)
		}
		n++
	}
	if n > 0 {
		logger.Log.Infof("filled %d impact links from comparable evidence (%s)", n, method)
	}
	return out, n
}

func aggregator(method string) func([]float64) float64 {
	switch method {
	case MethodMean:
		return func(x []float64) float64 { return stat.Mean(x, nil) }
	case MethodMin:
		return floats.Min
	case MethodMax:
		return floats.Max
	default:
		return median
	}
}

// median averages the two middle values for even-length input.
func median(x []float64) float64 {
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func (s *Store) save() error {
	if s.filePath == "" {
		return nil
	}
	if err := saveState(s.filePath, s.state); err != nil {
		return fmt.Errorf("save evidence: %w", err)
	}
	return nil
}
