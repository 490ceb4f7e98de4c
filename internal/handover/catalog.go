package handover

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

// Catalog is the ordered run of scenarios for one session.
type Catalog []Scenario

var contextScenarios = []Scenario{
	{
		ID:     "construction",
		Name:   "Construction Zone",
		Hazard: HazardConstruction,
		Stages: []Stage{
			{
				Urgency:         UrgencyLow,
				DistanceKM:      3.2,
				DurationSeconds: 5,
				Message:         "Construction zone ahead in 3.2 km",
				VoiceMessage:    "Construction zone detected ahead. You will need to take control shortly.",
			},
			{
				Urgency:         UrgencyMedium,
				DistanceKM:      0.8,
				DurationSeconds: 5,
				Message:         "Approaching construction - Prepare to take control",
				VoiceMessage:    "Construction zone ahead. Please place your hands on the steering wheel.",
			},
			{
				Urgency:         UrgencyHigh,
				DistanceKM:      0.2,
				DurationSeconds: 8,
				Message:         "Construction zone - TAKE CONTROL NOW",
				VoiceMessage:    "Take control of the vehicle immediately. Construction zone ahead.",
			},
		},
	},
	{
		ID:     "weather",
		Name:   "Heavy Weather",
		Hazard: HazardWeather,
		Stages: []Stage{
			{
				Urgency:         UrgencyLow,
				DistanceKM:      2.4,
				DurationSeconds: 5,
				Message:         "Heavy rain detected - Sensors may be affected",
				VoiceMessage:    "Heavy weather conditions ahead. Prepare to take control.",
			},
			{
				Urgency:         UrgencyMedium,
				DistanceKM:      0.5,
				DurationSeconds: 5,
				Message:         "Weather conditions worsening - Take the wheel",
				VoiceMessage:    "Sensor visibility reduced. Please take control of the vehicle.",
			},
			{
				Urgency:         UrgencyHigh,
				DistanceKM:      0.2,
				DurationSeconds: 8,
				Message:         "CRITICAL: Sensor blockage - IMMEDIATE HANDOVER",
				VoiceMessage:    "Critical sensor blockage detected. Take control now!",
			},
		},
	},
	{
		ID:     "accident",
		Name:   "Accident Ahead",
		Hazard: HazardAccident,
		Stages: []Stage{
			{
				Urgency:         UrgencyMedium,
				DistanceKM:      1.3,
				DurationSeconds: 5,
				Message:         "Accident reported ahead - Lane changes required",
				VoiceMessage:    "Accident ahead. Complex maneuvering needed. Please prepare to take control.",
			},
			{
				Urgency:         UrgencyHigh,
				DistanceKM:      0.3,
				DurationSeconds: 8,
				Message:         "ACCIDENT AHEAD - TAKE CONTROL IMMEDIATELY",
				VoiceMessage:    "Take control now. Accident ahead requires immediate driver intervention.",
			},
		},
	},
	{
		ID:     "sensor",
		Name:   "Sensor Failure",
		Hazard: HazardSensorFailure,
		Stages: []Stage{
			{
				Urgency:         UrgencyHigh,
				DistanceKM:      0.0,
				DurationSeconds: 8,
				Message:         "SENSOR FAILURE - IMMEDIATE HANDOVER REQUIRED",
				VoiceMessage:    "Critical system failure. Take control of the vehicle immediately!",
			},
		},
	},
}

var genericScenarios = []Scenario{
	{
		ID:     "test1",
		Name:   "Test 1",
		Hazard: HazardConstruction,
		Stages: []Stage{{Urgency: UrgencyLow, DistanceKM: 3.2, DurationSeconds: 8}},
	},
	{
		ID:     "test2",
		Name:   "Test 2",
		Hazard: HazardWeather,
		Stages: []Stage{{Urgency: UrgencyMedium, DistanceKM: 0.8, DurationSeconds: 8}},
	},
	{
		ID:     "test3",
		Name:   "Test 3",
		Hazard: HazardAccident,
		Stages: []Stage{{Urgency: UrgencyHigh, DistanceKM: 0.2, DurationSeconds: 8}},
	},
}

// BaseScenarios returns a copy of the fixed scenario list for group, in
// declaration order.
func BaseScenarios(group Group) Catalog {
	var src []Scenario
	switch group {
	case GroupA:
		src = contextScenarios
	case GroupB:
		src = genericScenarios
	default:
		return nil
	}
	out := make(Catalog, len(src))
	for i, sc := range src {
		sc.Stages = slices.Clone(sc.Stages)
		out[i] = sc
	}
	return out
}

// NewCatalog builds the catalog for a new session. Group A is a uniform
// random permutation of its base list drawn with intn; group B is the base
// list verbatim. A nil intn uses math/rand/v2.
func NewCatalog(group Group, intn func(n int) int) (Catalog, error) {
	base := BaseScenarios(group)
	if base == nil {
		return nil, fmt.Errorf("unknown group %q", group)
	}
	if group == GroupA {
		if intn == nil {
			intn = rand.IntN
		}
		base = Shuffle(base, intn)
	}
	if err := base.Validate(); err != nil {
		return nil, fmt.Errorf("building %s catalog: %w", group, err)
	}
	return base, nil
}

var (
	ErrEmptyCatalog  = errors.New("catalog has no scenarios")
	ErrEmptyScenario = errors.New("scenario has no stages")
	ErrInvalidStage  = errors.New("invalid stage")
)

// Validate checks the structural invariants the session controller relies on.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return ErrEmptyCatalog
	}
	for _, sc := range c {
		if len(sc.Stages) == 0 {
			return fmt.Errorf("scenario %q: %w", sc.ID, ErrEmptyScenario)
		}
		for i, st := range sc.Stages {
			switch {
			case !st.Urgency.Valid():
				return fmt.Errorf("scenario %q stage %d: urgency %q: %w", sc.ID, i, st.Urgency, ErrInvalidStage)
			case st.DurationSeconds <= 0:
				return fmt.Errorf("scenario %q stage %d: duration %d: %w", sc.ID, i, st.DurationSeconds, ErrInvalidStage)
			case st.DistanceKM < 0:
				return fmt.Errorf("scenario %q stage %d: distance %v: %w", sc.ID, i, st.DistanceKM, ErrInvalidStage)
			}
		}
	}
	return nil
}

// Shuffle returns a Fisher-Yates permutation of s. intn(n) must return a
// uniform value in [0, n). s is not modified.
func Shuffle[T any](s []T, intn func(n int) int) []T {
	out := slices.Clone(s)
	for i := len(out) - 1; i > 0; i-- {
		j := intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
