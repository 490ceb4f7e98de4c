// Package handover defines the domain types of the takeover experiment:
// stages, scenarios, groups and reaction records.
// It imports nothing outside the standard library.
package handover

import (
	"fmt"
	"time"
)

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

type Hazard string

const (
	HazardConstruction  Hazard = "construction"
	HazardWeather       Hazard = "weather"
	HazardAccident      Hazard = "accident"
	HazardSensorFailure Hazard = "sensor-failure"
)

// Group selects the alert condition a participant is assigned to.
type Group string

const (
	// GroupA shows context-rich, escalating alerts.
	GroupA Group = "A"
	// GroupB shows a generic alert per scenario.
	GroupB Group = "B"
)

// ParseGroup accepts "A"/"B" in either case.
func ParseGroup(s string) (Group, error) {
	switch s {
	case "A", "a":
		return GroupA, nil
	case "B", "b":
		return GroupB, nil
	}
	return "", fmt.Errorf("unknown group %q", s)
}

// Stage is one timed phase of a scenario.
type Stage struct {
	Urgency Urgency `json:"urgency"`
	// DistanceKM is the simulated distance to the hazard.
	DistanceKM float64 `json:"distanceKm"`
	// DurationSeconds is the countdown window of the stage.
	DurationSeconds int `json:"durationSeconds"`
	// Message and VoiceMessage are empty for generic-alert scenarios.
	Message      string `json:"message,omitempty"`
	VoiceMessage string `json:"voiceMessage,omitempty"`
}

func (s Stage) Duration() time.Duration {
	return time.Duration(s.DurationSeconds) * time.Second
}

// Scenario is one simulated hazard encounter.
type Scenario struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Hazard Hazard  `json:"hazard"`
	Stages []Stage `json:"stages"`
}

// ReactionRecord is one successful take-control action.
type ReactionRecord struct {
	Scenario string  `json:"scenario"`
	Seconds  float64 `json:"time"`
}
