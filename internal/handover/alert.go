package handover

// Alert is the text shown and spoken for a stage.
type Alert struct {
	Message      string `json:"message"`
	VoiceMessage string `json:"voiceMessage"`
}

// GenericAlert is the context-free alert used when a stage carries no
// message of its own.
func GenericAlert(u Urgency) Alert {
	switch u {
	case UrgencyHigh:
		return Alert{Message: "TAKE CONTROL NOW!", VoiceMessage: "Take control of the vehicle now!"}
	case UrgencyMedium:
		return Alert{Message: "Please take control", VoiceMessage: "Please take control of the vehicle."}
	default:
		return Alert{Message: "Prepare to take control", VoiceMessage: "Prepare to take control of the vehicle."}
	}
}

// AlertFor returns the stage's own text, or the generic alert for its
// urgency when it has none.
func AlertFor(s Stage) Alert {
	if s.Message == "" && s.VoiceMessage == "" {
		return GenericAlert(s.Urgency)
	}
	return Alert{Message: s.Message, VoiceMessage: s.VoiceMessage}
}

// Voice holds speech synthesis parameters.
type Voice struct {
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

func VoiceFor(u Urgency) Voice {
	switch u {
	case UrgencyHigh:
		return Voice{Rate: 1.2, Pitch: 1.1, Volume: 1.0}
	case UrgencyMedium:
		return Voice{Rate: 1.0, Pitch: 1.0, Volume: 0.8}
	default:
		return Voice{Rate: 0.9, Pitch: 1.0, Volume: 0.8}
	}
}
