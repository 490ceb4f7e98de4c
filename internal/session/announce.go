package session

import "github.com/playperu/handover/internal/handover"

// Utterance is a spoken stage alert.
type Utterance struct {
	ScenarioIndex int              `json:"scenarioIndex"`
	StageIndex    int              `json:"stageIndex"`
	Urgency       handover.Urgency `json:"urgency"`
	Text          string           `json:"text"`
	Voice         handover.Voice   `json:"voice"`
}

// Announcer speaks stage alerts. It is fire-and-forget: implementations
// must return promptly, and a missing or failing speech engine is ignored.
type Announcer interface {
	Announce(Utterance)
}

// AnnouncerFunc adapts a function to Announcer.
type AnnouncerFunc func(Utterance)

func (f AnnouncerFunc) Announce(u Utterance) { f(u) }

// announce runs outside the controller lock.
func (c *Controller) announce(snap Snapshot) {
	if c.announcer == nil || snap.Stage == nil || snap.Alert == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("announcer panicked", "recovered", r)
		}
	}()
	c.announcer.Announce(Utterance{
		ScenarioIndex: snap.ScenarioIndex,
		StageIndex:    snap.StageIndex,
		Urgency:       snap.Stage.Urgency,
		Text:          snap.Alert.VoiceMessage,
		Voice:         handover.VoiceFor(snap.Stage.Urgency),
	})
}
