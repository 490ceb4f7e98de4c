package handover

// Tier is the qualitative reading of an average reaction time.
type Tier string

const (
	TierExcellent        Tier = "excellent"
	TierGood             Tier = "good"
	TierNeedsImprovement Tier = "needs improvement"
)

// Feedback is the sentence shown to the participant for the tier.
func (t Tier) Feedback() string {
	switch t {
	case TierExcellent:
		return "Excellent response times! You demonstrated quick situational awareness and fast handover reactions."
	case TierGood:
		return "Good performance. Your reaction times show solid awareness of the handover situations."
	default:
		return "Your reaction times suggest room for improvement. Consider how the UI clarity affects your response speed."
	}
}

func tierFor(avg float64) Tier {
	switch {
	case avg < 3:
		return TierExcellent
	case avg < 5:
		return TierGood
	default:
		return TierNeedsImprovement
	}
}

// Entry is one record of the per-scenario breakdown.
type Entry struct {
	Scenario string  `json:"scenario"`
	Seconds  float64 `json:"time"`
	// Good is true when the time is at or below the average.
	Good bool `json:"good"`
	// BarPercent is the time relative to the slowest record.
	BarPercent float64 `json:"barPercent"`
}

type Summary struct {
	Count    int     `json:"count"`
	Average  float64 `json:"average"`
	Fastest  float64 `json:"fastest"`
	Slowest  float64 `json:"slowest"`
	Tier     Tier    `json:"tier"`
	Feedback string  `json:"feedback"`
	Entries  []Entry `json:"entries"`
}

// Summarize aggregates reaction records. An empty list yields zero
// statistics.
func Summarize(records []ReactionRecord) Summary {
	s := Summary{Count: len(records), Entries: make([]Entry, 0, len(records))}

	if len(records) > 0 {
		var sum float64
		s.Fastest = records[0].Seconds
		s.Slowest = records[0].Seconds
		for _, r := range records {
			sum += r.Seconds
			s.Fastest = min(s.Fastest, r.Seconds)
			s.Slowest = max(s.Slowest, r.Seconds)
		}
		s.Average = sum / float64(len(records))
	}

	for _, r := range records {
		e := Entry{
			Scenario: r.Scenario,
			Seconds:  r.Seconds,
			Good:     r.Seconds <= s.Average,
		}
		if s.Slowest > 0 {
			e.BarPercent = r.Seconds / s.Slowest * 100
		}
		s.Entries = append(s.Entries, e)
	}

	s.Tier = tierFor(s.Average)
	s.Feedback = s.Tier.Feedback()
	return s
}
