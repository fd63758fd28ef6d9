package graph

import "strings"

var (
	visualizeTriggers = []string{"visualize", "flowchart"}
	confusionTrigger  = "don't understand"
)

// Route decides the next stage from the latest turn and records it in s.Next.
// Keyword triggers take priority over the author of the turn.
func Route(s *State) (Signal, error) {
	latest, ok := s.Latest()
	if !ok {
		return SignalNone, ErrEmptyHistory
	}

	text := strings.ToLower(latest.Content)
	sig := SignalResearcher
	switch {
	case containsAny(text, visualizeTriggers):
		sig = SignalVisualizer
	case strings.Contains(text, confusionTrigger):
		sig = SignalVisualizer
	default:
		switch latest.Role {
		case RoleAssistant:
			sig = SignalFinish
		case RoleUser:
			sig = SignalResearcher
		}
	}

	s.Next = sig
	return sig, nil
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
