package graph

import (
	"fmt"

	"github.com/pkg/errors"
)

// Role is the author of a Turn.
type Role int

const (
	RoleUser Role = iota + 1
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole is the inverse of Role.String.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "assistant":
		return RoleAssistant, nil
	default:
		return 0, errors.Errorf("unknown role %q", s)
	}
}

// Turn is one immutable conversational entry.
type Turn struct {
	Role    Role
	Content string
}

func UserTurn(content string) Turn      { return Turn{Role: RoleUser, Content: content} }
func AssistantTurn(content string) Turn { return Turn{Role: RoleAssistant, Content: content} }

// Signal is the routing decision written by the supervisor.
type Signal string

const (
	SignalNone       Signal = ""
	SignalResearcher Signal = "RESEARCHER"
	SignalVisualizer Signal = "VISUALIZER"
	SignalFinish     Signal = "FINISH"
)

// Stage is a state of the orchestrator loop.
type Stage string

const (
	StageSupervisor Stage = "supervisor"
	StageResearcher Stage = "researcher"
	StageReviewer   Stage = "reviewer"
	StageVisualizer Stage = "visualizer"
	StageFinish     Stage = "finish"
)

// ErrEmptyHistory is returned when routing is asked for on a state with no turns.
var ErrEmptyHistory = errors.New("conversation state has no turns")

// State is the conversation threaded through one routing cycle. Next, Cycles
// and Trace are control metadata and never part of the transcript.
type State struct {
	Turns  []Turn
	Next   Signal
	Cycles int
	Trace  []Stage
}

// NewState seeds a state with a copy of history so the caller's slice is never
// aliased by appends made during the run.
func NewState(history []Turn) *State {
	turns := make([]Turn, len(history), len(history)+2)
	copy(turns, history)
	return &State{Turns: turns}
}

func (s *State) Latest() (Turn, bool) {
	if len(s.Turns) == 0 {
		return Turn{}, false
	}
	return s.Turns[len(s.Turns)-1], true
}

func (s *State) Previous() (Turn, bool) {
	if len(s.Turns) < 2 {
		return Turn{}, false
	}
	return s.Turns[len(s.Turns)-2], true
}

func (s *State) Append(t Turn) {
	s.Turns = append(s.Turns, t)
}

// Supersede replaces the latest turn with t.
func (s *State) Supersede(t Turn) {
	if len(s.Turns) == 0 {
		s.Turns = append(s.Turns, t)
		return
	}
	s.Turns[len(s.Turns)-1] = t
}

// Transcript returns a copy of the turns.
func (s *State) Transcript() []Turn {
	out := make([]Turn, len(s.Turns))
	copy(out, s.Turns)
	return out
}

// Answer returns the content of the latest assistant turn, or "".
func (s *State) Answer() string {
	t, ok := s.Latest()
	if !ok || t.Role != RoleAssistant {
		return ""
	}
	return t.Content
}
