package graph

import "strings"

// DiagramHint is printed by calling interfaces when an answer carries a flowchart.
const DiagramHint = "Flowchart detected! Copy the code above into https://mermaid.live to view it."

var diagramHeaders = []string{"graph TD", "graph LR"}

// Answer is what a calling interface shows for one query.
type Answer struct {
	Text       string  `json:"answer"`
	Diagram    string  `json:"diagram,omitempty"`
	HasDiagram bool    `json:"has_diagram"`
	Trace      []Stage `json:"trace,omitempty"`
}

// FinalAnswer extracts the user-facing answer from a finished state.
func FinalAnswer(s *State) Answer {
	text := s.Answer()
	return Answer{
		Text:       text,
		Diagram:    ExtractDiagram(text),
		HasDiagram: HasDiagram(text),
		Trace:      append([]Stage(nil), s.Trace...),
	}
}

// HasDiagram is the loose detection signal: any flowchart header anywhere.
func HasDiagram(text string) bool {
	for _, h := range diagramHeaders {
		if strings.Contains(text, h) {
			return true
		}
	}
	return false
}

// ExtractDiagram returns the body of the first fenced block whose first line
// is a flowchart header, or "".
func ExtractDiagram(text string) string {
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
			continue
		}
		end := i + 1
		for end < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[end]), "```") {
			end++
		}
		body := lines[i+1 : end]
		if len(body) > 0 && isDiagramHeader(strings.TrimSpace(body[0])) {
			return strings.TrimSpace(strings.Join(body, "\n"))
		}
		i = end
	}
	return ""
}

func isDiagramHeader(line string) bool {
	for _, h := range diagramHeaders {
		if line == h {
			return true
		}
	}
	return false
}
