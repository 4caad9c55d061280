// Package standup drives the daily standup: auto-fill from the sprint,
// summary generation, the autosaved local form and local and server-side
// history.
package standup

import "strings"

// Form is the three standup answers.
type Form struct {
	Yesterday string `json:"yesterday"`
	Today     string `json:"today"`
	Blockers  string `json:"blockers"`
}

// IsEmpty reports whether every answer is blank.
func (f Form) IsEmpty() bool {
	return strings.TrimSpace(f.Yesterday) == "" &&
		strings.TrimSpace(f.Today) == "" &&
		strings.TrimSpace(f.Blockers) == ""
}

// AutoFill is the sprint-derived proposal for the form plus unscheduled
// backlog work.
type AutoFill struct {
	Yesterday       string `json:"yesterday"`
	Today           string `json:"today"`
	Blockers        string `json:"blockers"`
	UpcomingBacklog string `json:"upcoming_backlog"`
}

// Form returns the proposal's answers.
func (a AutoFill) Form() Form {
	return Form{Yesterday: a.Yesterday, Today: a.Today, Blockers: a.Blockers}
}

// Record is a standup stored by the server.
type Record struct {
	ID        int    `json:"id"`
	Yesterday string `json:"yesterday"`
	Today     string `json:"today"`
	Blockers  string `json:"blockers"`
	Summary   string `json:"summary"`
}

// Match is a past standup returned by a similarity search.
type Match struct {
	Document string         `json:"document"`
	Metadata map[string]any `json:"metadata"`
}

// Answer is a reply grounded in past standups.
type Answer struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	ContextUsed []string `json:"context_used"`
}
