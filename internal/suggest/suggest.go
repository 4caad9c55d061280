// Package suggest requests AI grooming suggestions and duplicate candidates
// for backlog issues, and converts accepted suggestions into tracker updates.
package suggest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"scrummaster/internal/domain"
	"scrummaster/internal/jira"
)

// Suggestion is a transient grooming proposal for one issue. It is never
// sent to the tracker unless applied explicitly.
type Suggestion struct {
	Clarification      string
	AcceptanceCriteria string
	Effort             string
	Type               string
	Priority           string
	// Status is empty unless the service proposed a transition.
	Status string
}

// IsEmpty reports whether the suggestion carries nothing displayable.
func (s Suggestion) IsEmpty() bool {
	return s == Suggestion{}
}

// Duplicate is a backlog issue whose summary closely matches another's.
type Duplicate struct {
	Key     string  `json:"key"`
	Summary string  `json:"summary"`
	Score   float64 `json:"score"`
}

// Percent returns the match score as a whole percentage.
func (d Duplicate) Percent() int {
	return int(d.Score * 100)
}

// ApplyFields maps a suggestion onto an update: clarification replaces the
// summary, acceptance criteria replace the description, and status is
// included only when the suggestion names a known one. Nothing else is sent.
func ApplyFields(s Suggestion) jira.UpdateFields {
	var fields jira.UpdateFields
	if strings.TrimSpace(s.Clarification) != "" {
		fields.Summary = jira.String(s.Clarification)
	}
	if strings.TrimSpace(s.AcceptanceCriteria) != "" {
		fields.Description = jira.String(s.AcceptanceCriteria)
	}
	if status, ok := domain.ParseStatus(s.Status); ok {
		fields.Status = jira.StatusPtr(status)
	}
	return fields
}

// wireSuggestion decodes the service reply, which is model output and
// loosely typed.
type wireSuggestion struct {
	Clarification      flexString `json:"clarification"`
	AcceptanceCriteria flexString `json:"acceptance_criteria"`
	Effort             flexString `json:"effort"`
	Type               flexString `json:"type"`
	Priority           flexString `json:"priority"`
	Status             flexString `json:"status"`
}

func (w wireSuggestion) toSuggestion() Suggestion {
	return Suggestion{
		Clarification:      string(w.Clarification),
		AcceptanceCriteria: string(w.AcceptanceCriteria),
		Effort:             string(w.Effort),
		Type:               string(w.Type),
		Priority:           string(w.Priority),
		Status:             string(w.Status),
	}
}

// flexString accepts a JSON string, number, bool, or list of those. Lists
// become one "- item" line per entry.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			lines = append(lines, "- "+scalarString(item))
		}
		*f = flexString(strings.Join(lines, "\n"))
	default:
		*f = flexString(scalarString(v))
	}
	return nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any:
		encoded, _ := json.Marshal(t)
		return string(encoded)
	default:
		return fmt.Sprint(t)
	}
}
