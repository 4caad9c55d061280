package jira

import (
	"scrummaster/internal/domain"
)

// wireIssue is the JSON shape of /jira/issues and /backlog entries. Backlog
// entries carry no status.
type wireIssue struct {
	Key         string  `json:"key"`
	Summary     string  `json:"summary"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Assignee    *string `json:"assignee"`
}

func (w wireIssue) toDomain() (domain.Issue, error) {
	var description, assignee string
	if w.Description != nil {
		description = *w.Description
	}
	if w.Assignee != nil {
		assignee = *w.Assignee
	}
	return domain.NewIssue(w.Key, w.Summary, description, w.Status, assignee)
}

type updateRequest struct {
	Key         string  `json:"key"`
	Summary     *string `json:"summary,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Assignee    *string `json:"assignee,omitempty"`
}

type createRequest struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type createResponse struct {
	Key string `json:"key"`
}

type keyRequest struct {
	Key string `json:"key"`
}

type deleteResponse struct {
	Archived string `json:"archived"`
	Error    string `json:"error"`
}

type applySuggestionRequest struct {
	Key            string  `json:"key"`
	NewSummary     *string `json:"new_summary,omitempty"`
	NewDescription *string `json:"new_description,omitempty"`
	Status         *string `json:"status,omitempty"`
}

type moveResponse struct {
	Result string `json:"result"`
	Error  string `json:"error"`
}

func wireStatus(s *domain.Status) *string {
	if s == nil {
		return nil
	}
	name := s.WireName()
	return &name
}
