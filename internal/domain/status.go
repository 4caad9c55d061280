package domain

import "strings"

// Status is the normalized board bucket of an issue.
type Status string

const (
	StatusToDo       Status = "ToDo"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// Statuses lists every bucket in board order.
var Statuses = []Status{StatusToDo, StatusInProgress, StatusDone}

var wireNames = map[Status]string{
	StatusToDo:       "To Do",
	StatusInProgress: "In Progress",
	StatusDone:       "Done",
}

var normalized = map[string]Status{
	"to do":       StatusToDo,
	"in progress": StatusInProgress,
	"done":        StatusDone,
}

// Classify maps a raw server status onto a bucket. Matching ignores case,
// surrounding whitespace and runs of internal whitespace. Anything not
// recognised lands in ToDo.
func Classify(raw string) Status {
	if status, ok := normalized[normalizeKey(raw)]; ok {
		return status
	}
	return StatusToDo
}

// ParseStatus accepts a bucket identifier ("InProgress") or a tracker name
// ("in progress"). Unlike Classify it reports unrecognised input instead of
// defaulting, so callers can reject typos in user input.
func ParseStatus(raw string) (Status, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, s := range Statuses {
		if strings.EqualFold(trimmed, string(s)) {
			return s, true
		}
	}
	status, ok := normalized[normalizeKey(trimmed)]
	return status, ok
}

func normalizeKey(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// WireName returns the name the tracker uses for this status ("In Progress").
func (s Status) WireName() string {
	if name, ok := wireNames[s]; ok {
		return name
	}
	return wireNames[StatusToDo]
}

// Next returns the following bucket in board order, wrapping Done to ToDo.
func (s Status) Next() Status {
	return s.offset(1)
}

// Prev returns the preceding bucket in board order, wrapping ToDo to Done.
func (s Status) Prev() Status {
	return s.offset(len(Statuses) - 1)
}

func (s Status) offset(n int) Status {
	for i, candidate := range Statuses {
		if candidate == s {
			return Statuses[(i+n)%len(Statuses)]
		}
	}
	return StatusToDo
}
