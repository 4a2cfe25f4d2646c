// Package filter narrows and groups a project's task listing.
package filter

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"taskflow/internal/model"
)

const (
	GroupByStatus   = "status"
	GroupByPriority = "priority"
)

var (
	ErrInvalidGroupBy = errors.New("groupBy must be status or priority")
	ErrInvalidRange   = errors.New("dueFrom and dueTo must be dates")
)

// Criteria are the optional narrowing rules; zero values match everything.
type Criteria struct {
	Status   string
	Priority string
	Assignee string
	DueFrom  *time.Time
	DueTo    *time.Time
	GroupBy  string
}

type Group struct {
	Key   string
	Tasks []model.Task
}

// FromQuery reads criteria from URL query parameters.
func FromQuery(q url.Values) (Criteria, error) {
	c := Criteria{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Assignee: strings.TrimSpace(q.Get("assignee")),
		GroupBy:  q.Get("groupBy"),
	}

	switch c.GroupBy {
	case "", GroupByStatus, GroupByPriority:
	default:
		return Criteria{}, ErrInvalidGroupBy
	}

	var err error
	if c.DueFrom, err = optionalDate(q.Get("dueFrom")); err != nil {
		return Criteria{}, err
	}
	if c.DueTo, err = optionalDate(q.Get("dueTo")); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

func optionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := model.ParseDate(raw)
	if err != nil {
		return nil, ErrInvalidRange
	}
	return &t, nil
}

// IsZero reports whether the criteria neither narrow nor group.
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// Apply keeps the tasks matching every set criterion, preserving order.
func (c Criteria) Apply(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if c.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func (c Criteria) matches(t model.Task) bool {
	if c.Status != "" && t.Status != c.Status {
		return false
	}
	if c.Priority != "" && t.Priority != c.Priority {
		return false
	}
	if c.Assignee != "" && !strings.Contains(strings.ToLower(t.Assignee), strings.ToLower(c.Assignee)) {
		return false
	}
	if c.DueFrom != nil || c.DueTo != nil {
		if t.DueDate == nil {
			return false
		}
		day := t.DueDate.Format(model.DateLayout)
		if c.DueFrom != nil && day < c.DueFrom.Format(model.DateLayout) {
			return false
		}
		if c.DueTo != nil && day > c.DueTo.Format(model.DateLayout) {
			return false
		}
	}
	return true
}

// Group buckets tasks by the criteria's groupBy field in display order.
// Empty buckets and tasks with an unknown key are left out.
func (c Criteria) Group(tasks []model.Task) []Group {
	var keys []string
	var keyOf func(model.Task) string
	switch c.GroupBy {
	case GroupByStatus:
		keys, keyOf = model.Statuses, func(t model.Task) string { return t.Status }
	case GroupByPriority:
		keys, keyOf = model.Priorities, func(t model.Task) string { return t.Priority }
	default:
		return nil
	}

	buckets := make(map[string][]model.Task, len(keys))
	for _, t := range tasks {
		k := keyOf(t)
		buckets[k] = append(buckets[k], t)
	}

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		if len(buckets[k]) == 0 {
			continue
		}
		groups = append(groups, Group{Key: k, Tasks: buckets[k]})
	}
	return groups
}
