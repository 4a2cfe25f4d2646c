// Package suggest estimates effort and predicts priority for a task from
// keyword matches in its text and the distance to its due date.
package suggest

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrTitleRequired is returned when a suggestion is requested without a title.
var ErrTitleRequired = errors.New("task title is required")

// Levels shared by effort and priority.
const (
	levelLow    = "Low"
	levelMedium = "Medium"
	levelHigh   = "High"
)

const (
	effortReasoning   = "Based on task complexity and keywords detected"
	priorityReasoning = "Based on task analysis"
	defaultReasoning  = "Default suggestion"

	longTextWords = 50
	day           = 24 * time.Hour
)

type EffortEstimate struct {
	Effort     string `json:"effort"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

type PriorityPrediction struct {
	Priority   string `json:"priority"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

type Suggestion struct {
	Effort             string `json:"effort"`
	Priority           string `json:"priority"`
	EffortConfidence   int    `json:"effortConfidence"`
	PriorityConfidence int    `json:"priorityConfidence"`
	EffortReasoning    string `json:"effortReasoning"`
	PriorityReasoning  string `json:"priorityReasoning"`
}

// DefaultSuggestion is returned when the combined suggestion cannot be computed.
func DefaultSuggestion() Suggestion {
	return Suggestion{
		Effort:             levelMedium,
		Priority:           levelMedium,
		EffortConfidence:   50,
		PriorityConfidence: 50,
		EffortReasoning:    defaultReasoning,
		PriorityReasoning:  defaultReasoning,
	}
}

// Engine is stateless apart from its vocabularies and clock and is safe for
// concurrent use.
type Engine struct {
	tables Tables
	now    func() time.Time
}

type Option func(*Engine)

// WithClock overrides the time source used for due-date distances.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(tables Tables, opts ...Option) *Engine {
	e := &Engine{
		tables: Tables{
			Complexity: tables.Complexity.clone(),
			Priority:   tables.Priority.clone(),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func taskText(title, description string) string {
	return strings.ToLower(title + " " + description)
}

// EstimateEffort sizes a task as Low, Medium or High. High-tier matches
// accumulate; the low and medium tiers are only consulted while the effort
// is still Medium.
func (e *Engine) EstimateEffort(title, description string) (EffortEstimate, error) {
	if title == "" {
		return EffortEstimate{}, ErrTitleRequired
	}

	text := taskText(title, description)
	effort := levelMedium
	confidence := 0.0

	for _, kw := range e.tables.Complexity.High {
		if strings.Contains(text, kw) {
			effort = levelHigh
			confidence += 0.3
		}
	}

	if effort == levelMedium {
		for _, kw := range e.tables.Complexity.Low {
			if strings.Contains(text, kw) {
				effort = levelLow
				confidence += 0.3
			}
		}
	}

	if effort == levelMedium {
		for _, kw := range e.tables.Complexity.Medium {
			if strings.Contains(text, kw) {
				confidence += 0.2
			}
		}
	}

	// Words are counted by single spaces, so runs of spaces count as extra words.
	if len(strings.Split(text, " ")) > longTextWords {
		effort = escalate(effort)
		confidence += 0.1
	}

	return EffortEstimate{
		Effort:     effort,
		Confidence: percent(confidence),
		Reasoning:  effortReasoning,
	}, nil
}

// PredictPriority suggests a priority. Each keyword tier stops at its first
// match; a due date within a week can raise the result.
func (e *Engine) PredictPriority(title, description string, dueDate *time.Time) (PriorityPrediction, error) {
	if title == "" {
		return PriorityPrediction{}, ErrTitleRequired
	}

	text := taskText(title, description)
	priority := levelMedium
	confidence := 0.0
	var reasons []string

	if kw, ok := firstMatch(text, e.tables.Priority.High); ok {
		priority = levelHigh
		confidence += 0.4
		reasons = append(reasons, fmt.Sprintf("Contains urgent keyword: %q", kw))
	}

	if priority == levelMedium {
		if kw, ok := firstMatch(text, e.tables.Priority.Low); ok {
			priority = levelLow
			confidence += 0.3
			reasons = append(reasons, fmt.Sprintf("Contains low-priority keyword: %q", kw))
		}
	}

	if priority == levelMedium {
		if kw, ok := firstMatch(text, e.tables.Priority.Medium); ok {
			confidence += 0.2
			reasons = append(reasons, fmt.Sprintf("Contains standard keyword: %q", kw))
		}
	}

	if dueDate != nil {
		days := int(math.Ceil(float64(dueDate.Sub(e.now())) / float64(day)))
		switch {
		case days <= 2:
			priority = escalate(priority)
			confidence += 0.3
			reasons = append(reasons, fmt.Sprintf("Due in %d days", days))
		case days <= 7:
			if priority == levelLow {
				priority = levelMedium
			}
			confidence += 0.2
			reasons = append(reasons, fmt.Sprintf("Due in %d days", days))
		}
	}

	reasoning := priorityReasoning
	if len(reasons) > 0 {
		reasoning = strings.Join(reasons, "; ")
	}

	return PriorityPrediction{
		Priority:   priority,
		Confidence: percent(confidence),
		Reasoning:  reasoning,
	}, nil
}

// Suggest runs both estimators over the same input. It never fails for a
// non-empty title: unexpected failures degrade to DefaultSuggestion.
func (e *Engine) Suggest(title, description string, dueDate *time.Time) (s Suggestion, err error) {
	if title == "" {
		return Suggestion{}, ErrTitleRequired
	}

	defer func() {
		if r := recover(); r != nil {
			s, err = DefaultSuggestion(), nil
		}
	}()

	effort, err := e.EstimateEffort(title, description)
	if err != nil {
		return DefaultSuggestion(), nil
	}
	priority, err := e.PredictPriority(title, description, dueDate)
	if err != nil {
		return DefaultSuggestion(), nil
	}

	return Suggestion{
		Effort:             effort.Effort,
		Priority:           priority.Priority,
		EffortConfidence:   effort.Confidence,
		PriorityConfidence: priority.Confidence,
		EffortReasoning:    effort.Reasoning,
		PriorityReasoning:  priority.Reasoning,
	}, nil
}

func firstMatch(text string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}

// escalate moves one level up: Low -> Medium -> High.
func escalate(level string) string {
	switch level {
	case levelLow:
		return levelMedium
	case levelMedium:
		return levelHigh
	default:
		return level
	}
}

// percent clamps an accumulated score to [0, 1] and renders it as a
// rounded percentage.
func percent(score float64) int {
	return int(math.Round(math.Max(0, math.Min(score, 1.0)) * 100))
}
