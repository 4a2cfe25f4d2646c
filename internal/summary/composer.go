// Package summary turns a project's tasks into a short status summary,
// either generated by an external model or computed from task statistics.
package summary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"taskflow/internal/llm"
	"taskflow/internal/metrics"
	"taskflow/internal/model"
)

// NoTasksMessage is returned for projects without tasks.
const NoTasksMessage = "No tasks found in this project yet. Add some tasks to generate an AI summary!"

const systemInstruction = "You are a project management assistant. Generate a concise 2-3 sentence summary of the project based on its tasks."

type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
	SourceCached    Source = "cached"
	SourceEmpty     Source = "empty"
)

type Result struct {
	Summary string `json:"summary"`
	Source  Source `json:"source"`
}

// Generator is the external text-generation capability.
type Generator interface {
	Configured() bool
	Summarize(ctx context.Context, prompt llm.Prompt) (string, error)
}

// Cache keeps generated summaries between requests.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Composer struct {
	gen      Generator
	cache    Cache
	fallback bool
	log      *zap.Logger
}

type Option func(*Composer)

func WithCache(cache Cache) Option {
	return func(c *Composer) {
		c.cache = cache
	}
}

// WithFallback controls whether upstream failures are answered with the
// statistical summary (the default) or returned to the caller.
func WithFallback(enabled bool) Option {
	return func(c *Composer) {
		c.fallback = enabled
	}
}

func NewComposer(gen Generator, log *zap.Logger, opts ...Option) *Composer {
	c := &Composer{
		gen:      gen,
		fallback: true,
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose summarizes the project. The only error returned with the
// fallback enabled is llm.ErrNotConfigured.
func (c *Composer) Compose(ctx context.Context, project model.Project, tasks []model.Task) (Result, error) {
	if len(tasks) == 0 {
		metrics.IncrementSummary(string(SourceEmpty))
		return Result{Summary: NoTasksMessage, Source: SourceEmpty}, nil
	}

	if !c.gen.Configured() {
		return Result{}, llm.ErrNotConfigured
	}

	listing := Listing(tasks)
	key := cacheKey(project, listing)

	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.log.Warn("Summary cache read failed", zap.String("project_id", project.ID.String()), zap.Error(err))
		} else if ok {
			metrics.IncrementSummary(string(SourceCached))
			return Result{Summary: cached, Source: SourceCached}, nil
		}
	}

	text, err := c.gen.Summarize(ctx, llm.Prompt{
		System: systemInstruction,
		User:   fmt.Sprintf("Project: %s\n\nTasks:\n%s\n\nGenerate a brief project summary.", project.Name, listing),
	})
	if err != nil {
		kind := llm.KindOf(err)
		metrics.IncrementSummaryUpstreamFailure(string(kind))
		if !c.fallback {
			return Result{}, err
		}

		c.log.Info("Text generation failed, using statistical summary",
			zap.String("project_id", project.ID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		metrics.IncrementSummary(string(SourceFallback))
		return Result{Summary: Fallback(project.Name, tasks), Source: SourceFallback}, nil
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, text); err != nil {
			c.log.Warn("Summary cache write failed", zap.String("project_id", project.ID.String()), zap.Error(err))
		}
	}

	metrics.IncrementSummary(string(SourceGenerated))
	return Result{Summary: text, Source: SourceGenerated}, nil
}

// Listing renders one line per task with its status and priority.
func Listing(tasks []model.Task) string {
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = fmt.Sprintf("- %s (Status: %s, Priority: %s)", t.Title, t.Status, t.Priority)
	}
	return strings.Join(lines, "\n")
}

func cacheKey(project model.Project, listing string) string {
	sum := sha256.Sum256([]byte(project.Name + "\n" + listing))
	return project.ID.String() + ":" + hex.EncodeToString(sum[:])
}
