package summary_test

import (
	"context"
	"strings"
	"testing"

	"taskflow/internal/llm"
	"taskflow/internal/model"
	"taskflow/internal/summary"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	configured bool
	text       string
	err        error
	calls      int
	lastPrompt llm.Prompt
}

func (f *fakeGenerator) Configured() bool { return f.configured }

func (f *fakeGenerator) Summarize(_ context.Context, prompt llm.Prompt) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.text, f.err
}

type memoryCache struct {
	values map[string]string
	getErr error
	sets   int
}

func (m *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key, value string) error {
	m.sets++
	m.values[key] = value
	return nil
}

func project() model.Project {
	return model.Project{ID: uuid.New(), Name: "Apollo"}
}

func sampleTasks() []model.Task {
	return []model.Task{
		{Title: "Design", Status: model.StatusDone, Priority: model.PriorityHigh},
		{Title: "Build", Status: model.StatusDone, Priority: model.PriorityMedium},
		{Title: "Test", Status: model.StatusInProgress, Priority: model.PriorityMedium},
		{Title: "Ship", Status: model.StatusToDo, Priority: model.PriorityLow},
	}
}

func TestCompose_NoTasksSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{configured: false}
	composer := summary.NewComposer(gen, zap.NewNop())

	result, err := composer.Compose(context.Background(), project(), nil)

	require.NoError(t, err)
	assert.Equal(t, summary.NoTasksMessage, result.Summary)
	assert.Equal(t, summary.SourceEmpty, result.Source)
	assert.Equal(t, 0, gen.calls)
}

func TestCompose_NotConfigured(t *testing.T) {
	gen := &fakeGenerator{configured: false}
	composer := summary.NewComposer(gen, zap.NewNop())

	_, err := composer.Compose(context.Background(), project(), sampleTasks())

	assert.ErrorIs(t, err, llm.ErrNotConfigured)
	assert.Equal(t, 0, gen.calls)
}

func TestCompose_Generated(t *testing.T) {
	gen := &fakeGenerator{configured: true, text: "Apollo is halfway there."}
	composer := summary.NewComposer(gen, zap.NewNop())

	result, err := composer.Compose(context.Background(), project(), sampleTasks())

	require.NoError(t, err)
	assert.Equal(t, "Apollo is halfway there.", result.Summary)
	assert.Equal(t, summary.SourceGenerated, result.Source)
	assert.Contains(t, gen.lastPrompt.System, "2-3 sentence")
	assert.Contains(t, gen.lastPrompt.User, "Project: Apollo")
	assert.Contains(t, gen.lastPrompt.User, "- Test (Status: In Progress, Priority: Medium)")
}

func TestCompose_FallsBackOnEveryUpstreamKind(t *testing.T) {
	kinds := []llm.Kind{llm.KindQuota, llm.KindInvalidCredential, llm.KindNetwork, llm.KindGeneric}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			gen := &fakeGenerator{configured: true, err: &llm.UpstreamError{Kind: kind, Message: "boom"}}
			composer := summary.NewComposer(gen, zap.NewNop())

			result, err := composer.Compose(context.Background(), project(), sampleTasks())

			require.NoError(t, err)
			assert.Equal(t, summary.SourceFallback, result.Source)
			assert.Contains(t, result.Summary, "50% completion rate")
		})
	}
}

func TestCompose_FallbackDisabledSurfacesError(t *testing.T) {
	upstream := &llm.UpstreamError{Kind: llm.KindQuota, Message: "quota"}
	gen := &fakeGenerator{configured: true, err: upstream}
	composer := summary.NewComposer(gen, zap.NewNop(), summary.WithFallback(false))

	_, err := composer.Compose(context.Background(), project(), sampleTasks())

	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, llm.KindQuota, llm.KindOf(err))
}

func TestCompose_CachesGeneratedSummaries(t *testing.T) {
	gen := &fakeGenerator{configured: true, text: "Fresh summary"}
	cache := &memoryCache{values: map[string]string{}}
	composer := summary.NewComposer(gen, zap.NewNop(), summary.WithCache(cache))
	p := project()

	first, err := composer.Compose(context.Background(), p, sampleTasks())
	require.NoError(t, err)
	assert.Equal(t, summary.SourceGenerated, first.Source)

	second, err := composer.Compose(context.Background(), p, sampleTasks())
	require.NoError(t, err)
	assert.Equal(t, summary.SourceCached, second.Source)
	assert.Equal(t, "Fresh summary", second.Summary)
	assert.Equal(t, 1, gen.calls)

	changed := append(sampleTasks(), model.Task{Title: "Extra", Status: model.StatusToDo, Priority: model.PriorityLow})
	third, err := composer.Compose(context.Background(), p, changed)
	require.NoError(t, err)
	assert.Equal(t, summary.SourceGenerated, third.Source)
	assert.Equal(t, 2, gen.calls)
}

func TestCompose_FallbackIsNotCached(t *testing.T) {
	gen := &fakeGenerator{configured: true, err: &llm.UpstreamError{Kind: llm.KindNetwork}}
	cache := &memoryCache{values: map[string]string{}}
	composer := summary.NewComposer(gen, zap.NewNop(), summary.WithCache(cache))

	_, err := composer.Compose(context.Background(), project(), sampleTasks())

	require.NoError(t, err)
	assert.Equal(t, 0, cache.sets)
}

func TestCompose_CacheReadErrorStillGenerates(t *testing.T) {
	gen := &fakeGenerator{configured: true, text: "ok"}
	cache := &memoryCache{values: map[string]string{}, getErr: assert.AnError}
	composer := summary.NewComposer(gen, zap.NewNop(), summary.WithCache(cache))

	result, err := composer.Compose(context.Background(), project(), sampleTasks())

	require.NoError(t, err)
	assert.Equal(t, summary.SourceGenerated, result.Source)
}

func TestFallback_Statistics(t *testing.T) {
	got := summary.Fallback("Apollo", sampleTasks())

	assert.Equal(t,
		"The Apollo project has 4 tasks with 50% completion rate. "+
			"Currently 1 task is in progress, 1 pending, and 2 completed. "+
			"Priority breakdown: 1 high, 2 medium, 1 low priority tasks.",
		got)
}

func TestFallback_SingleTaskAndRounding(t *testing.T) {
	single := summary.Fallback("Solo", []model.Task{{Status: model.StatusToDo, Priority: model.PriorityHigh}})
	assert.True(t, strings.HasPrefix(single, "The Solo project has 1 task with 0% completion rate."))
	assert.Contains(t, single, "Currently 0 tasks are in progress")

	thirds := summary.Fallback("Thirds", []model.Task{
		{Status: model.StatusDone}, {Status: model.StatusDone}, {Status: model.StatusInProgress},
	})
	assert.Contains(t, thirds, "67% completion rate")
}
