package summary

import (
	"fmt"
	"math"

	"taskflow/internal/model"
)

// Fallback builds the statistical summary used when text generation is
// unavailable. tasks must not be empty.
func Fallback(projectName string, tasks []model.Task) string {
	var todo, inProgress, done, high, medium, low int
	for _, t := range tasks {
		switch t.Status {
		case model.StatusToDo:
			todo++
		case model.StatusInProgress:
			inProgress++
		case model.StatusDone:
			done++
		}
		switch t.Priority {
		case model.PriorityHigh:
			high++
		case model.PriorityMedium:
			medium++
		case model.PriorityLow:
			low++
		}
	}

	total := len(tasks)
	completion := int(math.Round(float64(done) / float64(total) * 100))

	taskNoun := "task"
	if total > 1 {
		taskNoun = "tasks"
	}
	progressVerb := "tasks are"
	if inProgress == 1 {
		progressVerb = "task is"
	}

	return fmt.Sprintf(
		"The %s project has %d %s with %d%% completion rate. "+
			"Currently %d %s in progress, %d pending, and %d completed. "+
			"Priority breakdown: %d high, %d medium, %d low priority tasks.",
		projectName, total, taskNoun, completion,
		inProgress, progressVerb, todo, done,
		high, medium, low,
	)
}
