package handler

import (
	"time"

	"taskflow/internal/filter"
	"taskflow/internal/model"
)

type ProjectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type SectionResponse struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
}

type TaskResponse struct {
	ID          string    `json:"id"`
	SectionID   string    `json:"sectionId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Assignee    string    `json:"assignee"`
	DueDate     *string   `json:"dueDate"`
	Effort      string    `json:"effort"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TaskGroupResponse struct {
	Key   string         `json:"key"`
	Tasks []TaskResponse `json:"tasks"`
}

type GroupedTasksResponse struct {
	GroupBy string              `json:"groupBy"`
	Groups  []TaskGroupResponse `json:"groups"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toProjectResponse(p *model.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toSectionResponse(s *model.Section) SectionResponse {
	return SectionResponse{
		ID:        s.ID.String(),
		ProjectID: s.ProjectID.String(),
		Name:      s.Name,
		Order:     s.Order,
	}
}

func toTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID.String(),
		SectionID:   t.SectionID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Assignee:    t.Assignee,
		DueDate:     model.FormatDate(t.DueDate),
		Effort:      t.Effort,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResponses(tasks []model.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = toTaskResponse(&tasks[i])
	}
	return out
}

func toGroupedResponse(groupBy string, groups []filter.Group) GroupedTasksResponse {
	out := GroupedTasksResponse{GroupBy: groupBy, Groups: make([]TaskGroupResponse, len(groups))}
	for i, g := range groups {
		out.Groups[i] = TaskGroupResponse{Key: g.Key, Tasks: toTaskResponses(g.Tasks)}
	}
	return out
}
