package handler

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"taskflow/internal/model"
)

const (
	statusTag   = "task_status"
	priorityTag = "task_priority"
)

var (
	statusList   = strings.Join(model.Statuses, ", ")
	priorityList = strings.Join(model.Priorities, ", ")

	registerOnce sync.Once
)

// RegisterValidators installs the task field validators on gin's binding
// engine and reports fields by their JSON names. Safe to call repeatedly.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation(statusTag, func(fl validator.FieldLevel) bool {
			return model.IsValidStatus(fl.Field().String())
		})
		_ = v.RegisterValidation(priorityTag, func(fl validator.FieldLevel) bool {
			return model.IsValidPriority(fl.Field().String())
		})
	})
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
