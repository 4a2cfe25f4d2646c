package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"taskflow/internal/handler"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	r := newRouter("")
	h := handler.NewHealthHandler(pingerFunc(func(context.Context) error { return nil }))
	r.GET("/health", h.Health)

	resp := doJSON(r, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Server is running"}`, resp.Body.String())
}

func TestReady(t *testing.T) {
	r := newRouter("")
	healthy := handler.NewHealthHandler(pingerFunc(func(context.Context) error { return nil }))
	broken := handler.NewHealthHandler(pingerFunc(func(context.Context) error { return errors.New("connection refused") }))
	r.GET("/readyz", healthy.Ready)
	r.GET("/readyz-broken", broken.Ready)

	ok := doJSON(r, "GET", "/readyz", nil)
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Contains(t, ok.Body.String(), "ready")

	down := doJSON(r, "GET", "/readyz-broken", nil)
	assert.Equal(t, http.StatusInternalServerError, down.Code)
	assert.Contains(t, down.Body.String(), "db_not_ready")
}
