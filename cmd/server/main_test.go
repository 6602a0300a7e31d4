package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthz(t *testing.T) {
	api := &coreServices{}

	t.Run("Healthy", func(t *testing.T) {
		handler := api.healthz(func() error { return nil })

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", rr.Body.String())
	})

	t.Run("DatabaseDown", func(t *testing.T) {
		handler := api.healthz(func() error { return errors.New("connection refused") })

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
