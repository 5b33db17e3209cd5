package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingModule struct{}

func (pingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("tag")) })
}

func newTestRegistry() *Registry {
	gin.SetMode(gin.TestMode)
	return NewRegistry(gin.New())
}

func TestRegistryMountsModulesUnderAPI(t *testing.T) {
	reg := newTestRegistry()
	reg.Use(func(c *gin.Context) { c.Set("tag", "mw"); c.Next() })
	reg.Add(pingModule{})
	reg.RegisterAll()

	w := httptest.NewRecorder()
	reg.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mw", w.Body.String())
}

func TestHealthz(t *testing.T) {
	reg := newTestRegistry()
	reg.AddCheck("postgres", func(context.Context) error { return nil })
	reg.RegisterAll()

	w := httptest.NewRecorder()
	reg.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Data["postgres"])
}

func TestHealthzReportsFailingDependency(t *testing.T) {
	reg := newTestRegistry()
	reg.AddCheck("postgres", func(context.Context) error { return nil })
	reg.AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })
	reg.RegisterAll()

	w := httptest.NewRecorder()
	reg.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
