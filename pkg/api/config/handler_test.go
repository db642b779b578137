package config

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcf_valuation/pkg/core/agent"
	"dcf_valuation/pkg/core/llm"
)

type namedProvider string

func (p namedProvider) Name() string { return string(p) }

func (p namedProvider) GenerateResponse(context.Context, string, string, llm.Options) (string, error) {
	return "", nil
}

func newRouter() (http.Handler, *agent.Manager) {
	mgr := agent.NewManager(agent.Config{ActiveProvider: "gemini"}, zerolog.Nop(),
		namedProvider("gemini"), namedProvider("deepseek"))
	r := chi.NewRouter()
	r.Route("/api", NewHandler(mgr, zerolog.Nop()).Register)
	return r, mgr
}

func TestHandleConfig(t *testing.T) {
	router, _ := newRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "gemini", resp.ActiveProvider)
	assert.Equal(t, []string{"deepseek", "gemini"}, resp.Available)
}

func TestHandleSwitch(t *testing.T) {
	router, mgr := newRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/config/switch", strings.NewReader(`{"provider":"deepseek"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deepseek", mgr.ActiveProvider())

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "deepseek", resp.ActiveProvider)
}

func TestHandleSwitchRejects(t *testing.T) {
	router, mgr := newRouter()

	for _, body := range []string{`{"provider":"kimi"}`, `{bad`} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/config/switch", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Equal(t, "gemini", mgr.ActiveProvider())
}
