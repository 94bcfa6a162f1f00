package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sota-codex/codex/internal/config"
)

func fixtureServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("AGENTS.md", "# House rules\n\nSee [missing](gone.md).\n")
	write(".codex/skills/code-review/SKILL.md",
		"---\nname: code-review\ndescription: review skill\nkind: skill\ntriggers:\n  - review\n---\n\nWalk the checklist.\n")

	cfg, err := config.NewConfig(root)
	require.NoError(t, err)
	srv, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := fixtureServer(t)
	rec := get(t, srv.Handler(), "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestSkillsList(t *testing.T) {
	srv := fixtureServer(t)
	rec := get(t, srv.Handler(), "/api/skills")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []skillSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "code-review", out[0].Slug)
	assert.Equal(t, ".codex/skills/code-review/SKILL.md", out[0].Path)
}

func TestSkillDetail(t *testing.T) {
	srv := fixtureServer(t)
	rec := get(t, srv.Handler(), "/api/skills/code-review")
	require.Equal(t, http.StatusOK, rec.Code)

	var out skillDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out.Body, "Walk the checklist.")
	assert.Equal(t, []string{"review"}, out.Triggers)
}

func TestSkillDetailNotFound(t *testing.T) {
	srv := fixtureServer(t)
	rec := get(t, srv.Handler(), "/api/skills/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentsFilterByKind(t *testing.T) {
	srv := fixtureServer(t)
	rec := get(t, srv.Handler(), "/api/documents?kind=skill")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []documentSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "code-review", out[0].Name)
}

func TestDocumentsRejectsUnknownKind(t *testing.T) {
	srv := fixtureServer(t)
	rec := get(t, srv.Handler(), "/api/documents?kind=bogus")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bogus")
	assert.Contains(t, rec.Body.String(), "skill")
}

func TestComposeRequiresTask(t *testing.T) {
	srv := fixtureServer(t)
	rec := get(t, srv.Handler(), "/api/compose")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComposeReturnsSections(t *testing.T) {
	srv := fixtureServer(t)
	rec := get(t, srv.Handler(), "/api/compose?task=review+this+change")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source": "AGENTS.md"`)
	assert.Contains(t, rec.Body.String(), "code-review")
}

func TestLintStreamEmitsFindingsAndDone(t *testing.T) {
	srv := fixtureServer(t)
	rec := get(t, srv.Handler(), "/api/lint/stream")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: finding")
	assert.Contains(t, body, "link-resolves")
	assert.Contains(t, body, "event: done")
}

func TestRefreshPicksUpNewDocuments(t *testing.T) {
	srv := fixtureServer(t)
	write := filepath.Join(srv.cfg.ProjectDir, "web", "AGENTS.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(write), 0o755))
	require.NoError(t, os.WriteFile(write, []byte("# Frontend rules\n"), 0o644))

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 3, out["documents"])
}
