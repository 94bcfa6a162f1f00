package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sota-codex/codex/internal/document"
	"github.com/sota-codex/codex/internal/lint"
)

type skillSummary struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Triggers    []string `json:"triggers,omitempty"`
	Path        string   `json:"path"`
}

type skillDetail struct {
	skillSummary
	Tools []string `json:"tools,omitempty"`
	Body  string   `json:"body"`
}

type documentSummary struct {
	Path        string        `json:"path"`
	Kind        document.Kind `json:"kind"`
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSkills(w http.ResponseWriter, _ *http.Request) {
	idx, reg, _, _ := s.snapshot()
	out := make([]skillSummary, 0, reg.Len())
	for _, slug := range reg.Slugs() {
		def, ok := reg.Lookup(slug)
		if !ok {
			continue
		}
		entry, ok := idx.Skill(slug)
		if !ok {
			continue
		}
		out = append(out, skillSummary{
			Slug:        def.Slug,
			Name:        def.Meta.Name,
			Description: def.Meta.Description,
			Triggers:    def.Meta.Triggers,
			Path:        entry.Rel,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSkill(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	idx, reg, _, _ := s.snapshot()
	def, ok := reg.Lookup(slug)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown skill: "+slug)
		return
	}
	entry, ok := idx.Skill(slug)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown skill: "+slug)
		return
	}
	doc, err := document.NewStore(s.cfg.ProjectDir).Load(entry.Path, document.KindSkill)
	if err != nil {
		s.log.Error("load skill", zap.String("slug", slug), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load skill")
		return
	}
	respondJSON(w, http.StatusOK, skillDetail{
		skillSummary: skillSummary{
			Slug:        def.Slug,
			Name:        def.Meta.Name,
			Description: def.Meta.Description,
			Triggers:    def.Meta.Triggers,
			Path:        entry.Rel,
		},
		Tools: def.Meta.Tools,
		Body:  string(doc.Body),
	})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	idx, _, _, _ := s.snapshot()
	entries := idx.Documents()
	if raw := r.URL.Query().Get("kind"); raw != "" {
		kind := document.Kind(raw)
		if !kind.Valid() {
			respondError(w, http.StatusBadRequest,
				fmt.Sprintf("unknown kind %q, expected one of %v", raw, document.Kinds))
			return
		}
		entries = idx.ByKind(kind)
	}
	out := make([]documentSummary, 0, len(entries))
	for _, entry := range entries {
		out = append(out, documentSummary{
			Path:        entry.Rel,
			Kind:        entry.Kind,
			Name:        entry.Meta.Name,
			Description: entry.Meta.Description,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	task := r.URL.Query().Get("task")
	if task == "" {
		respondError(w, http.StatusBadRequest, "task query parameter is required")
		return
	}
	_, _, builder, _ := s.snapshot()
	ctx, err := builder.Build(task, r.URL.Query().Get("path"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, ctx)
}

// handleLintStream lints the whole corpus and streams one SSE event per
// finding, closing with a summary event.
func (s *Server) handleLintStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	idx, _, _, runner := s.snapshot()

	findings, err := runner.Lint(r.Context(), idx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	setupSSEHeaders(w)
	for _, finding := range findings {
		sendSSEEvent(w, flusher, "finding", finding)
		if r.Context().Err() != nil {
			return
		}
	}
	sendSSEEvent(w, flusher, "done", map[string]any{
		"documents": len(idx.Documents()),
		"findings":  len(findings),
		"errors":    lint.HasErrors(findings),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	if err := s.Refresh(); err != nil {
		s.log.Error("refresh corpus", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	idx, _, _, _ := s.snapshot()
	respondJSON(w, http.StatusOK, map[string]int{"documents": len(idx.Documents())})
}
