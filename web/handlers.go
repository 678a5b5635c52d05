package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"propertyedge/models"
	"propertyedge/services"
	"propertyedge/storage"
	"propertyedge/utils"
)

const msgEmptyURL = "Please paste a Rightmove link."

// Analyzer runs one listing analysis and stores it.
type Analyzer interface {
	Analyze(ctx context.Context, url string) (*models.Analysis, error)
}

type Handler struct {
	analyzer     Analyzer
	store        storage.AnalysisStore
	logger       *utils.Logger
	historyLimit int
}

func NewHandler(analyzer Analyzer, store storage.AnalysisStore, logger *utils.Logger, historyLimit int) *Handler {
	if historyLimit <= 0 {
		historyLimit = 30
	}
	return &Handler{
		analyzer:     analyzer,
		store:        store,
		logger:       logger,
		historyLimit: historyLimit,
	}
}

type analyzeRequest struct {
	URL string `json:"url"`
}

type analyzeResult struct {
	*models.Analysis
	AnalysisID int64  `json:"analysis_id"`
	Permalink  string `json:"permalink"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Dashboard handles GET /
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context(), h.logger)

	rows, err := h.store.List(r.Context(), h.historyLimit)
	if err != nil {
		logger.Error("[web] List analyses: %v", err)
		http.Error(w, "could not load analyses", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "dashboard.html", map[string]any{"Analyses": rows})
}

// Analyze handles POST /analyze with a JSON body {"url": "..."}. A form
// field named url is accepted too.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context(), h.logger)

	url := strings.TrimSpace(requestURL(r))
	if url == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgEmptyURL})
		return
	}

	a, err := h.analyzer.Analyze(r.Context(), url)
	if errors.Is(err, services.ErrEmptyURL) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgEmptyURL})
		return
	}
	if err != nil {
		logger.Warn("[web] Analysis of %s failed: %v", url, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Analysis failed: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"result": analyzeResult{
			Analysis:   a,
			AnalysisID: a.ID,
			Permalink:  fmt.Sprintf("/a/%d", a.ID),
		},
	})
}

// AnalysisPage handles GET /a/{id}
func (h *Handler) AnalysisPage(w http.ResponseWriter, r *http.Request) {
	a, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.render(w, r, "analysis.html", a)
}

// AnalysisJSON handles GET /a/{id}/json
func (h *Handler) AnalysisJSON(w http.ResponseWriter, r *http.Request) {
	a, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "analysis": a})
}

// AnalysisMarkdown handles GET /a/{id}/md as a file download.
func (h *Handler) AnalysisMarkdown(w http.ResponseWriter, r *http.Request) {
	a, ok := h.lookup(w, r)
	if !ok {
		return
	}
	name := a.PropertyID
	if name == "" {
		name = strconv.FormatInt(a.ID, 10)
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": "propertyedge_" + name + ".md"}))
	_, _ = w.Write([]byte(a.Report))
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// lookup loads the analysis named by the {id} route parameter, writing a
// 404 for malformed or unknown ids.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*models.Analysis, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return nil, false
	}

	a, err := h.store.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		loggerFrom(r.Context(), h.logger).Error("[web] Get analysis %d: %v", id, err)
		http.Error(w, "could not load analysis", http.StatusInternalServerError)
		return nil, false
	}
	return a, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		loggerFrom(r.Context(), h.logger).Error("[web] Render %s: %v", name, err)
		http.Error(w, "could not render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func requestURL(r *http.Request) string {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data" {
		return r.FormValue("url")
	}
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	return req.URL
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
