package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"dataspark.io/insights-service/internal/core"
	"dataspark.io/insights-service/internal/dataset"
	"dataspark.io/insights-service/internal/store"
)

const defaultUploadsLimit = 50

type APIHandler struct {
	analyzer *core.Analyzer
	dbStore  *store.SQLiteStore
	provider string
}

func NewAPIHandler(analyzer *core.Analyzer, dbStore *store.SQLiteStore, provider string) *APIHandler {
	return &APIHandler{
		analyzer: analyzer,
		dbStore:  dbStore,
		provider: provider,
	}
}

type InsightResponse struct {
	Insights string `json:"insights"`
	CacheKey string `json:"cache_key"`
}

// UploadFileHandler accepts a multipart file upload, runs the cached analysis
// flow and returns the insight text with its cache key.
func (h *APIHandler) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A file upload is required in the 'file' field")
		return
	}
	defer file.Close()

	ext := fileExtension(header.Filename)
	if !dataset.IsSupportedExtension(ext) {
		writeError(w, http.StatusBadRequest, "Unsupported file format: "+ext)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		log.Printf("Error reading upload %s: %v", header.Filename, err)
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	frame, err := dataset.Load(content, ext)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Error processing file: "+err.Error())
		return
	}

	insights, cacheKey, err := h.analyzer.AnalyzeWithCaching(r.Context(), frame)
	if err != nil {
		if errors.Is(err, dataset.ErrNoColumns) {
			writeError(w, http.StatusBadRequest, "Error processing file: "+err.Error())
			return
		}
		log.Printf("Error analyzing upload %s: %v", header.Filename, err)
		writeError(w, http.StatusInternalServerError, "Failed to analyze file")
		return
	}

	// Audit only; a failed record never fails the upload.
	if _, err := h.dbStore.RecordUpload(header.Filename, cacheKey); err != nil {
		log.Printf("Failed to record upload %s: %v", header.Filename, err)
	}

	writeJSON(w, http.StatusOK, InsightResponse{Insights: insights, CacheKey: cacheKey})
}

// GetInsightsHandler retrieves previously generated insights by cache key.
func (h *APIHandler) GetInsightsHandler(w http.ResponseWriter, r *http.Request) {
	cacheKey := chi.URLParam(r, "cacheKey")

	ins, err := h.dbStore.LookupInsight(cacheKey)
	if err != nil {
		// Storage trouble reads as a miss.
		log.Printf("Error looking up insights for key %s: %v", cacheKey, err)
	}
	if ins == nil {
		writeError(w, http.StatusNotFound, "Insights not found for the provided cache key")
		return
	}

	writeJSON(w, http.StatusOK, InsightResponse{Insights: ins.Insights, CacheKey: ins.CacheKey})
}

func (h *APIHandler) ListInsightsHandler(w http.ResponseWriter, r *http.Request) {
	insights, err := h.dbStore.ListInsights()
	if err != nil {
		log.Printf("Error listing insights: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list insights")
		return
	}
	if insights == nil {
		insights = []store.Insight{}
	}
	writeJSON(w, http.StatusOK, insights)
}

func (h *APIHandler) SearchInsightsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	insights, err := h.dbStore.SearchInsights(query)
	if err != nil {
		log.Printf("Error searching insights for %q: %v", query, err)
		writeError(w, http.StatusInternalServerError, "Failed to search insights")
		return
	}
	if insights == nil {
		insights = []store.Insight{}
	}
	writeJSON(w, http.StatusOK, insights)
}

func (h *APIHandler) ListUploadsHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultUploadsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	uploads, err := h.dbStore.ListUploads(limit)
	if err != nil {
		log.Printf("Error listing uploads: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list uploads")
		return
	}
	if uploads == nil {
		uploads = []store.Upload{}
	}
	writeJSON(w, http.StatusOK, uploads)
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": h.provider,
	})
}

// fileExtension returns the lowercase extension without the dot, empty when
// the filename has none.
func fileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
