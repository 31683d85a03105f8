// Package handlers provides HTTP request handlers for the drug advisor API
// endpoints: drug listing, catalog statistics, recommendations, the
// cost-impact ledger, and health checks, with input validation and
// consistent JSON error responses.
package handlers

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carerx/drug-advisor-api/catalog"
	"github.com/carerx/drug-advisor-api/engine"
	"github.com/carerx/drug-advisor-api/interfaces"
	"github.com/carerx/drug-advisor-api/logging"
	"github.com/carerx/drug-advisor-api/validation"
)

// Minimum response size to consider compression (1KB)
const compressionThreshold = 1024

// HTTPHandler serves all API endpoints with injected dependencies.
type HTTPHandler struct {
	engine          *engine.Engine
	ledger          interfaces.CostLedger
	serverStartTime time.Time
}

// NewHTTPHandler creates a handler over the engine and ledger.
func NewHTTPHandler(eng *engine.Engine, costLedger interfaces.CostLedger) *HTTPHandler {
	return &HTTPHandler{
		engine:          eng,
		ledger:          costLedger,
		serverStartTime: time.Now(),
	}
}

// RespondWithJSON writes a JSON response, gzip-compressed when the payload
// is large enough and the client accepts it.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err, "payload_type", fmt.Sprintf("%T", payload))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	shouldCompress := len(data) >= compressionThreshold &&
		strings.Contains(strings.ToLower(r.Header.Get("Accept-Encoding")), "gzip")

	if shouldCompress {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(code)
		gz := gzip.NewWriter(w)
		defer func() {
			if err := gz.Close(); err != nil {
				logging.Warn("Failed to close gzip writer", "error", err)
			}
		}()
		if _, err := gz.Write(data); err != nil {
			logging.Warn("Failed to write compressed response", "error", err)
		}
		return
	}

	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Warn("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response.
func RespondWithError(w http.ResponseWriter, r *http.Request, code int, message string) {
	RespondWithJSON(w, r, code, map[string]interface{}{
		"error": message,
	})
}

// ListDrugs returns the catalog deduplicated by drug name.
// GET /api/drugs
func (h *HTTPHandler) ListDrugs(w http.ResponseWriter, r *http.Request) {
	cat := h.engine.Catalog()
	if cat == nil || cat.Len() == 0 {
		RespondWithError(w, r, http.StatusInternalServerError, "Drug dataset not loaded")
		return
	}

	drugs := cat.Drugs()
	RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"drugs":       drugs,
		"total_count": len(drugs),
	})
}

// DrugStats returns catalog-wide aggregates.
// GET /api/drug-stats
func (h *HTTPHandler) DrugStats(w http.ResponseWriter, r *http.Request) {
	cat := h.engine.Catalog()
	if cat == nil || cat.Len() == 0 {
		RespondWithError(w, r, http.StatusInternalServerError, "Drug dataset not loaded")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, cat.ComputeStats())
}

// recommendRequest is the POST /api/recommend body.
type recommendRequest struct {
	DrugNames []string `json:"drug_names"`
}

// Recommend produces a single-drug or combination recommendation.
// POST /api/recommend
func (h *HTTPHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validation.ValidateDrugNames(req.DrugNames); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.engine.Recommend(req.DrugNames)
	if err != nil {
		var notFound *engine.NotFoundError
		var invalid *engine.ValidationError
		var unavailable *engine.ModelUnavailableError
		switch {
		case errors.As(err, &notFound):
			RespondWithError(w, r, http.StatusNotFound, notFound.Error())
		case errors.As(err, &invalid):
			RespondWithError(w, r, http.StatusBadRequest, invalid.Error())
		case errors.As(err, &unavailable):
			RespondWithError(w, r, http.StatusInternalServerError, unavailable.Error())
		default:
			logging.Error("Recommendation failed", "error", err)
			RespondWithError(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	RespondWithJSON(w, r, http.StatusOK, result)
}

// costImpactRequest is the POST /api/cia/add body.
type costImpactRequest struct {
	OriginalCost *float64 `json:"original_cost"`
	ReducedCost  *float64 `json:"reduced_cost"`
}

// AddCostImpact appends one ledger row manually.
// POST /api/cia/add
func (h *HTTPHandler) AddCostImpact(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		RespondWithError(w, r, http.StatusInternalServerError, "Cost impact ledger not available")
		return
	}

	var req costImpactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "No data provided")
		return
	}
	if req.OriginalCost == nil || req.ReducedCost == nil {
		RespondWithError(w, r, http.StatusBadRequest, "Both original_cost and reduced_cost are required")
		return
	}
	if *req.OriginalCost < 0 || *req.ReducedCost < 0 {
		RespondWithError(w, r, http.StatusBadRequest, "Costs cannot be negative")
		return
	}

	if err := h.ledger.Append(*req.OriginalCost, *req.ReducedCost); err != nil {
		logging.Error("Failed to append cost impact", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to save cost impact record")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, map[string]interface{}{
		"message":       "Cost impact record added successfully",
		"original_cost": *req.OriginalCost,
		"reduced_cost":  *req.ReducedCost,
	})
}

// CostSummary returns aggregate savings statistics.
// GET /api/cia/summary
func (h *HTTPHandler) CostSummary(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		RespondWithError(w, r, http.StatusInternalServerError, "Cost impact ledger not available")
		return
	}

	summary, err := h.ledger.Summary()
	if err != nil {
		logging.Error("Failed to summarize cost impact", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to summarize cost impact records")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, summary)
}

// CostRecords returns all ledger rows, newest first.
// GET /api/cia/records
func (h *HTTPHandler) CostRecords(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		RespondWithError(w, r, http.StatusInternalServerError, "Cost impact ledger not available")
		return
	}

	records, err := h.ledger.Records()
	if err != nil {
		logging.Error("Failed to read cost impact records", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to read cost impact records")
		return
	}
	if records == nil {
		records = []interfaces.CostImpact{}
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"records": records,
	})
}

// ClearCostRecords deletes all ledger rows.
// DELETE /api/cia/clear
func (h *HTTPHandler) ClearCostRecords(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		RespondWithError(w, r, http.StatusInternalServerError, "Cost impact ledger not available")
		return
	}

	if err := h.ledger.Clear(); err != nil {
		logging.Error("Failed to clear cost impact records", "error", err)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to clear cost impact records")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"message": "All cost impact records cleared successfully",
	})
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string                 `json:"status"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	Data          map[string]interface{} `json:"data"`
	System        map[string]interface{} `json:"system"`
}

// HealthCheck returns server health information.
// GET /health
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.serverStartTime)

	var cat *catalog.Catalog
	if h.engine != nil {
		cat = h.engine.Catalog()
	}
	recordCount := 0
	if cat != nil {
		recordCount = cat.Len()
	}

	healthStatus := "healthy"
	httpStatus := http.StatusOK
	if recordCount == 0 {
		healthStatus = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:        healthStatus,
		UptimeSeconds: uptime.Seconds(),
		Data: map[string]interface{}{
			"api_version":    "1.0",
			"drug_records":   recordCount,
			"ledger_enabled": h.ledger != nil,
		},
		System: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	RespondWithJSON(w, r, httpStatus, response)
}

// drugListPageSize is the page size for the paged catalog listing.
const drugListPageSize = 50

// PagedDrugs returns one page of the deduplicated drug list.
// GET /api/drugs/page/{pageNumber}
func (h *HTTPHandler) PagedDrugs(w http.ResponseWriter, r *http.Request) {
	cat := h.engine.Catalog()
	if cat == nil || cat.Len() == 0 {
		RespondWithError(w, r, http.StatusInternalServerError, "Drug dataset not loaded")
		return
	}

	page, err := strconv.Atoi(chi.URLParam(r, "pageNumber"))
	if err != nil || page < 1 {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid page number")
		return
	}

	drugs := cat.Drugs()
	start := (page - 1) * drugListPageSize
	if start >= len(drugs) {
		RespondWithError(w, r, http.StatusNotFound, "Page not found")
		return
	}
	end := start + drugListPageSize
	if end > len(drugs) {
		end = len(drugs)
	}

	totalItems := len(drugs)
	maxPage := (totalItems + drugListPageSize - 1) / drugListPageSize

	RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
		"data":       drugs[start:end],
		"page":       page,
		"pageSize":   drugListPageSize,
		"totalItems": totalItems,
		"maxPage":    maxPage,
	})
}
