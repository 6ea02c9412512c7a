// Package api exposes the data prep wizard over a session-scoped JSON
// API. The browser client drives the same step sequence as the wizard
// UI: create a session, upload files, adjust mappings, fix issues,
// resolve duplicates, export.
package api

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moovs/dataprep/internal/colmap"
	"github.com/moovs/dataprep/internal/config"
	"github.com/moovs/dataprep/internal/csvio"
	"github.com/moovs/dataprep/internal/dedup"
	"github.com/moovs/dataprep/internal/lookup"
	"github.com/moovs/dataprep/internal/pkg/logger"
	"github.com/moovs/dataprep/internal/runlog"
	"github.com/moovs/dataprep/internal/schema"
)

// Handlers carries the API dependencies.
type Handlers struct {
	store  *SessionStore
	runs   *runlog.Store
	config *config.Config
}

// NewHandlers wires the handler set. runs may be nil; the audit trail is
// optional.
func NewHandlers(store *SessionStore, runs *runlog.Store, cfg *config.Config) *Handlers {
	return &Handlers{store: store, runs: runs, config: cfg}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Stats is the aggregate view returned after every processing step.
type Stats struct {
	FileCount   int  `json:"fileCount"`
	TotalRows   int  `json:"totalRows"`
	DroppedRows int  `json:"droppedRows"`
	RecordCount int  `json:"recordCount"`
	ReadyCount  int  `json:"readyCount"`
	IssueCount  int  `json:"issueCount"`
	MergedRows  int  `json:"mergedRows"`
	FixedFields int  `json:"fixedFields"`
	LimoFormat  bool `json:"limoAnywhereFormat"`
}

type processResponse struct {
	Stats           Stats            `json:"stats"`
	Issues          []schema.Issue   `json:"issues"`
	DuplicateGroups []dedup.Group    `json:"duplicateGroups"`
	Mappings        []colmap.Mapping `json:"mappings"`
	Warnings        []string         `json:"warnings,omitempty"`
	LookupStats     *lookup.Stats    `json:"lookupStats,omitempty"`
}

func (h *Handlers) sessionView(s *Session) processResponse {
	return processResponse{
		Stats: Stats{
			FileCount:   s.FileCount,
			TotalRows:   len(s.Rows),
			DroppedRows: s.Dropped,
			RecordCount: s.RecordCount(),
			ReadyCount:  schema.ReadyCount(s.RecordCount(), s.Issues),
			IssueCount:  len(s.Issues),
			MergedRows:  s.MergedRows,
			FixedFields: s.FixedFields,
			LimoFormat:  s.LimoFormat,
		},
		Issues:          s.Issues,
		DuplicateGroups: s.Groups,
		Mappings:        s.Mappings,
		Warnings:        s.Warnings,
		LookupStats:     s.LookupStats,
	}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

type createSessionRequest struct {
	Workflow                  string `json:"workflow"`
	OperatorID                string `json:"operatorId"`
	BasePhoneNumber           string `json:"basePhoneNumber"`
	PlaceholderPickupAddress  string `json:"placeholderPickupAddress"`
	PlaceholderDropoffAddress string `json:"placeholderDropoffAddress"`
}

// CreateSession opens a new wizard session.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	workflow := schema.Workflow(req.Workflow)
	if workflow != schema.WorkflowContacts && workflow != schema.WorkflowReservations {
		respondError(w, http.StatusBadRequest, "workflow must be contacts or reservations")
		return
	}
	if strings.TrimSpace(req.OperatorID) == "" {
		respondError(w, http.StatusBadRequest, "operatorId is required")
		return
	}

	basePhone := strings.TrimSpace(req.BasePhoneNumber)
	if basePhone == "" {
		basePhone = h.config.Placeholder.BasePhone
	}
	pickup := req.PlaceholderPickupAddress
	if pickup == "" {
		pickup = h.config.Placeholder.PickupAddress
	}
	dropoff := req.PlaceholderDropoffAddress
	if dropoff == "" {
		dropoff = h.config.Placeholder.DropoffAddress
	}

	s := h.store.Create(&Session{
		Workflow:       workflow,
		OperatorID:     strings.TrimSpace(req.OperatorID),
		BasePhone:      basePhone,
		PickupAddress:  pickup,
		DropoffAddress: dropoff,
	})
	logger.Info("session created", "session_id", s.ID, "workflow", string(workflow))
	respondJSON(w, http.StatusCreated, map[string]string{"sessionId": s.ID})
}

// UploadContactsFile accepts a previously exported contacts CSV whose
// rows feed the lookup index during reservation processing.
func (h *Handlers) UploadContactsFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tables, err := h.parseUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(tables) != 1 {
		respondError(w, http.StatusBadRequest, "exactly one contacts file expected")
		return
	}

	err = h.store.With(id, func(s *Session) error {
		if s.Workflow != schema.WorkflowReservations {
			return fmt.Errorf("contacts file only applies to the reservations workflow")
		}
		mappings := colmap.AutoMap(tables[0].Headers, schema.WorkflowContacts)
		records := colmap.Apply(tables[0].Headers, tables[0].Rows, mappings)
		s.LookupContacts = lookup.ParseContacts(records)
		if len(s.Rows) > 0 {
			s.process()
		}
		logger.Info("lookup contacts loaded", "session_id", s.ID, "count", len(s.LookupContacts))
		respondJSON(w, http.StatusOK, map[string]int{"contactsLoaded": len(s.LookupContacts)})
		return nil
	})
	h.handleSessionError(w, err)
}

// Upload accepts one or more export files, combines them, and runs the
// full processing pass.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tables, err := h.parseUpload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(tables) == 0 {
		respondError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	combined, err := csvio.Combine(tables)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.store.With(id, func(s *Session) error {
		s.Headers = combined.Headers
		s.Rows = combined.Rows
		s.FileCount = len(tables)
		s.LimoFormat = colmap.IsLimoAnywhereFormat(combined.Headers)
		s.Mappings = colmap.AutoMap(combined.Headers, s.Workflow)
		s.process()
		h.recordRun(r, s)
		respondJSON(w, http.StatusOK, h.sessionView(s))
		return nil
	})
	h.handleSessionError(w, err)
}

type mappingsRequest struct {
	Mappings []colmap.Mapping `json:"mappings"`
}

// SetMappings replaces the column mappings and reprocesses from the raw
// table.
func (h *Handlers) SetMappings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req mappingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.store.With(id, func(s *Session) error {
		if len(s.Rows) == 0 {
			return fmt.Errorf("no uploaded data to map")
		}
		s.Mappings = req.Mappings
		s.process()
		respondJSON(w, http.StatusOK, h.sessionView(s))
		return nil
	})
	h.handleSessionError(w, err)
}

// AutoFix applies the suggested value of every missing-field issue.
func (h *Handlers) AutoFix(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.store.With(id, func(s *Session) error {
		fixed := s.autoFix()
		logger.Info("auto-fix applied", "session_id", s.ID, "fixed", fixed)
		respondJSON(w, http.StatusOK, h.sessionView(s))
		return nil
	})
	h.handleSessionError(w, err)
}

// PlaceholderEmails fills a deterministic placeholder email into every
// record still missing one.
func (h *Handlers) PlaceholderEmails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.store.With(id, func(s *Session) error {
		filled := s.fillPlaceholderEmails()
		logger.Info("placeholder emails generated", "session_id", s.ID, "filled", filled)
		respondJSON(w, http.StatusOK, h.sessionView(s))
		return nil
	})
	h.handleSessionError(w, err)
}

type resolveRequest struct {
	GroupIndex int `json:"groupIndex"`
	KeepIndex  int `json:"keepIndex"`
}

// ResolveDuplicates resolves a single duplicate group.
func (h *Handlers) ResolveDuplicates(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.store.With(id, func(s *Session) error {
		if req.GroupIndex < 0 || req.GroupIndex >= len(s.Groups) {
			return fmt.Errorf("group index %d out of range", req.GroupIndex)
		}
		group := s.Groups[req.GroupIndex]
		s.resolveDuplicates([]dedup.Group{group}, []dedup.Decision{{GroupIndex: 0, KeepIndex: req.KeepIndex}})
		respondJSON(w, http.StatusOK, h.sessionView(s))
		return nil
	})
	h.handleSessionError(w, err)
}

type resolveAllRequest struct {
	Decisions []dedup.Decision `json:"decisions"`
}

// ResolveAllDuplicates resolves every surfaced group at once. Groups
// without a decision keep their first record.
func (h *Handlers) ResolveAllDuplicates(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req resolveAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.store.With(id, func(s *Session) error {
		removed := s.resolveDuplicates(s.Groups, req.Decisions)
		logger.Info("duplicates resolved", "session_id", s.ID, "removed", removed)
		respondJSON(w, http.StatusOK, h.sessionView(s))
		return nil
	})
	h.handleSessionError(w, err)
}

// Preview returns a window of the working dataset as export-shaped rows.
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := h.store.With(id, func(s *Session) error {
		headers := schema.ContactHeaders
		total := len(s.Contacts)
		var rows [][]string
		if s.Workflow == schema.WorkflowReservations {
			headers = schema.ReservationHeaders
			total = len(s.Reservations)
			for i := offset; i < total && i < offset+limit; i++ {
				rows = append(rows, s.Reservations[i].ExportRow())
			}
		} else {
			for i := offset; i < total && i < offset+limit; i++ {
				rows = append(rows, s.Contacts[i].ExportRow())
			}
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"headers": headers,
			"rows":    rows,
			"total":   total,
			"offset":  offset,
		})
		return nil
	})
	h.handleSessionError(w, err)
}

// Export streams the final CSV download.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.store.With(id, func(s *Session) error {
		var content string
		if s.Workflow == schema.WorkflowReservations {
			content = csvio.GenerateReservations(s.Reservations)
		} else {
			content = csvio.GenerateContacts(s.Contacts)
		}
		filename := csvio.ExportFilename(s.Workflow, time.Now())
		h.recordRun(r, s)
		logger.Info("export generated", "session_id", s.ID, "records", s.RecordCount(), "filename", filename)

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(content))
		return nil
	})
	h.handleSessionError(w, err)
}

// RecentRuns returns the latest import-run audit entries.
func (h *Handlers) RecentRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.runs.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read run log")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"runs": entries})
}

// recordRun appends the session's current counters to the audit trail.
// Best effort: a run log failure never blocks the user.
func (h *Handlers) recordRun(r *http.Request, s *Session) {
	if h.runs == nil {
		return
	}
	err := h.runs.Record(r.Context(), runlog.Entry{
		SessionID:   s.ID,
		Workflow:    string(s.Workflow),
		OperatorID:  s.OperatorID,
		FileCount:   s.FileCount,
		TotalRows:   len(s.Rows),
		DroppedRows: s.Dropped,
		MergedRows:  s.MergedRows,
		FixedFields: s.FixedFields,
		IssueCount:  len(s.Issues),
		ReadyCount:  schema.ReadyCount(s.RecordCount(), s.Issues),
	})
	if err != nil {
		logger.Warn("run log write failed", "session_id", s.ID, "error", err.Error())
	}
}

func (h *Handlers) handleSessionError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
	case err == ErrSessionNotFound:
		respondError(w, http.StatusNotFound, "session not found")
	default:
		respondError(w, http.StatusBadRequest, err.Error())
	}
}

// parseUpload reads every file of a multipart request as a table. XLSX
// files are detected by extension; everything else parses as CSV.
func (h *Handlers) parseUpload(r *http.Request) ([]csvio.Table, error) {
	if err := r.ParseMultipartForm(h.config.Upload.MaxFileBytes()); err != nil {
		return nil, fmt.Errorf("invalid multipart request: %w", err)
	}
	if r.MultipartForm == nil {
		return nil, fmt.Errorf("multipart form expected")
	}

	var headers []*multipart.FileHeader
	for _, fhs := range r.MultipartForm.File {
		headers = append(headers, fhs...)
	}
	if len(headers) > h.config.Upload.MaxFiles {
		return nil, fmt.Errorf("too many files: %d (max %d)", len(headers), h.config.Upload.MaxFiles)
	}

	var tables []csvio.Table
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		var t csvio.Table
		if strings.HasSuffix(strings.ToLower(fh.Filename), ".xlsx") {
			t, err = csvio.ParseXLSX(f)
		} else {
			t, err = csvio.Parse(f)
		}
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", fh.Filename, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}
