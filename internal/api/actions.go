package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/praxis-labs/praxis/internal/domain"
	"github.com/praxis-labs/praxis/internal/infra/metrics"
	"github.com/praxis-labs/praxis/internal/infra/sqlite"
)

// ─── Upload notes ───────────────────────────────────────────────────────────

type uploadNotesRequest struct {
	Notes string `json:"notes"`
}

type uploadNotesResponse struct {
	Created []domain.Action `json:"created"`
	Count   int             `json:"count"`
}

// handleUploadNotes extracts action items from free-form reading notes and
// stores them as todo actions for the user.
func (s *Server) handleUploadNotes(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	var req uploadNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Notes) == "" {
		writeError(w, http.StatusBadRequest, "notes are required")
		return
	}

	start := time.Now()
	items, err := s.extractor.Extract(r.Context(), req.Notes)
	metrics.ExtractLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExtractCalls.WithLabelValues("error").Inc()
		writeError(w, http.StatusBadGateway, "extraction failed: "+err.Error())
		return
	}
	metrics.ExtractCalls.WithLabelValues("ok").Inc()

	created := make([]domain.Action, 0, len(items))
	for _, it := range items {
		a := &domain.Action{
			UserID:        userID,
			BookTitle:     it.Book,
			SourceExcerpt: it.Excerpt,
			ActionText:    it.Action,
			Tags:          it.Tags,
			Frequency:     domain.Frequency(it.Frequency),
		}
		if err := s.db.InsertAction(a); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		created = append(created, *a)
	}
	metrics.ActionsExtracted.Add(float64(len(created)))

	// Reminder failures never fail the upload.
	if len(created) > 0 && s.notify != nil {
		s.notify.AfterNewAction(userID, time.Now())
	}

	writeJSON(w, http.StatusCreated, uploadNotesResponse{Created: created, Count: len(created)})
}

// ─── CRUD ───────────────────────────────────────────────────────────────────

type actionRequest struct {
	BookTitle     string   `json:"book_title"`
	SourceExcerpt string   `json:"source_excerpt"`
	ActionText    string   `json:"action_text"`
	Tags          []string `json:"tags"`
	Frequency     string   `json:"frequency"`
}

type listResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

func (s *Server) handleListActions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := sqlite.ActionFilter{
		Search: q.Get("search"),
		Status: domain.ActionStatus(q.Get("status")),
		Page:   queryInt(r, "page", 1),
		Size:   queryInt(r, "size", 20),
	}
	if f.Status != "" && !domain.ValidActionStatus(string(f.Status)) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}
	if tags := q.Get("tags"); tags != "" {
		f.Tags = strings.Split(tags, ",")
	}

	actions, total, err := s.db.ListActions(currentUserID(r), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if actions == nil {
		actions = []domain.Action{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: actions, Total: total, Page: f.Page, Size: f.Size})
}

func (s *Server) handleCreateAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ActionText) == "" {
		writeError(w, http.StatusBadRequest, "action_text is required")
		return
	}
	if req.Frequency != "" && !domain.ValidFrequency(req.Frequency) {
		writeError(w, http.StatusBadRequest, "unknown frequency")
		return
	}

	a := &domain.Action{
		UserID:        currentUserID(r),
		BookTitle:     req.BookTitle,
		SourceExcerpt: req.SourceExcerpt,
		ActionText:    strings.TrimSpace(req.ActionText),
		Tags:          req.Tags,
		Frequency:     domain.Frequency(req.Frequency),
	}
	if err := s.db.InsertAction(a); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleGetAction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid action id")
		return
	}
	a, err := s.db.GetAction(currentUserID(r), id)
	if err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateAction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid action id")
		return
	}
	a, err := s.db.GetAction(currentUserID(r), id)
	if err != nil {
		writeActionError(w, err)
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Frequency != "" && !domain.ValidFrequency(req.Frequency) {
		writeError(w, http.StatusBadRequest, "unknown frequency")
		return
	}

	if req.BookTitle != "" {
		a.BookTitle = req.BookTitle
	}
	if req.SourceExcerpt != "" {
		a.SourceExcerpt = req.SourceExcerpt
	}
	if strings.TrimSpace(req.ActionText) != "" {
		a.ActionText = strings.TrimSpace(req.ActionText)
	}
	if req.Tags != nil {
		a.Tags = req.Tags
	}
	if req.Frequency != "" {
		a.Frequency = domain.Frequency(req.Frequency)
	}

	if err := s.db.UpdateAction(a); err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateActionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid action id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidActionStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	if err := s.db.UpdateActionStatus(currentUserID(r), id, domain.ActionStatus(req.Status)); err != nil {
		writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (s *Server) handleDeleteAction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid action id")
		return
	}
	if err := s.db.SoftDeleteAction(currentUserID(r), id); err != nil {
		writeActionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ─── Practice logging ───────────────────────────────────────────────────────

type logPracticeRequest struct {
	Date   string `json:"date"` // "2006-01-02", defaults to today
	Result string `json:"result"`
	Notes  string `json:"notes"`
	Rating *int   `json:"rating"`
}

// handleLogPractice records one practice entry against an action. A success
// flips the action to done, and the post-practice reminder path runs inline.
func (s *Server) handleLogPractice(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid action id")
		return
	}
	action, err := s.db.GetAction(userID, id)
	if err != nil {
		writeActionError(w, err)
		return
	}

	var req logPracticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidOutcome(req.Result) {
		writeError(w, http.StatusBadRequest, "unknown result")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		writeError(w, http.StatusBadRequest, "rating must be 1-5")
		return
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	p := &domain.PracticeLog{
		UserID:   userID,
		ActionID: action.ID,
		Date:     date,
		Result:   domain.Outcome(req.Result),
		Notes:    req.Notes,
		Rating:   req.Rating,
	}
	if err := s.db.InsertPracticeLog(p); err != nil {
		if errors.Is(err, domain.ErrDuplicateLog) {
			writeError(w, http.StatusConflict, "already logged for this day")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.PracticeLogged.WithLabelValues(req.Result).Inc()

	if p.Result == domain.OutcomeSuccess && action.Status != domain.StatusDone {
		if err := s.db.UpdateActionStatus(userID, action.ID, domain.StatusDone); err == nil {
			action.Status = domain.StatusDone
		}
	}

	if s.notify != nil {
		s.notify.AfterAction(userID, time.Now())
	}

	writeJSON(w, http.StatusCreated, p)
}

// ─── Stats ──────────────────────────────────────────────────────────────────

func (s *Server) handleActionStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.db.CountActionsByStatus(currentUserID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":       total,
		"todo":        counts[domain.StatusTodo],
		"in_progress": counts[domain.StatusInProgress],
		"done":        counts[domain.StatusDone],
	})
}

func writeActionError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrActionNotFound) {
		writeError(w, http.StatusNotFound, "action not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
