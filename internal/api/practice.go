package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/praxis-labs/praxis/internal/app/insight"
	"github.com/praxis-labs/praxis/internal/domain"
	"github.com/praxis-labs/praxis/internal/infra/sqlite"
)

func (s *Server) handleListPracticeLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := sqlite.PracticeFilter{
		ActionID: int64(queryInt(r, "action_id", 0)),
		Result:   domain.Outcome(q.Get("result")),
		Page:     queryInt(r, "page", 1),
		Size:     queryInt(r, "size", 20),
	}
	if f.Result != "" && !domain.ValidOutcome(string(f.Result)) {
		writeError(w, http.StatusBadRequest, "unknown result")
		return
	}
	for name, dst := range map[string]*time.Time{"from": &f.From, "to": &f.To} {
		if v := q.Get(name); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				writeError(w, http.StatusBadRequest, name+" must be YYYY-MM-DD")
				return
			}
			*dst = t
		}
	}

	logs, total, err := s.db.ListPracticeLogs(currentUserID(r), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if logs == nil {
		logs = []domain.PracticeLog{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: logs, Total: total, Page: f.Page, Size: f.Size})
}

func (s *Server) handleGetPracticeLog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid log id")
		return
	}
	p, err := s.db.GetPracticeLog(currentUserID(r), id)
	if err != nil {
		writePracticeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePracticeLog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid log id")
		return
	}
	p, err := s.db.GetPracticeLog(currentUserID(r), id)
	if err != nil {
		writePracticeError(w, err)
		return
	}

	var req logPracticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Result != "" {
		if !domain.ValidOutcome(req.Result) {
			writeError(w, http.StatusBadRequest, "unknown result")
			return
		}
		p.Result = domain.Outcome(req.Result)
	}
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			writeError(w, http.StatusBadRequest, "rating must be 1-5")
			return
		}
		p.Rating = req.Rating
	}
	if req.Notes != "" {
		p.Notes = req.Notes
	}

	if err := s.db.UpdatePracticeLog(p); err != nil {
		writePracticeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePracticeLog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid log id")
		return
	}
	if err := s.db.SoftDeletePracticeLog(currentUserID(r), id); err != nil {
		writePracticeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePracticeStats summarizes outcomes over the last N days (default 30).
func (s *Server) handlePracticeStats(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	days := queryInt(r, "days", 30)
	if days < 1 || days > 365 {
		writeError(w, http.StatusBadRequest, "days must be 1-365")
		return
	}

	now := time.Now().UTC()
	start := insight.DayOf(now).AddDate(0, 0, -(days - 1))
	events, err := s.db.ListEvents(userID, 0, start, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	counts := map[domain.Outcome]int{}
	for _, e := range events {
		counts[e.Outcome]++
	}
	total := len(events)
	successRate := 0.0
	if total > 0 {
		successRate = float64(counts[domain.OutcomeSuccess]) / float64(total)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"days":         days,
		"total":        total,
		"success":      counts[domain.OutcomeSuccess],
		"fail":         counts[domain.OutcomeFail],
		"skipped":      counts[domain.OutcomeSkipped],
		"partial":      counts[domain.OutcomePartial],
		"success_rate": successRate,
	})
}

// handleCalendar returns the month's logs keyed by day of month.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 2000 || year > 2200 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}

	byDay, err := s.db.CalendarMonth(currentUserID(r), year, time.Month(month))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"year":  year,
		"month": month,
		"days":  byDay,
	})
}

func writePracticeError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrPracticeLogNotFound) {
		writeError(w, http.StatusNotFound, "practice log not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
