package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/praxis-labs/praxis/internal/app/insight"
	"github.com/praxis-labs/praxis/internal/domain"
)

func (s *Server) handleGetReminderSettings(w http.ResponseWriter, r *http.Request) {
	setting, err := s.db.GetReminderSetting(currentUserID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

type reminderSettingsRequest struct {
	Enabled             *bool   `json:"is_enabled"`
	DailyEnabled        *bool   `json:"daily_reminder_enabled"`
	DailyTime           *string `json:"daily_reminder_time"`
	ActiveWeekdays      []int   `json:"active_weekdays"` // ISO, Monday=0
	AfterAction         *bool   `json:"after_action_reminder"`
	AfterNewAction      *bool   `json:"after_new_action_reminder"`
	InactiveDays        *int    `json:"inactive_days_threshold"`
	BrowserNotification *bool   `json:"browser_notification"`
	EmailNotification   *bool   `json:"email_notification"`
}

func (s *Server) handleUpdateReminderSettings(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	setting, err := s.db.GetReminderSetting(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req reminderSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DailyTime != nil && *req.DailyTime != "" {
		if _, err := time.Parse("15:04", *req.DailyTime); err != nil {
			if _, err := time.Parse("15:04:05", *req.DailyTime); err != nil {
				writeError(w, http.StatusBadRequest, "daily_reminder_time must be HH:MM or HH:MM:SS")
				return
			}
		}
	}
	if req.InactiveDays != nil && (*req.InactiveDays < 1 || *req.InactiveDays > 30) {
		writeError(w, http.StatusBadRequest, "inactive_days_threshold must be 1-30")
		return
	}
	for _, d := range req.ActiveWeekdays {
		if d < 0 || d > 6 {
			writeError(w, http.StatusBadRequest, "active_weekdays entries must be 0-6")
			return
		}
	}

	if req.Enabled != nil {
		setting.Enabled = *req.Enabled
	}
	if req.DailyEnabled != nil {
		setting.DailyEnabled = *req.DailyEnabled
	}
	if req.DailyTime != nil {
		setting.DailyTime = *req.DailyTime
	}
	if req.ActiveWeekdays != nil {
		setting.ActiveWeekdays = domain.NewWeekdaySet(req.ActiveWeekdays...)
	}
	if req.AfterAction != nil {
		setting.AfterAction = *req.AfterAction
	}
	if req.AfterNewAction != nil {
		setting.AfterNewAction = *req.AfterNewAction
	}
	if req.InactiveDays != nil {
		setting.InactiveThresholdDays = *req.InactiveDays
	}
	if req.BrowserNotification != nil {
		setting.BrowserNotification = *req.BrowserNotification
	}
	if req.EmailNotification != nil {
		setting.EmailNotification = *req.EmailNotification
	}

	if err := s.db.UpdateReminderSetting(setting); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	setting, err = s.db.GetReminderSetting(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (s *Server) handleListReminderLogs(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "size", 20)
	logs, total, err := s.db.ListReminderLogs(currentUserID(r), page, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if logs == nil {
		logs = []domain.ReminderLog{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: logs, Total: total, Page: page, Size: size})
}

// handleTriggerReminder fires one reminder kind immediately through the
// normal decision and dedup path.
func (s *Server) handleTriggerReminder(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	var req struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidReminderKind(req.Kind) {
		writeError(w, http.StatusBadRequest, "unknown reminder kind")
		return
	}

	if err := s.notify.Trigger(userID, domain.ReminderKind(req.Kind), time.Now()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	last, err := s.db.LastFired(userID, domain.ReminderKind(req.Kind))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	fired := last != nil && insight.SameDay(*last, time.Now())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kind":  req.Kind,
		"fired": fired,
	})
}

func (s *Server) handleDismissReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid log id")
		return
	}
	if err := s.db.DismissReminderLog(currentUserID(r), id, time.Now()); err != nil {
		if errors.Is(err, domain.ErrReminderLogNotFound) {
			writeError(w, http.StatusNotFound, "reminder log not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}
