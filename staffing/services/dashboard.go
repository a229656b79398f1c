package services

import (
	"fmt"
	"log/slog"
	"net/http"
	"sanacare/staffing/auth"
	"sanacare/staffing/schema"
	"sanacare/utils"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type DashboardService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *DashboardService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/stats", s.Stats)

	return r
}

type AdminStats struct {
	TotalUsers        int64   `json:"total_users"`
	PendingUsers      int64   `json:"pending_users"`
	TotalInstitutions int64   `json:"total_institutions"`
	TotalShifts       int64   `json:"total_shifts"`
	PendingShifts     int64   `json:"pending_shifts"`
	RecentRevenue     float64 `json:"recent_revenue"`
}

type CaregiverStats struct {
	TotalShifts         int64   `json:"total_shifts"`
	TotalHours          float64 `json:"total_hours"`
	TotalEarned         float64 `json:"total_earned"`
	PendingAmount       float64 `json:"pending_amount"`
	UnreadMessages      int64   `json:"unread_messages"`
	UnreadNotifications int64   `json:"unread_notifications"`
}

func (s *DashboardService) Stats(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if auth.HasCapability(caller, auth.CapViewAllRecords) {
		s.adminStats(w)
	} else {
		s.caregiverStats(w, caller)
	}
}

func (s *DashboardService) adminStats(w http.ResponseWriter) {
	var stats AdminStats

	err := s.db.Transaction(func(txn *gorm.DB) error {
		counts := []struct {
			dest  *int64
			query *gorm.DB
		}{
			{&stats.TotalUsers, txn.Model(&schema.User{})},
			{&stats.PendingUsers, txn.Model(&schema.User{}).Where("status = ?", schema.UserPending)},
			{&stats.TotalInstitutions, txn.Model(&schema.Institution{})},
			{&stats.TotalShifts, txn.Model(&schema.Shift{})},
			{&stats.PendingShifts, txn.Model(&schema.Shift{}).Where("status = ?", schema.ShiftPending)},
		}
		for _, c := range counts {
			if result := c.query.Count(c.dest); result.Error != nil {
				slog.Error("sql error counting rows for dashboard", "error", result.Error)
				return schema.ErrDbAccessFailed
			}
		}

		// Revenue over the trailing 30 days, by shift date, all statuses.
		cutoff := time.Now().UTC().AddDate(0, 0, -30).Format("2006-01-02")
		var shifts []schema.Shift
		result := txn.Where("date >= ?", cutoff).Find(&shifts)
		if result.Error != nil {
			slog.Error("sql error listing recent shifts", "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		revenue := 0.0
		for _, shift := range shifts {
			revenue += shift.Total
		}
		stats.RecentRevenue = RoundCents(revenue)

		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error computing dashboard stats: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, stats)
}

func (s *DashboardService) caregiverStats(w http.ResponseWriter, caller schema.User) {
	var stats CaregiverStats

	err := s.db.Transaction(func(txn *gorm.DB) error {
		var shifts []schema.Shift
		result := txn.Where("user_id = ?", caller.Id).Find(&shifts)
		if result.Error != nil {
			slog.Error("sql error listing user shifts", "user_id", caller.Id, "error", result.Error)
			return schema.ErrDbAccessFailed
		}

		stats.TotalShifts = int64(len(shifts))
		earned, pending := 0.0, 0.0
		for _, shift := range shifts {
			stats.TotalHours += shift.Hours
			switch shift.Status {
			case schema.ShiftPaid:
				earned += shift.Total
			case schema.ShiftPending, schema.ShiftValidated:
				pending += shift.Total
			}
		}
		stats.TotalEarned = RoundCents(earned)
		stats.PendingAmount = RoundCents(pending)

		result = txn.Model(&schema.Message{}).
			Where("recipient_id = ? AND read = ?", caller.Id, false).
			Count(&stats.UnreadMessages)
		if result.Error != nil {
			slog.Error("sql error counting unread messages", "user_id", caller.Id, "error", result.Error)
			return schema.ErrDbAccessFailed
		}

		result = txn.Model(&schema.Notification{}).
			Where("user_id = ? AND read = ?", caller.Id, false).
			Count(&stats.UnreadNotifications)
		if result.Error != nil {
			slog.Error("sql error counting unread notifications", "user_id", caller.Id, "error", result.Error)
			return schema.ErrDbAccessFailed
		}

		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error computing dashboard stats: %v", err), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, stats)
}
