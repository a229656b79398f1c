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
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *NotificationService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Patch("/read-all", s.MarkAllRead)
	r.Patch("/{notification_id}/read", s.MarkRead)

	return r
}

type NotificationInfo struct {
	Id        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

func (s *NotificationService) List(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var notifications []schema.Notification
	result := s.db.
		Where("user_id = ?", caller.Id).
		Order("timestamp desc").
		Limit(100).
		Find(&notifications)
	if result.Error != nil {
		slog.Error("sql error listing notifications", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing notifications: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]NotificationInfo, 0, len(notifications))
	for _, notification := range notifications {
		infos = append(infos, NotificationInfo{
			Id:        notification.Id,
			Type:      notification.Type,
			Content:   notification.Content,
			Timestamp: notification.Timestamp,
			Read:      notification.Read,
		})
	}
	utils.WriteJsonResponse(w, infos)
}

func (s *NotificationService) MarkRead(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	notificationId, err := utils.URLParamUUID(r, "notification_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := s.db.Model(&schema.Notification{}).
		Where("id = ? AND user_id = ?", notificationId, caller.Id).
		Update("read", true)
	if result.Error != nil {
		slog.Error("sql error marking notification read", "notification_id", notificationId, "error", result.Error)
		http.Error(w, fmt.Sprintf("error updating notification: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, fmt.Sprintf("error updating notification: %v", schema.ErrNotificationNotFound), http.StatusNotFound)
		return
	}

	utils.WriteSuccess(w)
}

func (s *NotificationService) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result := s.db.Model(&schema.Notification{}).
		Where("user_id = ?", caller.Id).
		Update("read", true)
	if result.Error != nil {
		slog.Error("sql error marking notifications read", "user_id", caller.Id, "error", result.Error)
		http.Error(w, fmt.Sprintf("error updating notifications: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	utils.WriteSuccess(w)
}
