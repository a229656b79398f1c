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

type MessageService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *MessageService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Patch("/{message_id}/read", s.MarkRead)

	r.With(auth.ApprovedOnly()).Post("/", s.Send)

	return r
}

type sendMessageRequest struct {
	RecipientId uuid.UUID `json:"recipient_id"`
	Content     string    `json:"content"`
}

type MessageInfo struct {
	Id          uuid.UUID `json:"id"`
	SenderId    uuid.UUID `json:"sender_id"`
	RecipientId uuid.UUID `json:"recipient_id"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Read        bool      `json:"read"`
}

func convertToMessageInfo(message *schema.Message) MessageInfo {
	return MessageInfo{
		Id:          message.Id,
		SenderId:    message.SenderId,
		RecipientId: message.RecipientId,
		Content:     message.Content,
		Timestamp:   message.Timestamp,
		Read:        message.Read,
	}
}

func (s *MessageService) Send(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params sendMessageRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Content == "" {
		http.Error(w, "message content cannot be empty", http.StatusUnprocessableEntity)
		return
	}
	if params.RecipientId == caller.Id {
		http.Error(w, "cannot message yourself", http.StatusUnprocessableEntity)
		return
	}

	message := schema.Message{
		Id:          uuid.New(),
		SenderId:    caller.Id,
		RecipientId: params.RecipientId,
		Content:     params.Content,
		Timestamp:   time.Now().UTC(),
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkUserExists(txn, params.RecipientId); err != nil {
			return err
		}

		result := txn.Create(&message)
		if result.Error != nil {
			slog.Error("sql error creating message", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		content := fmt.Sprintf("Nouveau message de %v", caller.FullName())
		return createNotification(txn, params.RecipientId, schema.NotifyMessage, content)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error sending message: %v", err), GetResponseCode(err))
		return
	}

	messagesSentMetric.Inc()

	utils.WriteJsonResponse(w, convertToMessageInfo(&message))
}

func (s *MessageService) List(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	query := s.db.Order("timestamp")
	if filter := r.URL.Query().Get("other_user_id"); filter != "" {
		otherId, err := uuid.Parse(filter)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid other_user_id filter '%v'", filter), http.StatusBadRequest)
			return
		}
		query = query.Where(
			"(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			caller.Id, otherId, otherId, caller.Id,
		)
	} else {
		query = query.Where("sender_id = ? OR recipient_id = ?", caller.Id, caller.Id)
	}

	var messages []schema.Message
	result := query.Find(&messages)
	if result.Error != nil {
		slog.Error("sql error listing messages", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing messages: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]MessageInfo, 0, len(messages))
	for _, message := range messages {
		infos = append(infos, convertToMessageInfo(&message))
	}
	utils.WriteJsonResponse(w, infos)
}

func (s *MessageService) MarkRead(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	messageId, err := utils.URLParamUUID(r, "message_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Scoped to the recipient so senders cannot mark their own messages read.
	result := s.db.Model(&schema.Message{}).
		Where("id = ? AND recipient_id = ?", messageId, caller.Id).
		Update("read", true)
	if result.Error != nil {
		slog.Error("sql error marking message read", "message_id", messageId, "error", result.Error)
		http.Error(w, fmt.Sprintf("error updating message: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, fmt.Sprintf("error updating message: %v", schema.ErrMessageNotFound), http.StatusNotFound)
		return
	}

	utils.WriteSuccess(w)
}
