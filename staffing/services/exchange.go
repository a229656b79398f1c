package services

import (
	"errors"
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

type ExchangeService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *ExchangeService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)

	r.Group(func(r chi.Router) {
		r.Use(auth.ApprovedOnly())
		r.Post("/", s.Create)
		r.Patch("/{exchange_id}/status", s.Resolve)
	})

	return r
}

type createExchangeRequest struct {
	ShiftId  uuid.UUID `json:"shift_id"`
	ToUserId uuid.UUID `json:"to_user_id"`
}

type ExchangeInfo struct {
	Id         uuid.UUID `json:"id"`
	ShiftId    uuid.UUID `json:"shift_id"`
	FromUserId uuid.UUID `json:"from_user_id"`
	ToUserId   uuid.UUID `json:"to_user_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func convertToExchangeInfo(exchange *schema.Exchange) ExchangeInfo {
	return ExchangeInfo{
		Id:         exchange.Id,
		ShiftId:    exchange.ShiftId,
		FromUserId: exchange.FromUserId,
		ToUserId:   exchange.ToUserId,
		Status:     exchange.Status,
		CreatedAt:  exchange.CreatedAt,
	}
}

func (s *ExchangeService) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params createExchangeRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.ToUserId == caller.Id {
		http.Error(w, "cannot propose an exchange to yourself", http.StatusUnprocessableEntity)
		return
	}

	exchange := schema.Exchange{
		Id:         uuid.New(),
		ShiftId:    params.ShiftId,
		FromUserId: caller.Id,
		ToUserId:   params.ToUserId,
		Status:     schema.ExchangePending,
		CreatedAt:  time.Now().UTC(),
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		shift, err := schema.GetShift(params.ShiftId, txn)
		if err != nil {
			if errors.Is(err, schema.ErrShiftNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}
		if shift.UserId != caller.Id {
			return CodedError(fmt.Errorf("shift %v does not belong to user %v", shift.Id, caller.Id), http.StatusForbidden)
		}
		if shift.Status == schema.ShiftPaid {
			return CodedError(fmt.Errorf("shift %v is already paid", shift.Id), http.StatusConflict)
		}

		target, err := schema.GetUser(params.ToUserId, txn)
		if err != nil {
			if errors.Is(err, schema.ErrUserNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}
		if target.Role == schema.RoleAdmin || target.Status != schema.UserApproved {
			return CodedError(fmt.Errorf("user %v cannot receive shifts", target.Id), http.StatusUnprocessableEntity)
		}

		result := txn.Create(&exchange)
		if result.Error != nil {
			slog.Error("sql error creating exchange", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		content := fmt.Sprintf("Demande d'échange de prestation de %v", caller.FirstName)
		return createNotification(txn, params.ToUserId, schema.NotifyExchange, content)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error creating exchange: %v", err), GetResponseCode(err))
		return
	}

	slog.Info("created exchange", "exchange_id", exchange.Id, "shift_id", exchange.ShiftId, "to_user_id", exchange.ToUserId)

	utils.WriteJsonResponse(w, convertToExchangeInfo(&exchange))
}

func (s *ExchangeService) List(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	query := s.db.Order("created_at desc")
	if !auth.HasCapability(caller, auth.CapViewAllRecords) {
		query = query.Where("from_user_id = ? OR to_user_id = ?", caller.Id, caller.Id)
	}

	var exchanges []schema.Exchange
	result := query.Find(&exchanges)
	if result.Error != nil {
		slog.Error("sql error listing exchanges", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing exchanges: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]ExchangeInfo, 0, len(exchanges))
	for _, exchange := range exchanges {
		infos = append(infos, convertToExchangeInfo(&exchange))
	}
	utils.WriteJsonResponse(w, infos)
}

type resolveExchangeRequest struct {
	Status string `json:"status"`
}

// Resolve settles a pending exchange exactly once. Acceptance moves the shift
// to the recipient in the same transaction, so either both rows change or
// neither does.
func (s *ExchangeService) Resolve(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	exchangeId, err := utils.URLParamUUID(r, "exchange_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params resolveExchangeRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if err := schema.CheckValidExchangeResolution(params.Status); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		exchange, err := schema.GetExchange(exchangeId, txn)
		if err != nil {
			if errors.Is(err, schema.ErrExchangeNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		if exchange.ToUserId != caller.Id {
			return CodedError(fmt.Errorf("only the recipient may resolve exchange %v", exchangeId), http.StatusForbidden)
		}

		result := txn.Model(&schema.Exchange{}).
			Where("id = ? AND status = ?", exchangeId, schema.ExchangePending).
			Update("status", params.Status)
		if result.Error != nil {
			slog.Error("sql error resolving exchange", "exchange_id", exchangeId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		if result.RowsAffected == 0 {
			return CodedError(fmt.Errorf("exchange %v is already resolved", exchangeId), http.StatusConflict)
		}

		var content string
		if params.Status == schema.ExchangeAccepted {
			// The shift may have been settled or reassigned while the
			// exchange sat pending; the transfer only lands if the
			// proposer still owns an unpaid shift.
			result := txn.Model(&schema.Shift{}).
				Where("id = ? AND user_id = ? AND status <> ?", exchange.ShiftId, exchange.FromUserId, schema.ShiftPaid).
				Update("user_id", exchange.ToUserId)
			if result.Error != nil {
				slog.Error("sql error transferring shift", "shift_id", exchange.ShiftId, "error", result.Error)
				return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
			}
			if result.RowsAffected == 0 {
				return CodedError(fmt.Errorf("shift %v is no longer transferable", exchange.ShiftId), http.StatusConflict)
			}
			content = "Votre demande d'échange a été acceptée"
		} else {
			content = "Votre demande d'échange a été refusée"
		}

		return createNotification(txn, exchange.FromUserId, schema.NotifyExchange, content)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error resolving exchange: %v", err), GetResponseCode(err))
		return
	}

	exchangesResolvedMetric.Inc()
	slog.Info("resolved exchange", "exchange_id", exchangeId, "status", params.Status)

	utils.WriteSuccess(w)
}
