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

type ShiftService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *ShiftService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)

	r.With(auth.ApprovedOnly()).Post("/", s.Create)

	r.With(auth.RequireCapability(auth.CapValidateShifts)).Patch("/{shift_id}/status", s.UpdateStatus)

	return r
}

type createShiftRequest struct {
	UserId        uuid.UUID `json:"user_id"`
	InstitutionId uuid.UUID `json:"institution_id"`
	Date          string    `json:"date"`
	Hours         float64   `json:"hours"`
	HourlyRate    float64   `json:"hourly_rate"`
	TravelCost    float64   `json:"travel_cost"`
}

type ShiftInfo struct {
	Id            uuid.UUID `json:"id"`
	UserId        uuid.UUID `json:"user_id"`
	InstitutionId uuid.UUID `json:"institution_id"`
	Date          string    `json:"date"`
	Hours         float64   `json:"hours"`
	HourlyRate    float64   `json:"hourly_rate"`
	TravelCost    float64   `json:"travel_cost"`
	Total         float64   `json:"total"`
	Status        string    `json:"status"`
}

func convertToShiftInfo(shift *schema.Shift) ShiftInfo {
	return ShiftInfo{
		Id:            shift.Id,
		UserId:        shift.UserId,
		InstitutionId: shift.InstitutionId,
		Date:          shift.Date,
		Hours:         shift.Hours,
		HourlyRate:    shift.HourlyRate,
		TravelCost:    shift.TravelCost,
		Total:         shift.Total,
		Status:        shift.Status,
	}
}

func (s *ShiftService) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params createShiftRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.UserId == uuid.Nil {
		params.UserId = caller.Id
	}
	if params.UserId != caller.Id && !auth.HasCapability(caller, auth.CapViewAllRecords) {
		http.Error(w, "users may only record their own shifts", http.StatusForbidden)
		return
	}

	if err := checkValidDate(params.Date); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if params.Hours <= 0 {
		http.Error(w, "hours must be greater than zero", http.StatusUnprocessableEntity)
		return
	}
	if params.HourlyRate < 0 {
		http.Error(w, "hourly rate cannot be negative", http.StatusUnprocessableEntity)
		return
	}
	if params.TravelCost < 0 {
		http.Error(w, "travel cost cannot be negative", http.StatusUnprocessableEntity)
		return
	}

	shift := schema.Shift{
		Id:            uuid.New(),
		UserId:        params.UserId,
		InstitutionId: params.InstitutionId,
		Date:          params.Date,
		Hours:         params.Hours,
		HourlyRate:    params.HourlyRate,
		TravelCost:    params.TravelCost,
		Total:         ShiftTotal(params.Hours, params.HourlyRate, params.TravelCost),
		Status:        schema.ShiftPending,
		CreatedAt:     time.Now().UTC(),
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkUserExists(txn, params.UserId); err != nil {
			return err
		}
		if err := checkInstitutionExists(txn, params.InstitutionId); err != nil {
			return err
		}

		result := txn.Create(&shift)
		if result.Error != nil {
			slog.Error("sql error creating shift", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error creating shift: %v", err), GetResponseCode(err))
		return
	}

	shiftsCreatedMetric.Inc()
	slog.Info("created shift", "shift_id", shift.Id, "user_id", shift.UserId, "total", shift.Total)

	utils.WriteJsonResponse(w, convertToShiftInfo(&shift))
}

func (s *ShiftService) List(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	query := s.db.Order("date")
	if auth.HasCapability(caller, auth.CapViewAllRecords) {
		if filter := r.URL.Query().Get("user_id"); filter != "" {
			userId, err := uuid.Parse(filter)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid user_id filter '%v'", filter), http.StatusBadRequest)
				return
			}
			query = query.Where("user_id = ?", userId)
		}
	} else {
		query = query.Where("user_id = ?", caller.Id)
	}

	var shifts []schema.Shift
	result := query.Find(&shifts)
	if result.Error != nil {
		slog.Error("sql error listing shifts", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing shifts: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]ShiftInfo, 0, len(shifts))
	for _, shift := range shifts {
		infos = append(infos, convertToShiftInfo(&shift))
	}
	utils.WriteJsonResponse(w, infos)
}

type updateShiftStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles the admin validation step. The only transition served
// here is pending -> validated; shifts become paid through payslip generation
// and never move backwards.
func (s *ShiftService) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	shiftId, err := utils.URLParamUUID(r, "shift_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var params updateShiftStatusRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Status != schema.ShiftValidated {
		http.Error(w, fmt.Sprintf("invalid status '%v', shifts can only be transitioned to '%v' here", params.Status, schema.ShiftValidated), http.StatusUnprocessableEntity)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		shift, err := schema.GetShift(shiftId, txn)
		if err != nil {
			if errors.Is(err, schema.ErrShiftNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		result := txn.Model(&schema.Shift{}).
			Where("id = ? AND status = ?", shiftId, schema.ShiftPending).
			Update("status", schema.ShiftValidated)
		if result.Error != nil {
			slog.Error("sql error validating shift", "shift_id", shiftId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		if result.RowsAffected == 0 {
			return CodedError(fmt.Errorf("shift %v has status '%v', only pending shifts can be validated", shiftId, shift.Status), http.StatusConflict)
		}

		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating shift status: %v", err), GetResponseCode(err))
		return
	}

	shiftsValidatedMetric.Inc()
	slog.Info("validated shift", "shift_id", shiftId)

	utils.WriteSuccess(w)
}
