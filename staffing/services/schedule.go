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

type ScheduleService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *ScheduleService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)

	r.Group(func(r chi.Router) {
		r.Use(auth.ApprovedOnly())

		r.Post("/", s.Create)
		r.Patch("/{schedule_id}/status", s.UpdateStatus)
	})

	return r
}

type createScheduleRequest struct {
	UserId        uuid.UUID `json:"user_id"`
	InstitutionId uuid.UUID `json:"institution_id"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
}

type ScheduleInfo struct {
	Id            uuid.UUID `json:"id"`
	UserId        uuid.UUID `json:"user_id"`
	InstitutionId uuid.UUID `json:"institution_id"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Status        string    `json:"status"`
}

func convertToScheduleInfo(schedule *schema.Schedule) ScheduleInfo {
	return ScheduleInfo{
		Id:            schedule.Id,
		UserId:        schedule.UserId,
		InstitutionId: schedule.InstitutionId,
		Date:          schedule.Date,
		StartTime:     schedule.StartTime,
		EndTime:       schedule.EndTime,
		Status:        schedule.Status,
	}
}

func (s *ScheduleService) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params createScheduleRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.UserId == uuid.Nil {
		params.UserId = caller.Id
	}
	if params.UserId != caller.Id && !auth.HasCapability(caller, auth.CapViewAllRecords) {
		http.Error(w, "users may only declare their own availability", http.StatusForbidden)
		return
	}

	if err := checkValidDate(params.Date); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := checkValidClock(params.StartTime); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := checkValidClock(params.EndTime); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if params.EndTime <= params.StartTime {
		http.Error(w, fmt.Sprintf("end time %v must be after start time %v", params.EndTime, params.StartTime), http.StatusUnprocessableEntity)
		return
	}

	schedule := schema.Schedule{
		Id:            uuid.New(),
		UserId:        params.UserId,
		InstitutionId: params.InstitutionId,
		Date:          params.Date,
		StartTime:     params.StartTime,
		EndTime:       params.EndTime,
		Status:        schema.ScheduleAvailable,
		CreatedAt:     time.Now().UTC(),
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkUserExists(txn, params.UserId); err != nil {
			return err
		}
		if err := checkInstitutionExists(txn, params.InstitutionId); err != nil {
			return err
		}

		result := txn.Create(&schedule)
		if result.Error != nil {
			slog.Error("sql error creating schedule", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error creating schedule: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, convertToScheduleInfo(&schedule))
}

func (s *ScheduleService) List(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	query := s.db.Order("date, start_time")
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

	var schedules []schema.Schedule
	result := query.Find(&schedules)
	if result.Error != nil {
		slog.Error("sql error listing schedules", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing schedules: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]ScheduleInfo, 0, len(schedules))
	for _, schedule := range schedules {
		infos = append(infos, convertToScheduleInfo(&schedule))
	}
	utils.WriteJsonResponse(w, infos)
}

type updateScheduleStatusRequest struct {
	Status string `json:"status"`
}

func (s *ScheduleService) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	scheduleId, err := utils.URLParamUUID(r, "schedule_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params updateScheduleStatusRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		schedule, err := schema.GetSchedule(scheduleId, txn)
		if err != nil {
			if errors.Is(err, schema.ErrScheduleNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		if schedule.UserId != caller.Id && !auth.HasCapability(caller, auth.CapViewAllRecords) {
			return CodedError(fmt.Errorf("user %v cannot modify schedule %v", caller.Id, scheduleId), http.StatusForbidden)
		}

		if err := schema.CheckScheduleTransition(schedule.Status, params.Status); err != nil {
			return CodedError(err, http.StatusConflict)
		}

		// Preconditioned on the status we read so concurrent writers cannot
		// advance the same slot twice.
		result := txn.Model(&schema.Schedule{}).
			Where("id = ? AND status = ?", scheduleId, schedule.Status).
			Update("status", params.Status)
		if result.Error != nil {
			slog.Error("sql error updating schedule status", "schedule_id", scheduleId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		if result.RowsAffected == 0 {
			return CodedError(fmt.Errorf("schedule %v was modified concurrently", scheduleId), http.StatusConflict)
		}

		return nil
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating schedule status: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}
