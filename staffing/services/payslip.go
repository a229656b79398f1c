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

// commissionRate is the platform's cut, applied to the gross total of each
// payslip.
const commissionRate = 0.07

type PayslipService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *PayslipService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)

	r.With(auth.ApprovedOnly()).Post("/generate/{user_id}", s.Generate)

	return r
}

type PayslipInfo struct {
	Id         uuid.UUID   `json:"id"`
	UserId     uuid.UUID   `json:"user_id"`
	Period     string      `json:"period"`
	ShiftIds   []uuid.UUID `json:"shift_ids"`
	GrossTotal float64     `json:"gross_total"`
	Commission float64     `json:"commission"`
	NetTotal   float64     `json:"net_total"`
	CreatedAt  time.Time   `json:"created_at"`
}

func convertToPayslipInfo(payslip *schema.Payslip) PayslipInfo {
	return PayslipInfo{
		Id:         payslip.Id,
		UserId:     payslip.UserId,
		Period:     payslip.Period,
		ShiftIds:   payslip.ShiftIds(),
		GrossTotal: payslip.GrossTotal,
		Commission: payslip.Commission,
		NetTotal:   payslip.NetTotal,
		CreatedAt:  payslip.CreatedAt,
	}
}

// Generate settles all validated shifts a user worked in the given period.
// The payslip insert and the shift status flips happen in one transaction,
// and the flips are preconditioned on 'validated' so two concurrent calls
// cannot pay the same shift twice.
func (s *PayslipService) Generate(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	userId, err := utils.URLParamUUID(r, "user_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Caregivers may settle their own shifts, admins anyone's.
	if userId != caller.Id && !auth.HasCapability(caller, auth.CapGeneratePayslips) {
		http.Error(w, fmt.Sprintf("user %v cannot generate payslips for user %v", caller.Id, userId), http.StatusForbidden)
		return
	}

	period := r.URL.Query().Get("period")
	if err := checkValidPeriod(period); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	payslip := schema.Payslip{
		Id:        uuid.New(),
		UserId:    userId,
		Period:    period,
		CreatedAt: time.Now().UTC(),
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if err := checkUserExists(txn, userId); err != nil {
			return err
		}

		var shifts []schema.Shift
		result := txn.
			Where("user_id = ? AND status = ? AND date LIKE ?", userId, schema.ShiftValidated, period+"%").
			Find(&shifts)
		if result.Error != nil {
			slog.Error("sql error listing validated shifts", "user_id", userId, "period", period, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		if len(shifts) == 0 {
			return CodedError(fmt.Errorf("no validated shifts for user %v in period %v", userId, period), http.StatusUnprocessableEntity)
		}

		gross := 0.0
		shiftIds := make([]uuid.UUID, 0, len(shifts))
		for _, shift := range shifts {
			gross += shift.Total
			shiftIds = append(shiftIds, shift.Id)
			payslip.Shifts = append(payslip.Shifts, schema.PayslipShift{PayslipId: payslip.Id, ShiftId: shift.Id})
		}
		payslip.GrossTotal = RoundCents(gross)
		payslip.Commission = RoundCents(payslip.GrossTotal * commissionRate)
		payslip.NetTotal = RoundCents(payslip.GrossTotal - payslip.Commission)

		result = txn.Create(&payslip)
		if result.Error != nil {
			slog.Error("sql error creating payslip", "user_id", userId, "period", period, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		result = txn.Model(&schema.Shift{}).
			Where("id IN ? AND status = ?", shiftIds, schema.ShiftValidated).
			Update("status", schema.ShiftPaid)
		if result.Error != nil {
			slog.Error("sql error marking shifts paid", "user_id", userId, "period", period, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		if result.RowsAffected != int64(len(shiftIds)) {
			return CodedError(fmt.Errorf("shifts for user %v in period %v were settled concurrently", userId, period), http.StatusConflict)
		}

		content := fmt.Sprintf("Nouvelle fiche de paie pour %v", period)
		return createNotification(txn, userId, schema.NotifyPayslip, content)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error generating payslip: %v", err), GetResponseCode(err))
		return
	}

	payslipsGeneratedMetric.Inc()
	slog.Info("generated payslip", "payslip_id", payslip.Id, "user_id", userId, "period", period, "net_total", payslip.NetTotal)

	utils.WriteJsonResponse(w, convertToPayslipInfo(&payslip))
}

func (s *PayslipService) List(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	query := s.db.Preload("Shifts").Order("period desc")
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

	var payslips []schema.Payslip
	result := query.Find(&payslips)
	if result.Error != nil {
		slog.Error("sql error listing payslips", "error", result.Error)
		http.Error(w, fmt.Sprintf("error listing payslips: %v", schema.ErrDbAccessFailed), http.StatusInternalServerError)
		return
	}

	infos := make([]PayslipInfo, 0, len(payslips))
	for _, payslip := range payslips {
		infos = append(infos, convertToPayslipInfo(&payslip))
	}
	utils.WriteJsonResponse(w, infos)
}
