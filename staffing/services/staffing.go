package services

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"sanacare/staffing/auth"
	"sanacare/staffing/schema"
	"sanacare/utils"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

type Staffing struct {
	user         UserService
	institution  InstitutionService
	schedule     ScheduleService
	shift        ShiftService
	exchange     ExchangeService
	payslip      PayslipService
	message      MessageService
	notification NotificationService
	dashboard    DashboardService

	db   *gorm.DB
	stop chan bool
}

func NewStaffing(db *gorm.DB, userAuth auth.IdentityProvider) Staffing {
	return Staffing{
		user:         UserService{db: db, userAuth: userAuth},
		institution:  InstitutionService{db: db, userAuth: userAuth},
		schedule:     ScheduleService{db: db, userAuth: userAuth},
		shift:        ShiftService{db: db, userAuth: userAuth},
		exchange:     ExchangeService{db: db, userAuth: userAuth},
		payslip:      PayslipService{db: db, userAuth: userAuth},
		message:      MessageService{db: db, userAuth: userAuth},
		notification: NotificationService{db: db, userAuth: userAuth},
		dashboard:    DashboardService{db: db, userAuth: userAuth},
		db:           db,
		stop:         make(chan bool, 1),
	}
}

func (s *Staffing) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger: log.New(os.Stderr, "", log.LstdFlags), NoColor: false,
	}))

	r.Mount("/auth", s.user.AuthRoutes())
	r.Mount("/users", s.user.Routes())
	r.Mount("/institutions", s.institution.Routes())
	r.Mount("/schedules", s.schedule.Routes())
	r.Mount("/shifts", s.shift.Routes())
	r.Mount("/exchanges", s.exchange.Routes())
	r.Mount("/payslips", s.payslip.Routes())
	r.Mount("/messages", s.message.Routes())
	r.Mount("/notifications", s.notification.Routes())
	r.Mount("/dashboard", s.dashboard.Routes())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w)
	})

	return r
}

// sweepSchedules closes out booked slots whose date has passed. Available
// slots are left alone so they stay visible until someone books or the owner
// removes them.
func (s *Staffing) sweepSchedules() {
	today := time.Now().UTC().Format("2006-01-02")

	result := s.db.Model(&schema.Schedule{}).
		Where("date < ? AND status = ?", today, schema.ScheduleBooked).
		Update("status", schema.ScheduleCompleted)
	if result.Error != nil {
		slog.Error("schedule sweep: sql error completing past slots", "error", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		slog.Info("schedule sweep: completed past slots", "count", result.RowsAffected)
	}
}

func (s *Staffing) ScheduleSweep(interval time.Duration) {
	slog.Info("schedule sweep: starting")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepSchedules()
		case <-s.stop:
			slog.Info("schedule sweep: process stopped")
			return
		}
	}
}

func (s *Staffing) StopScheduleSweep() {
	close(s.stop)
}
