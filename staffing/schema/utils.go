package schema

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInstitutionNotFound  = errors.New("institution not found")
	ErrScheduleNotFound     = errors.New("schedule not found")
	ErrShiftNotFound        = errors.New("shift not found")
	ErrExchangeNotFound     = errors.New("exchange not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDbAccessFailed       = errors.New("db access failed")
)

func GetUser(userId uuid.UUID, db *gorm.DB) (User, error) {
	var user User

	result := db.First(&user, "id = ?", userId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		slog.Error("sql error in get user", "user_id", userId, "error", result.Error)
		return user, ErrDbAccessFailed
	}

	return user, nil
}

func GetInstitution(institutionId uuid.UUID, db *gorm.DB) (Institution, error) {
	var institution Institution

	result := db.First(&institution, "id = ?", institutionId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return institution, ErrInstitutionNotFound
		}
		slog.Error("sql error in get institution", "institution_id", institutionId, "error", result.Error)
		return institution, ErrDbAccessFailed
	}

	return institution, nil
}

func GetSchedule(scheduleId uuid.UUID, db *gorm.DB) (Schedule, error) {
	var schedule Schedule

	result := db.First(&schedule, "id = ?", scheduleId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return schedule, ErrScheduleNotFound
		}
		slog.Error("sql error in get schedule", "schedule_id", scheduleId, "error", result.Error)
		return schedule, ErrDbAccessFailed
	}

	return schedule, nil
}

func GetShift(shiftId uuid.UUID, db *gorm.DB) (Shift, error) {
	var shift Shift

	result := db.First(&shift, "id = ?", shiftId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return shift, ErrShiftNotFound
		}
		slog.Error("sql error in get shift", "shift_id", shiftId, "error", result.Error)
		return shift, ErrDbAccessFailed
	}

	return shift, nil
}

func GetExchange(exchangeId uuid.UUID, db *gorm.DB) (Exchange, error) {
	var exchange Exchange

	result := db.First(&exchange, "id = ?", exchangeId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return exchange, ErrExchangeNotFound
		}
		slog.Error("sql error in get exchange", "exchange_id", exchangeId, "error", result.Error)
		return exchange, ErrDbAccessFailed
	}

	return exchange, nil
}
