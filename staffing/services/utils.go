package services

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sanacare/staffing/schema"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedError(err error, code int) error {
	return &codedError{err: err, code: code}
}

func GetResponseCode(err error) int {
	var cerr *codedError
	if errors.As(err, &cerr) {
		return cerr.code
	}
	slog.Error("non coded error passed to GetResponseCode", "error", err)
	return http.StatusInternalServerError
}

// RoundCents rounds a monetary amount to two decimals.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ShiftTotal computes the amount billed for a shift. Computed once at
// creation; it is never re-derived from the stored fields.
func ShiftTotal(hours, hourlyRate, travelCost float64) float64 {
	return RoundCents(hours*hourlyRate + travelCost)
}

const (
	dateLayout   = "2006-01-02"
	periodLayout = "2006-01"
	clockLayout  = "15:04"
)

func checkValidDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("invalid date '%v', expected YYYY-MM-DD", date)
	}
	return nil
}

func checkValidPeriod(period string) error {
	if _, err := time.Parse(periodLayout, period); err != nil {
		return fmt.Errorf("invalid period '%v', expected YYYY-MM", period)
	}
	return nil
}

func checkValidClock(value string) error {
	if _, err := time.Parse(clockLayout, value); err != nil {
		return fmt.Errorf("invalid time '%v', expected HH:MM", value)
	}
	return nil
}

func checkUserExists(txn *gorm.DB, userId uuid.UUID) error {
	if _, err := schema.GetUser(userId, txn); err != nil {
		if errors.Is(err, schema.ErrUserNotFound) {
			return CodedError(err, http.StatusNotFound)
		}
		return CodedError(err, http.StatusInternalServerError)
	}
	return nil
}

func checkInstitutionExists(txn *gorm.DB, institutionId uuid.UUID) error {
	if _, err := schema.GetInstitution(institutionId, txn); err != nil {
		if errors.Is(err, schema.ErrInstitutionNotFound) {
			return CodedError(err, http.StatusNotFound)
		}
		return CodedError(err, http.StatusInternalServerError)
	}
	return nil
}

func createNotification(txn *gorm.DB, userId uuid.UUID, notificationType, content string) error {
	notification := schema.Notification{
		Id:        uuid.New(),
		UserId:    userId,
		Type:      notificationType,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	result := txn.Create(&notification)
	if result.Error != nil {
		slog.Error("sql error creating notification", "user_id", userId, "type", notificationType, "error", result.Error)
		return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
	}
	return nil
}

func notifyAdmins(txn *gorm.DB, notificationType, content string) error {
	var admins []schema.User
	result := txn.Find(&admins, "role = ?", schema.RoleAdmin)
	if result.Error != nil {
		slog.Error("sql error listing admins for notification", "error", result.Error)
		return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
	}

	for _, admin := range admins {
		if err := createNotification(txn, admin.Id, notificationType, content); err != nil {
			return err
		}
	}
	return nil
}
