package schema

import "fmt"

const (
	RoleAdmin = "admin"
	RoleNurse = "infirmier"
	RoleAide  = "aide_soignant"
)

func CheckValidRole(role string) error {
	if role == RoleAdmin || role == RoleNurse || role == RoleAide {
		return nil
	}
	return fmt.Errorf("invalid role '%v'", role)
}

func CheckValidCaregiverRole(role string) error {
	if role == RoleNurse || role == RoleAide {
		return nil
	}
	return fmt.Errorf("invalid role '%v', must be '%v' or '%v'", role, RoleNurse, RoleAide)
}

const (
	UserPending  = "pending"
	UserApproved = "approved"
	UserRejected = "rejected"
)

func CheckValidUserStatus(status string) error {
	if status == UserPending || status == UserApproved || status == UserRejected {
		return nil
	}
	return fmt.Errorf("invalid user status '%v'", status)
}

const (
	ScheduleAvailable = "available"
	ScheduleBooked    = "booked"
	ScheduleCompleted = "completed"
)

// scheduleRank orders the forward-only schedule lifecycle.
func scheduleRank(status string) int {
	switch status {
	case ScheduleAvailable:
		return 0
	case ScheduleBooked:
		return 1
	case ScheduleCompleted:
		return 2
	default:
		return -1
	}
}

func CheckScheduleTransition(from, to string) error {
	fromRank, toRank := scheduleRank(from), scheduleRank(to)
	if toRank < 0 {
		return fmt.Errorf("invalid schedule status '%v'", to)
	}
	if toRank <= fromRank {
		return fmt.Errorf("schedule status cannot move from '%v' to '%v'", from, to)
	}
	return nil
}

const (
	ShiftPending   = "pending"
	ShiftValidated = "validated"
	ShiftPaid      = "paid"
)

func CheckValidShiftStatus(status string) error {
	if status == ShiftPending || status == ShiftValidated || status == ShiftPaid {
		return nil
	}
	return fmt.Errorf("invalid shift status '%v'", status)
}

const (
	ExchangePending  = "pending"
	ExchangeAccepted = "accepted"
	ExchangeRejected = "rejected"
)

func CheckValidExchangeResolution(status string) error {
	if status == ExchangeAccepted || status == ExchangeRejected {
		return nil
	}
	return fmt.Errorf("invalid exchange resolution '%v', must be '%v' or '%v'", status, ExchangeAccepted, ExchangeRejected)
}

const (
	NotifyNewUser      = "new_user"
	NotifyStatusUpdate = "status_update"
	NotifyPayslip      = "payslip"
	NotifyMessage      = "message"
	NotifyExchange     = "exchange"
)
