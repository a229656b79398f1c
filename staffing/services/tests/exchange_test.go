package tests

import (
	"sanacare/staffing/schema"
	"testing"
)

func setupExchange(t *testing.T) (*testEnv, client, client, string) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	institutionId, err := env.newInstitution(admin, "Clinique du Parc")
	if err != nil {
		t.Fatal(err)
	}

	from, err := env.newUser("wanda", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}
	to, err := env.newUser("xavier", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}

	shift, err := from.createShift(institutionId, "2026-09-01", 8, 25, 0)
	if err != nil {
		t.Fatal(err)
	}

	return env, from, to, shift.Id.String()
}

func TestExchangeAcceptTransfersShift(t *testing.T) {
	_, from, to, shiftId := setupExchange(t)

	exchange, err := from.createExchange(shiftId, to.userId)
	if err != nil {
		t.Fatal(err)
	}
	if exchange.Status != schema.ExchangePending {
		t.Fatalf("new exchanges should be pending, got %v", exchange.Status)
	}

	notifications, err := to.listNotifications()
	if err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 1 || notifications[0]["type"] != schema.NotifyExchange {
		t.Fatalf("recipient should be notified, got %v", notifications)
	}

	if err := to.resolveExchange(exchange.Id.String(), schema.ExchangeAccepted); err != nil {
		t.Fatal(err)
	}

	// The shift now belongs to the recipient.
	shifts, err := to.listShifts()
	if err != nil {
		t.Fatal(err)
	}
	if len(shifts) != 1 || shifts[0].Id.String() != shiftId {
		t.Fatalf("shift should have transferred, got %v", shifts)
	}

	remaining, err := from.listShifts()
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Fatalf("proposer should no longer own the shift, got %v", remaining)
	}
}

func TestExchangeRejectKeepsShift(t *testing.T) {
	_, from, to, shiftId := setupExchange(t)

	exchange, err := from.createExchange(shiftId, to.userId)
	if err != nil {
		t.Fatal(err)
	}

	if err := to.resolveExchange(exchange.Id.String(), schema.ExchangeRejected); err != nil {
		t.Fatal(err)
	}

	shifts, err := from.listShifts()
	if err != nil {
		t.Fatal(err)
	}
	if len(shifts) != 1 {
		t.Fatalf("rejection should not move the shift, got %v", shifts)
	}
}

func TestExchangeResolvedExactlyOnce(t *testing.T) {
	_, from, to, shiftId := setupExchange(t)

	exchange, err := from.createExchange(shiftId, to.userId)
	if err != nil {
		t.Fatal(err)
	}

	if err := to.resolveExchange(exchange.Id.String(), schema.ExchangeRejected); err != nil {
		t.Fatal(err)
	}

	if err := to.resolveExchange(exchange.Id.String(), schema.ExchangeAccepted); !isStatus(err, 409) {
		t.Fatalf("expected conflict on second resolution, got %v", err)
	}
}

func TestExchangeEligibility(t *testing.T) {
	env, from, to, shiftId := setupExchange(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}

	// Pending users and admins cannot receive shifts.
	pending, err := env.newPendingUser("zora", schema.RoleAide)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := from.createExchange(shiftId, pending.userId); !isStatus(err, 422) {
		t.Fatalf("expected validation error for pending target, got %v", err)
	}
	if _, err := from.createExchange(shiftId, admin.userId); !isStatus(err, 422) {
		t.Fatalf("expected validation error for admin target, got %v", err)
	}

	// Paid shifts are settled and can no longer change hands.
	if err := admin.validateShift(shiftId); err != nil {
		t.Fatal(err)
	}
	if _, err := admin.generatePayslip(from.userId, "2026-09"); err != nil {
		t.Fatal(err)
	}
	if _, err := from.createExchange(shiftId, to.userId); !isStatus(err, 409) {
		t.Fatalf("expected conflict for paid shift, got %v", err)
	}
}

func TestExchangeAcceptFailsAfterSettlement(t *testing.T) {
	env, from, to, shiftId := setupExchange(t)

	exchange, err := from.createExchange(shiftId, to.userId)
	if err != nil {
		t.Fatal(err)
	}

	// The shift is settled while the exchange sits pending.
	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	if err := admin.validateShift(shiftId); err != nil {
		t.Fatal(err)
	}
	if _, err := admin.generatePayslip(from.userId, "2026-09"); err != nil {
		t.Fatal(err)
	}

	if err := to.resolveExchange(exchange.Id.String(), schema.ExchangeAccepted); !isStatus(err, 409) {
		t.Fatalf("expected conflict accepting an exchange for a paid shift, got %v", err)
	}

	// The settled shift stays with the proposer.
	shifts, err := from.listShifts()
	if err != nil {
		t.Fatal(err)
	}
	if len(shifts) != 1 || shifts[0].Status != schema.ShiftPaid {
		t.Fatalf("proposer should still own the paid shift, got %v", shifts)
	}
	transferred, err := to.listShifts()
	if err != nil {
		t.Fatal(err)
	}
	if len(transferred) != 0 {
		t.Fatalf("recipient should own nothing, got %v", transferred)
	}

	// The failed acceptance did not consume the exchange.
	if err := to.resolveExchange(exchange.Id.String(), schema.ExchangeRejected); err != nil {
		t.Fatal(err)
	}
}

func TestExchangePermissions(t *testing.T) {
	env, from, to, shiftId := setupExchange(t)

	// Cannot propose someone else's shift.
	if _, err := to.createExchange(shiftId, from.userId); !isStatus(err, 403) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// Cannot propose to yourself.
	if _, err := from.createExchange(shiftId, from.userId); !isStatus(err, 422) {
		t.Fatalf("expected validation error, got %v", err)
	}

	exchange, err := from.createExchange(shiftId, to.userId)
	if err != nil {
		t.Fatal(err)
	}

	// Only the recipient resolves.
	if err := from.resolveExchange(exchange.Id.String(), schema.ExchangeAccepted); !isStatus(err, 403) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := to.resolveExchange(exchange.Id.String(), "cancelled"); !isStatus(err, 422) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Third parties see nothing.
	outsider, err := env.newUser("yann", schema.RoleAide)
	if err != nil {
		t.Fatal(err)
	}
	visible, err := outsider.listExchanges()
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 0 {
		t.Fatalf("unexpected listing %v", visible)
	}
}
