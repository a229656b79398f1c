package tests

import (
	"sanacare/staffing/schema"
	"testing"
)

func TestCreateShiftComputesTotal(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	institutionId, err := env.newInstitution(admin, "Clinique du Parc")
	if err != nil {
		t.Fatal(err)
	}

	user, err := env.newUser("rosa", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}

	shift, err := user.createShift(institutionId, "2026-08-15", 6, 25, 15)
	if err != nil {
		t.Fatal(err)
	}

	if shift.Total != 165.00 {
		t.Fatalf("expected total 165.00, got %v", shift.Total)
	}
	if shift.Status != schema.ShiftPending {
		t.Fatalf("new shifts should be pending, got %v", shift.Status)
	}
	if shift.UserId.String() != user.userId {
		t.Fatalf("shift should belong to the caller, got %v", shift.UserId)
	}
}

func TestCreateShiftValidation(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	institutionId, err := env.newInstitution(admin, "Clinique du Parc")
	if err != nil {
		t.Fatal(err)
	}

	user, err := env.newUser("simon", schema.RoleAide)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := user.createShift(institutionId, "2026-08-15", 0, 25, 0); !isStatus(err, 422) {
		t.Fatalf("zero hours should be rejected, got %v", err)
	}
	if _, err := user.createShift(institutionId, "2026-08-15", 6, -1, 0); !isStatus(err, 422) {
		t.Fatalf("negative rate should be rejected, got %v", err)
	}
	if _, err := user.createShift(institutionId, "2026-08-15", 6, 25, -5); !isStatus(err, 422) {
		t.Fatalf("negative travel cost should be rejected, got %v", err)
	}
	if _, err := user.createShift(institutionId, "15-08-2026", 6, 25, 0); !isStatus(err, 422) {
		t.Fatalf("invalid date should be rejected, got %v", err)
	}
}

func TestValidateShift(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	institutionId, err := env.newInstitution(admin, "Clinique du Parc")
	if err != nil {
		t.Fatal(err)
	}

	user, err := env.newUser("tara", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}

	shift, err := user.createShift(institutionId, "2026-08-15", 8, 25, 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := user.validateShift(shift.Id.String()); !isStatus(err, 403) {
		t.Fatalf("caregivers cannot validate shifts, got %v", err)
	}

	if err := admin.validateShift(shift.Id.String()); err != nil {
		t.Fatal(err)
	}

	// Validation happens exactly once.
	if err := admin.validateShift(shift.Id.String()); !isStatus(err, 409) {
		t.Fatalf("expected conflict on double validation, got %v", err)
	}

	shifts, err := user.listShifts()
	if err != nil {
		t.Fatal(err)
	}
	if len(shifts) != 1 || shifts[0].Status != schema.ShiftValidated {
		t.Fatalf("unexpected listing %v", shifts)
	}
}

func TestShiftVisibility(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	institutionId, err := env.newInstitution(admin, "Clinique du Parc")
	if err != nil {
		t.Fatal(err)
	}

	alice, err := env.newUser("ursula", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}
	bob, err := env.newUser("victor", schema.RoleAide)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := alice.createShift(institutionId, "2026-08-15", 8, 25, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := bob.createShift(institutionId, "2026-08-16", 4, 20, 10); err != nil {
		t.Fatal(err)
	}

	own, err := alice.listShifts()
	if err != nil {
		t.Fatal(err)
	}
	if len(own) != 1 || own[0].UserId.String() != alice.userId {
		t.Fatalf("caregivers only see their own shifts, got %v", own)
	}

	all, err := admin.listShifts()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("admin should see every shift, got %d", len(all))
	}
}
