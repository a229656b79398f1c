package tests

import (
	"sanacare/staffing/schema"
	"testing"
	"time"
)

func TestAdminDashboard(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	institutionId, err := env.newInstitution(admin, "Clinique du Parc")
	if err != nil {
		t.Fatal(err)
	}

	user, err := env.newUser("nadia", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.newPendingUser("olivier", schema.RoleAide); err != nil {
		t.Fatal(err)
	}

	recent := time.Now().UTC().AddDate(0, 0, -5).Format("2006-01-02")
	old := time.Now().UTC().AddDate(0, 0, -60).Format("2006-01-02")

	if _, err := user.createShift(institutionId, recent, 6, 25, 15); err != nil {
		t.Fatal(err)
	}
	if _, err := user.createShift(institutionId, old, 10, 30, 0); err != nil {
		t.Fatal(err)
	}

	stats, err := admin.adminStats()
	if err != nil {
		t.Fatal(err)
	}

	if stats.TotalUsers != 3 || stats.PendingUsers != 1 {
		t.Fatalf("unexpected user counts %+v", stats)
	}
	if stats.TotalInstitutions != 1 {
		t.Fatalf("unexpected institution count %+v", stats)
	}
	if stats.TotalShifts != 2 || stats.PendingShifts != 2 {
		t.Fatalf("unexpected shift counts %+v", stats)
	}
	// Only the shift within the trailing 30 days counts.
	if stats.RecentRevenue != 165.00 {
		t.Fatalf("expected recent revenue 165.00, got %v", stats.RecentRevenue)
	}
}

func TestCaregiverDashboard(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	institutionId, err := env.newInstitution(admin, "Clinique du Parc")
	if err != nil {
		t.Fatal(err)
	}

	user, err := env.newUser("pierre", schema.RoleAide)
	if err != nil {
		t.Fatal(err)
	}
	other, err := env.newUser("quitterie", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}

	paid, err := user.createShift(institutionId, "2026-08-05", 6, 25, 15)
	if err != nil {
		t.Fatal(err)
	}
	if err := admin.validateShift(paid.Id.String()); err != nil {
		t.Fatal(err)
	}
	if _, err := admin.generatePayslip(user.userId, "2026-08"); err != nil {
		t.Fatal(err)
	}

	validated, err := user.createShift(institutionId, "2026-09-01", 4, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := admin.validateShift(validated.Id.String()); err != nil {
		t.Fatal(err)
	}
	if _, err := user.createShift(institutionId, "2026-09-02", 2, 30, 5); err != nil {
		t.Fatal(err)
	}

	if _, err := other.sendMessage(user.userId, "Bonjour"); err != nil {
		t.Fatal(err)
	}

	stats, err := user.caregiverStats()
	if err != nil {
		t.Fatal(err)
	}

	if stats.TotalShifts != 3 || stats.TotalHours != 12 {
		t.Fatalf("unexpected shift stats %+v", stats)
	}
	if stats.TotalEarned != 165.00 {
		t.Fatalf("expected earned 165.00, got %v", stats.TotalEarned)
	}
	// Pending amount covers pending and validated shifts.
	if stats.PendingAmount != 145.00 {
		t.Fatalf("expected pending amount 145.00, got %v", stats.PendingAmount)
	}
	if stats.UnreadMessages != 1 {
		t.Fatalf("expected 1 unread message, got %v", stats.UnreadMessages)
	}
	// Approval plus payslip plus message notifications.
	if stats.UnreadNotifications != 3 {
		t.Fatalf("expected 3 unread notifications, got %v", stats.UnreadNotifications)
	}
}
