package tests

import (
	"sanacare/staffing/schema"
	"testing"
)

func TestNotificationReadFlow(t *testing.T) {
	env := setupTestEnv(t)

	alice, err := env.newUser("lucas", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}
	bob, err := env.newUser("manon", schema.RoleAide)
	if err != nil {
		t.Fatal(err)
	}

	for _, content := range []string{"un", "deux", "trois"} {
		if _, err := alice.sendMessage(bob.userId, content); err != nil {
			t.Fatal(err)
		}
	}

	notifications, err := bob.listNotifications()
	if err != nil {
		t.Fatal(err)
	}
	// Approval notification plus three message notifications, newest first.
	if len(notifications) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(notifications))
	}
	if notifications[0]["read"].(bool) {
		t.Fatal("notifications should start unread")
	}

	firstId := notifications[0]["id"].(string)

	// Owners only.
	if err := alice.markNotificationRead(firstId); !isStatus(err, 404) {
		t.Fatalf("expected not found for other users, got %v", err)
	}

	if err := bob.markNotificationRead(firstId); err != nil {
		t.Fatal(err)
	}

	notifications, err = bob.listNotifications()
	if err != nil {
		t.Fatal(err)
	}
	unread := 0
	for _, n := range notifications {
		if !n["read"].(bool) {
			unread++
		}
	}
	if unread != 3 {
		t.Fatalf("expected 3 unread notifications, got %d", unread)
	}

	if err := bob.markAllNotificationsRead(); err != nil {
		t.Fatal(err)
	}

	notifications, err = bob.listNotifications()
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range notifications {
		if !n["read"].(bool) {
			t.Fatalf("all notifications should be read, got %v", n)
		}
	}
}
