package tests

import (
	"sanacare/staffing/schema"
	"testing"

	"github.com/google/uuid"
)

func TestSendAndListMessages(t *testing.T) {
	env := setupTestEnv(t)

	alice, err := env.newUser("emma", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}
	bob, err := env.newUser("felix", schema.RoleAide)
	if err != nil {
		t.Fatal(err)
	}
	carol, err := env.newUser("gaelle", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := alice.sendMessage(bob.userId, "Bonjour Felix"); err != nil {
		t.Fatal(err)
	}
	if _, err := bob.sendMessage(alice.userId, "Bonjour Emma"); err != nil {
		t.Fatal(err)
	}
	if _, err := alice.sendMessage(carol.userId, "Bonjour Gaelle"); err != nil {
		t.Fatal(err)
	}

	all, err := alice.listMessages()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(all))
	}

	conversation, err := alice.listConversation(bob.userId)
	if err != nil {
		t.Fatal(err)
	}
	if len(conversation) != 2 {
		t.Fatalf("expected 2 messages in conversation, got %d", len(conversation))
	}
	if conversation[0].Content != "Bonjour Felix" || conversation[1].Content != "Bonjour Emma" {
		t.Fatalf("conversation should be ordered oldest first, got %v", conversation)
	}

	// Third parties see nothing.
	visible, err := carol.listConversation(bob.userId)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 0 {
		t.Fatalf("unexpected listing %v", visible)
	}

	notifications, err := bob.listNotifications()
	if err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 1 || notifications[0]["type"] != schema.NotifyMessage {
		t.Fatalf("recipient should be notified, got %v", notifications)
	}
}

func TestMessageValidation(t *testing.T) {
	env := setupTestEnv(t)

	alice, err := env.newUser("hugo", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := alice.sendMessage(alice.userId, "note to self"); !isStatus(err, 422) {
		t.Fatalf("expected validation error, got %v", err)
	}

	bob, err := env.newUser("ines", schema.RoleAide)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := alice.sendMessage(bob.userId, ""); !isStatus(err, 422) {
		t.Fatalf("expected empty content error, got %v", err)
	}

	if _, err := alice.sendMessage(uuid.NewString(), "bonjour"); !isStatus(err, 404) {
		t.Fatalf("expected not found for unknown recipient, got %v", err)
	}
}

func TestMarkMessageRead(t *testing.T) {
	env := setupTestEnv(t)

	alice, err := env.newUser("jules", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}
	bob, err := env.newUser("karine", schema.RoleAide)
	if err != nil {
		t.Fatal(err)
	}

	message, err := alice.sendMessage(bob.userId, "Bonjour")
	if err != nil {
		t.Fatal(err)
	}

	// Only the recipient can mark a message read.
	if err := alice.markMessageRead(message.Id.String()); !isStatus(err, 404) {
		t.Fatalf("expected not found for the sender, got %v", err)
	}

	if err := bob.markMessageRead(message.Id.String()); err != nil {
		t.Fatal(err)
	}

	messages, err := bob.listMessages()
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 1 || !messages[0].Read {
		t.Fatalf("message should be read, got %v", messages)
	}
}
