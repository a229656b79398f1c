package tests

import (
	"errors"
	"fmt"
	"sanacare/staffing/schema"
	"strings"
	"testing"
)

func TestSignupAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("nurse%d", i)

		client := env.newClient()
		login, err := client.signup(name, schema.RoleNurse)
		if err != nil {
			t.Fatal(err)
		}

		_, err = client.signup(name, schema.RoleNurse)
		if err == nil {
			t.Fatal("duplicate signup should fail")
		}

		err = client.login(loginInfo{Email: "other@mail.com", Password: login.Password})
		if err == nil {
			t.Fatal("login should fail with wrong email")
		}

		err = client.login(loginInfo{Email: login.Email, Password: "password"})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatal("login should fail with wrong password")
		}

		err = client.login(login)
		if err != nil {
			t.Fatal(err)
		}

		info, err := client.me()
		if err != nil {
			t.Fatal(err)
		}

		if info.FirstName != name || info.Email != login.Email || info.Id.String() != client.userId {
			t.Fatalf("invalid info %v", info)
		}
		if info.Role != schema.RoleNurse || info.Status != schema.UserPending {
			t.Fatalf("new signups should be pending caregivers, got %v", info)
		}
	}
}

func TestSignupCannotCreateAdmin(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newClient()
	_, err := client.signup("mallory", schema.RoleAdmin)
	if err == nil {
		t.Fatal("self signup with admin role should fail")
	}
}

func TestUserApprovalFlow(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newPendingUser("claire", schema.RoleAide)
	if err != nil {
		t.Fatal(err)
	}

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}

	// The signup should have notified the admin.
	notifications, err := admin.listNotifications()
	if err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 1 || notifications[0]["type"] != schema.NotifyNewUser {
		t.Fatalf("expected a new user notification, got %v", notifications)
	}
	if !strings.Contains(notifications[0]["content"].(string), "Nouvelle inscription") {
		t.Fatalf("unexpected notification content %v", notifications[0]["content"])
	}

	if err := user.setUserStatus(user.userId, schema.UserApproved); err == nil {
		t.Fatal("caregivers cannot approve accounts")
	}

	if err := admin.setUserStatus(user.userId, "invalid"); !isStatus(err, 422) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := admin.setUserStatus(user.userId, schema.UserApproved); err != nil {
		t.Fatal(err)
	}

	// Resolving the same account twice is a conflict.
	if err := admin.setUserStatus(user.userId, schema.UserRejected); !isStatus(err, 409) {
		t.Fatalf("expected conflict, got %v", err)
	}

	info, err := user.me()
	if err != nil {
		t.Fatal(err)
	}
	if info.Status != schema.UserApproved {
		t.Fatalf("expected approved status, got %v", info.Status)
	}

	notifications, err = user.listNotifications()
	if err != nil {
		t.Fatal(err)
	}
	if len(notifications) != 1 || notifications[0]["type"] != schema.NotifyStatusUpdate {
		t.Fatalf("expected a status notification, got %v", notifications)
	}
}

func TestRejectedUserCannotLogin(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newClient()
	login, err := client.signup("denis", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.login(login); err != nil {
		t.Fatal(err)
	}

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	if err := admin.setUserStatus(client.userId, schema.UserRejected); err != nil {
		t.Fatal(err)
	}

	if err := client.login(login); !isStatus(err, 403) {
		t.Fatalf("rejected accounts should not log in, got %v", err)
	}
}

func TestAddUser(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	user, err := env.newUser("eve", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := user.addUser("frank", schema.RoleNurse); err == nil {
		t.Fatal("caregivers cannot add users")
	}

	login, err := admin.addUser("frank", schema.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}

	// Admin-created accounts skip the approval queue.
	client := env.newClient()
	if err := client.login(login); err != nil {
		t.Fatal(err)
	}
	info, err := client.me()
	if err != nil {
		t.Fatal(err)
	}
	if info.Status != schema.UserApproved || info.Role != schema.RoleAdmin {
		t.Fatalf("unexpected info %v", info)
	}
}

func TestListUsers(t *testing.T) {
	env := setupTestEnv(t)

	approved, err := env.newUser("gina", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.newPendingUser("henri", schema.RoleAide); err != nil {
		t.Fatal(err)
	}

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}

	all, err := admin.listUsers()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("admin should see every account, got %d", len(all))
	}

	visible, err := approved.listUsers()
	if err != nil {
		t.Fatal(err)
	}
	// Approved accounts excluding the caller: the admin only.
	if len(visible) != 1 || visible[0].Role != schema.RoleAdmin {
		t.Fatalf("unexpected listing %v", visible)
	}
}

func TestUpdateProfile(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("iris", schema.RoleNurse)
	if err != nil {
		t.Fatal(err)
	}
	other, err := env.newUser("jean", schema.RoleAide)
	if err != nil {
		t.Fatal(err)
	}

	if err := other.updateProfile(user.userId, map[string]string{"phone": "0600000000"}); !isStatus(err, 403) {
		t.Fatalf("profiles are self-service only, got %v", err)
	}

	if err := user.updateProfile(user.userId, map[string]string{"phone": "0611223344", "first_name": "Irène"}); err != nil {
		t.Fatal(err)
	}

	info, err := user.me()
	if err != nil {
		t.Fatal(err)
	}
	if info.Phone != "0611223344" || info.FirstName != "Irène" {
		t.Fatalf("profile update not applied: %v", info)
	}
}
