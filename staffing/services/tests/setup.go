package tests

import (
	"bytes"
	"fmt"
	"sanacare/staffing/auth"
	"sanacare/staffing/schema"
	"sanacare/staffing/services"
	"testing"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	staffing services.Staffing
	api      chi.Router
	db       *gorm.DB
}

const (
	adminEmail    = "admin123@mail.com"
	adminPassword = "admin_password123"
)

func setupTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	if err := db.AutoMigrate(schema.Tables()...); err != nil {
		t.Fatal(err)
	}

	secret := []byte("290zcv02ai249")

	userAuth, err := auth.NewBasicIdentityProvider(
		db,
		auth.NewAuditLogger(new(bytes.Buffer)),
		auth.BasicProviderArgs{
			Secret:         secret,
			AdminFirstName: "Alice",
			AdminLastName:  "Admin",
			AdminEmail:     adminEmail,
			AdminPassword:  adminPassword,
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	staffing := services.NewStaffing(db, userAuth)

	return &testEnv{staffing: staffing, api: staffing.Routes(), db: db}
}

func (t *testEnv) newClient() client {
	return client{api: t.api}
}

func (t *testEnv) adminClient() (client, error) {
	c := t.newClient()
	err := c.login(loginInfo{Email: adminEmail, Password: adminPassword})
	return c, err
}

// newPendingUser signs a caregiver up but leaves the account awaiting
// approval.
func (t *testEnv) newPendingUser(name, role string) (client, error) {
	c := t.newClient()
	login, err := c.signup(name, role)
	if err != nil {
		return client{}, err
	}

	if err := c.login(login); err != nil {
		return client{}, err
	}

	return c, nil
}

// newUser signs a caregiver up and approves the account through the admin.
func (t *testEnv) newUser(name, role string) (client, error) {
	c, err := t.newPendingUser(name, role)
	if err != nil {
		return client{}, err
	}

	admin, err := t.adminClient()
	if err != nil {
		return client{}, err
	}

	if err := admin.setUserStatus(c.userId, schema.UserApproved); err != nil {
		return client{}, err
	}

	return c, nil
}

func (t *testEnv) newInstitution(admin client, name string) (string, error) {
	info, err := admin.createInstitution(name)
	if err != nil {
		return "", fmt.Errorf("error creating institution: %w", err)
	}
	return info.Id.String(), nil
}
