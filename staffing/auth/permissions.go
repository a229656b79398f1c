package auth

import (
	"fmt"
	"net/http"
	"sanacare/staffing/schema"
)

// Capability is a server-side permission. The role table below is the
// authoritative access-control boundary; any menu filtering in clients is a
// display optimization only.
type capability int

const (
	CapManageUsers capability = iota
	CapManageInstitutions
	CapValidateShifts
	CapGeneratePayslips
	CapViewAllRecords
)

var roleCapabilities = map[string]map[capability]bool{
	schema.RoleAdmin: {
		CapManageUsers:        true,
		CapManageInstitutions: true,
		CapValidateShifts:     true,
		CapGeneratePayslips:   true,
		CapViewAllRecords:     true,
	},
	schema.RoleNurse: {},
	schema.RoleAide:  {},
}

func HasCapability(user schema.User, cap capability) bool {
	caps, ok := roleCapabilities[user.Role]
	if !ok {
		return false
	}
	return caps[cap]
}

func RequireCapability(cap capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			user, err := UserFromContext(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			if !HasCapability(user, cap) {
				http.Error(w, fmt.Sprintf("user %v does not have permission for this operation", user.Id), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// ApprovedOnly gates mutating operations. Pending accounts keep read access
// so they can browse institutions while awaiting approval.
func ApprovedOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			user, err := UserFromContext(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			if user.Status != schema.UserApproved {
				http.Error(w, fmt.Sprintf("account %v is not approved", user.Id), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
