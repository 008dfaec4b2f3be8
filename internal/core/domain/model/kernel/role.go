package kernel

import (
	"fmt"
	"strings"

	"kargo/internal/pkg/errs"
)

// Role is the kind of user acting on the system. It arrives in the access
// token and selects what the user may do.
type Role int

const (
	RoleUnknown Role = iota
	RoleCourier
	RoleBusiness
	RoleCustomer
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleCourier:  "courier",
	RoleBusiness: "business",
	RoleCustomer: "customer",
	RoleAdmin:    "admin",
}

// ParseRole accepts the lower-case role names used in tokens and storage.
func ParseRole(s string) (Role, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for r, name := range roleNames {
		if name == needle {
			return r, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

func (r Role) Validate() error {
	if _, ok := roleNames[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a known role", r))
	}
	return nil
}
