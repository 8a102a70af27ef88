package httpkit

import (
	"github.com/gin-gonic/gin"
)

// Identity describes the authenticated caller.
type Identity interface {
	UserID() string
	Roles() []string
	HasRole(role string) bool
}

type ginIdentity struct {
	userID string
	roles  []string
}

func (i ginIdentity) UserID() string  { return i.userID }
func (i ginIdentity) Roles() []string { return i.roles }

func (i ginIdentity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

// GetIdentity extracts the caller identity set by AuthRequired.
func GetIdentity(c *gin.Context) (Identity, bool) {
	userID, ok := c.Get(ContextUserIDKey)
	if !ok {
		return nil, false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return nil, false
	}

	var roles []string
	if raw, ok := c.Get(ContextRolesKey); ok {
		roles, _ = raw.([]string)
	}
	return ginIdentity{userID: id, roles: roles}, true
}

// MustGetIdentity extracts the caller identity or aborts with 401.
func MustGetIdentity(c *gin.Context) (Identity, bool) {
	identity, ok := GetIdentity(c)
	if !ok {
		Error(c, 401, "authentication required")
		c.Abort()
		return nil, false
	}
	return identity, true
}
