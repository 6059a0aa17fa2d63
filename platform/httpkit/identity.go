// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated caller.
// Handlers read it instead of reaching into gin context keys directly.
type Identity interface {
	// UserID returns the authenticated user's ID.
	UserID() uuid.UUID
	// TenantID returns the company the user acts for, nil when the token carries none.
	TenantID() *uuid.UUID
	// Roles returns the user's assigned roles.
	Roles() []string
	// IsAuthenticated returns true if the user is authenticated.
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	tenantID      *uuid.UUID
	roles         []string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID {
	return i.userID
}

func (i *identity) TenantID() *uuid.UUID {
	return i.tenantID
}

func (i *identity) Roles() []string {
	return i.roles
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, userOK := c.Get(ContextUserIDKey)
	if !userOK {
		return &identity{authenticated: false}
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	var roleList []string
	if roles, rolesOK := c.Get(ContextRolesKey); rolesOK {
		roleList, _ = roles.([]string)
	}

	var tenant *uuid.UUID
	if raw, tenantOK := c.Get(ContextTenantIDKey); tenantOK {
		if tid, ok := raw.(uuid.UUID); ok {
			tenant = &tid
		}
	}

	return &identity{
		userID:        uid,
		tenantID:      tenant,
		roles:         roleList,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}

// MustGetTenant returns the caller's identity and tenant. It aborts with 403 when
// the token is not bound to a company, since every lead belongs to one.
func MustGetTenant(c *gin.Context) (Identity, uuid.UUID, bool) {
	id := MustGetIdentity(c)
	if id == nil {
		return nil, uuid.Nil, false
	}
	tenant := id.TenantID()
	if tenant == nil {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no company selected"})
		return nil, uuid.Nil, false
	}
	return id, *tenant, true
}
