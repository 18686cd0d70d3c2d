// Package authz decides whether an actor may act on an object. Rules live
// in an embedded casbin model and policy; ownership is folded into the
// role before enforcement.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/pageza/foodgram/backend/internal/models"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

const (
	RoleAnonymous = "anonymous"
	RoleUser      = "user"
	RoleAuthor    = "author"
	RoleAdmin     = "admin"
)

// Objects and actions used by the services.
const (
	ObjectRecipe       = "recipe"
	ObjectUser         = "user"
	ObjectFavorite     = "favorite"
	ObjectCart         = "cart"
	ObjectSubscription = "subscription"

	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionWrite  = "write"
)

// Actor is the identity a request runs as. The zero value is anonymous.
type Actor struct {
	UserID  uint
	IsStaff bool
}

func (a Actor) Authenticated() bool {
	return a.UserID != 0
}

// Role returns the role of a for an object owned by ownerID (0 when the
// object has no owner).
func (a Actor) Role(ownerID uint) string {
	switch {
	case !a.Authenticated():
		return RoleAnonymous
	case a.IsStaff:
		return RoleAdmin
	case ownerID != 0 && ownerID == a.UserID:
		return RoleAuthor
	default:
		return RoleUser
	}
}

// Enforcer wraps a synced casbin enforcer.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds the enforcer from the embedded model and policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}

	return &Enforcer{enforcer: enforcer}, nil
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Enforce reports whether role may perform action on object.
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return allowed, nil
}

// Authorize returns nil when actor may perform action on an object owned
// by ownerID. A refused anonymous actor gets an Unauthorized error, a
// refused authenticated one PermissionDenied.
func (e *Enforcer) Authorize(actor Actor, ownerID uint, object, action string) error {
	allowed, err := e.Enforce(actor.Role(ownerID), object, action)
	if err != nil {
		return models.NewInternalError(err)
	}
	if allowed {
		return nil
	}
	if !actor.Authenticated() {
		return models.NewUnauthorizedError("authentication credentials were not provided")
	}
	return models.NewPermissionDeniedError("you do not have permission to perform this action")
}
