package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/docspot-api/internal/apperr"
	"github.com/harentsoaR/docspot-api/internal/models"
)

const accountKey = "account"

// Authenticator resolves a bearer token to the account it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Policy is the access rule of one route. No roles means any signed-in role.
type Policy struct {
	Roles []models.Role
	// AllowUnapproved lets doctors awaiting approval through.
	AllowUnapproved bool
}

// Any admits every authenticated, approved account.
var Any = Policy{}

func Roles(roles ...models.Role) Policy { return Policy{Roles: roles} }

func (p Policy) allows(r models.Role) bool {
	if len(p.Roles) == 0 {
		return true
	}
	for _, allowed := range p.Roles {
		if allowed == r {
			return true
		}
	}
	return false
}

type Gate struct {
	auth Authenticator
}

func NewGate(auth Authenticator) *Gate {
	return &Gate{auth: auth}
}

// Protect checks the bearer token, the role and the doctor approval flag
// before handing the request on with the account attached.
func (g *Gate) Protect(p Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			abort(c, apperr.Unauthorized("Not authorized, no token"))
			return
		}

		user, err := g.auth.Authenticate(c.Request.Context(), strings.TrimSpace(tokenString))
		if err != nil {
			abort(c, err)
			return
		}
		if !p.allows(user.Role) {
			abort(c, apperr.Forbidden("Forbidden: "+string(user.Role)+" is not authorized for this action"))
			return
		}
		if user.IsDoctor() && !user.IsApproved && !p.AllowUnapproved {
			abort(c, apperr.Forbidden("Doctor account not approved"))
			return
		}

		c.Set(accountKey, user)
		c.Next()
	}
}

// CurrentUser returns the account attached by Protect.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(accountKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
