package middleware

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotation-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotation-service/internal/platform/config"
	"github.com/jsamuelsen/quotation-service/internal/platform/logging"
)

// ContextKeyClaims is the gin context key holding *Claims.
const ContextKeyClaims = "claims"

const (
	defaultSubjectHeader = "X-User-ID"
	defaultRolesHeader   = "X-User-Roles"
	defaultScopesHeader  = "X-User-Scopes"
)

// Claims are the caller attributes forwarded by the gateway in front of
// the service, which has already verified the caller's token.
type Claims struct {
	Subject string
	Roles   []string
	Scopes  []string
}

func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// ExtractClaims reads claims from the headers named in cfg. Roles are
// comma separated; scopes are space separated as in OAuth2.
func ExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	subjectHeader, rolesHeader, scopesHeader := defaultSubjectHeader, defaultRolesHeader, defaultScopesHeader

	if cfg != nil {
		subjectHeader = cmp.Or(cfg.SubjectHeader, subjectHeader)
		rolesHeader = cmp.Or(cfg.RolesHeader, rolesHeader)
		scopesHeader = cmp.Or(cfg.ScopesHeader, scopesHeader)
	}

	return &Claims{
		Subject: strings.TrimSpace(c.GetHeader(subjectHeader)),
		Roles:   splitRoles(c.GetHeader(rolesHeader)),
		Scopes:  strings.Fields(c.GetHeader(scopesHeader)),
	}
}

// GetClaims returns the claims stored by RequireAuth, or nil.
func GetClaims(c *gin.Context) *Claims {
	if v, ok := c.Get(ContextKeyClaims); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}

	return nil
}

// RequireAuth rejects requests without a subject and stores the claims.
func RequireAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ExtractClaims(c, cfg)
		if claims.Subject == "" {
			forbid(c, "authentication required")
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(),
			logging.FromContext(c.Request.Context()).With("subject", claims.Subject, "roles", claims.Roles)))

		c.Next()
	}
}

// RequireScope rejects callers lacking scope. An empty scope admits everyone.
func RequireScope(cfg *config.AuthConfig, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if scope != "" && !claimsOf(c, cfg).HasScope(scope) {
			forbid(c, "insufficient permissions: scope "+scope+" required")
			return
		}

		c.Next()
	}
}

// AuthorizeQuotations requires cfg.ReadScope for reads (GET, HEAD) and
// cfg.WriteScope for anything that creates quotations.
func AuthorizeQuotations(cfg *config.AuthConfig) gin.HandlerFunc {
	read, write := RequireScope(cfg, cfg.ReadScope), RequireScope(cfg, cfg.WriteScope)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			read(c)
			return
		}

		write(c)
	}
}

func claimsOf(c *gin.Context, cfg *config.AuthConfig) *Claims {
	if claims := GetClaims(c); claims != nil {
		return claims
	}

	claims := ExtractClaims(c, cfg)
	c.Set(ContextKeyClaims, claims)

	return claims
}

func forbid(c *gin.Context, message string) {
	dto.AbortWithCode(c, dto.ErrorCodeForbidden, message)
}

func splitRoles(s string) []string {
	if s == "" {
		return nil
	}

	var roles []string

	for part := range strings.SplitSeq(s, ",") {
		if role := strings.TrimSpace(part); role != "" {
			roles = append(roles, role)
		}
	}

	return roles
}
