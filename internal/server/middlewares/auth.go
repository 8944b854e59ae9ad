package middlewares

import (
	"crypto/rsa"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	srvErrors "github.com/pabean-labs/bc20-explorer/pkg/errors"
)

// Permissions understood by the API.
const (
	PermissionDeclarationsView   = "bc20.view"
	PermissionDeclarationsExport = "bc20.export"
	PermissionCompaniesView      = "oss.view"
)

const (
	permissionsKey = "permissions"
	grantAllKey    = "permissions_all"
	bearerPrefix   = "Bearer "
)

// Claims are the JWT claims read by the API.
type Claims struct {
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Authenticator verifies RS256 bearer tokens and stores their permissions on the context.
type Authenticator struct {
	key         *rsa.PublicKey
	publicPaths map[string]bool
}

// NewAuthenticator parses a PEM encoded RSA public key.
func NewAuthenticator(publicKeyPEM []byte, publicPaths ...string) (*Authenticator, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, err
	}
	a := &Authenticator{key: key, publicPaths: make(map[string]bool)}
	for _, p := range publicPaths {
		a.publicPaths[p] = true
	}
	return a, nil
}

func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.publicPaths[c.FullPath()] {
			c.Next()
			return
		}

		claims, err := a.parse(c.GetHeader("Authorization"))
		if err != nil {
			RequestLogger(c).Debugw("rejected token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(permissionsKey, claims.Permissions)
		c.Next()
	}
}

func (a *Authenticator) parse(header string) (*Claims, error) {
	if header == "" {
		return nil, srvErrors.NewUnauthorizedError("missing authorization header")
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, srvErrors.NewUnauthorizedError("invalid authorization header format")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, bearerPrefix), claims, func(t *jwt.Token) (any, error) {
		return a.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, srvErrors.NewUnauthorizedError("invalid token")
	}
	return claims, nil
}

// GrantAll marks every request as holding every permission. Used when authentication is disabled.
func GrantAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(grantAllKey, true)
		c.Next()
	}
}

// HasPermission reports whether the caller holds the named permission.
func HasPermission(c *gin.Context, name string) bool {
	if c.GetBool(grantAllKey) {
		return true
	}
	return slices.Contains(c.GetStringSlice(permissionsKey), name)
}
