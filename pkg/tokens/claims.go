package tokens

import "github.com/golang-jwt/jwt/v5"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (c *AccessClaims) IsStaff() bool {
	return c.Role == RoleAdmin
}

type RefreshClaims struct {
	jwt.RegisteredClaims
}
