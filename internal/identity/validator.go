// Package identity turns bearer tokens minted by the external identity
// provider into the request caller. Token issuance lives elsewhere.
package identity

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
)

// Claims are the access token claims the backend relies on.
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	EmpresaID string `json:"empresa_id,omitempty"`
	jwt.RegisteredClaims
}

// Validator checks HMAC-signed access tokens.
type Validator struct {
	signingKey []byte
	issuer     string
}

// NewValidator builds a validator. An empty issuer disables the issuer check.
func NewValidator(signingKey, issuer string) *Validator {
	return &Validator{signingKey: []byte(signingKey), issuer: issuer}
}

func (v *Validator) parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ValidateToken returns the caller carried by the token. A role outside the
// known set is kept verbatim so that authorization denies everything for it.
func (v *Validator) ValidateToken(tokenString string) (id.Caller, error) {
	claims, err := v.parse(tokenString)
	if err != nil {
		return id.Caller{}, err
	}

	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return id.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	role, ok := id.ParseRole(claims.Role)
	if !ok {
		role = id.Role(strings.TrimSpace(claims.Role))
	}

	caller := id.Caller{
		UserID: userID,
		Role:   role,
		Email:  strings.TrimSpace(claims.Email),
	}
	if claims.EmpresaID != "" {
		empresaID, err := id.ParseEmpresaID(claims.EmpresaID)
		if err != nil {
			return id.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
		}
		caller.EmpresaID = &empresaID
	}
	return caller, nil
}
