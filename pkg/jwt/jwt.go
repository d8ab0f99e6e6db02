package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session identidad y alcance del usuario que consulta la bitácora.
// Un usuario de bodega ve los movimientos de su bodega; uno de sucursal, los de su sucursal.
type Session struct {
	UserID     string
	Role       string // "admin" | "bodega" | "sucursal"
	BodegaID   string
	SucursalID string
}

// Claims incluye los claims estándar JWT más la sesión.
type Claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	BodegaID   string `json:"bodega_id,omitempty"`
	SucursalID string `json:"sucursal_id,omitempty"`
}

// Generate genera un token JWT firmado con la sesión.
func Generate(secret, issuer string, s Session, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:     s.UserID,
		Role:       s.Role,
		BodegaID:   s.BodegaID,
		SucursalID: s.SucursalID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve la sesión. Si issuer no está vacío también se valida.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, issuer, tokenString string) (Session, error) {
	if secret == "" {
		return Session{}, fmt.Errorf("jwt: secret vacío")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return Session{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Session{}, fmt.Errorf("claims inválidos")
	}
	if claims.UserID == "" {
		return Session{}, fmt.Errorf("claims inválidos: user_id vacío")
	}
	return Session{
		UserID:     claims.UserID,
		Role:       claims.Role,
		BodegaID:   claims.BodegaID,
		SucursalID: claims.SucursalID,
	}, nil
}
