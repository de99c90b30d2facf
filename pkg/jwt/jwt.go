package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Tipos de sujeto del token.
const (
	TipoCliente = "cliente"
	TipoAdmin   = "admin"
)

// Claims incluye los claims estándar JWT más los campos propios del portal.
// Role y Tipo permiten que el middleware autorice sin consultar la DB; ID (jti) permite revocar el token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"` // "cliente" | "admin" | "supervisor" | "operador"
	Tipo   string `json:"tipo"` // "cliente" | "admin"
}

// Issued resultado de Generate.
type Issued struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// Generate genera un token JWT firmado HS256 para el sujeto indicado.
func Generate(secret, userID, role, tipo, issuer string, expMinutes int) (*Issued, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	exp := now.Add(time.Duration(expMinutes) * time.Minute)
	jti := uuid.New().String()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: userID,
		Role:   role,
		Tipo:   tipo,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}
	return &Issued{Token: token, JTI: jti, ExpiresAt: exp}, nil
}

// Parse valida firma y expiración y devuelve los claims.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}
