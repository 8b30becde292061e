package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/juju/errors"
)

// AdminRole is the only role tokens are issued for.
const AdminRole = "admin"

// DefaultTokenTTL is how long an admin token stays valid.
const DefaultTokenTTL = 12 * time.Hour

// Issuer signs and verifies admin tokens with a shared HS256 secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer for secret. A zero ttl means DefaultTokenTTL.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < 16 {
		return nil, errors.NotValidf("JWT secret shorter than 16 bytes")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// GenerateToken creates a signed token for username.
func (i *Issuer) GenerateToken(username string) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"sub":  username,
		"role": AdminRole,
		"exp":  now.Add(i.ttl).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", errors.Annotate(err, "signing token")
	}
	return signed, nil
}

// TTL returns the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// ValidateToken parses tokenString and returns its subject.
func (i *Issuer) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", errors.Annotate(err, "parsing token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	if role, _ := claims["role"].(string); role != AdminRole {
		return "", errors.Unauthorizedf("role %q", role)
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.New("invalid subject claim")
	}
	return subject, nil
}
