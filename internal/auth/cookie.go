package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	SessionCookieName = "gym_session"
	FlowCookieName    = "gym_auth_flow"

	cookieIssuer = "gym-console"

	// FlowTTL bounds how long a sign-in may take at the provider.
	FlowTTL = 10 * time.Minute
)

var ErrInvalidCookie = errors.New("invalid cookie")

// sessionClaims is the payload of the session cookie: only the session id.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// flowClaims carries a pending sign-in across the provider redirect.
type flowClaims struct {
	State        string `json:"st"`
	CodeVerifier string `json:"cv"`
	ReturnTo     string `json:"rt,omitempty"`
	jwt.RegisteredClaims
}

// Flow is a sign-in in progress.
type Flow struct {
	State        string
	CodeVerifier string
	ReturnTo     string
}

// CookieSigner signs and verifies the console's cookies with HS256.
type CookieSigner struct {
	secret []byte
	now    func() time.Time
}

func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret), now: time.Now}
}

// SignSession returns the cookie value for sessionID.
func (s *CookieSigner) SignSession(sessionID string, expiresAt time.Time) (string, error) {
	now := s.now()
	claims := &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    cookieIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return s.sign(claims)
}

// ParseSession returns the session id carried by a session cookie.
func (s *CookieSigner) ParseSession(value string) (string, error) {
	claims := &sessionClaims{}
	if err := s.parse(value, claims); err != nil {
		return "", err
	}
	if claims.ID == "" {
		return "", fmt.Errorf("%w: missing session id", ErrInvalidCookie)
	}
	return claims.ID, nil
}

func (s *CookieSigner) SignFlow(f Flow) (string, error) {
	now := s.now()
	claims := &flowClaims{
		State:        f.State,
		CodeVerifier: f.CodeVerifier,
		ReturnTo:     f.ReturnTo,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cookieIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(FlowTTL)),
		},
	}
	return s.sign(claims)
}

func (s *CookieSigner) ParseFlow(value string) (Flow, error) {
	claims := &flowClaims{}
	if err := s.parse(value, claims); err != nil {
		return Flow{}, err
	}
	if claims.State == "" || claims.CodeVerifier == "" {
		return Flow{}, fmt.Errorf("%w: incomplete sign-in flow", ErrInvalidCookie)
	}
	return Flow{State: claims.State, CodeVerifier: claims.CodeVerifier, ReturnTo: claims.ReturnTo}, nil
}

func (s *CookieSigner) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

func (s *CookieSigner) parse(value string, claims jwt.Claims) error {
	if value == "" {
		return fmt.Errorf("%w: empty", ErrInvalidCookie)
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}
	if !token.Valid {
		return ErrInvalidCookie
	}
	return nil
}
