package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

const (
	// AuthHeaderKey is header key to match auth token
	AuthHeaderKey = "Authorization"

	adminRole = "admin"
)

// Config contains the configuration for admin token verification.
type Config struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	JWTTTL    string `mapstructure:"jwt_ttl"`
}

// Server verifies and issues admin bearer tokens. Tokens are issued out of
// band by the token command; there is no login endpoint.
type Server struct {
	JwtAuth *jwtauth.JWTAuth
	jwtTTL  time.Duration
}

// New creates a new auth server.
func New(c *Config) (*Server, error) {
	if c.JWTSecret == "" {
		return nil, fmt.Errorf("auth jwt secret is empty")
	}
	ttl := 24 * time.Hour
	if c.JWTTTL != "" {
		d, err := time.ParseDuration(c.JWTTTL)
		if err != nil {
			return nil, fmt.Errorf("auth jwt ttl: %w", err)
		}
		ttl = d
	}
	return &Server{
		JwtAuth: jwtauth.New("HS256", []byte(c.JWTSecret), nil),
		jwtTTL:  ttl,
	}, nil
}

// NewToken issues an admin token for subject.
func (s *Server) NewToken(subject string) (string, error) {
	claims := map[string]interface{}{
		"exp":  time.Now().Add(s.jwtTTL).Unix(),
		"role": adminRole,
	}
	if subject != "" {
		claims["sub"] = subject
	}
	_, ts, err := s.JwtAuth.Encode(claims)
	return ts, err
}

// VerifyToken checks signature, expiry and the admin role claim and returns
// the token subject.
func (s *Server) VerifyToken(token string) (string, error) {
	t, err := jwtauth.VerifyToken(s.JwtAuth, token)
	if err != nil {
		return "", err
	}
	role, _ := t.Get("role")
	if role != adminRole {
		return "", fmt.Errorf("token is not an admin token")
	}
	return t.Subject(), nil
}

// WithAuth rejects requests without a valid admin bearer token.
func (s *Server) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get(AuthHeaderKey), "Bearer ")
		if _, err := s.VerifyToken(token); err != nil {
			http.Error(w, fmt.Sprintf("invalid token %v", err.Error()), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
