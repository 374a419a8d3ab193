package devnode

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	dErrors "ledgergate/pkg/domain-errors"
)

const sessionIssuer = "ledgergate-devnode"

// SessionClaims are carried by an RPC session token.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Sessions authenticates RPC users and issues HS256 session tokens.
type Sessions struct {
	users      map[string][]byte
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewSessions builds the authenticator. An empty secret gets a random key,
// so tokens do not survive a restart.
func NewSessions(users []RPCUser, secret string, ttl time.Duration) (*Sessions, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	hashes := make(map[string][]byte, len(users))
	for _, u := range users {
		hashes[u.Username] = []byte(u.PasswordHash)
	}
	return &Sessions{users: hashes, signingKey: key, ttl: ttl, now: time.Now}, nil
}

// Login checks the credentials and returns a token with its expiry.
func (s *Sessions) Login(username, password string) (string, time.Time, error) {
	hash, ok := s.users[username]
	if !ok {
		// Compare anyway so unknown users cost the same as wrong passwords.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return "", time.Time{}, dErrors.New(dErrors.CodeUnauthorized, "Invalid RPC credentials")
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return "", time.Time{}, dErrors.New(dErrors.CodeUnauthorized, "Invalid RPC credentials")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    sessionIssuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	return signed, expiresAt, nil
}

// Verify returns the user a session token was issued to.
func (s *Sessions) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "Session expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "Invalid session token")
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "Invalid session token")
	}
	if _, known := s.users[claims.Subject]; !known {
		return "", dErrors.New(dErrors.CodeUnauthorized, "Invalid session token")
	}
	return claims.Subject, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("ledgergate-devnode"), bcrypt.MinCost)
