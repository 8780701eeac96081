package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StorageKey is the single durable record holding the signed-in user.
const StorageKey = "health-auth"

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Session is the signed-in user. Both fields are set or there is no session.
type Session struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

func (s Session) Valid() bool {
	return strings.TrimSpace(s.Username) != "" && strings.TrimSpace(s.Token) != ""
}

func (s Session) Encode() ([]byte, error) {
	return json.Marshal(s)
}

var ErrMalformedSession = errors.New("malformed session record")

func Decode(payload []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return Session{}, errors.Join(ErrMalformedSession, err)
	}
	if !s.Valid() {
		return Session{}, ErrMalformedSession
	}
	return s, nil
}

// ExpiresAt reads the exp claim when the token is a JWT. The signature is
// not checked; only the service can do that.
func (s Session) ExpiresAt() (time.Time, bool) {
	token, _, err := jwt.NewParser().ParseUnverified(s.Token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s Session) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && !now.Before(exp)
}

// Account is what the service returns after registration.
type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Token is the login response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
