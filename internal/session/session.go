// Package session keeps the per-session ledger cursor in a signed cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
)

const CookieName = "kyat_session"

var ErrNoSession = errors.New("no valid session")

// State is everything a session remembers between requests.
type State struct {
	Username string
	Cursor   ledger.Cursor
}

type claims struct {
	Username    string `json:"usr"`
	Period      string `json:"period"`
	LastTouched string `json:"touched,omitempty"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
	loc    *time.Location
}

type Option func(*Manager)

// WithLocation sets the zone used to pick the month a new session starts on.
// The default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) { m.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(secret string, ttl time.Duration, secure bool, opts ...Option) *Manager {
	m := &Manager{secret: []byte(secret), ttl: ttl, secure: secure, now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Issue starts a session for a freshly authenticated user, viewing the
// current month.
func (m *Manager) Issue(w http.ResponseWriter, userID uuid.UUID, username string) (State, error) {
	st := State{Username: username, Cursor: ledger.NewCursor(userID, m.now().In(m.loc))}

	return st, m.Save(w, st)
}

// Save writes st back to the cookie. Call it after every cursor change.
func (m *Manager) Save(w http.ResponseWriter, st State) error {
	token, err := m.Encode(st)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

func (m *Manager) Encode(st State) (string, error) {
	now := m.now()
	c := claims{
		Username:    st.Username,
		Period:      st.Cursor.Period.String(),
		LastTouched: st.Cursor.LastTouched.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   st.Cursor.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing session: %w", err)
	}

	return token, nil
}

func (m *Manager) Decode(token string) (State, error) {
	var c claims

	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrNoSession, err)
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return State{}, fmt.Errorf("%w: bad subject: %w", ErrNoSession, err)
	}

	period, err := ledger.ParsePeriod(c.Period)
	if err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrNoSession, err)
	}

	touched, err := ledger.ParseKey(c.LastTouched)
	if err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrNoSession, err)
	}

	return State{
		Username: c.Username,
		Cursor:   ledger.Cursor{UserID: userID, Period: period, LastTouched: touched},
	}, nil
}

func (m *Manager) Load(r *http.Request) (State, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return State{}, ErrNoSession
	}

	return m.Decode(cookie.Value)
}

// Clear ends the session.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type contextKey struct{}

// Require rejects requests without a valid session and stores the decoded
// state in the request context.
func (m *Manager) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, err := m.Load(r)
		if err != nil {
			m.Clear(w)
			http.Error(w, "unauthorized", http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), &st)))
	})
}

func NewContext(ctx context.Context, st *State) context.Context {
	return context.WithValue(ctx, contextKey{}, st)
}

// FromContext returns the session state stored by Require. Handlers may
// change the returned cursor and then Save it.
func FromContext(ctx context.Context) (*State, bool) {
	st, ok := ctx.Value(contextKey{}).(*State)
	return st, ok
}
