// Package session keeps the logged-in user's snapshot server side. The
// browser only holds a signed token naming the session row.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sidhant-sriv/db-auth/db"
	"github.com/sidhant-sriv/db-auth/models"
)

// ErrNoSession means the request carries no valid, unexpired session.
var ErrNoSession = errors.New("no session")

const (
	contextKey = "session"
	tokenType  = "session"
)

// Repository persists session rows. *db.Store implements it.
type Repository interface {
	CreateSession(ctx context.Context, rec *models.SessionRecord) error
	FindSession(ctx context.Context, id string) (*models.SessionRecord, error)
	SaveSession(ctx context.Context, rec *models.SessionRecord) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// User is the snapshot of a client copied into the session at login.
type User struct {
	Email        string  `json:"email"`
	Nom          string  `json:"nom"`
	Prenom       string  `json:"prenom"`
	ProfileImage *string `json:"profile_image"`
}

// UserFromClient copies the fields a session keeps.
func UserFromClient(c *models.Client) User {
	return User{
		Email:        c.Email,
		Nom:          c.Nom,
		Prenom:       c.Prenom,
		ProfileImage: c.ProfileImage,
	}
}

// Session is one login. Mutate User and call Manager.Save to persist.
type Session struct {
	ID        string
	User      User
	ExpiresAt time.Time
}

// ImagePath returns the snapshot's profile image reference or "".
func (s *Session) ImagePath() string {
	if s.User.ProfileImage == nil {
		return ""
	}
	return *s.User.ProfileImage
}

type Options struct {
	Secret     string
	CookieName string
	TTL        time.Duration
}

type claims struct {
	SessionID string `json:"sid"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

// Manager issues, loads and destroys sessions.
type Manager struct {
	repo Repository
	opts Options
	now  func() time.Time
}

func NewManager(repo Repository, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "db_auth_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{repo: repo, opts: opts, now: time.Now}
}

// CookieName is the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.opts.CookieName
}

// Create stores a new session for u and sets the cookie. The expiry is
// fixed at creation and never extended. A session the request already
// carries is replaced, and expired rows are purged.
func (m *Manager) Create(c *gin.Context, u User) (*Session, error) {
	ctx := c.Request.Context()
	now := m.now()

	if prev, err := m.sessionID(c); err == nil {
		if err := m.repo.DeleteSession(ctx, prev); err != nil {
			return nil, fmt.Errorf("drop previous session: %w", err)
		}
	}
	if _, err := m.repo.DeleteExpiredSessions(ctx, now); err != nil {
		return nil, fmt.Errorf("purge expired sessions: %w", err)
	}

	s := &Session{
		ID:        uuid.New().String(),
		User:      u,
		ExpiresAt: now.Add(m.opts.TTL),
	}

	tok, err := m.sign(s.ID, now, s.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	if err := m.repo.CreateSession(ctx, toRecord(s)); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.SetCookie(m.opts.CookieName, tok, int(m.opts.TTL.Seconds()), "/", "", false, true)
	return s, nil
}

// Load resolves the request's cookie to a live session. Expired rows are
// deleted on the way out.
func (m *Manager) Load(c *gin.Context) (*Session, error) {
	sid, err := m.sessionID(c)
	if err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	rec, err := m.repo.FindSession(ctx, sid)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !m.now().Before(rec.ExpiresAt) {
		_ = m.repo.DeleteSession(ctx, sid)
		return nil, ErrNoSession
	}
	return fromRecord(rec), nil
}

// Save persists the session's user snapshot.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if err := m.repo.SaveSession(ctx, toRecord(s)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Destroy deletes the session named by the request cookie, if any, and
// clears the cookie.
func (m *Manager) Destroy(c *gin.Context) error {
	defer c.SetCookie(m.opts.CookieName, "", -1, "/", "", false, true)

	sid, err := m.sessionID(c)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := m.repo.DeleteSession(c.Request.Context(), sid); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (m *Manager) sign(sid string, iat, exp time.Time) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: sid,
		Type:      tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	return tok.SignedString([]byte(m.opts.Secret))
}

func (m *Manager) sessionID(c *gin.Context) (string, error) {
	raw, err := c.Cookie(m.opts.CookieName)
	if err != nil || raw == "" {
		return "", ErrNoSession
	}

	var cl claims
	tok, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(m.opts.Secret), nil
	})
	if err != nil || !tok.Valid || cl.Type != tokenType || cl.SessionID == "" {
		return "", ErrNoSession
	}
	return cl.SessionID, nil
}

// Set attaches s to the request context.
func Set(c *gin.Context, s *Session) {
	c.Set(contextKey, s)
}

// FromContext returns the session attached by the login guard.
func FromContext(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok && s != nil
}

func toRecord(s *Session) *models.SessionRecord {
	return &models.SessionRecord{
		ID:           s.ID,
		Email:        s.User.Email,
		Nom:          s.User.Nom,
		Prenom:       s.User.Prenom,
		ProfileImage: s.User.ProfileImage,
		ExpiresAt:    s.ExpiresAt,
	}
}

func fromRecord(rec *models.SessionRecord) *Session {
	return &Session{
		ID: rec.ID,
		User: User{
			Email:        rec.Email,
			Nom:          rec.Nom,
			Prenom:       rec.Prenom,
			ProfileImage: rec.ProfileImage,
		},
		ExpiresAt: rec.ExpiresAt,
	}
}
