package service

import (
	"context"
	"encoding/base64"
	"regexp"
	"strings"
	"sync"

	"devblog/internal/clock"
	"devblog/internal/models"
	"devblog/internal/observability"
	"devblog/internal/storage"

	"go.opentelemetry.io/otel/attribute"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// AuthService manages accounts and the signed-in session.
type AuthService struct {
	store *storage.Store
	clock clock.Clock
	mu    sync.Mutex
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

func NewAuthService(store *storage.Store, clk clock.Clock) *AuthService {
	return &AuthService{store: store, clock: clk}
}

// HashPassword is a reversible placeholder encoding, not a password hash.
// It exists so stored records stay readable by existing data.
func HashPassword(password, email string) string {
	return base64.StdEncoding.EncodeToString([]byte(password + "|" + email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a user and signs them in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	span, ctx := observability.NewSpan(ctx, "auth.signup")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || strings.TrimSpace(in.Password) == "" {
		observability.RecordAuth("signup", observability.ResultRejected)
		return nil, models.NewValidationError("Missing fields")
	}
	if !emailPattern.MatchString(email) {
		observability.RecordAuth("signup", observability.ResultRejected)
		return nil, models.NewValidationError("Invalid email")
	}

	users := s.store.Users(ctx)
	if findByEmail(users, email) != nil {
		observability.RecordAuth("signup", observability.ResultRejected)
		return nil, models.NewConflictError("Email already used")
	}

	user := models.User{
		ID:           "user-" + storage.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: HashPassword(in.Password, email),
		CreatedAt:    s.clock.NowUtc(),
	}
	users = append(users, user)
	s.store.SaveUsers(ctx, users)
	s.store.SetSession(ctx, &models.Session{UserID: user.ID})

	span.AddAttributes(attribute.String("user.id", user.ID))
	observability.RecordAuth("signup", observability.ResultOK)
	return &user, nil
}

// Login signs in an existing user. The error never says which field was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	span, ctx := observability.NewSpan(ctx, "auth.login")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		observability.RecordAuth("login", observability.ResultRejected)
		return nil, models.NewValidationError("Missing fields")
	}

	user := findByEmail(s.store.Users(ctx), email)
	if user == nil || user.PasswordHash != HashPassword(password, email) {
		observability.RecordAuth("login", observability.ResultRejected)
		return nil, models.NewAuthError("Wrong email or password")
	}

	s.store.SetSession(ctx, &models.Session{UserID: user.ID})
	observability.RecordAuth("login", observability.ResultOK)
	return user, nil
}

// Logout clears the session. Calling it while signed out is a no-op.
func (s *AuthService) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SetSession(ctx, nil)
}

// GetCurrentUser returns the signed-in user, or nil when there is no session
// or it points at a user that no longer exists.
func (s *AuthService) GetCurrentUser(ctx context.Context) *models.User {
	session := s.store.Session(ctx)
	if session == nil {
		return nil
	}
	users := s.store.Users(ctx)
	for i := range users {
		if users[i].ID == session.UserID {
			return &users[i]
		}
	}
	return nil
}

func (s *AuthService) FindUserByEmail(ctx context.Context, email string) *models.User {
	return findByEmail(s.store.Users(ctx), normalizeEmail(email))
}

func findByEmail(users []models.User, email string) *models.User {
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i]
		}
	}
	return nil
}
