package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"hrms/internal/platform/apperr"
)

const minPasswordLength = 8

type Service struct {
	Store  StoreAPI
	Secret string
	TTL    time.Duration
	now    func() time.Time
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TTL: ttl, now: time.Now}
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (User, error) {
	email := normalizeEmail(in.Email)
	fields := map[string]string{}
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "must be a valid email address"
	}
	if len(in.Password) < minPasswordLength {
		fields["password"] = "must be at least 8 characters"
	}
	if _, ok := ParseRole(string(in.Role)); !ok {
		fields["role"] = "must be one of admin, hr, employee"
	}
	if len(fields) > 0 {
		return User{}, apperr.Validation("sign-up payload invalid", fields)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}
	user, err := s.Store.CreateUser(ctx, email, hash, MetadataForRole(in.Role, in.Name, email))
	if errors.Is(err, ErrEmailTaken) {
		return User{}, apperr.Validation("email already registered", map[string]string{"email": "already registered"})
	}
	if err != nil {
		return User{}, apperr.Remote("create user", err)
	}
	return user, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	creds, err := s.Store.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return SignInResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return SignInResult{}, apperr.Remote("find user", err)
	}
	if err := CheckPassword(creds.PasswordHash, password); err != nil {
		return SignInResult{}, ErrInvalidCredentials
	}

	employeeID, err := s.Store.LinkedEmployeeID(ctx, creds.ID)
	if err != nil {
		return SignInResult{}, apperr.Remote("lookup employee record", err)
	}
	role := s.resolve(creds.User, employeeID)

	sessionID, err := NewSessionID()
	if err != nil {
		return SignInResult{}, err
	}
	expires := s.now().Add(s.TTL)
	if err := s.Store.CreateSession(ctx, creds.ID, HashToken(sessionID), expires); err != nil {
		return SignInResult{}, apperr.Remote("create session", err)
	}
	token, err := GenerateToken(s.Secret, Claims{
		UserID:     creds.ID,
		Email:      creds.Email,
		Role:       role,
		EmployeeID: employeeID,
		SessionID:  sessionID,
	}, s.TTL)
	if err != nil {
		return SignInResult{}, err
	}
	if err := s.Store.UpdateLastLogin(ctx, creds.ID); err != nil {
		slog.Warn("update last_login failed", "userId", creds.ID, "err", err)
	}

	return SignInResult{
		Token:      token,
		ExpiresAt:  expires,
		User:       creds.User,
		Role:       role,
		EmployeeID: employeeID,
	}, nil
}

func (s *Service) SignOut(ctx context.Context, user UserContext) error {
	if user.SessionID == "" {
		return nil
	}
	if err := s.Store.RevokeSession(ctx, user.UserID, HashToken(user.SessionID)); err != nil {
		return apperr.Remote("revoke session", err)
	}
	return nil
}

// Session re-reads the account so role changes since sign-in are visible.
func (s *Service) Session(ctx context.Context, user UserContext) (SessionInfo, error) {
	u, err := s.Store.FindByID(ctx, user.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return SessionInfo{}, apperr.NotFound("user")
	}
	if err != nil {
		return SessionInfo{}, apperr.Remote("load user", err)
	}
	employeeID, err := s.Store.LinkedEmployeeID(ctx, u.ID)
	if err != nil {
		return SessionInfo{}, apperr.Remote("lookup employee record", err)
	}
	return SessionInfo{User: u, Role: s.resolve(u, employeeID), EmployeeID: employeeID}, nil
}

func (s *Service) SessionValid(ctx context.Context, userID, sessionID string) (bool, error) {
	return s.Store.SessionValid(ctx, userID, HashToken(sessionID))
}

func (s *Service) resolve(u User, employeeID string) Role {
	res := Resolve(u.Email, u.Metadata, employeeID != "")
	if res.Rule == RuleDefault {
		slog.Warn("account matched no explicit role, defaulting to hr", "userId", u.ID)
	}
	return res.Role
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
