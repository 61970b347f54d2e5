package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"policyhub/api/internal/auth"
	"policyhub/api/internal/authpw"
	"policyhub/api/internal/config"
	"policyhub/api/internal/rbac"
	"policyhub/api/internal/store"
	"policyhub/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	Email        string
	Name         string
	Role         string
	JTI          string
	ExpiresAt    time.Time
}

type dataStore interface {
	GetUserByEmail(context.Context, string) (store.User, error)
	GetUserByID(context.Context, string) (store.User, error)
	CreateUser(context.Context, store.User) error
	ListUsers(context.Context) ([]store.User, error)
	UpdateUserRole(context.Context, string, string) (store.User, error)
	DeleteUser(context.Context, string) error
	CountUsers(context.Context) (int, error)

	RevokeAccessToken(context.Context, string, time.Time) error
	IsAccessTokenRevoked(context.Context, string) (bool, error)

	ListPolicies(context.Context, store.PolicyFilter) ([]store.Policy, error)
	GetPolicyByCode(context.Context, string) (store.Policy, error)
	GetApprovedPolicyByCode(context.Context, string) (store.Policy, error)
	ResolvePolicyCode(context.Context, string) (string, error)
	InsertPolicy(context.Context, store.Policy) (store.Policy, error)
	UpdatePolicyByCode(context.Context, string, store.Policy) (store.Policy, error)
	SetPolicyStatus(context.Context, string, string, string) (store.Policy, error)
	DeletePolicyByCode(context.Context, string) error
	MaxPolicyVersion(context.Context, string) (int, error)
	InsertPolicyVersion(context.Context, store.PolicyVersion) error
	ListPolicyVersions(context.Context, string) ([]store.PolicyVersion, error)

	ListBylaws(context.Context, store.BylawFilter) ([]store.Bylaw, error)
	GetBylawByID(context.Context, string) (store.Bylaw, error)
	GetApprovedBylawByID(context.Context, string) (store.Bylaw, error)
	GetBylawByNumber(context.Context, int) (store.Bylaw, error)
	InsertBylaw(context.Context, store.Bylaw) (store.Bylaw, error)
	UpdateBylawByID(context.Context, string, store.Bylaw) (store.Bylaw, error)
	SetBylawStatus(context.Context, string, string, string) (store.Bylaw, error)
	DeleteBylawByID(context.Context, string) error

	InsertSuggestion(context.Context, store.Suggestion) (store.Suggestion, error)
	ListSuggestions(context.Context, store.SuggestionFilter) ([]store.Suggestion, error)
	GetSuggestion(context.Context, string) (store.Suggestion, error)
	UpdateSuggestionStatus(context.Context, string, string) (store.Suggestion, error)
	DeleteSuggestion(context.Context, string) error
	PolicyRefs(context.Context, []string) (map[string]store.SuggestionRef, error)
	BylawRefs(context.Context, []string) (map[string]store.SuggestionRef, error)

	UpsertReview(context.Context, store.PolicyReview) (store.PolicyReview, error)
	ListReviews(context.Context, string) ([]store.PolicyReview, error)
	DeleteAllReviews(context.Context) (int, error)

	Ping(ctx context.Context) error
}

// sessionStore holds refresh-token state. Backed by Redis when configured,
// otherwise by the relational store.
type sessionStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (string, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

type Service struct {
	cfg       config.Config
	store     dataStore
	sessions  sessionStore
	tokens    *auth.TokenCodec
	passwords *authpw.Service
}

func New(cfg config.Config, dataStore *store.PostgresStore, sessions sessionStore) *Service {
	if sessions == nil {
		sessions = dataStore
	}
	return &Service{
		cfg:       cfg,
		store:     dataStore,
		sessions:  sessions,
		tokens:    auth.NewTokenCodec(cfg.JWTSecret, cfg.AccessTTL),
		passwords: authpw.NewService(dataStore),
	}
}

// Bootstrap seeds the configured admin account when the user table is empty,
// so a fresh deployment is reachable without manual SQL.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		return nil
	}
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = s.passwords.SignUp(ctx, authpw.SignUpRequest{
		Email:    s.cfg.AdminEmail,
		Password: s.cfg.AdminPassword,
		Role:     string(rbac.RoleAdmin),
	})
	return err
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.passwords.SignIn(ctx, email, password)
	if err != nil {
		return Session{}, domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}
	return s.issueSession(ctx, user)
}

// Register creates a new account. The HTTP layer restricts this to admins.
func (s *Service) Register(ctx context.Context, email, password, name, role string) (map[string]any, error) {
	user, err := s.passwords.SignUp(ctx, authpw.SignUpRequest{
		Email:    email,
		Password: password,
		Name:     name,
		Role:     role,
	})
	if err != nil {
		if err.Error() == "email already registered" {
			return nil, domainError(http.StatusConflict, "EMAIL_EXISTS", "Email already registered", nil)
		}
		return nil, domainError(http.StatusBadRequest, "REGISTER_FAILED", err.Error(), nil)
	}
	return userPayload(user), nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	userID, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	jti := util.NewID("jti")
	token, expiresAt, err := s.tokens.IssueToken(user.ID, user.Email, user.Role, jti)
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := time.Now().Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user.ID, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		Email:        user.Email,
		Name:         userName(user),
		Role:         user.Role,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	// Role is read back from storage so an admin role change takes effect
	// before the token expires.
	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, auth.ErrInvalidToken
		}
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      userName(user),
		Role:      user.Role,
		JTI:       claims.JTI,
		ExpiresAt: claims.Expiry,
	}, nil
}

// Logout always succeeds: failing to invalidate a client-held token is not
// something the caller can act on.
func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

func (s *Service) Can(role string, action rbac.Action) bool {
	return rbac.Can(rbac.Normalize(role), action)
}

func (s *Service) ListUsers(ctx context.Context) ([]map[string]any, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(users))
	for _, user := range users {
		items = append(items, userPayload(user))
	}
	return items, nil
}

func (s *Service) UpdateUserRole(ctx context.Context, userID, role string) (map[string]any, error) {
	if !rbac.ValidRole(role) {
		return nil, domainError(http.StatusBadRequest, "INVALID_ROLE", "Unknown role", map[string]any{"role": role})
	}
	user, err := s.store.UpdateUserRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	return userPayload(user), nil
}

func (s *Service) DeleteUser(ctx context.Context, userID string, actor Session) error {
	if userID == actor.UserID {
		return domainError(http.StatusBadRequest, "SELF_DELETE", "Cannot delete your own account", nil)
	}
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return err
	}
	return s.store.DeleteUser(ctx, userID)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func userPayload(user store.User) map[string]any {
	return map[string]any{
		"id":        user.ID,
		"email":     user.Email,
		"name":      user.Name,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
		"updatedAt": user.UpdatedAt,
	}
}

func userName(user store.User) string {
	if user.Name != nil && strings.TrimSpace(*user.Name) != "" {
		return *user.Name
	}
	return user.Email
}
