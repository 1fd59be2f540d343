// Package auth implements the identity core: registration, sessions,
// invitations, and the permission model layered under them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"tijara.org/internal/ids"
	"tijara.org/internal/obs"
)

// Notifier receives invite redemption links for out-of-band delivery. Email
// transport lives outside this core; failures are logged, never fatal.
type Notifier interface {
	InviteCreated(ctx context.Context, invite *Invite, link string) error
}

// Service provides the high level identity operations.
type Service struct {
	store    Store
	hasher   *Hasher
	tokens   *Tokens
	notifier Notifier
	linkBase string
	now      func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithNotifier sets the invite link recipient.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithInviteLinkBase sets the base URL used to build redemption links.
func WithInviteLinkBase(base string) ServiceOption {
	return func(s *Service) {
		s.linkBase = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the identity service.
func NewService(store Store, hasher *Hasher, tokens *Tokens, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth store is required")
	}
	if hasher == nil {
		hasher = NewHasher(DefaultHashCost)
	}
	if tokens == nil {
		return nil, errors.New("token service is required")
	}
	s := &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterOrganization carries the tenant half of a registration payload.
type RegisterOrganization struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	Address      string `json:"address,omitempty"`
	GSTNumber    string `json:"gst_number,omitempty"`
	IndustryType string `json:"industry_type,omitempty"`
	Country      string `json:"country,omitempty"`
	State        string `json:"state,omitempty"`
	City         string `json:"city,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
}

// RegisterOwner carries the founding super-admin half.
type RegisterOwner struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`

	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// RegisterInput is the combined registration payload.
type RegisterInput struct {
	Organization RegisterOrganization `json:"organization"`
	Owner        RegisterOwner        `json:"owner"`
}

// Credentials is an issued session token with its expiry.
type Credentials struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterResult is the sanitized projection returned after registration.
type RegisterResult struct {
	Organization *Organization `json:"organization"`
	User         *User         `json:"user"`
	Session      Credentials   `json:"session"`
}

// Register provisions an organization and its founding super-admin as one
// atomic unit and issues a session for the owner. Duplicate checks run
// concurrently since they are independent reads; every write happens after
// all checks pass, inside a single transaction owned by the store.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	org := in.Organization
	owner := in.Owner
	org.Email = normalizeEmail(org.Email)
	owner.Email = normalizeEmail(owner.Email)
	owner.Username = strings.TrimSpace(owner.Username)

	if err := s.validateRegistration(org, owner); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		existing, err := s.store.FindOrganizationByContact(gctx, org.Email, org.Phone)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: organization with this email or phone already exists", ErrConflict)
		}
		return nil
	})
	g.Go(func() error {
		existing, err := s.store.FindUserByEmail(gctx, owner.Email)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: user with this email already exists", ErrConflict)
		}
		return nil
	})
	g.Go(func() error {
		existing, err := s.store.FindUserByUsername(gctx, owner.Username)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: username is already taken", ErrConflict)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(owner.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	orgRec := &Organization{
		ID:           ids.New(),
		Name:         strings.TrimSpace(org.Name),
		Email:        org.Email,
		Phone:        strings.TrimSpace(org.Phone),
		IsActive:     true,
		Address:      org.Address,
		GSTNumber:    org.GSTNumber,
		IndustryType: org.IndustryType,
		Country:      org.Country,
		State:        org.State,
		City:         org.City,
		PostalCode:   org.PostalCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	ownerRec := &User{
		ID:             ids.New(),
		OrganizationID: orgRec.ID,
		Username:       owner.Username,
		Name:           strings.TrimSpace(owner.Name),
		Email:          owner.Email,
		PasswordHash:   hash,
		Permissions:    []string{PermWildcard},
		IsSuperAdmin:   true,
		IsActive:       true,
		Status:         UserStatusActive,
		ContactNumber:  owner.Phone,
		Address:        owner.Address,
		ProfileImage:   owner.ProfileImage,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateOrganizationWithOwner(ctx, orgRec, ownerRec); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("%w: organization or owner already registered", ErrConflict)
		}
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(ownerRec.ID, orgRec.ID)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{
		Organization: orgRec,
		User:         ownerRec,
		Session:      Credentials{Token: token, ExpiresAt: expiresAt},
	}, nil
}

func (s *Service) validateRegistration(org RegisterOrganization, owner RegisterOwner) error {
	if err := validateOrgName(strings.TrimSpace(org.Name)); err != nil {
		return err
	}
	if err := validateEmail(org.Email); err != nil {
		return err
	}
	if err := validatePhone(strings.TrimSpace(org.Phone)); err != nil {
		return err
	}
	if err := validateUsername(owner.Username); err != nil {
		return err
	}
	if err := validateName(strings.TrimSpace(owner.Name)); err != nil {
		return err
	}
	if err := validateEmail(owner.Email); err != nil {
		return err
	}
	if err := validatePassword(owner.Password); err != nil {
		return err
	}
	if owner.Phone != "" {
		if err := validatePhone(owner.Phone); err != nil {
			return err
		}
	}
	return nil
}

// LoginResult is the sanitized identity plus session issued on login.
type LoginResult struct {
	User    *User       `json:"user"`
	Session Credentials `json:"session"`
}

// Login verifies credentials and issues a session. The failure message is
// identical whether the email is unknown or the password is wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
		}
		return nil, err
	}
	if user == nil || !user.IsActive || user.Status != UserStatusActive {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}
	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.OrganizationID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		obs.Error("touch last login failed", map[string]any{"user_id": user.ID, "error": err.Error()})
	}
	user.LastLoginAt = &now

	return &LoginResult{
		User:    user,
		Session: Credentials{Token: token, ExpiresAt: expiresAt},
	}, nil
}

// Authenticate resolves a session credential into the acting principal. It is
// the gate in front of every protected operation: the token proves identity,
// the stored user supplies role and permissions fresh on every call.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	session, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrNoSecret) {
			return Principal{}, err
		}
		return Principal{}, fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)
	}
	user, err := s.store.FindUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, fmt.Errorf("%w: user not found", ErrUnauthenticated)
		}
		return Principal{}, err
	}
	if !user.IsActive {
		return Principal{}, fmt.Errorf("%w: user account is inactive", ErrForbidden)
	}
	if user.Status != UserStatusActive {
		return Principal{}, fmt.Errorf("%w: accept your invitation before accessing", ErrForbidden)
	}
	return NewPrincipal(user), nil
}

// ProfileResult composes the identity projection with its organization via an
// explicit follow-up lookup.
type ProfileResult struct {
	User         *User         `json:"user"`
	Organization *Organization `json:"organization"`
}

// Profile returns the resolved identity projection for the principal.
func (s *Service) Profile(ctx context.Context, p Principal) (*ProfileResult, error) {
	user, err := s.store.FindUser(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrUnauthenticated)
		}
		return nil, err
	}
	org, err := s.store.FindOrganization(ctx, user.OrganizationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: organization not found", ErrNotFound)
		}
		return nil, err
	}
	return &ProfileResult{User: user, Organization: org}, nil
}
