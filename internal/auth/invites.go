package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"tijara.org/internal/ids"
	"tijara.org/internal/obs"
)

// inviteTokenBytes gives 256 bits of entropy per redemption token.
const inviteTokenBytes = 32

// InviteInput is an invite-creation request.
type InviteInput struct {
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Invite creates a pending invite on behalf of the principal. The grant is
// validated against the catalog and against the inviter's own permissions
// before anything is written.
func (s *Service) Invite(ctx context.Context, p Principal, in InviteInput) (*Invite, error) {
	email := normalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		return nil, fmt.Errorf("%w: role is required", ErrInvalidInput)
	}
	perms := NormalizePermissions(in.Permissions)
	if len(perms) == 0 {
		return nil, fmt.Errorf("%w: at least one permission is required", ErrInvalidInput)
	}
	if invalid := InvalidPermissions(perms); len(invalid) > 0 {
		return nil, fmt.Errorf("%w: unknown permissions: %s", ErrInvalidInput, strings.Join(invalid, ", "))
	}

	if err := PreventEscalation(p, perms); err != nil {
		return nil, err
	}

	existing, err := s.store.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user with this email already exists", ErrConflict)
	}

	pending, err := s.store.FindPendingInvite(ctx, email, p.OrganizationID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if pending != nil {
		return nil, fmt.Errorf("%w: an invite for this email is already pending", ErrConflict)
	}

	token, err := mintInviteToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	expiresAt := now.Add(InviteTTL)
	invite := &Invite{
		ID:             ids.New(),
		OrganizationID: p.OrganizationID,
		Email:          email,
		InvitedBy:      p.UserID,
		Role:           role,
		Permissions:    perms,
		Token:          token,
		Status:         InviteStatusInvited,
		ExpiresAt:      &expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateInvite(ctx, invite); err != nil {
		// A token collision trips the unique constraint and must fail loudly.
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("%w: an invite for this email is already pending", ErrConflict)
		}
		return nil, err
	}
	obs.InviteIssued()

	if s.notifier != nil {
		link := s.linkBase + "/accept-invite?token=" + token
		if err := s.notifier.InviteCreated(ctx, invite, link); err != nil {
			obs.Error("invite notification failed", map[string]any{
				"invite_id": invite.ID,
				"error":     err.Error(),
			})
		}
	}
	return invite, nil
}

// AcceptInput completes an invite: the redemption token plus the account
// fields the invitee supplies.
type AcceptInput struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AcceptInvite redeems a pending, unexpired invite and activates the account.
// User creation and invite consumption are one atomic unit in the store.
func (s *Service) AcceptInvite(ctx context.Context, in AcceptInput) (*User, error) {
	token := strings.TrimSpace(in.Token)
	if token == "" {
		return nil, fmt.Errorf("%w: invite token is required", ErrInvalidInput)
	}
	username := strings.TrimSpace(in.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateName(strings.TrimSpace(in.Name)); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	invite, err := s.store.FindInviteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: invite not found or expired", ErrNotFound)
		}
		return nil, err
	}
	now := s.now().UTC()
	if invite.Status != InviteStatusInvited || invite.Expired(now) {
		return nil, fmt.Errorf("%w: invite not found or expired", ErrNotFound)
	}

	taken, err := s.store.FindUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if taken != nil {
		return nil, fmt.Errorf("%w: username is already taken", ErrConflict)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:             ids.New(),
		OrganizationID: invite.OrganizationID,
		Username:       username,
		Name:           strings.TrimSpace(in.Name),
		Email:          invite.Email,
		PasswordHash:   hash,
		Role:           invite.Role,
		Permissions:    invite.Permissions,
		IsSuperAdmin:   false,
		IsActive:       true,
		Status:         UserStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.AcceptInvite(ctx, invite.ID, user, now); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Lost the race: someone consumed the invite between lookup and
			// commit.
			return nil, fmt.Errorf("%w: invite not found or expired", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// DeclineInvite turns a still-pending invite down. Expiry is not checked: a
// pending invite can always be declined.
func (s *Service) DeclineInvite(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: invite token is required", ErrInvalidInput)
	}
	invite, err := s.store.FindInviteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: invite not found", ErrNotFound)
		}
		return err
	}
	if invite.Status != InviteStatusInvited {
		return fmt.Errorf("%w: invite not found", ErrNotFound)
	}
	if err := s.store.DeclineInvite(ctx, invite.ID, s.now().UTC()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: invite not found", ErrNotFound)
		}
		return err
	}
	return nil
}

// ExpireStale flags pending invites whose deadline has passed. Called
// periodically by the reaper; never touches unexpired rows.
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	n, err := s.store.ExpireInvites(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	obs.InvitesReaped(n)
	return n, nil
}

func mintInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
