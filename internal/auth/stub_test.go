package auth

import (
	"context"
	"time"
)

// stubStore lets each test wire only the calls it cares about. Unset lookups
// report ErrNotFound, unset writes succeed.
type stubStore struct {
	createOrganizationWithOwner func(ctx context.Context, org *Organization, owner *User) error
	findOrganization            func(ctx context.Context, id string) (*Organization, error)
	findOrganizationByContact   func(ctx context.Context, email, phone string) (*Organization, error)
	findUser                    func(ctx context.Context, id string) (*User, error)
	findUserByEmail             func(ctx context.Context, email string) (*User, error)
	findUserByUsername          func(ctx context.Context, username string) (*User, error)
	touchLastLogin              func(ctx context.Context, userID string, at time.Time) error
	createInvite                func(ctx context.Context, invite *Invite) error
	findInviteByToken           func(ctx context.Context, token string) (*Invite, error)
	findPendingInvite           func(ctx context.Context, email, organizationID string) (*Invite, error)
	acceptInvite                func(ctx context.Context, inviteID string, user *User, at time.Time) error
	declineInvite               func(ctx context.Context, inviteID string, at time.Time) error
	expireInvites               func(ctx context.Context, before time.Time) (int64, error)
}

func (s *stubStore) CreateOrganizationWithOwner(ctx context.Context, org *Organization, owner *User) error {
	if s.createOrganizationWithOwner != nil {
		return s.createOrganizationWithOwner(ctx, org, owner)
	}
	return nil
}

func (s *stubStore) FindOrganization(ctx context.Context, id string) (*Organization, error) {
	if s.findOrganization != nil {
		return s.findOrganization(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *stubStore) FindOrganizationByContact(ctx context.Context, email, phone string) (*Organization, error) {
	if s.findOrganizationByContact != nil {
		return s.findOrganizationByContact(ctx, email, phone)
	}
	return nil, ErrNotFound
}

func (s *stubStore) FindUser(ctx context.Context, id string) (*User, error) {
	if s.findUser != nil {
		return s.findUser(ctx, id)
	}
	return nil, ErrNotFound
}

func (s *stubStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	if s.findUserByEmail != nil {
		return s.findUserByEmail(ctx, email)
	}
	return nil, ErrNotFound
}

func (s *stubStore) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	if s.findUserByUsername != nil {
		return s.findUserByUsername(ctx, username)
	}
	return nil, ErrNotFound
}

func (s *stubStore) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	if s.touchLastLogin != nil {
		return s.touchLastLogin(ctx, userID, at)
	}
	return nil
}

func (s *stubStore) CreateInvite(ctx context.Context, invite *Invite) error {
	if s.createInvite != nil {
		return s.createInvite(ctx, invite)
	}
	return nil
}

func (s *stubStore) FindInviteByToken(ctx context.Context, token string) (*Invite, error) {
	if s.findInviteByToken != nil {
		return s.findInviteByToken(ctx, token)
	}
	return nil, ErrNotFound
}

func (s *stubStore) FindPendingInvite(ctx context.Context, email, organizationID string) (*Invite, error) {
	if s.findPendingInvite != nil {
		return s.findPendingInvite(ctx, email, organizationID)
	}
	return nil, ErrNotFound
}

func (s *stubStore) AcceptInvite(ctx context.Context, inviteID string, user *User, at time.Time) error {
	if s.acceptInvite != nil {
		return s.acceptInvite(ctx, inviteID, user, at)
	}
	return nil
}

func (s *stubStore) DeclineInvite(ctx context.Context, inviteID string, at time.Time) error {
	if s.declineInvite != nil {
		return s.declineInvite(ctx, inviteID, at)
	}
	return nil
}

func (s *stubStore) ExpireInvites(ctx context.Context, before time.Time) (int64, error) {
	if s.expireInvites != nil {
		return s.expireInvites(ctx, before)
	}
	return 0, nil
}

var _ Store = (*stubStore)(nil)
