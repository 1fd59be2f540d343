package httpapi

import (
	"context"
	"strings"
	"sync"
	"time"

	"tijara.org/internal/auth"
)

// memStore is an in-process auth.Store used to exercise full HTTP flows
// without a database. It enforces the same uniqueness rules the SQL schema
// does.
type memStore struct {
	mu      sync.Mutex
	orgs    map[string]*auth.Organization
	users   map[string]*auth.User
	invites map[string]*auth.Invite
}

func newMemStore() *memStore {
	return &memStore{
		orgs:    make(map[string]*auth.Organization),
		users:   make(map[string]*auth.User),
		invites: make(map[string]*auth.Invite),
	}
}

func (m *memStore) CreateOrganizationWithOwner(ctx context.Context, org *auth.Organization, owner *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orgs {
		if strings.EqualFold(o.Email, org.Email) || o.Phone == org.Phone {
			return auth.ErrConflict
		}
	}
	if err := m.checkUserUnique(owner); err != nil {
		return err
	}
	cp := *org
	m.orgs[org.ID] = &cp
	uc := *owner
	m.users[owner.ID] = &uc
	return nil
}

func (m *memStore) checkUserUnique(u *auth.User) error {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return auth.ErrConflict
		}
		if u.Username != "" && existing.Username == u.Username {
			return auth.ErrConflict
		}
	}
	return nil
}

func (m *memStore) FindOrganization(ctx context.Context, id string) (*auth.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orgs[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) FindOrganizationByContact(ctx context.Context, email, phone string) (*auth.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orgs {
		if strings.EqualFold(o.Email, email) || o.Phone == phone {
			cp := *o
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memStore) FindUser(ctx context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memStore) FindUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memStore) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (m *memStore) CreateInvite(ctx context.Context, invite *auth.Invite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.invites {
		if i.Token == invite.Token {
			return auth.ErrConflict
		}
		if i.Status == auth.InviteStatusInvited &&
			strings.EqualFold(i.Email, invite.Email) &&
			i.OrganizationID == invite.OrganizationID {
			return auth.ErrConflict
		}
	}
	cp := *invite
	m.invites[invite.ID] = &cp
	return nil
}

func (m *memStore) FindInviteByToken(ctx context.Context, token string) (*auth.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.invites {
		if i.Token == token {
			cp := *i
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memStore) FindPendingInvite(ctx context.Context, email, organizationID string) (*auth.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.invites {
		if i.Status == auth.InviteStatusInvited &&
			strings.EqualFold(i.Email, email) &&
			i.OrganizationID == organizationID {
			cp := *i
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memStore) AcceptInvite(ctx context.Context, inviteID string, user *auth.User, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.invites[inviteID]
	if !ok || i.Status != auth.InviteStatusInvited {
		return auth.ErrNotFound
	}
	if err := m.checkUserUnique(user); err != nil {
		return err
	}
	i.Status = auth.InviteStatusAccepted
	i.AcceptedAt = &at
	i.ExpiresAt = nil
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) DeclineInvite(ctx context.Context, inviteID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.invites[inviteID]
	if !ok || i.Status != auth.InviteStatusInvited {
		return auth.ErrNotFound
	}
	i.Status = auth.InviteStatusDeclined
	i.DeclinedAt = &at
	return nil
}

func (m *memStore) ExpireInvites(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, i := range m.invites {
		if i.Status == auth.InviteStatusInvited && i.ExpiresAt != nil && i.ExpiresAt.Before(before) {
			i.Status = auth.InviteStatusExpired
			n++
		}
	}
	return n, nil
}

// tokenFor returns the raw token of the pending invite for an email, for
// flows that would normally receive it out of band.
func (m *memStore) tokenFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.invites {
		if strings.EqualFold(i.Email, email) {
			return i.Token
		}
	}
	return ""
}

var _ auth.Store = (*memStore)(nil)
