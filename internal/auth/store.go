package auth

import (
	"context"
	"time"
)

// Store describes the persistence operations the auth subsystem needs.
// Implementations must enforce the uniqueness constraints at the storage
// level (organization email/phone, user email, active username, invite token,
// one pending invite per email+organization) and surface violations as
// ErrConflict: two concurrent registrations can race past any pre-check.
type Store interface {
	// CreateOrganizationWithOwner persists the organization and its founding
	// super-admin as one atomic unit. On any failure nothing is visible to
	// other readers, the organization included.
	CreateOrganizationWithOwner(ctx context.Context, org *Organization, owner *User) error

	FindOrganization(ctx context.Context, id string) (*Organization, error)
	FindOrganizationByContact(ctx context.Context, email, phone string) (*Organization, error)

	FindUser(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error

	CreateInvite(ctx context.Context, invite *Invite) error
	FindInviteByToken(ctx context.Context, token string) (*Invite, error)
	FindPendingInvite(ctx context.Context, email, organizationID string) (*Invite, error)

	// AcceptInvite creates the user and consumes the invite in one atomic
	// unit, guarded by the invite still being in the invited state.
	AcceptInvite(ctx context.Context, inviteID string, user *User, at time.Time) error
	DeclineInvite(ctx context.Context, inviteID string, at time.Time) error

	// ExpireInvites flags pending invites whose deadline passed before the
	// given time, returning how many were flagged.
	ExpireInvites(ctx context.Context, before time.Time) (int64, error)
}
