package auth

import "time"

// User lifecycle statuses.
const (
	UserStatusInvited  = "invited"
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Invite lifecycle statuses. An invite leaves "invited" exactly once and
// never comes back.
const (
	InviteStatusInvited  = "invited"
	InviteStatusAccepted = "accepted"
	InviteStatusDeclined = "declined"
	InviteStatusExpired  = "expired"
)

// InviteTTL is how long a freshly minted invite stays redeemable.
const InviteTTL = 48 * time.Hour

// Organization is a tenant: it owns users, shops and stock.
type Organization struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"is_active"`

	Address      string `json:"address,omitempty"`
	GSTNumber    string `json:"gst_number,omitempty"`
	IndustryType string `json:"industry_type,omitempty"`
	Country      string `json:"country,omitempty"`
	State        string `json:"state,omitempty"`
	City         string `json:"city,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Currency     string `json:"currency,omitempty"`
	Timezone     string `json:"timezone,omitempty"`

	SubscriptionPlan string `json:"subscription_plan,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is a member of exactly one organization. Username and password become
// mandatory only once the account turns active; an invited placeholder has
// neither.
type User struct {
	ID             string   `json:"id"`
	OrganizationID string   `json:"organization_id"`
	Username       string   `json:"username,omitempty"`
	Name           string   `json:"name,omitempty"`
	Email          string   `json:"email"`
	PasswordHash   string   `json:"-"`
	Role           string   `json:"role,omitempty"`
	Permissions    []string `json:"permissions"`
	IsSuperAdmin   bool     `json:"is_super_admin"`
	IsActive       bool     `json:"is_active"`
	Status         string   `json:"status"`

	ContactNumber string `json:"contact_number,omitempty"`
	Address       string `json:"address,omitempty"`
	ProfileImage  string `json:"profile_image,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Invite is a pending, time-boxed offer to join an organization with a
// specific role and permission grant. The inviter reference is informational
// only.
type Invite struct {
	ID             string   `json:"id"`
	OrganizationID string   `json:"organization_id"`
	Email          string   `json:"email"`
	InvitedBy      string   `json:"invited_by"`
	Role           string   `json:"role"`
	Permissions    []string `json:"permissions"`
	Token          string   `json:"-"`
	Status         string   `json:"status"`

	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	DeclinedAt *time.Time `json:"declined_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired reports whether the invite deadline has passed at the given time.
func (i *Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}
