// Package notify delivers invite links out of band. The shipped
// implementation logs them; an SMTP sender can replace it behind the same
// interface.
package notify

import (
	"context"

	"tijara.org/internal/auth"
	"tijara.org/internal/obs"
)

// LogNotifier writes invite links to the service log.
type LogNotifier struct{}

var _ auth.Notifier = LogNotifier{}

// InviteCreated records the redemption link for the invited address.
func (LogNotifier) InviteCreated(_ context.Context, invite *auth.Invite, link string) error {
	obs.Info("invite link ready", map[string]any{
		"invite_id":       invite.ID,
		"organization_id": invite.OrganizationID,
		"email":           invite.Email,
		"link":            link,
	})
	return nil
}
