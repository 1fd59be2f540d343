package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tijara.org/internal/auth"
)

var _ auth.Store = (*Store)(nil)

const userColumns = `id, organization_id, username, name, email, password_hash, role,
	permissions, is_super_admin, is_active, status, contact_number, address,
	profile_image, last_login_at, created_at, updated_at`

const inviteColumns = `id, organization_id, email, invited_by, role, permissions,
	invite_token, status, expires_at, accepted_at, declined_at, created_at, updated_at`

const orgColumns = `id, name, email, phone, is_active, address, gst_number,
	industry_type, country, state, city, postal_code, currency, timezone,
	subscription_plan, created_at, updated_at`

// CreateOrganizationWithOwner runs the registration write as one transaction.
// A rollback leaves no trace of either record; unique violations surface as
// the same conflict the pre-checks would have raised.
func (s *Store) CreateOrganizationWithOwner(ctx context.Context, org *auth.Organization, owner *auth.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into organizations (id, name, email, phone, is_active, address,
			gst_number, industry_type, country, state, city, postal_code,
			currency, timezone, subscription_plan, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, org.ID, org.Name, org.Email, org.Phone, org.IsActive,
		nullIfEmpty(org.Address), nullIfEmpty(org.GSTNumber), nullIfEmpty(org.IndustryType),
		nullIfEmpty(org.Country), nullIfEmpty(org.State), nullIfEmpty(org.City),
		nullIfEmpty(org.PostalCode), nullIfEmpty(org.Currency), nullIfEmpty(org.Timezone),
		nullIfEmpty(org.SubscriptionPlan), org.CreatedAt, org.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: organization with this email or phone already exists", auth.ErrConflict)
		}
		return err
	}

	if err := insertUser(ctx, tx, owner); err != nil {
		return err
	}

	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertUser(ctx context.Context, db execer, u *auth.User) error {
	perms, err := json.Marshal(u.Permissions)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		insert into users (id, organization_id, username, name, email,
			password_hash, role, permissions, is_super_admin, is_active, status,
			contact_number, address, profile_image, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, u.ID, u.OrganizationID, nullIfEmpty(u.Username), nullIfEmpty(u.Name), u.Email,
		nullIfEmpty(u.PasswordHash), nullIfEmpty(u.Role), perms, u.IsSuperAdmin,
		u.IsActive, u.Status, nullIfEmpty(u.ContactNumber), nullIfEmpty(u.Address),
		nullIfEmpty(u.ProfileImage), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user email or username already exists", auth.ErrConflict)
		}
		return err
	}
	return nil
}

func (s *Store) FindOrganization(ctx context.Context, id string) (*auth.Organization, error) {
	row := s.db.QueryRowContext(ctx, `select `+orgColumns+` from organizations where id = $1`, id)
	return scanOrganization(row)
}

func (s *Store) FindOrganizationByContact(ctx context.Context, email, phone string) (*auth.Organization, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+orgColumns+` from organizations where email = $1 or phone = $2
	`, email, phone)
	return scanOrganization(row)
}

func scanOrganization(row *sql.Row) (*auth.Organization, error) {
	var (
		org auth.Organization

		address, gst, industry, country, state, city sql.NullString
		postal, currency, timezone, plan             sql.NullString
	)
	err := row.Scan(&org.ID, &org.Name, &org.Email, &org.Phone, &org.IsActive,
		&address, &gst, &industry, &country, &state, &city, &postal,
		&currency, &timezone, &plan, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	org.Address = address.String
	org.GSTNumber = gst.String
	org.IndustryType = industry.String
	org.Country = country.String
	org.State = state.String
	org.City = city.String
	org.PostalCode = postal.String
	org.Currency = currency.String
	org.Timezone = timezone.String
	org.SubscriptionPlan = plan.String
	return &org, nil
}

func (s *Store) FindUser(ctx context.Context, id string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where id = $1`, id)
	return scanUser(row)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where email = $1`, email)
	return scanUser(row)
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := s.db.QueryRowContext(ctx, `select `+userColumns+` from users where username = $1`, username)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*auth.User, error) {
	var (
		u auth.User

		username, name, hash, role sql.NullString
		contact, address, image    sql.NullString
		lastLogin                  sql.NullTime
		perms                      []byte
	)
	err := row.Scan(&u.ID, &u.OrganizationID, &username, &name, &u.Email, &hash,
		&role, &perms, &u.IsSuperAdmin, &u.IsActive, &u.Status,
		&contact, &address, &image, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Username = username.String
	u.Name = name.String
	u.PasswordHash = hash.String
	u.Role = role.String
	u.ContactNumber = contact.String
	u.Address = address.String
	u.ProfileImage = image.String
	u.LastLoginAt = timePtr(lastLogin)
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &u.Permissions); err != nil {
			return nil, fmt.Errorf("decode permissions: %w", err)
		}
	}
	return &u, nil
}

func (s *Store) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update users set last_login_at = $2, updated_at = $2 where id = $1
	`, userID, at)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Store) CreateInvite(ctx context.Context, invite *auth.Invite) error {
	perms, err := json.Marshal(invite.Permissions)
	if err != nil {
		return fmt.Errorf("marshal permissions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into invites (id, organization_id, email, invited_by, role,
			permissions, invite_token, status, expires_at, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, invite.ID, invite.OrganizationID, invite.Email, invite.InvitedBy, invite.Role,
		perms, invite.Token, invite.Status, nullIfZero(invite.ExpiresAt),
		invite.CreatedAt, invite.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: invite already pending", auth.ErrConflict)
		}
		return err
	}
	return nil
}

func (s *Store) FindInviteByToken(ctx context.Context, token string) (*auth.Invite, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+inviteColumns+` from invites where invite_token = $1
	`, token)
	return scanInvite(row)
}

func (s *Store) FindPendingInvite(ctx context.Context, email, organizationID string) (*auth.Invite, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+inviteColumns+` from invites
		where email = $1 and organization_id = $2 and status = 'invited'
	`, email, organizationID)
	return scanInvite(row)
}

func scanInvite(row *sql.Row) (*auth.Invite, error) {
	var (
		inv auth.Invite

		expiresAt, acceptedAt, declinedAt sql.NullTime
		perms                             []byte
	)
	err := row.Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &inv.InvitedBy,
		&inv.Role, &perms, &inv.Token, &inv.Status,
		&expiresAt, &acceptedAt, &declinedAt, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	inv.ExpiresAt = timePtr(expiresAt)
	inv.AcceptedAt = timePtr(acceptedAt)
	inv.DeclinedAt = timePtr(declinedAt)
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &inv.Permissions); err != nil {
			return nil, fmt.Errorf("decode permissions: %w", err)
		}
	}
	return &inv, nil
}

// AcceptInvite consumes the invite and creates the user in one transaction.
// The status guard makes the invite single-use: a second redemption sees zero
// rows updated and gets ErrNotFound.
func (s *Store) AcceptInvite(ctx context.Context, inviteID string, user *auth.User, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update invites
		set status = 'accepted', accepted_at = $2, expires_at = null, updated_at = $2
		where id = $1 and status = 'invited'
	`, inviteID, at)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return auth.ErrNotFound
	}

	if err := insertUser(ctx, tx, user); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) DeclineInvite(ctx context.Context, inviteID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update invites
		set status = 'declined', declined_at = $2, expires_at = null, updated_at = $2
		where id = $1 and status = 'invited'
	`, inviteID, at)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Store) ExpireInvites(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		update invites
		set status = 'expired', updated_at = $1
		where status = 'invited' and expires_at is not null and expires_at <= $1
	`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
