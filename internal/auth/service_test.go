package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, store Store, opts ...ServiceOption) *Service {
	t.Helper()
	svc, err := NewService(store, NewHasher(bcrypt.MinCost), NewTokens("test-secret", time.Hour), opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Organization: RegisterOrganization{
			Name:  "Acme Traders",
			Email: "Contact@Acme.example",
			Phone: "+12025550100",
		},
		Owner: RegisterOwner{
			Username: "acme_owner",
			Name:     "Ada Owner",
			Email:    "Ada@Acme.example",
			Password: "hunter2pass1",
		},
	}
}

func TestRegisterProvisionsOwnerAtomically(t *testing.T) {
	var gotOrg *Organization
	var gotOwner *User
	store := &stubStore{
		createOrganizationWithOwner: func(ctx context.Context, org *Organization, owner *User) error {
			gotOrg, gotOwner = org, owner
			return nil
		},
	}
	svc := newTestService(t, store)

	res, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if gotOrg == nil || gotOwner == nil {
		t.Fatalf("expected a single atomic create call")
	}
	if gotOrg.Email != "contact@acme.example" {
		t.Fatalf("expected normalized org email, got %q", gotOrg.Email)
	}
	if !gotOrg.IsActive {
		t.Fatalf("new organization must start active")
	}
	if gotOwner.OrganizationID != gotOrg.ID {
		t.Fatalf("owner must belong to the new organization")
	}
	if !gotOwner.IsSuperAdmin || gotOwner.Status != UserStatusActive || !gotOwner.IsActive {
		t.Fatalf("owner must be an active super admin: %+v", gotOwner)
	}
	if len(gotOwner.Permissions) != 1 || gotOwner.Permissions[0] != PermWildcard {
		t.Fatalf("owner must hold exactly the wildcard, got %v", gotOwner.Permissions)
	}
	if gotOwner.PasswordHash == "" || gotOwner.PasswordHash == "hunter2pass1" {
		t.Fatalf("password must be stored hashed")
	}

	if res.Session.Token == "" {
		t.Fatalf("expected a session token for the owner")
	}
	session, err := svc.tokens.Verify(res.Session.Token)
	if err != nil {
		t.Fatalf("issued token must verify: %v", err)
	}
	if session.UserID != gotOwner.ID || session.OrganizationID != gotOrg.ID {
		t.Fatalf("session must reference the new owner, got %+v", session)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t, &stubStore{})

	cases := map[string]func(*RegisterInput){
		"org name too short":   func(in *RegisterInput) { in.Organization.Name = "ab" },
		"org name bad chars":   func(in *RegisterInput) { in.Organization.Name = "Acme & Sons!" },
		"bad org email":        func(in *RegisterInput) { in.Organization.Email = "not-an-email" },
		"bad phone":            func(in *RegisterInput) { in.Organization.Phone = "0123" },
		"bad username":         func(in *RegisterInput) { in.Owner.Username = "a b" },
		"numeric person name":  func(in *RegisterInput) { in.Owner.Name = "1234" },
		"bad owner email":      func(in *RegisterInput) { in.Owner.Email = "ada@" },
		"password too short":   func(in *RegisterInput) { in.Owner.Password = "ab1" },
		"password no digit":    func(in *RegisterInput) { in.Owner.Password = "onlyletters" },
		"password no letter":   func(in *RegisterInput) { in.Owner.Password = "1234567890" },
		"bad owner phone":      func(in *RegisterInput) { in.Owner.Phone = "abc" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validRegisterInput()
			mutate(&in)
			if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRegisterConflictsOnExistingOrganization(t *testing.T) {
	store := &stubStore{
		findOrganizationByContact: func(ctx context.Context, email, phone string) (*Organization, error) {
			return &Organization{ID: "existing"}, nil
		},
		createOrganizationWithOwner: func(ctx context.Context, org *Organization, owner *User) error {
			t.Fatalf("pre-check conflict must prevent the write")
			return nil
		},
	}
	svc := newTestService(t, store)

	if _, err := svc.Register(context.Background(), validRegisterInput()); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRegisterSurfacesStorageConflict(t *testing.T) {
	store := &stubStore{
		createOrganizationWithOwner: func(ctx context.Context, org *Organization, owner *User) error {
			return fmt.Errorf("%w: duplicate", ErrConflict)
		},
	}
	svc := newTestService(t, store)

	if _, err := svc.Register(context.Background(), validRegisterInput()); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict from racing write, got %v", err)
	}
}

func TestLoginUniformFailures(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("hunter2pass1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	active := &User{ID: "u1", OrganizationID: "o1", Email: "ada@acme.example", PasswordHash: hash, IsActive: true, Status: UserStatusActive}
	disabled := &User{ID: "u2", OrganizationID: "o1", Email: "off@acme.example", PasswordHash: hash, IsActive: false, Status: UserStatusActive}
	store := &stubStore{
		findUserByEmail: func(ctx context.Context, email string) (*User, error) {
			switch email {
			case "ada@acme.example":
				return active, nil
			case "off@acme.example":
				return disabled, nil
			}
			return nil, ErrNotFound
		},
	}
	svc := newTestService(t, store)

	cases := map[string][2]string{
		"unknown email": {"nobody@acme.example", "hunter2pass1"},
		"bad password":  {"ada@acme.example", "wrongpass1"},
		"inactive user": {"off@acme.example", "hunter2pass1"},
	}
	var messages []string
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), c[0], c[1])
			if !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
			messages = append(messages, err.Error())
		})
	}
	for i := 1; i < len(messages); i++ {
		if messages[i] != messages[0] {
			t.Fatalf("failure messages must be identical: %q vs %q", messages[0], messages[i])
		}
	}
}

func TestLoginIssuesSessionAndTouchesLastLogin(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("hunter2pass1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	var touched string
	store := &stubStore{
		findUserByEmail: func(ctx context.Context, email string) (*User, error) {
			return &User{ID: "u1", OrganizationID: "o1", Email: email, PasswordHash: hash, IsActive: true, Status: UserStatusActive}, nil
		},
		touchLastLogin: func(ctx context.Context, userID string, at time.Time) error {
			touched = userID
			return nil
		},
	}
	svc := newTestService(t, store)

	res, err := svc.Login(context.Background(), "Ada@Acme.example", "hunter2pass1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Session.Token == "" {
		t.Fatalf("expected session token")
	}
	if touched != "u1" {
		t.Fatalf("expected last login touch for u1, got %q", touched)
	}
	if res.User.LastLoginAt == nil {
		t.Fatalf("expected last login reflected on the returned user")
	}
}

func TestLoginSurvivesTouchFailure(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("hunter2pass1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	store := &stubStore{
		findUserByEmail: func(ctx context.Context, email string) (*User, error) {
			return &User{ID: "u1", OrganizationID: "o1", Email: email, PasswordHash: hash, IsActive: true, Status: UserStatusActive}, nil
		},
		touchLastLogin: func(ctx context.Context, userID string, at time.Time) error {
			return errors.New("write timeout")
		},
	}
	svc := newTestService(t, store)

	if _, err := svc.Login(context.Background(), "ada@acme.example", "hunter2pass1"); err != nil {
		t.Fatalf("login must succeed despite touch failure: %v", err)
	}
}

func TestAuthenticateResolvesPrincipal(t *testing.T) {
	store := &stubStore{
		findUser: func(ctx context.Context, id string) (*User, error) {
			return &User{
				ID:             id,
				OrganizationID: "o1",
				Role:           "manager",
				Permissions:    []string{PermUserRead, PermProductRead},
				IsActive:       true,
				Status:         UserStatusActive,
			}, nil
		},
	}
	svc := newTestService(t, store)

	token, _, err := svc.tokens.Issue("u1", "o1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	p, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.UserID != "u1" || p.OrganizationID != "o1" {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if !p.HasPermission(PermUserRead) || p.HasPermission(PermUserDelete) {
		t.Fatalf("permissions not loaded from store: %+v", p.Permissions)
	}
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	if _, err := svc.Authenticate(context.Background(), "garbage"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticateBlocksInactiveAndInvited(t *testing.T) {
	users := map[string]*User{
		"inactive": {ID: "inactive", OrganizationID: "o1", IsActive: false, Status: UserStatusActive},
		"invited":  {ID: "invited", OrganizationID: "o1", IsActive: true, Status: UserStatusInvited},
	}
	store := &stubStore{
		findUser: func(ctx context.Context, id string) (*User, error) {
			if u, ok := users[id]; ok {
				return u, nil
			}
			return nil, ErrNotFound
		},
	}
	svc := newTestService(t, store)

	for id, wantMsg := range map[string]string{
		"inactive": "user account is inactive",
		"invited":  "accept your invitation before accessing",
	} {
		token, _, err := svc.tokens.Issue(id, "o1")
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		_, err = svc.Authenticate(context.Background(), token)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("%s: expected ErrForbidden, got %v", id, err)
		}
		if got := err.Error(); got != ErrForbidden.Error()+": "+wantMsg {
			t.Fatalf("%s: unexpected message %q", id, got)
		}
	}
}

func TestAuthenticateDeletedUser(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	token, _, err := svc.tokens.Issue("gone", "o1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for missing user, got %v", err)
	}
}

func TestProfileComposesUserAndOrganization(t *testing.T) {
	store := &stubStore{
		findUser: func(ctx context.Context, id string) (*User, error) {
			return &User{ID: id, OrganizationID: "o1", IsActive: true, Status: UserStatusActive}, nil
		},
		findOrganization: func(ctx context.Context, id string) (*Organization, error) {
			return &Organization{ID: id, Name: "Acme Traders"}, nil
		},
	}
	svc := newTestService(t, store)

	res, err := svc.Profile(context.Background(), Principal{UserID: "u1", OrganizationID: "o1"})
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if res.User.ID != "u1" || res.Organization.ID != "o1" {
		t.Fatalf("unexpected profile: %+v", res)
	}
}
