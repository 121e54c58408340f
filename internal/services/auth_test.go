package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/surveydesk/backend/internal/config"
	"github.com/surveydesk/backend/internal/models"
	"github.com/surveydesk/backend/internal/utils"
)

func init() {
	utils.SetJWTSecret("test-secret-for-services")
}

func inAnHour() time.Time {
	return time.Now().Add(time.Hour)
}

func newTestAuthService(t *testing.T) (*AuthService, *UserService) {
	t.Helper()
	db := newTestDB(t)
	auth := NewAuthService(db, &config.JWTConfig{ExpireHour: 1, RefreshExpireHour: 2})
	users := NewUserService(db)
	if _, err := users.Create(context.Background(), &CreateUserRequest{Name: "Alice", Email: "alice@x.com", Role: "user", Password: "secret1"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return auth, users
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuthService(t)

	result, err := auth.Login(ctx, &LoginRequest{Email: "alice@x.com", Password: "secret1"}, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := utils.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Email != "alice@x.com" || claims.Role != "user" || claims.UserID != result.User.ID {
		t.Errorf("unexpected claims %+v", claims)
	}
	if result.RefreshToken == "" || !result.RefreshExpireAt.After(result.AccessExpireAt) {
		t.Errorf("unexpected refresh token %q expiring %v", result.RefreshToken, result.RefreshExpireAt)
	}

	var stored models.RefreshToken
	auth.db.First(&stored, "user_id = ?", result.User.ID)
	if stored.TokenHash == result.RefreshToken || stored.TokenHash != hashRefreshToken(result.RefreshToken) {
		t.Error("only the hash of the refresh token should be stored")
	}
	if stored.CreatedByIP != "127.0.0.1" {
		t.Errorf("CreatedByIP = %q", stored.CreatedByIP)
	}
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuthService(t)

	for _, req := range []LoginRequest{
		{Email: "alice@x.com", Password: "wrong"},
		{Email: "nobody@x.com", Password: "secret1"},
	} {
		if _, err := auth.Login(ctx, &req, "", ""); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s: expected ErrInvalidCredentials, got %v", req.Email, err)
		}
	}
}

func TestAuthService_RefreshRotates(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuthService(t)
	login, _ := auth.Login(ctx, &LoginRequest{Email: "alice@x.com", Password: "secret1"}, "", "")

	pair, err := auth.Refresh(ctx, login.RefreshToken, "", "")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.RefreshToken == login.RefreshToken {
		t.Error("refresh should issue a new refresh token")
	}
	if _, err := utils.ParseToken(pair.AccessToken); err != nil {
		t.Errorf("new access token invalid: %v", err)
	}

	if _, err := auth.Refresh(ctx, login.RefreshToken, "", ""); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("reusing a rotated token: expected ErrInvalidRefreshToken, got %v", err)
	}

	var old models.RefreshToken
	auth.db.First(&old, "token_hash = ?", hashRefreshToken(login.RefreshToken))
	if old.RevokedAt == nil || old.ReplacedByTokenID == nil {
		t.Errorf("old token should be revoked and linked, got %+v", old)
	}
}

func TestAuthService_RefreshRejectsExpiredAndUnknown(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuthService(t)
	login, _ := auth.Login(ctx, &LoginRequest{Email: "alice@x.com", Password: "secret1"}, "", "")

	if _, err := auth.Refresh(ctx, "not-a-token", "", ""); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("unknown token: expected ErrInvalidRefreshToken, got %v", err)
	}
	if _, err := auth.Refresh(ctx, "", "", ""); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("empty token: expected ErrInvalidRefreshToken, got %v", err)
	}

	auth.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	if _, err := auth.Refresh(ctx, login.RefreshToken, "", ""); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("expired token: expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestAuthService_RevokeRefreshToken(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuthService(t)
	login, _ := auth.Login(ctx, &LoginRequest{Email: "alice@x.com", Password: "secret1"}, "", "")

	if err := auth.RevokeRefreshToken(ctx, login.RefreshToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := auth.Refresh(ctx, login.RefreshToken, "", ""); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("revoked token: expected ErrInvalidRefreshToken, got %v", err)
	}
	if err := auth.RevokeRefreshToken(ctx, ""); err != nil {
		t.Errorf("empty token should be ignored, got %v", err)
	}
}

func TestAuthService_RefreshAfterUserDeleted(t *testing.T) {
	ctx := context.Background()
	auth, users := newTestAuthService(t)
	login, _ := auth.Login(ctx, &LoginRequest{Email: "alice@x.com", Password: "secret1"}, "", "")

	if err := users.Delete(ctx, login.User.ID, 0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := auth.Refresh(ctx, login.RefreshToken, "", ""); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestAuthService_CreateAdminIfNotExists(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuthService(t)
	cfg := &config.AdminConfig{Email: "root@x.com", Password: "rootpw"}

	created, err := auth.CreateAdminIfNotExists(ctx, cfg)
	if err != nil || !created {
		t.Fatalf("expected admin to be created, got %v %v", created, err)
	}
	created, err = auth.CreateAdminIfNotExists(ctx, cfg)
	if err != nil || created {
		t.Errorf("second call should be a no-op, got %v %v", created, err)
	}

	result, err := auth.Login(ctx, &LoginRequest{Email: "root@x.com", Password: "rootpw"}, "", "")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if result.User.Role != models.RoleAdmin || result.User.Name != "Administrator" {
		t.Errorf("unexpected admin %+v", result.User)
	}
	if _, err := auth.GetUserByID(ctx, result.User.ID); err != nil {
		t.Errorf("GetUserByID: %v", err)
	}
	if _, err := auth.GetUserByID(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

type fakeDirectory struct {
	users map[string]string
	err   error
	calls int
}

func (d *fakeDirectory) Authenticate(_ context.Context, email, password string) (*DirectoryUser, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	if pw, ok := d.users[email]; !ok || pw != password {
		return nil, ErrDirectoryRejected
	}
	return &DirectoryUser{DN: "uid=" + email, Email: email, Name: "Directory " + email}, nil
}

func TestAuthService_LoginFallsBackToDirectory(t *testing.T) {
	ctx := context.Background()
	auth, users := newTestAuthService(t)
	dir := &fakeDirectory{users: map[string]string{
		"carol@x.com": "dir-pass",
		"alice@x.com": "alice-dir",
	}}
	auth.UseDirectory(dir)

	result, err := auth.Login(ctx, &LoginRequest{Email: "carol@x.com", Password: "dir-pass"}, "", "")
	if err != nil {
		t.Fatalf("directory login: %v", err)
	}
	if result.User.Role != models.RoleUser || result.User.Name != "Directory carol@x.com" {
		t.Errorf("unexpected provisioned user %+v", result.User)
	}

	again, err := auth.Login(ctx, &LoginRequest{Email: "carol@x.com", Password: "dir-pass"}, "", "")
	if err != nil {
		t.Fatalf("second directory login: %v", err)
	}
	if again.User.ID != result.User.ID {
		t.Errorf("second login provisioned a new account: %d != %d", again.User.ID, result.User.ID)
	}

	// Existing local accounts keep their row when signing in through the directory.
	alice, err := auth.Login(ctx, &LoginRequest{Email: "alice@x.com", Password: "alice-dir"}, "", "")
	if err != nil {
		t.Fatalf("directory login for local account: %v", err)
	}
	all, _ := users.List(ctx)
	if alice.User.ID != all[0].ID || len(all) != 2 {
		t.Errorf("unexpected accounts after directory logins: %+v", all)
	}

	calls := dir.calls
	if _, err := auth.Login(ctx, &LoginRequest{Email: "alice@x.com", Password: "secret1"}, "", ""); err != nil {
		t.Fatalf("local login: %v", err)
	}
	if dir.calls != calls {
		t.Error("directory should not be consulted when the local password matches")
	}
}

func TestAuthService_LoginDirectoryRejectsAndFails(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuthService(t)
	dir := &fakeDirectory{users: map[string]string{}}
	auth.UseDirectory(dir)

	if _, err := auth.Login(ctx, &LoginRequest{Email: "nobody@x.com", Password: "x"}, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	outage := errors.New("connection refused")
	dir.err = outage
	_, err := auth.Login(ctx, &LoginRequest{Email: "nobody@x.com", Password: "x"}, "", "")
	if !errors.Is(err, outage) || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected wrapped directory error, got %v", err)
	}
}

func TestNewLDAPService_Disabled(t *testing.T) {
	if NewLDAPService(&config.LDAPConfig{Enabled: false, Host: "ldap.example.com"}) != nil {
		t.Error("disabled config should not yield a service")
	}
	if NewLDAPService(nil) != nil {
		t.Error("nil config should not yield a service")
	}
	if NewLDAPService(&config.LDAPConfig{Enabled: true, Host: "ldap.example.com"}) == nil {
		t.Error("enabled config should yield a service")
	}
}
