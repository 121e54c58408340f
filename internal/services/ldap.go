package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/surveydesk/backend/internal/config"
)

// ErrDirectoryRejected is returned when the directory does not know the
// login or refuses its password.
var ErrDirectoryRejected = errors.New("directory rejected credentials")

// DirectoryAuthenticator verifies credentials against an external directory.
type DirectoryAuthenticator interface {
	Authenticate(ctx context.Context, email, password string) (*DirectoryUser, error)
}

type DirectoryUser struct {
	DN    string
	Email string
	Name  string
}

type LDAPService struct {
	config *config.LDAPConfig
}

// NewLDAPService returns nil when directory sign-in is disabled.
func NewLDAPService(cfg *config.LDAPConfig) *LDAPService {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return &LDAPService{config: cfg}
}

// Authenticate looks the login up with the service account and then binds as
// the matched entry to check the password.
func (s *LDAPService) Authenticate(ctx context.Context, email, password string) (*DirectoryUser, error) {
	if password == "" {
		return nil, ErrDirectoryRejected
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	var (
		conn *ldap.Conn
		err  error
	)
	if s.config.UseSSL {
		conn, err = ldap.DialURL("ldaps://"+addr, ldap.DialWithTLSConfig(&tls.Config{ServerName: s.config.Host}))
	} else {
		conn, err = ldap.DialURL("ldap://" + addr)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to ldap %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetTimeout(time.Until(deadline))
	}

	if s.config.BindDN != "" {
		if err := conn.Bind(s.config.BindDN, s.config.BindPassword); err != nil {
			return nil, fmt.Errorf("bind service account: %w", err)
		}
	}

	filter := s.config.UserFilter
	if filter == "" {
		filter = "(mail=%s)"
	}
	search := ldap.NewSearchRequest(
		s.config.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 2, 0, false,
		fmt.Sprintf(filter, ldap.EscapeFilter(email)),
		[]string{"dn", "cn", "mail"},
		nil,
	)
	result, err := conn.Search(search)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) {
			return nil, ErrDirectoryRejected
		}
		return nil, fmt.Errorf("ldap search: %w", err)
	}
	if len(result.Entries) != 1 {
		return nil, ErrDirectoryRejected
	}

	entry := result.Entries[0]
	if err := conn.Bind(entry.DN, password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return nil, ErrDirectoryRejected
		}
		return nil, fmt.Errorf("bind %s: %w", entry.DN, err)
	}

	user := &DirectoryUser{
		DN:    entry.DN,
		Email: strings.TrimSpace(entry.GetAttributeValue("mail")),
		Name:  strings.TrimSpace(entry.GetAttributeValue("cn")),
	}
	if user.Email == "" {
		user.Email = email
	}
	if user.Name == "" {
		user.Name = user.Email
	}
	return user, nil
}
