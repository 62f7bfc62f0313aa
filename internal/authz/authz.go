// Package authz decides whether an authenticated user may use the dashboard.
package authz

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrNoIdentity is returned when a session carries no usable username.
	ErrNoIdentity = errors.New("unable to determine user identity")
	// ErrDenied is returned when the user is not on the allow-list.
	ErrDenied = errors.New("access denied: user not authorized to access this application")
)

// Identity is the user profile attached to a login session.
type Identity struct {
	Login string `json:"login,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	ID    int64  `json:"id,omitempty"`
}

// Username picks the identifier matched against the allow-list:
// login, then display name, then email, then numeric provider id.
func (i Identity) Username() (string, error) {
	for _, candidate := range []string{i.Login, i.Name, i.Email} {
		if c := strings.TrimSpace(candidate); c != "" {
			return c, nil
		}
	}
	if i.ID != 0 {
		return strconv.FormatInt(i.ID, 10), nil
	}
	return "", ErrNoIdentity
}

// Policy is a parsed allow-list. The zero value allows everyone.
type Policy struct {
	users map[string]struct{}
}

// ParsePolicy parses a comma separated allow-list. Entries are trimmed and
// lowercased; empty entries are dropped.
func ParsePolicy(list string) Policy {
	p := Policy{}
	for _, entry := range strings.Split(list, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if p.users == nil {
			p.users = make(map[string]struct{})
		}
		p.users[entry] = struct{}{}
	}
	return p
}

// Open reports whether the policy allows every authenticated user.
func (p Policy) Open() bool {
	return len(p.users) == 0
}

// Allows reports whether username is permitted. Matching is exact and
// case-insensitive.
func (p Policy) Allows(username string) bool {
	if p.Open() {
		return true
	}
	_, ok := p.users[strings.ToLower(strings.TrimSpace(username))]
	return ok
}

// Authorize checks identity against policy and returns nil, ErrNoIdentity or ErrDenied.
func Authorize(identity Identity, policy Policy) error {
	username, err := identity.Username()
	if err != nil {
		return err
	}
	if !policy.Allows(username) {
		return ErrDenied
	}
	return nil
}
