package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name     string
		list     string
		wantOpen bool
	}{
		{name: "empty", list: "", wantOpen: true},
		{name: "whitespace only", list: "  ", wantOpen: true},
		{name: "only separators", list: " , ,, ", wantOpen: true},
		{name: "single user", list: "alice", wantOpen: false},
		{name: "several users", list: "alice, Bob ,carol", wantOpen: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantOpen, ParsePolicy(tt.list).Open())
		})
	}
}

func TestPolicy_Allows(t *testing.T) {
	p := ParsePolicy(" Alice, bob,,CAROL ")

	assert.True(t, p.Allows("alice"))
	assert.True(t, p.Allows("ALICE"))
	assert.True(t, p.Allows("Bob"))
	assert.True(t, p.Allows("carol"))
	assert.False(t, p.Allows("dave"))
	assert.False(t, p.Allows("ali"), "no prefix matching")
	assert.False(t, p.Allows("*"), "no wildcards")

	assert.True(t, ParsePolicy("").Allows("anyone"))
}

func TestIdentity_Username(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		want     string
		wantErr  error
	}{
		{name: "login wins", identity: Identity{Login: "octocat", Name: "Mona", Email: "m@example.com", ID: 1}, want: "octocat"},
		{name: "name when no login", identity: Identity{Name: "Mona", Email: "m@example.com", ID: 1}, want: "Mona"},
		{name: "email when no name", identity: Identity{Email: "m@example.com", ID: 1}, want: "m@example.com"},
		{name: "numeric id last", identity: Identity{ID: 583231}, want: "583231"},
		{name: "nothing", identity: Identity{}, wantErr: ErrNoIdentity},
		{name: "blank strings", identity: Identity{Login: " ", Name: ""}, wantErr: ErrNoIdentity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.identity.Username()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthorize(t *testing.T) {
	policy := ParsePolicy("alice,bob")

	assert.NoError(t, Authorize(Identity{Login: "ALICE"}, policy))
	assert.ErrorIs(t, Authorize(Identity{Login: "mallory"}, policy), ErrDenied)
	assert.ErrorIs(t, Authorize(Identity{}, policy), ErrNoIdentity)
	assert.NoError(t, Authorize(Identity{ID: 5}, ParsePolicy("")))
	assert.ErrorIs(t, Authorize(Identity{}, ParsePolicy("")), ErrNoIdentity)
}
