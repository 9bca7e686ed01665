package employee

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleDisplayName(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{"admin", "Administrador"},
		{"security", "Segurança"},
		{"vigia", "Vigia"},
		{"porteiro", "Porteiro"},
		{"zelador", "Zelador"},
		{"rh", "RH"},
		{"supervisor", "Supervisor"},
		{"sdf", "SDF"},
		{"drone-pilot", "drone-pilot"}, // unknown keys pass through
		{"", "Não informado"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoleDisplayName(tt.role), "role %q", tt.role)
	}
}

func TestOperationalRoles(t *testing.T) {
	roles := OperationalRoles()
	assert.NotContains(t, roles, "admin")
	assert.NotContains(t, roles, "rh")
	assert.Contains(t, roles, "vigia")
	assert.Contains(t, roles, "security")

	assert.False(t, IsOperationalRole("admin"))
	assert.False(t, IsOperationalRole("rh"))
	assert.True(t, IsOperationalRole("porteiro"))
}

func TestBlockEmployeeInputTrim(t *testing.T) {
	in := BlockEmployeeInput{Reason: "  atraso recorrente  "}
	in.Trim()
	assert.Equal(t, "atraso recorrente", in.Reason)

	long := BlockEmployeeInput{Reason: strings.Repeat("x", 600)}
	long.Trim()
	assert.Len(t, long.Reason, 500)
}

func TestIsBlocked(t *testing.T) {
	assert.True(t, (&Employee{Status: StatusBlocked}).IsBlocked())
	assert.False(t, (&Employee{Status: StatusActive}).IsBlocked())
	assert.False(t, (&Employee{}).IsBlocked())
}
