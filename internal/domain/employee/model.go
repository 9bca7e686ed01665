package employee

import (
	"strings"
	"time"
)

const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// Employee is a user record in the users collection. The document id
// doubles as the Firebase Auth uid.
type Employee struct {
	ID          string     `firestore:"-" json:"id"`
	Username    string     `firestore:"username" json:"username"`
	Email       string     `firestore:"email" json:"email"`
	Phone       string     `firestore:"phone,omitempty" json:"phone,omitempty"`
	Role        string     `firestore:"role" json:"role"`
	Status      string     `firestore:"status,omitempty" json:"status,omitempty"`
	BlockReason string     `firestore:"blockReason,omitempty" json:"blockReason,omitempty"`
	BlockedAt   *time.Time `firestore:"blockedAt,omitempty" json:"blockedAt,omitempty"`
	CreatedBy   string     `firestore:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `firestore:"updatedAt" json:"updatedAt"`
}

func (e *Employee) IsBlocked() bool { return e.Status == StatusBlocked }

// roleNames maps stored role keys to their Portuguese display names.
var roleNames = map[string]string{
	"admin":      "Administrador",
	"security":   "Segurança",
	"vigia":      "Vigia",
	"porteiro":   "Porteiro",
	"zelador":    "Zelador",
	"rh":         "RH",
	"supervisor": "Supervisor",
	"sdf":        "SDF",
}

// RoleDisplayName returns the display name for a role key, falling back to
// the key itself for roles added after this build.
func RoleDisplayName(role string) string {
	if name, ok := roleNames[role]; ok {
		return name
	}
	if role == "" {
		return "Não informado"
	}
	return role
}

// OperationalRoles are the roles that check in from the field; admin and HR
// accounts never appear in feeds or reports.
func OperationalRoles() []string {
	roles := make([]string, 0, len(roleNames)-2)
	for role := range roleNames {
		if IsOperationalRole(role) {
			roles = append(roles, role)
		}
	}
	return roles
}

func IsOperationalRole(role string) bool {
	return role != "admin" && role != "rh"
}

// CreateEmployeeInput is the admin-side payload for creating an employee.
// The account itself is created through the Admin SDK, so the caller's own
// session is never touched.
type CreateEmployeeInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
	Password string `json:"password"`
}

func (in *CreateEmployeeInput) Trim() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = strings.TrimSpace(in.Role)
}

type UpdateEmployeeInput struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Role     *string `json:"role,omitempty"`
}

func (in *UpdateEmployeeInput) Trim() {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(in.Username)
	trim(in.Email)
	trim(in.Phone)
	trim(in.Role)
}

type BlockEmployeeInput struct {
	Reason string `json:"reason"`
}

func (in *BlockEmployeeInput) Trim() {
	in.Reason = strings.TrimSpace(in.Reason)
	if len(in.Reason) > 500 {
		in.Reason = in.Reason[:500]
	}
}
