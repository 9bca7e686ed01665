package employee

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type Repo struct {
	client *firestore.Client
}

func NewRepo(client *firestore.Client) *Repo {
	return &Repo{client: client}
}

func (r *Repo) usersCol() *firestore.CollectionRef {
	return r.client.Collection("users")
}

// Get retrieves an employee by uid.
func (r *Repo) Get(ctx context.Context, uid string) (*Employee, error) {
	doc, err := r.usersCol().Doc(uid).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: employee not found", ErrNotFound)
	}

	var emp Employee
	if err := doc.DataTo(&emp); err != nil {
		return nil, fmt.Errorf("failed to decode employee: %w", err)
	}
	emp.ID = doc.Ref.ID
	return &emp, nil
}

// List returns every operational employee (admin and HR accounts are
// management-side and excluded).
func (r *Repo) List(ctx context.Context) ([]Employee, error) {
	iter := r.usersCol().Where("role", "in", OperationalRoles()).Documents(ctx)
	defer iter.Stop()

	var employees []Employee
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list employees: %w", err)
		}

		var emp Employee
		if err := doc.DataTo(&emp); err != nil {
			continue
		}
		emp.ID = doc.Ref.ID
		employees = append(employees, emp)
	}
	return employees, nil
}

// Create writes the profile document keyed by the auth uid.
func (r *Repo) Create(ctx context.Context, emp Employee) error {
	_, err := r.usersCol().Doc(emp.ID).Set(ctx, map[string]interface{}{
		"username":  emp.Username,
		"email":     emp.Email,
		"phone":     emp.Phone,
		"role":      emp.Role,
		"status":    emp.Status,
		"createdBy": emp.CreatedBy,
		"createdAt": emp.CreatedAt,
		"updatedAt": emp.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// Update merges field updates into the profile document.
func (r *Repo) Update(ctx context.Context, uid string, updates map[string]interface{}) (*Employee, error) {
	_, err := r.usersCol().Doc(uid).Set(ctx, updates, firestore.MergeAll)
	if err != nil {
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	return r.Get(ctx, uid)
}

// Delete removes the profile document.
func (r *Repo) Delete(ctx context.Context, uid string) error {
	if _, err := r.usersCol().Doc(uid).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

// Username implements the check-in feed's user directory: it resolves a uid
// to its display name, preferring username over email.
func (r *Repo) Username(ctx context.Context, uid string) (string, bool) {
	doc, err := r.usersCol().Doc(uid).Get(ctx)
	if err != nil || !doc.Exists() {
		return "", false
	}
	data := doc.Data()
	if name, ok := data["username"].(string); ok && name != "" {
		return name, true
	}
	if email, ok := data["email"].(string); ok && email != "" {
		return email, true
	}
	return "", false
}
