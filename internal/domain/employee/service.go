package employee

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"
)

type Service struct {
	repo       *Repo
	authClient *auth.Client
}

func NewService(repo *Repo, authClient *auth.Client) *Service {
	return &Service{repo: repo, authClient: authClient}
}

// Create provisions the auth account and the profile document. The account
// is created server-side through the Admin SDK: the calling admin's own
// session is never replaced, and no credential is cached anywhere.
func (s *Service) Create(ctx context.Context, adminUID string, input CreateEmployeeInput) (*Employee, error) {
	input.Trim()

	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrBadRequest)
	}
	if len(input.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrBadRequest)
	}
	if input.Role == "" {
		input.Role = "security"
	}
	if _, ok := roleNames[input.Role]; !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrBadRequest, input.Role)
	}

	params := (&auth.UserToCreate{}).
		Email(input.Email).
		Password(input.Password).
		DisplayName(input.Username)

	user, err := s.authClient.CreateUser(ctx, params)
	if err != nil {
		if strings.Contains(err.Error(), "EMAIL_EXISTS") {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create auth account: %w", err)
	}

	now := time.Now().UTC()
	emp := Employee{
		ID:        user.UID,
		Username:  input.Username,
		Email:     input.Email,
		Phone:     input.Phone,
		Role:      input.Role,
		Status:    StatusActive,
		CreatedBy: adminUID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, emp); err != nil {
		// Roll the auth account back so a retry isn't blocked by EMAIL_EXISTS.
		if delErr := s.authClient.DeleteUser(ctx, user.UID); delErr != nil {
			log.Printf("[employee] orphaned auth account %s: %v", user.UID, delErr)
		}
		return nil, err
	}

	return &emp, nil
}

func (s *Service) Get(ctx context.Context, uid string) (*Employee, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	return s.repo.Get(ctx, uid)
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	return s.repo.List(ctx)
}

// Update applies partial profile changes; an email change is mirrored into
// the auth account.
func (s *Service) Update(ctx context.Context, uid string, input UpdateEmployeeInput) (*Employee, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	input.Trim()

	if _, err := s.repo.Get(ctx, uid); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"updatedAt": time.Now().UTC(),
	}
	if input.Username != nil {
		updates["username"] = *input.Username
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Role != nil {
		if _, ok := roleNames[*input.Role]; !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrBadRequest, *input.Role)
		}
		updates["role"] = *input.Role
	}

	if input.Email != nil || input.Username != nil {
		authUpdate := &auth.UserToUpdate{}
		if input.Email != nil {
			authUpdate.Email(*input.Email)
		}
		if input.Username != nil {
			authUpdate.DisplayName(*input.Username)
		}
		if _, err := s.authClient.UpdateUser(ctx, uid, authUpdate); err != nil {
			log.Printf("[employee] auth update for %s failed: %v", uid, err)
		}
	}

	return s.repo.Update(ctx, uid, updates)
}

// Delete removes the profile and the auth account.
func (s *Service) Delete(ctx context.Context, uid string) error {
	if uid == "" {
		return fmt.Errorf("%w: uid is required", ErrBadRequest)
	}

	if _, err := s.repo.Get(ctx, uid); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uid); err != nil {
		return err
	}
	if err := s.authClient.DeleteUser(ctx, uid); err != nil {
		log.Printf("[employee] auth delete for %s failed: %v", uid, err)
	}
	return nil
}

// Block marks the employee blocked and disables the auth account so every
// outstanding session dies at the next token refresh.
func (s *Service) Block(ctx context.Context, uid string, input BlockEmployeeInput) (*Employee, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}
	input.Trim()
	if input.Reason == "" {
		input.Reason = "Bloqueado pelo administrador"
	}

	emp, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if emp.IsBlocked() {
		return nil, fmt.Errorf("%w: employee is already blocked", ErrConflict)
	}

	disable := (&auth.UserToUpdate{}).Disabled(true)
	if _, err := s.authClient.UpdateUser(ctx, uid, disable); err != nil {
		return nil, fmt.Errorf("failed to disable auth account: %w", err)
	}

	now := time.Now().UTC()
	return s.repo.Update(ctx, uid, map[string]interface{}{
		"status":      StatusBlocked,
		"blockReason": input.Reason,
		"blockedAt":   now,
		"updatedAt":   now,
	})
}

// Unblock re-enables the auth account and clears the block fields.
func (s *Service) Unblock(ctx context.Context, uid string) (*Employee, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}

	emp, err := s.repo.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !emp.IsBlocked() {
		return nil, fmt.Errorf("%w: employee is not blocked", ErrConflict)
	}

	enable := (&auth.UserToUpdate{}).Disabled(false)
	if _, err := s.authClient.UpdateUser(ctx, uid, enable); err != nil {
		return nil, fmt.Errorf("failed to re-enable auth account: %w", err)
	}

	return s.repo.Update(ctx, uid, map[string]interface{}{
		"status":      StatusActive,
		"blockReason": firestore.Delete,
		"blockedAt":   firestore.Delete,
		"updatedAt":   time.Now().UTC(),
	})
}
