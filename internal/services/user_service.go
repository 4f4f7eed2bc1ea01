package services

import (
	"encoding/json"
	"errors"
	"log"

	"userapi/internal/apperrors"
	"userapi/internal/models"
	"userapi/internal/repositories"
	"userapi/internal/validation"
)

// EventPublisher publishes user lifecycle events. Satisfied by
// rabbitmq.Client; may be left nil to disable publishing.
type EventPublisher interface {
	Publish(eventType string, body []byte) error
}

// sortableColumns is the allow-list for list sorting. Password is
// deliberately not sortable.
var sortableColumns = map[string]bool{
	"id":    true,
	"email": true,
	"name":  true,
}

// UserService handles business logic for user management: uniqueness
// enforcement, pagination sanitization and entity-to-response mapping.
type UserService struct {
	repo      repositories.UserRepository
	validator *validation.Validator
	publisher EventPublisher
}

// NewUserService creates a new UserService. publisher may be nil, in which
// case lifecycle events are not published.
func NewUserService(repo repositories.UserRepository, publisher EventPublisher) *UserService {
	return &UserService{
		repo:      repo,
		validator: validation.New(),
		publisher: publisher,
	}
}

// ListUsers returns one page of users. A sort key outside the allow-list
// silently falls back to ascending id instead of failing the request.
func (s *UserService) ListUsers(page, size int, sortKey, sortDir string) (*models.PagedUserResponse, error) {
	sortKey, sortDir = sanitizeSort(sortKey, sortDir)

	users, total, err := s.repo.FindPage(page, size, sortKey, sortDir)
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		return nil, apperrors.Internal(err)
	}

	content := make([]models.UserResponse, 0, len(users))
	for i := range users {
		content = append(content, users[i].ToResponse())
	}
	return models.NewPagedUserResponse(content, page, size, total), nil
}

// sanitizeSort maps any sort request outside the allow-list to the default
// ascending id order. The direction is normalized to asc unless desc is
// explicitly requested.
func sanitizeSort(sortKey, sortDir string) (string, string) {
	if !sortableColumns[sortKey] {
		return "id", "asc"
	}
	if sortDir != "desc" {
		sortDir = "asc"
	}
	return sortKey, sortDir
}

// GetUserByID returns a single user by id.
func (s *UserService) GetUserByID(id uint) (*models.UserResponse, error) {
	user, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFoundf("User not found with id: %d", id)
		}
		log.Printf("Failed to get user by id %d: %v", id, err)
		return nil, apperrors.Internal(err)
	}
	resp := user.ToResponse()
	return &resp, nil
}

// GetUserByEmail returns a single user by exact email match. Case
// sensitivity is inherited from the store's comparison.
func (s *UserService) GetUserByEmail(email string) (*models.UserResponse, error) {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFoundf("User not found with email: %s", email)
		}
		log.Printf("Failed to get user by email %s: %v", email, err)
		return nil, apperrors.Internal(err)
	}
	resp := user.ToResponse()
	return &resp, nil
}

// CreateUser validates the request, enforces email uniqueness and persists
// the new user. Validation runs before the existence check, which runs
// before persistence.
func (s *UserService) CreateUser(req models.CreateUserRequest) (*models.UserResponse, error) {
	if fieldErrors := s.validator.Check(req); len(fieldErrors) > 0 {
		return nil, apperrors.Validation(fieldErrors)
	}

	exists, err := s.repo.ExistsByEmail(req.Email)
	if err != nil {
		log.Printf("Failed to check email existence for %s: %v", req.Email, err)
		return nil, apperrors.Internal(err)
	}
	if exists {
		return nil, apperrors.Conflictf("User already exists with email: %s", req.Email)
	}

	user := &models.User{
		Email:    req.Email,
		Password: req.Password, // Stored as given; hashing is deferred.
		Name:     req.Name,
	}
	if err := s.repo.Insert(user); err != nil {
		// The unique index is the backstop for the exists-then-insert race:
		// a concurrent writer that wins still surfaces as a clean conflict.
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, apperrors.Conflictf("User already exists with email: %s", req.Email)
		}
		log.Printf("Failed to create user %s: %v", req.Email, err)
		return nil, apperrors.Internal(err)
	}

	s.publishEvent("user.created", user)

	resp := user.ToResponse()
	return &resp, nil
}

// UpdateUser merges the supplied fields onto the existing record. Absent
// fields keep their prior values; password is not updatable here. Changing
// the email to one held by another user is a conflict, while re-sending the
// record's own email is not.
func (s *UserService) UpdateUser(id uint, req models.UpdateUserRequest) (*models.UserResponse, error) {
	existing, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NotFoundf("User not found with id: %d", id)
		}
		log.Printf("Failed to load user %d for update: %v", id, err)
		return nil, apperrors.Internal(err)
	}

	if fieldErrors := s.validator.Check(req); len(fieldErrors) > 0 {
		return nil, apperrors.Validation(fieldErrors)
	}

	if req.Email != nil && *req.Email != existing.Email {
		exists, err := s.repo.ExistsByEmail(*req.Email)
		if err != nil {
			log.Printf("Failed to check email existence for %s: %v", *req.Email, err)
			return nil, apperrors.Internal(err)
		}
		if exists {
			return nil, apperrors.Conflictf("User already exists with email: %s", *req.Email)
		}
		existing.Email = *req.Email
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}

	if err := s.repo.Update(existing); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, apperrors.Conflictf("User already exists with email: %s", existing.Email)
		}
		log.Printf("Failed to update user %d: %v", id, err)
		return nil, apperrors.Internal(err)
	}

	s.publishEvent("user.updated", existing)

	resp := existing.ToResponse()
	return &resp, nil
}

// DeleteUser removes a user by id. Deletion is a hard delete. The record
// is loaded first so the deleted event carries the same payload shape as
// the created and updated events.
func (s *UserService) DeleteUser(id uint) error {
	user, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NotFoundf("User not found with id: %d", id)
		}
		log.Printf("Failed to load user %d for delete: %v", id, err)
		return apperrors.Internal(err)
	}

	if err := s.repo.DeleteByID(id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NotFoundf("User not found with id: %d", id)
		}
		log.Printf("Failed to delete user %d: %v", id, err)
		return apperrors.Internal(err)
	}

	s.publishEvent("user.deleted", user)
	return nil
}

// publishEvent publishes a lifecycle event for the given user. Publishing
// is best-effort: failures are logged and never fail the operation.
func (s *UserService) publishEvent(eventType string, user *models.User) {
	if s.publisher == nil {
		return
	}

	payload := map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event for user %d: %v", eventType, user.ID, err)
		return
	}
	if err := s.publisher.Publish(eventType, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for user %d: %v", eventType, user.ID, err)
	}
}
