package models

import "time"

// CreateUserRequest is the request body for creating a user.
// All fields are required on creation.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=2,max=50"`
}

// UpdateUserRequest is the request body for partially updating a user.
// Absent fields leave the stored value unchanged. Password cannot be
// updated through this request.
type UpdateUserRequest struct {
	Email *string `json:"email" validate:"omitempty,email,max=255"`
	Name  *string `json:"name" validate:"omitempty,min=2,max=50"`
}

// UserResponse is the public view of a user. The password is never exposed.
type UserResponse struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ToResponse maps a stored user to its public representation.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
	}
}

// PagedUserResponse is one page of users plus pagination metadata.
type PagedUserResponse struct {
	Content       []UserResponse `json:"content"`
	PageNumber    int            `json:"pageNumber"`
	PageSize      int            `json:"pageSize"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	First         bool           `json:"first"`
	Last          bool           `json:"last"`
	Empty         bool           `json:"empty"`
}

// NewPagedUserResponse derives the page metadata arithmetically from the
// total count, page number and page size. It does not re-query the store.
func NewPagedUserResponse(content []UserResponse, pageNumber, pageSize int, totalElements int64) *PagedUserResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((totalElements + int64(pageSize) - 1) / int64(pageSize))
	}
	return &PagedUserResponse{
		Content:       content,
		PageNumber:    pageNumber,
		PageSize:      pageSize,
		TotalElements: totalElements,
		TotalPages:    totalPages,
		First:         pageNumber == 0,
		Last:          pageNumber == totalPages-1 || totalElements == 0,
		Empty:         len(content) == 0,
	}
}

// FieldError describes a single field-level validation violation.
type FieldError struct {
	Field         string `json:"field"`
	RejectedValue any    `json:"rejectedValue"`
	Message       string `json:"message"`
}

// ErrorResponse is the body returned for any business or transport failure.
type ErrorResponse struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// ValidationErrorResponse is an ErrorResponse carrying the full list of
// field violations, not just the first one.
type ValidationErrorResponse struct {
	Code        string       `json:"code"`
	Message     string       `json:"message"`
	Timestamp   time.Time    `json:"timestamp"`
	Path        string       `json:"path"`
	FieldErrors []FieldError `json:"fieldErrors"`
}
