package repositories

import (
	"errors"

	"userapi/internal/models"
)

// Sentinel errors returned by UserRepository implementations. The service
// layer translates these into the business error taxonomy.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// FindPage returns one page of users ordered by sortKey/sortDir, plus
	// the total number of users across all pages.
	FindPage(page, size int, sortKey, sortDir string) ([]models.User, int64, error)
	FindByID(id uint) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
	ExistsByID(id uint) (bool, error)
	// Insert persists a new user and assigns its id.
	Insert(user *models.User) error
	Update(user *models.User) error
	DeleteByID(id uint) error
}
