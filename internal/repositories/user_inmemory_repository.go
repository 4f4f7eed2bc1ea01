package repositories

import (
	"sort"
	"sync"

	"userapi/internal/models"
)

// InMemoryUserRepository is an in-memory implementation of UserRepository.
// It backs the service when no database is configured and keeps the same
// contract as the GORM implementation, including duplicate-email reporting.
type InMemoryUserRepository struct {
	users  map[uint]models.User
	nextID uint
	mu     sync.RWMutex
}

// NewInMemoryUserRepository creates a new instance of InMemoryUserRepository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:  make(map[uint]models.User),
		nextID: 1,
	}
}

// FindPage returns one page of users ordered by sortKey/sortDir plus the
// total count.
func (r *InMemoryUserRepository) FindPage(page, size int, sortKey, sortDir string) ([]models.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}

	sort.Slice(all, func(i, j int) bool {
		var less bool
		switch sortKey {
		case "email":
			less = all[i].Email < all[j].Email
		case "name":
			less = all[i].Name < all[j].Name
		default:
			less = all[i].ID < all[j].ID
		}
		if sortDir == "desc" {
			return !less
		}
		return less
	})

	total := int64(len(all))

	// Negative page or size behaves like the GORM implementation, where a
	// negative offset is no offset and a negative limit is no limit.
	start := page * size
	if start < 0 {
		start = 0
	}
	if start >= len(all) {
		return []models.User{}, total, nil
	}
	end := len(all)
	if size >= 0 && start+size < end {
		end = start + size
	}
	return all[start:end], total, nil
}

// FindByID returns a user by id.
func (r *InMemoryUserRepository) FindByID(id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// FindByEmail returns a user by exact email match.
func (r *InMemoryUserRepository) FindByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

// ExistsByEmail reports whether any user has the given email.
func (r *InMemoryUserRepository) ExistsByEmail(email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ExistsByID reports whether a user with the given id exists.
func (r *InMemoryUserRepository) ExistsByID(id uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[id]
	return ok, nil
}

// Insert adds a new user and assigns the next id. Ids are never reused.
func (r *InMemoryUserRepository) Insert(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

// Update modifies an existing user.
func (r *InMemoryUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	for _, u := range r.users {
		if u.Email == user.Email && u.ID != user.ID {
			return ErrDuplicateEmail
		}
	}
	r.users[user.ID] = *user
	return nil
}

// DeleteByID removes a user by id.
func (r *InMemoryUserRepository) DeleteByID(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}
