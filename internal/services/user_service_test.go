package services_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"userapi/internal/apperrors"
	"userapi/internal/models"
	"userapi/internal/repositories"
	"userapi/internal/services"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindPage(page, size int, sortKey, sortDir string) ([]models.User, int64, error) {
	args := m.Called(page, size, sortKey, sortDir)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByID(id uint) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Insert(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteByID(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(eventType string, body []byte) error {
	args := m.Called(eventType, body)
	return args.Error(0)
}

func strPtr(s string) *string {
	return &s
}

func TestUserService_CreateUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockPublisher := new(MockEventPublisher)
	service := services.NewUserService(mockRepo, mockPublisher)

	req := models.CreateUserRequest{Email: "a@x.com", Password: "123456", Name: "Ann"}

	// Test successful creation: the store assigns the id.
	mockRepo.On("ExistsByEmail", "a@x.com").Return(false, nil).Once()
	mockRepo.On("Insert", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = 1
	}).Return(nil).Once()
	mockPublisher.On("Publish", "user.created", mock.Anything).Return(nil).Once()

	user, err := service.CreateUser(req)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "Ann", user.Name)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)

	// Test duplicate email: no insert is attempted.
	mockRepo.On("ExistsByEmail", "a@x.com").Return(true, nil).Once()
	user, err = service.CreateUser(req)
	assert.Nil(t, user)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserAlreadyExists))
	assert.Contains(t, err.Error(), "a@x.com")
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "Insert", 1)
}

func TestUserService_CreateUser_ValidationRunsBeforeExistenceCheck(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil)

	// Both bad fields must be reported, and the repository is never touched.
	req := models.CreateUserRequest{Email: "bad", Password: "123456", Name: "A"}
	user, err := service.CreateUser(req)
	assert.Nil(t, user)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationError))

	appErr := apperrors.From(err)
	assert.Len(t, appErr.FieldErrors, 2)
	fields := []string{appErr.FieldErrors[0].Field, appErr.FieldErrors[1].Field}
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "name")
	mockRepo.AssertNotCalled(t, "ExistsByEmail", mock.Anything)
	mockRepo.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestUserService_CreateUser_DuplicateKeyFromStore(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil)

	// A concurrent writer that slips past the existence check must still
	// surface as a conflict, not an internal error.
	mockRepo.On("ExistsByEmail", "a@x.com").Return(false, nil).Once()
	mockRepo.On("Insert", mock.AnythingOfType("*models.User")).Return(repositories.ErrDuplicateEmail).Once()

	req := models.CreateUserRequest{Email: "a@x.com", Password: "123456", Name: "Ann"}
	user, err := service.CreateUser(req)
	assert.Nil(t, user)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserAlreadyExists))
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUserByID(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil)

	stored := &models.User{ID: 1, Email: "a@x.com", Password: "123456", Name: "Ann"}

	// Test successful retrieval: the password is never exposed.
	mockRepo.On("FindByID", uint(1)).Return(stored, nil).Once()
	user, err := service.GetUserByID(1)
	assert.NoError(t, err)
	assert.Equal(t, models.UserResponse{ID: 1, Email: "a@x.com", Name: "Ann"}, *user)
	mockRepo.AssertExpectations(t)

	// Test user not found
	mockRepo.On("FindByID", uint(99)).Return(nil, repositories.ErrUserNotFound).Once()
	user, err = service.GetUserByID(99)
	assert.Nil(t, user)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserNotFound))
	assert.Contains(t, err.Error(), "99")
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUserByEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil)

	stored := &models.User{ID: 1, Email: "a@x.com", Password: "123456", Name: "Ann"}

	mockRepo.On("FindByEmail", "a@x.com").Return(stored, nil).Once()
	user, err := service.GetUserByEmail("a@x.com")
	assert.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	mockRepo.AssertExpectations(t)

	mockRepo.On("FindByEmail", "missing@x.com").Return(nil, repositories.ErrUserNotFound).Once()
	user, err = service.GetUserByEmail("missing@x.com")
	assert.Nil(t, user)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserNotFound))
	assert.Contains(t, err.Error(), "missing@x.com")
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_MergesOnlySuppliedFields(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil)

	stored := &models.User{ID: 1, Email: "a@x.com", Password: "123456", Name: "Ann"}
	mockRepo.On("FindByID", uint(1)).Return(stored, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil).Once()

	// Only the name is supplied, so the email must keep its prior value and
	// no existence check is performed.
	user, err := service.UpdateUser(1, models.UpdateUserRequest{Name: strPtr("Annie")})
	assert.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "Annie", user.Name)
	mockRepo.AssertNotCalled(t, "ExistsByEmail", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_SelfEmailIsNotAConflict(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil)

	stored := &models.User{ID: 1, Email: "a@x.com", Password: "123456", Name: "Ann"}
	mockRepo.On("FindByID", uint(1)).Return(stored, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := service.UpdateUser(1, models.UpdateUserRequest{Email: strPtr("a@x.com")})
	assert.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	mockRepo.AssertNotCalled(t, "ExistsByEmail", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_EmailConflict(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil)

	stored := &models.User{ID: 1, Email: "a@x.com", Password: "123456", Name: "Ann"}
	mockRepo.On("FindByID", uint(1)).Return(stored, nil).Once()
	mockRepo.On("ExistsByEmail", "b@x.com").Return(true, nil).Once()

	user, err := service.UpdateUser(1, models.UpdateUserRequest{Email: strPtr("b@x.com")})
	assert.Nil(t, user)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserAlreadyExists))
	assert.Contains(t, err.Error(), "b@x.com")
	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil)

	mockRepo.On("FindByID", uint(99)).Return(nil, repositories.ErrUserNotFound).Once()

	user, err := service.UpdateUser(99, models.UpdateUserRequest{Name: strPtr("Annie")})
	assert.Nil(t, user)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserNotFound))
	mockRepo.AssertExpectations(t)
}

func TestUserService_DeleteUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockPublisher := new(MockEventPublisher)
	service := services.NewUserService(mockRepo, mockPublisher)

	stored := &models.User{ID: 1, Email: "a@x.com", Password: "123456", Name: "Ann"}

	// Test successful deletion: the deleted event carries the full user
	// payload, not just the id.
	mockRepo.On("FindByID", uint(1)).Return(stored, nil).Once()
	mockRepo.On("DeleteByID", uint(1)).Return(nil).Once()
	mockPublisher.On("Publish", "user.deleted", mock.MatchedBy(func(body []byte) bool {
		return strings.Contains(string(body), "a@x.com") && strings.Contains(string(body), "Ann")
	})).Return(nil).Once()

	err := service.DeleteUser(1)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)

	// Test deletion of a missing user
	mockRepo.On("FindByID", uint(99)).Return(nil, repositories.ErrUserNotFound).Once()
	err = service.DeleteUser(99)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserNotFound))
	mockRepo.AssertNotCalled(t, "DeleteByID", uint(99))
	mockRepo.AssertExpectations(t)
}

func TestUserService_ListUsers_SanitizesSortKey(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil)

	users := []models.User{
		{ID: 1, Email: "a@x.com", Name: "Ann"},
		{ID: 2, Email: "b@x.com", Name: "Bob"},
	}

	// Sorting by password (or any unknown key) falls back to id ascending.
	mockRepo.On("FindPage", 0, 20, "id", "asc").Return(users, int64(2), nil).Twice()

	page, err := service.ListUsers(0, 20, "password", "desc")
	assert.NoError(t, err)
	assert.Len(t, page.Content, 2)

	page, err = service.ListUsers(0, 20, "bogus", "asc")
	assert.NoError(t, err)
	assert.Len(t, page.Content, 2)
	mockRepo.AssertExpectations(t)

	// An allow-listed key passes through untouched.
	mockRepo.On("FindPage", 0, 20, "email", "desc").Return(users, int64(2), nil).Once()
	_, err = service.ListUsers(0, 20, "email", "desc")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUserService_ListUsers_PageMetadata(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, nil)

	users := []models.User{
		{ID: 41, Email: "x@x.com", Name: "Xavier"},
		{ID: 42, Email: "y@x.com", Name: "Yann"},
	}

	// 45 users in pages of 20: page 2 is the last of three.
	mockRepo.On("FindPage", 2, 20, "id", "asc").Return(users, int64(45), nil).Once()
	page, err := service.ListUsers(2, 20, "id", "asc")
	assert.NoError(t, err)
	assert.Equal(t, int64(45), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	assert.False(t, page.First)
	assert.True(t, page.Last)
	assert.False(t, page.Empty)
	mockRepo.AssertExpectations(t)

	// An empty store yields an empty first-and-last page.
	mockRepo.On("FindPage", 0, 20, "id", "asc").Return([]models.User{}, int64(0), nil).Once()
	page, err = service.ListUsers(0, 20, "id", "asc")
	assert.NoError(t, err)
	assert.Equal(t, 0, page.TotalPages)
	assert.True(t, page.First)
	assert.True(t, page.Last)
	assert.True(t, page.Empty)
	mockRepo.AssertExpectations(t)
}
