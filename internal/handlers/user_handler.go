package handlers

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"userapi/internal/apperrors"
	"userapi/internal/middleware"
	"userapi/internal/models"
	"userapi/internal/services"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleListUsers)
	// The email route must be registered before the id route so that
	// /users/email/... is not captured by the :id parameter.
	userRoutes.Get("/email/:email", h.HandleGetUserByEmail)
	userRoutes.Get("/:id", h.HandleGetUserByID)
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Put("/:id", h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
}

// HandleListUsers returns a page of users. The sort query parameter uses
// the form "key" or "key,desc".
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 20)
	sortKey, sortDir := parseSortParam(c.Query("sort", "id"))

	users, err := h.service.ListUsers(page, size, sortKey, sortDir)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(users)
}

// HandleGetUserByID returns a single user by id.
func (h *UserHandler) HandleGetUserByID(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}

	user, err := h.service.GetUserByID(id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(user)
}

// HandleGetUserByEmail returns a single user by exact email match.
func (h *UserHandler) HandleGetUserByEmail(c *fiber.Ctx) error {
	user, err := h.service.GetUserByEmail(c.Params("email"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(user)
}

// HandleCreateUser creates a new user.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create user request body: %v", err)
		return h.writeError(c, apperrors.InvalidArgumentf("Invalid request body"))
	}

	user, err := h.service.CreateUser(req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleUpdateUser partially updates an existing user.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}

	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update user request body: %v", err)
		return h.writeError(c, apperrors.InvalidArgumentf("Invalid request body"))
	}

	user, err := h.service.UpdateUser(id, req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(user)
}

// HandleDeleteUser deletes a user by id.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return h.writeError(c, err)
	}

	if err := h.service.DeleteUser(id); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseID parses a path id, reporting malformed values as invalid
// arguments rather than not-found.
func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperrors.InvalidArgumentf("Invalid user id: %s", raw)
	}
	return uint(id), nil
}

// parseSortParam splits a "key[,direction]" sort parameter.
func parseSortParam(raw string) (string, string) {
	parts := strings.SplitN(raw, ",", 2)
	sortKey := strings.TrimSpace(parts[0])
	sortDir := "asc"
	if len(parts) == 2 {
		sortDir = strings.ToLower(strings.TrimSpace(parts[1]))
	}
	return sortKey, sortDir
}

// statusForCode maps each business error code to an HTTP status. This is
// the only place status codes are assigned.
func statusForCode(code string) int {
	switch code {
	case apperrors.CodeUserNotFound:
		return fiber.StatusNotFound
	case apperrors.CodeUserAlreadyExists:
		return fiber.StatusConflict
	case apperrors.CodeValidationError, apperrors.CodeInvalidArgument, apperrors.CodeInvalidSortProperty:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError serializes a business error. Internal failures are logged
// with the request id and returned with a generic message only.
func (h *UserHandler) writeError(c *fiber.Ctx, err error) error {
	appErr := apperrors.From(err)
	status := statusForCode(appErr.Code)

	if appErr.Code == apperrors.CodeInternal {
		log.Printf("Unexpected error at %s (request %v): %v", c.Path(), c.Locals(middleware.RequestIDKey), err)
	}

	if appErr.Code == apperrors.CodeValidationError {
		return c.Status(status).JSON(models.ValidationErrorResponse{
			Code:        appErr.Code,
			Message:     appErr.Message,
			Timestamp:   time.Now().UTC(),
			Path:        c.Path(),
			FieldErrors: appErr.FieldErrors,
		})
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Timestamp: time.Now().UTC(),
		Path:      c.Path(),
	})
}
