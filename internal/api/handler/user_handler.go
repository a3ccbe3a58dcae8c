package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type createUserRequest struct {
	Username    string   `json:"username" validate:"required,min=3"`
	Password    string   `json:"password" validate:"required,min=6"`
	Name        string   `json:"name" validate:"required"`
	IsAdmin     bool     `json:"is_admin"`
	Permissions []string `json:"permissions" validate:"dive,oneof=clients plans users reports"`
}

type updateUserRequest struct {
	Username    string   `json:"username" validate:"required,min=3"`
	Password    string   `json:"password" validate:"omitempty,min=6"`
	Name        string   `json:"name" validate:"required"`
	IsAdmin     bool     `json:"is_admin"`
	Permissions []string `json:"permissions" validate:"dive,oneof=clients plans users reports"`
}

// userResponse is the public view of a user; the password hash never leaves
// the service.
type userResponse struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	IsAdmin     bool     `json:"is_admin"`
	Permissions []string `json:"permissions"`
	CreatedAt   int64    `json:"created_at"`
}

func toUserResponse(u domain.User) userResponse {
	perms := make([]string, len(u.Permissions))
	for i, p := range u.Permissions {
		perms[i] = string(p)
	}
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		IsAdmin:     u.IsAdmin,
		Permissions: perms,
		CreatedAt:   u.CreatedAt,
	}
}

// List returns every back-office operator.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  userResponse
// @Router       /api/v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	return c.JSON(http.StatusOK, out)
}

// Create registers a new operator.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Router       /api/v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Create(c.Request().Context(), ports.UserInput{
		Username:    req.Username,
		Password:    req.Password,
		Name:        req.Name,
		IsAdmin:     req.IsAdmin,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(*user))
}

// Update mutates an operator. Admin invariants are enforced by the service.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "User id"
// @Param        body  body      updateUserRequest  true  "User details"
// @Success      200   {object}  userResponse
// @Router       /api/v1/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Update(c.Request().Context(), id, ports.UserInput{
		Username:    req.Username,
		Password:    req.Password,
		Name:        req.Name,
		IsAdmin:     req.IsAdmin,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*user))
}

// Delete removes an operator. The last administrator is not deletable.
//
// @Summary      Delete user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  int  true  "User id"
// @Success      204
// @Router       /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.userService.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
