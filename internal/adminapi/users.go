package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/internal/webserver"
)

// userView strips the password digest from API responses.
type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Avatar   string `json:"avatar"`
}

func viewUser(u domain.User) userView {
	return userView{ID: u.ID, Username: u.Username, Role: u.Role, Avatar: u.Avatar}
}

func registerUserRoutes() {
	supervisorOnly := webserver.RequireRole(domain.RoleSupervisor)
	webserver.ApiGET("/users", listUsers, supervisorOnly)
	webserver.ApiPOST("/users", createUser, supervisorOnly)
	webserver.ApiDELETE("/users/:id", deleteUser, supervisorOnly)
	// password and avatar changes are self-service
	webserver.ApiPUT("/users/:id/password", changeUserPassword)
	webserver.ApiPUT("/users/:id/avatar", updateUserAvatar)
}

func listUsers(c echo.Context) error {
	users, err := GetStore(c).Users()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, viewUser(u))
	}
	return ok(c, views)
}

type userPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func createUser(c echo.Context) error {
	var payload userPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse user", err.Error())
	}
	if strings.TrimSpace(payload.Username) == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required", nil)
	}
	if payload.Role != "" && payload.Role != domain.RoleSupervisor && payload.Role != domain.RoleEmployee {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Role must be 'supervisor' or 'employee'", nil)
	}

	u, err := GetStore(c).AddUser(currentActor(c), payload.Username, payload.Password, payload.Role)
	if err != nil {
		return fail(c, http.StatusConflict, "DUPLICATE_USER", "Failed to create user", err.Error())
	}
	return ok(c, viewUser(u))
}

func deleteUser(c echo.Context) error {
	id := c.Param("id")
	claims := webserver.Claims(c)
	if u, found := GetStore(c).UserByID(id); found && claims != nil && u.Username == claims.Username {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Cannot delete the signed-in account", nil)
	}
	if err := GetStore(c).DeleteUser(currentActor(c), id); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to delete user", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

type passwordPayload struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// changeUserPassword keeps the explicit boolean contract: a wrong old
// password reports success=false with no state change and no audit entry.
func changeUserPassword(c echo.Context) error {
	var payload passwordPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse password change", err.Error())
	}
	if payload.NewPassword == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "New password is required", nil)
	}

	changed, err := GetStore(c).ChangeUserPassword(c.Param("id"), payload.OldPassword, payload.NewPassword)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to change password", err.Error())
	}
	return ok(c, map[string]interface{}{"success": changed})
}

type avatarPayload struct {
	Avatar string `json:"avatar"`
}

func updateUserAvatar(c echo.Context) error {
	var payload avatarPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse avatar update", err.Error())
	}
	found, err := GetStore(c).UpdateUserAvatar(currentActor(c), c.Param("id"), payload.Avatar)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to update avatar", err.Error())
	}
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	}
	return ok(c, map[string]interface{}{"id": c.Param("id")})
}
