package adminapi

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/amflabs/stockpilot/internal/app"
	"github.com/amflabs/stockpilot/internal/domain"
	"github.com/amflabs/stockpilot/internal/store"
	"github.com/amflabs/stockpilot/internal/webserver"
)

func registerBackupRoutes() {
	supervisorOnly := webserver.RequireRole(domain.RoleSupervisor)
	webserver.ApiPOST("/backup", downloadBackup, supervisorOnly)
	webserver.ApiPOST("/restore", restoreBackup, supervisorOnly)
}

type backupPayload struct {
	Passphrase string `json:"passphrase"`
}

// downloadBackup streams an encrypted dump of all collections as a text
// attachment named after today's date.
func downloadBackup(c echo.Context) error {
	var payload backupPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse backup request", err.Error())
	}
	if payload.Passphrase == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Passphrase is required", nil)
	}

	dump, err := GetStore(c).Dump()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Store not ready", err.Error())
	}
	blob, err := store.EncryptDump(dump, payload.Passphrase)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "BACKUP_ERROR", "Failed to encrypt backup", err.Error())
	}

	filename := app.BackupFilename(time.Now())
	zap.L().Info("backup exported", zap.String("filename", filename))
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+filename)
	return c.Blob(http.StatusOK, "text/plain", blob)
}

// restoreBackup is all-or-nothing: a bad passphrase, corrupt blob or a
// dump missing any collection leaves the store untouched.
func restoreBackup(c echo.Context) error {
	passphrase := c.QueryParam("passphrase")
	if passphrase == "" {
		passphrase = c.Request().Header.Get("X-Backup-Passphrase")
	}
	if passphrase == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Passphrase is required", nil)
	}

	blob, err := io.ReadAll(io.LimitReader(c.Request().Body, 64<<20))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read backup file", err.Error())
	}
	dump, err := store.DecryptDump(blob, passphrase)
	if err != nil {
		return fail(c, http.StatusBadRequest, "RESTORE_ERROR", "Backup could not be decrypted or is incomplete", err.Error())
	}
	if err := GetStore(c).Restore(dump); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to apply backup", err.Error())
	}

	claims := webserver.Claims(c)
	actor := "System"
	if claims != nil {
		actor = claims.Username
	}
	zap.L().Info("backup restored", zap.String("user", actor))
	return ok(c, map[string]interface{}{"restored": true})
}
