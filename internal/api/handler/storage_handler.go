package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/provnet/isp-admin/internal/core/ports"
	"github.com/provnet/isp-admin/internal/syncstore"
)

// StorageHandler exposes the sync layer's connectivity state so the UI can
// render offline banners and offer a manual retry. Reads and writes are
// never gated on this; they degrade to local-only silently.
type StorageHandler struct {
	storage ports.SyncStorage
	seeder  *syncstore.Seeder
}

func NewStorageHandler(storage ports.SyncStorage, seeder *syncstore.Seeder) *StorageHandler {
	return &StorageHandler{storage: storage, seeder: seeder}
}

type storageStatusResponse struct {
	Connected bool `json:"connected"`
}

// Status reports remote store reachability.
//
// @Summary      Storage connectivity status
// @Tags         storage
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  storageStatusResponse
// @Router       /api/v1/storage/status [get]
func (h *StorageHandler) Status(c echo.Context) error {
	connected := h.storage.CheckConnection(c.Request().Context())
	return c.JSON(http.StatusOK, storageStatusResponse{Connected: connected})
}

// Reconnect clears the probe throttle, forces a fresh connectivity check and
// re-runs default data initialization.
//
// @Summary      Force a reconnection attempt
// @Tags         storage
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  storageStatusResponse
// @Router       /api/v1/storage/reconnect [post]
func (h *StorageHandler) Reconnect(c echo.Context) error {
	ctx := c.Request().Context()

	h.storage.ResetConnection()
	connected := h.storage.CheckConnection(ctx)
	if connected {
		h.seeder.Force()
		if _, err := h.seeder.Initialize(ctx); err != nil {
			return err
		}
	}
	return c.JSON(http.StatusOK, storageStatusResponse{Connected: connected})
}
