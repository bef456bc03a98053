package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kafet/cafeteria-reservation/internal/imaging"
	"github.com/kafet/cafeteria-reservation/internal/model"
	"github.com/kafet/cafeteria-reservation/internal/queue"
	"github.com/kafet/cafeteria-reservation/internal/repository"
	"github.com/kafet/cafeteria-reservation/internal/service"
	"github.com/kafet/cafeteria-reservation/internal/storage"
)

// maxUploadBytes caps meal photo uploads before decoding.
const maxUploadBytes = 10 << 20 // 10 MiB

// AdminMenuHandler implements the catalog management endpoints.  All
// routes behind it require the admin role.  Mutations flow through the
// reservation service where reservations are involved (cascade delete)
// and publish change-feed events so connected clients refresh.
type AdminMenuHandler struct {
	Menus   *repository.MenuRepo
	Service *service.ReservationService
	Images  *storage.ImageStore
}

func NewAdminMenuHandler(menus *repository.MenuRepo, svc *service.ReservationService, images *storage.ImageStore) *AdminMenuHandler {
	if menus == nil || svc == nil {
		panic("nil dependency passed to NewAdminMenuHandler")
	}
	return &AdminMenuHandler{Menus: menus, Service: svc, Images: images}
}

type createMenuItemReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents"`
	Date        string   `json:"date"`
	Quota       int64    `json:"quota"`
	DietaryTags []string `json:"dietary_tags"`
}

// Create handles POST /v1/admin/menu.
func (h *AdminMenuHandler) Create(c echo.Context) error {
	var req createMenuItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	item := &model.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Date:        req.Date,
		Quota:       req.Quota,
		DietaryTags: req.DietaryTags,
	}
	if err := item.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	created, err := h.Menus.Create(c.Request().Context(), item)
	if err != nil {
		return writeRepoError(c, err)
	}
	h.Service.PublishMenuChange(c.Request().Context(), queue.EventInsert, created)
	return c.JSON(http.StatusCreated, created)
}

// Update handles PATCH /v1/admin/menu/:id as a merge-patch: only the
// fields present in the body change.  Lowering the quota below the
// current reservation count is rejected with 409.
func (h *AdminMenuHandler) Update(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}
	var patch repository.MenuItemPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := validatePatch(patch); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	updated, err := h.Menus.Update(c.Request().Context(), id, patch)
	if err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "quota below current reservations"})
		}
		return writeRepoError(c, err)
	}
	h.Service.PublishMenuChange(c.Request().Context(), queue.EventUpdate, updated)
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/admin/menu/:id.  The item and every
// reservation referencing it are removed together; the stored photo is
// cleaned up best-effort afterwards.
func (h *AdminMenuHandler) Delete(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}
	if err := h.Service.DeleteMenuItemCascade(c.Request().Context(), id); err != nil {
		return writeRepoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage handles POST /v1/admin/menu/:id/image.  The multipart
// "image" part is sniffed, normalized to a bounded JPEG and stored;
// the item's image_url is updated to the stored copy.
func (h *AdminMenuHandler) UploadImage(c echo.Context) error {
	if h.Images == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "image storage not configured"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}
	if _, err := h.Menus.GetByID(c.Request().Context(), id); err != nil {
		return writeRepoError(c, err)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file required"})
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "image too large"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read upload"})
	}
	defer f.Close()

	data, err := imaging.Process(f)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	url, err := h.Images.Save(data, ".jpg")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
	}
	if err := h.Menus.SetImageURL(c.Request().Context(), id, url); err != nil {
		return writeRepoError(c, err)
	}

	item, err := h.Menus.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeRepoError(c, err)
	}
	h.Service.PublishMenuChange(c.Request().Context(), queue.EventUpdate, item)
	return c.JSON(http.StatusOK, item)
}

// validatePatch checks the supplied fields of a merge-patch; returns an
// error message or "" when valid.
func validatePatch(p repository.MenuItemPatch) string {
	if p.Name != nil && *p.Name == "" {
		return "name must not be empty"
	}
	if p.Description != nil && *p.Description == "" {
		return "description must not be empty"
	}
	if p.PriceCents != nil && *p.PriceCents < 0 {
		return "price_cents must not be negative"
	}
	if p.Quota != nil && *p.Quota < 0 {
		return "quota must not be negative"
	}
	if p.Date != nil {
		if _, err := time.Parse(model.DateLayout, *p.Date); err != nil {
			return "invalid date, want YYYY-MM-DD"
		}
	}
	if p.DietaryTags != nil {
		if err := model.ValidateDietaryTags(*p.DietaryTags); err != nil {
			return err.Error()
		}
	}
	return ""
}
