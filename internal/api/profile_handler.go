package api

import (
	"net/http"

	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/AndersonGC/dryfit/internal/service"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService  service.ProfileService
	categoryService service.CategoryService
	log             logging.Logger
}

func NewProfileHandler(ps service.ProfileService, cs service.CategoryService, log logging.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: ps, categoryService: cs, log: log}
}

// Me godoc
// @Summary Current account
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AccountResponse
// @Router /me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// RequestAvatarUpload godoc
// @Summary Presigned avatar upload URL
// @Description Returns a URL the client PUTs the image to, then confirms with PUT /me/avatar.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AvatarUploadRequest true "Image content type"
// @Success 200 {object} AvatarUploadResponse
// @Failure 400 {object} map[string]string "Unsupported type or avatars disabled"
// @Router /me/avatar/upload-url [post]
func (h *ProfileHandler) RequestAvatarUpload(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	upload, err := h.profileService.RequestAvatarUpload(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, AvatarUploadResponse{
		UploadURL: upload.UploadURL,
		ObjectKey: upload.ObjectKey,
		ExpiresIn: int(upload.ExpiresIn.Seconds()),
	})
}

// SetAvatar godoc
// @Summary Confirm an uploaded avatar
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetAvatarRequest true "Object key from upload-url"
// @Success 200 {object} AccountResponse
// @Router /me/avatar [put]
func (h *ProfileHandler) SetAvatar(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req SetAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.profileService.SetAvatar(c.Request.Context(), userID, req.ObjectKey)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// ListCategories godoc
// @Summary Workout categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CategoryResponse
// @Router /categories [get]
func (h *ProfileHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapCategoriesToResponse(categories))
}
