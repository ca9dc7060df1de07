package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
	"github.com/mamadbah2/herdbook/internal/service/farms"
	"github.com/mamadbah2/herdbook/internal/service/herd"
	"github.com/mamadbah2/herdbook/internal/storage/attachments"
)

const (
	// FlashCookie carries a one-shot message across the missing-parent redirect.
	FlashCookie = "flash"
	// FallbackRedirect is used when the request has no Referer.
	FallbackRedirect = "/animals"
)

// HerdHandler exposes the herd records over HTTP.
type HerdHandler struct {
	svc    *herd.Service
	logger *zap.Logger
}

// NewHerdHandler constructs the HTTP handler adapter.
func NewHerdHandler(svc *herd.Service, logger *zap.Logger) *HerdHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HerdHandler{svc: svc, logger: logger}
}

func actorOf(c *gin.Context) auth.Actor {
	actor, _ := auth.ActorFrom(c.Request.Context())
	return actor
}

// pageParam reads a 1-based page number; junk means the first page.
func pageParam(c *gin.Context, name string) models.Page {
	n, _ := strconv.Atoi(c.Query(name))
	return models.Page{Number: n}.Normalize()
}

func (h *HerdHandler) pathID(c *gin.Context) (uint, bool) {
	id, err := herd.ParseID(c.Param("id"))
	if err != nil {
		fail(c, h.logger, err)
		return 0, false
	}
	return id, true
}

// parent checks ?animal= before the body is read, so a missing parent wins
// over validation errors and nothing gets created.
func (h *HerdHandler) parent(c *gin.Context) (string, bool) {
	raw := c.Query("animal")
	if _, err := h.svc.ResolveParent(c.Request.Context(), actorOf(c), raw); err != nil {
		fail(c, h.logger, err)
		return "", false
	}
	return raw, true
}

func bind(c *gin.Context, logger *zap.Logger, dst any) bool {
	if err := c.ShouldBind(dst); err != nil {
		logger.Debug("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// fail maps service errors onto HTTP responses.
func fail(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, herd.ErrMissingParentReference):
		redirectWithFlash(c, err.Error())
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, attachments.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, herd.ErrInvalidInput),
		errors.Is(err, herd.ErrServiceMismatch),
		errors.Is(err, models.ErrUnknownState):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, farms.ErrFarmExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func redirectWithFlash(c *gin.Context, msg string) {
	target := c.GetHeader("Referer")
	if target == "" {
		target = FallbackRedirect
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, msg, 60, "/", "", false, true)
	c.Header("Location", target)
	c.JSON(http.StatusSeeOther, gin.H{"error": msg, "redirect": target})
}
