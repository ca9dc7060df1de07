package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/auth"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/herd"
)

func (h *HerdHandler) CreateSire(c *gin.Context) {
	create(c, h, func(ctx context.Context, actor auth.Actor, in herd.ParentInput) (any, error) {
		return h.svc.CreateSire(ctx, actor, in)
	})
}

func (h *HerdHandler) ListSires(c *gin.Context) {
	list(c, h, h.svc.ListSires)
}

func (h *HerdHandler) CreateDam(c *gin.Context) {
	create(c, h, func(ctx context.Context, actor auth.Actor, in herd.ParentInput) (any, error) {
		return h.svc.CreateDam(ctx, actor, in)
	})
}

func (h *HerdHandler) ListDams(c *gin.Context) {
	list(c, h, h.svc.ListDams)
}

func (h *HerdHandler) CreateBreeder(c *gin.Context) {
	create(c, h, func(ctx context.Context, actor auth.Actor, in herd.NameInput) (any, error) {
		return h.svc.CreateBreeder(ctx, actor, in)
	})
}

func (h *HerdHandler) ListBreeders(c *gin.Context) {
	list(c, h, h.svc.ListBreeders)
}

func (h *HerdHandler) CreateBreed(c *gin.Context) {
	create(c, h, func(ctx context.Context, actor auth.Actor, in herd.NameInput) (any, error) {
		return h.svc.CreateBreed(ctx, actor, in)
	})
}

func (h *HerdHandler) ListBreeds(c *gin.Context) {
	list(c, h, h.svc.ListBreeds)
}

func (h *HerdHandler) CreateColor(c *gin.Context) {
	create(c, h, func(ctx context.Context, actor auth.Actor, in herd.NameInput) (any, error) {
		return h.svc.CreateColor(ctx, actor, in)
	})
}

func (h *HerdHandler) ListColors(c *gin.Context) {
	list(c, h, h.svc.ListColors)
}

// CloseLactation ends an open lactation period.
func (h *HerdHandler) CloseLactation(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var in herd.CloseLactationInput
	if !bind(c, h.logger, &in) {
		return
	}
	period, err := h.svc.CloseLactation(c.Request.Context(), actorOf(c), id, in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

func create[In any](c *gin.Context, h *HerdHandler, fn func(context.Context, auth.Actor, In) (any, error)) {
	var in In
	if !bind(c, h.logger, &in) {
		return
	}
	out, err := fn(c.Request.Context(), actorOf(c), in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func list[T any](c *gin.Context, h *HerdHandler, fn func(context.Context, models.Page) (models.List[T], error)) {
	out, err := fn(c.Request.Context(), pageParam(c, "page"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
