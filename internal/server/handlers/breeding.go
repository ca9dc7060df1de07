package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/service/herd"
)

// ServiceForm returns the defaults for recording a service of ?animal=.
func (h *HerdHandler) ServiceForm(c *gin.Context) {
	form, err := h.svc.ServiceDefaults(c.Request.Context(), actorOf(c), c.Query("animal"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// CreateService records a breeding service for ?animal=.
func (h *HerdHandler) CreateService(c *gin.Context) {
	parent, ok := h.parent(c)
	if !ok {
		return
	}
	var in herd.ServiceInput
	if !bind(c, h.logger, &in) {
		return
	}
	svc, err := h.svc.CreateService(c.Request.Context(), actorOf(c), parent, in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *HerdHandler) GetService(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	detail, err := h.svc.GetService(c.Request.Context(), actorOf(c), id, pageParam(c, "pregnancy_checks_page"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *HerdHandler) UpdateService(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var in herd.ServiceInput
	if !bind(c, h.logger, &in) {
		return
	}
	svc, err := h.svc.UpdateService(c.Request.Context(), actorOf(c), id, in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *HerdHandler) ListServices(c *gin.Context) {
	list, err := h.svc.ListServices(c.Request.Context(), actorOf(c), pageParam(c, "page"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// PregnancyCheckForm returns the defaults for a check of ?animal=.
func (h *HerdHandler) PregnancyCheckForm(c *gin.Context) {
	form, err := h.svc.PregnancyCheckDefaults(c.Request.Context(), actorOf(c), c.Query("animal"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// CreatePregnancyCheck records a check for ?animal=.
func (h *HerdHandler) CreatePregnancyCheck(c *gin.Context) {
	parent, ok := h.parent(c)
	if !ok {
		return
	}
	var in herd.PregnancyCheckInput
	if !bind(c, h.logger, &in) {
		return
	}
	check, err := h.svc.CreatePregnancyCheck(c.Request.Context(), actorOf(c), parent, in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, check)
}

func (h *HerdHandler) GetPregnancyCheck(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	check, err := h.svc.GetPregnancyCheck(c.Request.Context(), actorOf(c), id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, check)
}
