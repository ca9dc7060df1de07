package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/service/herd"
)

type transitionRequest struct {
	State string `json:"state" form:"state" binding:"required"`
}

// ListAnimals returns the actor's animals, filtered by ?search=.
func (h *HerdHandler) ListAnimals(c *gin.Context) {
	list, err := h.svc.ListAnimals(c.Request.Context(), actorOf(c), c.Query("search"), pageParam(c, "page"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateAnimal stores an animal; females come back with their mirrored dam.
func (h *HerdHandler) CreateAnimal(c *gin.Context) {
	var in herd.AnimalInput
	if !bind(c, h.logger, &in) {
		return
	}
	animal, dam, err := h.svc.CreateAnimal(c.Request.Context(), actorOf(c), in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"animal": animal, "mirrored_dam": dam})
}

// GetAnimal renders the detail view. Each section reads its own
// <section>_page parameter.
func (h *HerdHandler) GetAnimal(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	pages := herd.DetailPages{
		Services:        pageParam(c, "services_page").Number,
		PregnancyChecks: pageParam(c, "pregnancy_checks_page").Number,
		Treatments:      pageParam(c, "treatments_page").Number,
		Notes:           pageParam(c, "notes_page").Number,
		MilkProduction:  pageParam(c, "milk_production_page").Number,
		Offspring:       pageParam(c, "offspring_page").Number,
	}
	detail, err := h.svc.AnimalDetail(c.Request.Context(), actorOf(c), id, pages)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *HerdHandler) UpdateAnimal(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var in herd.AnimalInput
	if !bind(c, h.logger, &in) {
		return
	}
	animal, err := h.svc.UpdateAnimal(c.Request.Context(), actorOf(c), id, in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

// TransitionAnimal moves an animal to the requested state.
func (h *HerdHandler) TransitionAnimal(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req transitionRequest
	if !bind(c, h.logger, &req) {
		return
	}
	animal, err := h.svc.TransitionAnimal(c.Request.Context(), actorOf(c), id, req.State)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

func (h *HerdHandler) Dashboard(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	dash, err := h.svc.Dashboard(c.Request.Context(), actorOf(c), id)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// OffspringForm returns the defaults for recording a calf of ?animal=.
func (h *HerdHandler) OffspringForm(c *gin.Context) {
	form, err := h.svc.OffspringDefaults(c.Request.Context(), actorOf(c), c.Query("animal"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// AddOffspring records a calf of ?animal=.
func (h *HerdHandler) AddOffspring(c *gin.Context) {
	parent, ok := h.parent(c)
	if !ok {
		return
	}
	var in herd.AnimalInput
	if !bind(c, h.logger, &in) {
		return
	}
	out, err := h.svc.AddOffspring(c.Request.Context(), actorOf(c), parent, in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}
