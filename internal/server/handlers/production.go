package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/service/herd"
)

// Milk bodies carry decimals, which only the JSON binding understands.
func bindMilk(c *gin.Context, logger *zap.Logger) (herd.MilkInput, bool) {
	var in herd.MilkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		logger.Debug("invalid milk body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return in, false
	}
	return in, true
}

// CreateMilkProduction records milk for the animal_id in the body.
func (h *HerdHandler) CreateMilkProduction(c *gin.Context) {
	in, ok := bindMilk(c, h.logger)
	if !ok {
		return
	}
	milk, err := h.svc.CreateMilkProduction(c.Request.Context(), actorOf(c), in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, milk)
}

// CreateAnimalMilkProduction records milk for ?animal=.
func (h *HerdHandler) CreateAnimalMilkProduction(c *gin.Context) {
	parent, ok := h.parent(c)
	if !ok {
		return
	}
	in, ok := bindMilk(c, h.logger)
	if !ok {
		return
	}
	milk, err := h.svc.CreateAnimalMilkProduction(c.Request.Context(), actorOf(c), parent, in)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, milk)
}

func (h *HerdHandler) ListMilkProduction(c *gin.Context) {
	list, err := h.svc.ListMilkProduction(c.Request.Context(), actorOf(c), pageParam(c, "page"))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
