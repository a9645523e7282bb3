package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"job-board-backend/internal/delivery/http/response"
	"job-board-backend/internal/domain"
)

type HealthHandler struct {
	healthUC domain.HealthUsecase
}

func NewHealthHandler(public *gin.RouterGroup, healthUC domain.HealthUsecase) {
	handler := &HealthHandler{healthUC: healthUC}
	public.GET("/health", handler.Check)
}

// Health godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	status, healthy := h.healthUC.Check(c.Request.Context())
	msg := "System operational"
	if !healthy {
		msg = "System degraded"
	}
	response.Success(c, http.StatusOK, msg, status)
}
