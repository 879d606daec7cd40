package transport

import (
	"net/http"

	"github.com/evently/evently/internal/service"
	"github.com/evently/evently/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

type RSVPHandler struct {
	rsvpService service.RSVPService
}

func NewRSVPHandler(rsvpService service.RSVPService) *RSVPHandler {
	return &RSVPHandler{rsvpService: rsvpService}
}

// CreateRSVP — публичная точка бронирования. Аутентификация не требуется:
// гость бронирует по имени и email. Поле mobile принимается для
// совместимости с формой, но не сохраняется.
func (h *RSVPHandler) CreateRSVP(c *gin.Context) {
	var req service.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "INVALID_INPUT",
		})
		return
	}

	result, err := h.rsvpService.Reserve(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"rsvpId":         result.RSVPID,
		"remainingAfter": result.RemainingAfter,
	})
}

func (h *RSVPHandler) GetEventStats(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	stats, err := h.rsvpService.GetEventStats(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

func (h *RSVPHandler) ListEventRSVPs(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	rsvps, err := h.rsvpService.ListEventRSVPs(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "rsvps": rsvps})
}
