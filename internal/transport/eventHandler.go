package transport

import (
	"net/http"
	"strconv"

	"github.com/evently/evently/internal/service"
	"github.com/evently/evently/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// Home возвращает подборку ближайших мероприятий для главной страницы.
func (h *EventHandler) Home(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	events, err := h.eventService.Trending(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": events})
}

func (h *EventHandler) ListPublic(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	events, err := h.eventService.ListPublic(c.Request.Context(),
		c.Query("q"), c.Query("sort"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": events})
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.eventService.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "event": event})
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "INVALID_INPUT",
		})
		return
	}

	actor := middleware.ActorFromContext(c)
	event, err := h.eventService.CreateEvent(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "event": event})
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var req service.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "INVALID_INPUT",
		})
		return
	}

	actor := middleware.ActorFromContext(c)
	event, err := h.eventService.UpdateEvent(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "event": event})
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	if err := h.eventService.DeleteEvent(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListMine возвращает мероприятия, принадлежащие текущему пользователю.
func (h *EventHandler) ListMine(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	events, err := h.eventService.ListMine(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": events})
}

// ListAssigned возвращает мероприятия, закрепленные за сотрудником.
func (h *EventHandler) ListAssigned(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	events, err := h.eventService.ListAssigned(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "events": events})
}
