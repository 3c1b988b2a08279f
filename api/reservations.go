package api

import (
	"net/http"

	"github.com/Domenick1991/quickreserve/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

type requestReservationResponse struct {
	Success           bool   `json:"success"`
	ReservationID     string `json:"reservationId"`
	CallCorrelationID string `json:"callCorrelationId"`
}

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("/request", h.request)
	router.GET("/status/:id", h.status)
}

func (h *ReservationHandler) request(c *gin.Context) {
	var req reservation.RequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.service.RequestReservation(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, requestReservationResponse{
		Success:           true,
		ReservationID:     res.ReservationID,
		CallCorrelationID: res.CallCorrelationID,
	})
}

func (h *ReservationHandler) status(c *gin.Context) {
	view, err := h.service.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, view)
}
