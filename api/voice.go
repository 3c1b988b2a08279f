package api

import (
	"net/http"

	"github.com/Domenick1991/quickreserve/internal/service/reservation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// hangupTwiML is played when no document could be rendered at all.
const hangupTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response><Hangup/></Response>`

// VoiceHandler serves the telephony provider's webhooks. Every response is a 200 so
// the provider never retries a delivery that was already applied.
type VoiceHandler struct {
	service reservation.VoiceUseCase
	logger  *zap.Logger
}

func NewVoiceHandler(service reservation.VoiceUseCase, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{service: service, logger: logger}
}

func (h *VoiceHandler) Register(router *gin.RouterGroup) {
	router.POST("/answer", h.answer)
	router.POST("/response", h.response)
	router.POST("/status", h.status)
}

func (h *VoiceHandler) answer(c *gin.Context) {
	id := c.Query("reservationId")
	doc, err := h.service.AnswerCall(c.Request.Context(), id)
	h.writeTwiML(c, id, doc, err)
}

func (h *VoiceHandler) response(c *gin.Context) {
	id := c.Query("reservationId")
	doc, err := h.service.HandleKeypress(c.Request.Context(), id, c.PostForm("Digits"))
	h.writeTwiML(c, id, doc, err)
}

func (h *VoiceHandler) status(c *gin.Context) {
	input := reservation.CallStatusInput{
		ReservationID: c.Query("reservationId"),
		CallSID:       c.PostForm("CallSid"),
		CallStatus:    c.PostForm("CallStatus"),
	}
	if err := h.service.ReconcileCallStatus(c.Request.Context(), input); err != nil {
		h.logger.Error("reconcile call status",
			zap.String("reservation_id", input.ReservationID),
			zap.String("call_sid", input.CallSID),
			zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *VoiceHandler) writeTwiML(c *gin.Context, reservationID, doc string, err error) {
	if err != nil || doc == "" {
		h.logger.Error("render twiml", zap.String("reservation_id", reservationID), zap.Error(err))
		doc = hangupTwiML
	}
	c.Data(http.StatusOK, "text/xml", []byte(doc))
}
