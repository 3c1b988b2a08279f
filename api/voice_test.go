package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Domenick1991/quickreserve/internal/service/reservation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func formRequest(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestVoiceHandler_answer(t *testing.T) {
	mockService := &MockVoiceUseCase{}
	handler := NewVoiceHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = formRequest("/voice/answer?reservationId=r-1", "CallSid=CA1")

	mockService.On("AnswerCall", c.Request.Context(), "r-1").Return("<Response><Gather/></Response>", nil)

	handler.answer(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "<Response><Gather/></Response>", w.Body.String())
}

func TestVoiceHandler_response(t *testing.T) {
	mockService := &MockVoiceUseCase{}
	handler := NewVoiceHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = formRequest("/voice/response?reservationId=r-1", "Digits=2&CallSid=CA1")

	mockService.On("HandleKeypress", c.Request.Context(), "r-1", "2").Return("<Response><Say>declined</Say></Response>", nil)

	handler.response(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "declined")
	mockService.AssertExpectations(t)
}

func TestVoiceHandler_response_RenderFailureStillAnswers(t *testing.T) {
	mockService := &MockVoiceUseCase{}
	handler := NewVoiceHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = formRequest("/voice/response?reservationId=r-1", "Digits=1")

	mockService.On("HandleKeypress", c.Request.Context(), "r-1", "1").Return("", errors.New("xml"))

	handler.response(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, hangupTwiML, w.Body.String())
}

func TestVoiceHandler_status(t *testing.T) {
	for _, svcErr := range []error{nil, errors.New("db down")} {
		mockService := &MockVoiceUseCase{}
		handler := NewVoiceHandler(mockService, zap.NewNop())

		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = formRequest("/voice/status?reservationId=r-1", "CallSid=CA1&CallStatus=no-answer")

		mockService.On("ReconcileCallStatus", c.Request.Context(), reservation.CallStatusInput{
			ReservationID: "r-1",
			CallSID:       "CA1",
			CallStatus:    "no-answer",
		}).Return(svcErr)

		handler.status(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
		mockService.AssertExpectations(t)
	}
}
