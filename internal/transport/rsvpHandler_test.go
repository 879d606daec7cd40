package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evently/evently/internal/entity"
	"github.com/evently/evently/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rsvpServiceStub struct {
	service.RSVPService
	reserveFn func(ctx context.Context, req *service.ReserveRequest) (*service.ReserveResult, error)
}

func (s *rsvpServiceStub) Reserve(ctx context.Context, req *service.ReserveRequest) (*service.ReserveResult, error) {
	return s.reserveFn(ctx, req)
}

func newRSVPRouter(stub *rsvpServiceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/public/rsvp", NewRSVPHandler(stub).CreateRSVP)
	return router
}

func postRSVP(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/public/rsvp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRSVPHandler_CreateRSVP_Success(t *testing.T) {
	rsvpID := uuid.New()
	stub := &rsvpServiceStub{reserveFn: func(_ context.Context, req *service.ReserveRequest) (*service.ReserveResult, error) {
		assert.Equal(t, "Guest", req.Name)
		return &service.ReserveResult{RSVPID: rsvpID, RemainingAfter: 3}, nil
	}}

	recorder := postRSVP(t, newRSVPRouter(stub),
		`{"eventId":"`+uuid.New().String()+`","name":"Guest","email":"g@example.com","quantity":2}`)

	require.Equal(t, http.StatusCreated, recorder.Code)

	var body struct {
		Success        bool   `json:"success"`
		RSVPID         string `json:"rsvpId"`
		RemainingAfter int    `json:"remainingAfter"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, rsvpID.String(), body.RSVPID)
	assert.Equal(t, 3, body.RemainingAfter)
}

func TestRSVPHandler_CreateRSVP_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "invalid input", err: entity.ErrInvalidInput, wantStatus: http.StatusBadRequest, wantCode: "INVALID_INPUT"},
		{name: "insufficient spots", err: entity.ErrNotEnoughSpots, wantStatus: http.StatusConflict, wantCode: "INSUFFICIENT_SPOTS"},
		{name: "past event", err: entity.ErrEventPast, wantStatus: http.StatusConflict, wantCode: "EVENT_PAST"},
		{name: "duplicate email", err: entity.ErrAlreadyRSVPed, wantStatus: http.StatusConflict, wantCode: "ALREADY_RSVPED"},
		{name: "storage fault", err: errors.New("tx aborted"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &rsvpServiceStub{reserveFn: func(context.Context, *service.ReserveRequest) (*service.ReserveResult, error) {
				return nil, tt.err
			}}

			recorder := postRSVP(t, newRSVPRouter(stub),
				`{"eventId":"`+uuid.New().String()+`","name":"Guest","email":"g@example.com"}`)

			require.Equal(t, tt.wantStatus, recorder.Code)

			var body struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Error)
		})
	}
}

func TestRSVPHandler_CreateRSVP_MalformedJSON(t *testing.T) {
	stub := &rsvpServiceStub{reserveFn: func(context.Context, *service.ReserveRequest) (*service.ReserveResult, error) {
		t.Fatal("service must not be called for malformed body")
		return nil, nil
	}}

	recorder := postRSVP(t, newRSVPRouter(stub), `{"eventId": `)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INVALID_INPUT")
}
