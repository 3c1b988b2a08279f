package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestAndWatch(t *testing.T) {
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/reservations/request":
			_, _ = w.Write([]byte(`{"success":true,"reservationId":"r-1","callCorrelationId":"CA1"}`))
		case "/reservations/status/r-1":
			status := domain.ReservationStatusPending
			if atomic.AddInt32(&polls, 1) > 1 {
				status = domain.ReservationStatusConfirmed
			}
			_ = json.NewEncoder(w).Encode(domain.StatusView{ID: "r-1", Status: status, StoreName: "Mapo Galbi", PartySize: 2})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"request", "--server", srv.URL, "--interval", "5ms", "--store", "s-1", "--name", "Kim", "--phone", "010-1234-5678"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "reservation r-1 requested (call CA1)")
	assert.Contains(t, out.String(), "pending")
	assert.Contains(t, out.String(), "confirmed by Mapo Galbi for 2")
}

func TestWatch_UnknownReservation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"watch", "nope", "--server", srv.URL, "--interval", "5ms"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
