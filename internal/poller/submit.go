package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Request is the body of POST /reservations/request.
type Request struct {
	StoreID        string `json:"storeId"`
	UserID         string `json:"userId,omitempty"`
	UserName       string `json:"userName"`
	UserPhone      string `json:"userPhone"`
	PartySize      int    `json:"partySize"`
	ArrivalMinutes int    `json:"arrivalMinutes"`
}

type Accepted struct {
	ReservationID     string `json:"reservationId"`
	CallCorrelationID string `json:"callCorrelationId"`
}

// Submit sends a reservation request. Non-2xx answers are returned as errors carrying
// the server's error message.
func (p *Poller) Submit(ctx context.Context, r Request) (*Accepted, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/reservations/request", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, fmt.Errorf("request rejected (%d): %s", resp.StatusCode, e.Error)
	}

	var out Accepted
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
