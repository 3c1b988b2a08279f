package telephony

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// CallRequest describes one outbound call to a venue.
type CallRequest struct {
	To                string
	AnswerURL         string
	StatusCallbackURL string
	RingTimeout       time.Duration
}

type callCreator interface {
	CreateCall(params *openapi.CreateCallParams) (*openapi.ApiV2010Call, error)
}

// TwilioClient places calls through the Twilio REST API.
type TwilioClient struct {
	api  callCreator
	from string
}

func NewTwilioClient(accountSID, authToken, from string) *TwilioClient {
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioClient{api: rest.Api, from: from}
}

// PlaceCall starts the call and returns the provider's CallSid. The provider reports
// only the final call state to StatusCallbackURL; no-answer, busy and failed arrive
// as the CallStatus of that completed event.
func (c *TwilioClient) PlaceCall(ctx context.Context, req CallRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &openapi.CreateCallParams{}
	params.SetTo(req.To)
	params.SetFrom(c.from)
	params.SetUrl(req.AnswerURL)
	params.SetMethod("POST")
	params.SetStatusCallback(req.StatusCallbackURL)
	params.SetStatusCallbackMethod("POST")
	params.SetStatusCallbackEvent([]string{"completed"})
	if req.RingTimeout > 0 {
		params.SetTimeout(int(req.RingTimeout / time.Second))
	}

	call, err := c.api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("create call to %s: %w", req.To, err)
	}
	if call == nil || call.Sid == nil || *call.Sid == "" {
		return "", errors.New("create call: provider returned no call sid")
	}
	return *call.Sid, nil
}
