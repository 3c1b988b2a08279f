// Package voice renders the TwiML documents played to the venue during a confirmation call.
package voice

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/Domenick1991/quickreserve/internal/telephony"
	"github.com/twilio/twilio-go/twiml"
)

const (
	msgAlreadyProcessed = "This reservation request has already been handled. Thank you, goodbye."
	msgExpired          = "This reservation request has expired and can no longer be answered. Goodbye."
	msgConfirmed        = "The reservation is confirmed. The guest will be notified. Thank you, goodbye."
	msgRejected         = "The reservation has been declined. The guest will be notified. Goodbye."
	msgInvalidInput     = "Sorry, that is not a valid choice. The request will stay open. Goodbye."
	msgNoInput          = "We did not receive a response. Goodbye."
	msgNotFound         = "We could not find this reservation request. Goodbye."
	msgUnavailable      = "Sorry, we are unable to process this call right now. Goodbye."
)

// MenuInfo is what the venue hears about a request.
type MenuInfo struct {
	ReservationID  string
	StoreName      string
	CallerName     string
	CallerPhone    string
	PartySize      int
	ArrivalMinutes int
}

type Builder struct {
	publicBaseURL string
	voice         string
	language      string
	gatherTimeout int
}

func NewBuilder(publicBaseURL, voice, language string, gatherTimeoutSecs int) *Builder {
	if gatherTimeoutSecs <= 0 {
		gatherTimeoutSecs = 10
	}
	return &Builder{
		publicBaseURL: publicBaseURL,
		voice:         voice,
		language:      language,
		gatherTimeout: gatherTimeoutSecs,
	}
}

// ResponseURL is where the gathered keypress for reservationID is posted.
func (b *Builder) ResponseURL(reservationID string) string {
	return b.publicBaseURL + "/voice/response?reservationId=" + url.QueryEscape(reservationID)
}

func (b *Builder) say(msg string) *twiml.VoiceSay {
	return &twiml.VoiceSay{Message: msg, Voice: b.voice, Language: b.language}
}

// Menu reads the request out and waits for a single keypress. If the gather times out
// the no-input notice is spoken and the call ends.
func (b *Builder) Menu(info MenuInfo) (string, error) {
	intro := "Hello. This is an automated reservation request"
	if info.StoreName != "" {
		intro += " for " + info.StoreName
	}
	details := fmt.Sprintf("Party of %d, arriving %s. Guest name, %s. Guest phone, %s.",
		info.PartySize, ArrivalPhrase(info.ArrivalMinutes), info.CallerName, telephony.SpokenPhone(info.CallerPhone))

	gather := &twiml.VoiceGather{
		Action:    b.ResponseURL(info.ReservationID),
		Method:    "POST",
		NumDigits: "1",
		Timeout:   strconv.Itoa(b.gatherTimeout),
		InnerElements: []twiml.Element{
			b.say(intro + "."),
			&twiml.VoicePause{Length: "1"},
			b.say(details),
			b.say("Press 1 to accept. Press 2 to decline. Press 3 to hear this again."),
		},
	}

	return twiml.Voice([]twiml.Element{
		gather,
		b.say(msgNoInput),
		&twiml.VoiceHangup{},
	})
}

func (b *Builder) notice(msg string) (string, error) {
	return twiml.Voice([]twiml.Element{b.say(msg), &twiml.VoiceHangup{}})
}

func (b *Builder) AlreadyProcessed() (string, error) { return b.notice(msgAlreadyProcessed) }
func (b *Builder) Expired() (string, error)          { return b.notice(msgExpired) }
func (b *Builder) Confirmed() (string, error)        { return b.notice(msgConfirmed) }
func (b *Builder) Rejected() (string, error)         { return b.notice(msgRejected) }
func (b *Builder) InvalidInput() (string, error)     { return b.notice(msgInvalidInput) }
func (b *Builder) NoInput() (string, error)          { return b.notice(msgNoInput) }
func (b *Builder) NotFound() (string, error)         { return b.notice(msgNotFound) }
func (b *Builder) Unavailable() (string, error)      { return b.notice(msgUnavailable) }

// ArrivalPhrase speaks an arrival offset, e.g. "20 minutes from now".
func ArrivalPhrase(minutes int) string {
	return fmt.Sprintf("%d minutes from now", minutes)
}
