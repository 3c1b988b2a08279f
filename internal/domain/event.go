package domain

import "time"

const (
	EventReservationRequested = "reservation.requested"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationRejected  = "reservation.rejected"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationExpired   = "reservation.expired"
)

// EventTypeFor maps a status to the lifecycle event emitted on entering it.
func EventTypeFor(status ReservationStatus) string {
	switch status {
	case ReservationStatusConfirmed:
		return EventReservationConfirmed
	case ReservationStatusRejected:
		return EventReservationRejected
	case ReservationStatusCancelled:
		return EventReservationCancelled
	case ReservationStatusExpired:
		return EventReservationExpired
	default:
		return EventReservationRequested
	}
}

// StatusView is what the guest's client sees when it polls.
type StatusView struct {
	ID              string            `json:"id"`
	Status          ReservationStatus `json:"status"`
	StoreName       string            `json:"storeName"`
	StoreAddress    string            `json:"storeAddress"`
	CallerName      string            `json:"callerName"`
	PartySize       int               `json:"partySize"`
	ArrivalTime     time.Time         `json:"arrivalTime"`
	ConfirmedAt     *time.Time        `json:"confirmedAt,omitempty"`
	RejectionReason *string           `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	ExpiresAt       time.Time         `json:"expiresAt"`
}

func NewStatusView(r *Reservation, store *Store) StatusView {
	v := StatusView{
		ID:              r.ID,
		Status:          r.Status,
		CallerName:      r.CallerName,
		PartySize:       r.PartySize,
		ArrivalTime:     r.ArrivalTime,
		ConfirmedAt:     r.ConfirmedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		ExpiresAt:       r.ExpiresAt,
	}
	if store != nil {
		v.StoreName = store.Name
		v.StoreAddress = store.Address
	}
	return v
}
