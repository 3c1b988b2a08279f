package domain

import (
	"fmt"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusRejected  ReservationStatus = "rejected"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusExpired   ReservationStatus = "expired"
)

const (
	// DefaultLifetime bounds how long a request may stay pending before a read expires it.
	DefaultLifetime = 3 * time.Minute

	ReasonDeclinedByVenue      = "declined by venue"
	ReasonCallPlacementFailure = "call placement failed"
)

// AllowedArrivalMinutes are the only arrival offsets a guest may choose.
var AllowedArrivalMinutes = []int{10, 20, 30}

func IsAllowedArrivalMinutes(m int) bool {
	for _, v := range AllowedArrivalMinutes {
		if v == m {
			return true
		}
	}
	return false
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusRejected,
		ReservationStatusCancelled, ReservationStatusExpired:
		return true
	}
	return false
}

func (s ReservationStatus) Terminal() bool {
	return s.Valid() && s != ReservationStatusPending
}

type Reservation struct {
	ID                string
	StoreID           string
	UserID            string
	CallerName        string
	CallerPhone       string
	PartySize         int
	ArrivalMinutes    int
	ArrivalTime       time.Time
	Status            ReservationStatus
	CallCorrelationID *string
	ConfirmedAt       *time.Time
	RejectionReason   *string
	ExpiresAt         time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewReservation builds a pending reservation created at now that expires after lifetime.
func NewReservation(id, storeID, userID, callerName, callerPhone string, partySize, arrivalMinutes int, now time.Time, lifetime time.Duration) *Reservation {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Reservation{
		ID:             id,
		StoreID:        storeID,
		UserID:         userID,
		CallerName:     callerName,
		CallerPhone:    callerPhone,
		PartySize:      partySize,
		ArrivalMinutes: arrivalMinutes,
		ArrivalTime:    now.Add(time.Duration(arrivalMinutes) * time.Minute),
		Status:         ReservationStatusPending,
		ExpiresAt:      now.Add(lifetime),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Overdue reports whether a pending reservation has outlived its window.
func (r *Reservation) Overdue(now time.Time) bool {
	return r.Status == ReservationStatusPending && now.After(r.ExpiresAt)
}

// Transition moves a pending reservation to the terminal status to and sets the
// fields that belong to it. It is the only place terminal field values are computed;
// persisting them is the repository's conditional write.
func (r *Reservation) Transition(to ReservationStatus, reason string, now time.Time) error {
	if r.Status != ReservationStatusPending {
		return fmt.Errorf("%w: reservation %s is %s", ErrAlreadyProcessed, r.ID, r.Status)
	}
	if !to.Terminal() {
		return fmt.Errorf("%w: %q", ErrInvalidTransition, to)
	}

	switch to {
	case ReservationStatusConfirmed:
		at := now
		r.ConfirmedAt = &at
		r.RejectionReason = nil
	case ReservationStatusRejected, ReservationStatusCancelled:
		if reason == "" {
			return fmt.Errorf("%w: %s requires a reason", ErrInvalidTransition, to)
		}
		rr := reason
		r.RejectionReason = &rr
		r.ConfirmedAt = nil
	case ReservationStatusExpired:
		r.ConfirmedAt = nil
		r.RejectionReason = nil
	}

	r.Status = to
	r.UpdatedAt = now
	return nil
}
