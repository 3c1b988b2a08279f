package domain

// Store is the venue a reservation is made at. It is owned by the catalogue service;
// this service only reads it.
type Store struct {
	ID      string
	Name    string
	Address string
	Phone   string
}
