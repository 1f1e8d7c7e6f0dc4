package domain

// ServiceReservation is a counter row enforcing a Service's reservation
// cap at a given slot start (§3, §4.3).
type ServiceReservation struct {
	ID        ID
	ServiceID ID
	Timestamp Timestamp
}

// NewServiceReservation constructs a reservation row. Callers are
// expected to insert it through DomainStore's atomic
// create-if-below-cap operation rather than a plain insert.
func NewServiceReservation(serviceID ID, ts Timestamp) *ServiceReservation {
	return &ServiceReservation{ID: NewID(), ServiceID: serviceID, Timestamp: ts}
}
