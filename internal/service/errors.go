package service

import "errors"

var (
	// ErrInvalidCustomerID is returned when customer ID is empty.
	ErrInvalidCustomerID = errors.New("invalid customer id")

	// ErrInvalidOrderID is returned when order ID is empty.
	ErrInvalidOrderID = errors.New("invalid order id")

	// ErrInvalidOfferID is returned when offer ID is empty.
	ErrInvalidOfferID = errors.New("invalid offer id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidFuelType is returned when fuel type ID is empty.
	ErrInvalidFuelType = errors.New("invalid fuel type")

	// ErrInvalidLitres is returned when litres is not a positive amount.
	ErrInvalidLitres = errors.New("litres must be positive")

	// ErrInvalidDropLocation is returned when drop coordinates are invalid.
	ErrInvalidDropLocation = errors.New("invalid drop location")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrMissingDeliveryTime is returned when an accept request carries
	// no confirmed delivery time.
	ErrMissingDeliveryTime = errors.New("missing confirmed delivery time")

	// ErrInvalidAvailability is returned when an availability value is
	// not one of the known states.
	ErrInvalidAvailability = errors.New("invalid availability status")

	// ErrOfferExpired is returned when an offer's time window has elapsed.
	ErrOfferExpired = errors.New("offer expired")

	// ErrOfferNotOpen is returned when an offer has already been actioned.
	ErrOfferNotOpen = errors.New("offer already actioned")

	// ErrOrderNotOpen is returned when the order is no longer open for
	// assignment.
	ErrOrderNotOpen = errors.New("order not open for assignment")

	// ErrAssignmentConflict is returned when a conditional update lost a
	// race. Callers are expected to refresh and retry, not treat this as
	// fatal.
	ErrAssignmentConflict = errors.New("assignment conflict")

	// ErrOfferOrderMismatch is returned when an offer does not belong to
	// the order named in the request.
	ErrOfferOrderMismatch = errors.New("offer does not belong to order")

	// ErrNotOfferOwner is returned when a driver actions an offer that
	// was not issued to them.
	ErrNotOfferOwner = errors.New("offer not owned by caller")

	// ErrOrderAlreadyCancelled is returned when cancelling a cancelled order.
	ErrOrderAlreadyCancelled = errors.New("order already cancelled")

	// ErrOrderCannotBeCancelled is returned when the order has progressed
	// past the point of cancellation.
	ErrOrderCannotBeCancelled = errors.New("order cannot be cancelled in current state")

	// ErrDriverNotAssignedToOrder is returned when a driver drives a
	// progress transition on an order assigned to someone else.
	ErrDriverNotAssignedToOrder = errors.New("driver not assigned to this order")

	// ErrInvalidTransition is returned when a progress transition is not
	// allowed from the order's current state.
	ErrInvalidTransition = errors.New("invalid order state transition")
)
