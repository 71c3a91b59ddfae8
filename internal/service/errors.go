package service

import "errors"

var (
	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidRequestID is returned when ride request ID is empty.
	ErrInvalidRequestID = errors.New("invalid ride request id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidLocation is returned when coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidVehicleType is returned for an unknown vehicle type.
	ErrInvalidVehicleType = errors.New("invalid vehicle type")

	// ErrRiderHasActiveRequest is returned when the rider already holds a
	// non-terminal ride request.
	ErrRiderHasActiveRequest = errors.New("rider already has an active ride request")

	// ErrDriverHasActiveRequest is returned when the driver is already on a
	// non-terminal ride request.
	ErrDriverHasActiveRequest = errors.New("driver already has an active ride request")

	// ErrRequestNotAvailable is returned when the request is no longer open
	// for acceptance.
	ErrRequestNotAvailable = errors.New("ride request no longer available")

	// ErrInvalidTransition is returned when a status change violates the
	// lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDriverNotEligible is returned when the driver is not approved and
	// online.
	ErrDriverNotEligible = errors.New("driver not eligible")

	// ErrDriverNotAssigned is returned when the driver is not assigned to
	// the ride request.
	ErrDriverNotAssigned = errors.New("driver not assigned to this ride request")

	// ErrNotRequestOwner is returned when a rider acts on someone else's
	// request.
	ErrNotRequestOwner = errors.New("not the owner of this ride request")

	// ErrCancelNotAllowed is returned when the actor may not cancel the
	// request in its current state.
	ErrCancelNotAllowed = errors.New("cancellation not allowed in current state")

	// ErrDriverAlreadyRegistered is returned when the user already owns a
	// driver profile, or the plate/license is taken.
	ErrDriverAlreadyRegistered = errors.New("driver already registered")

	// ErrDriverNotApproved is returned when an operation needs an approved
	// driver profile.
	ErrDriverNotApproved = errors.New("driver not approved")

	// ErrDriverSuspended is returned when the driver profile is suspended.
	ErrDriverSuspended = errors.New("driver suspended")

	// ErrTitleTaken is returned when a ride listing title is already in use.
	ErrTitleTaken = errors.New("ride title already taken")

	// ErrRideNotAvailable is returned when the listing cannot be accepted or
	// booked in its current state.
	ErrRideNotAvailable = errors.New("ride not available")

	// ErrRideAlreadyDeclined is returned when the driver declined this
	// listing before.
	ErrRideAlreadyDeclined = errors.New("ride already declined")

	// ErrNotEnoughSeats is returned when the booking exceeds available
	// seats.
	ErrNotEnoughSeats = errors.New("not enough seats available")

	// ErrContactRequired is returned when the booking user has no phone or
	// address on file.
	ErrContactRequired = errors.New("phone and address required before booking")

	// ErrBookingNotPayable is returned when payment cannot be initialised
	// for the booking's state.
	ErrBookingNotPayable = errors.New("booking not payable")

	// ErrPaymentAlreadySettled is returned when a gateway callback arrives
	// for a payment already in a terminal state.
	ErrPaymentAlreadySettled = errors.New("payment already settled")

	// ErrInvalidRating is returned when the rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidReviewType is returned for an unknown review type.
	ErrInvalidReviewType = errors.New("invalid review type")

	// ErrRideNotCompleted is returned when reviewing a ride request that is
	// not completed.
	ErrRideNotCompleted = errors.New("ride request not completed")

	// ErrNotRideParticipant is returned when the reviewer did not take part
	// in the ride request.
	ErrNotRideParticipant = errors.New("not a participant of this ride request")

	// ErrReviewRoleMismatch is returned when the reviewer's side does not
	// match the review type.
	ErrReviewRoleMismatch = errors.New("review type does not match reviewer role")

	// ErrAlreadyReviewed is returned when the reviewer already reviewed this
	// ride request.
	ErrAlreadyReviewed = errors.New("already reviewed this ride request")

	// ErrNotReviewOwner is returned when editing someone else's review.
	ErrNotReviewOwner = errors.New("not the owner of this review")

	// ErrRequestLocked is returned when another operation holds the request
	// lock.
	ErrRequestLocked = errors.New("ride request is being processed")
)
