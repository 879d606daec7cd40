package entity

import "errors"

var (
	// Event errors
	ErrEventNotFound = errors.New("event not found")
	ErrEventPast     = errors.New("event has already started")
	ErrDuplicateSlug = errors.New("event slug already in use")

	// RSVP errors
	ErrNotEnoughSpots = errors.New("not enough remaining spots")
	ErrAlreadyRSVPed  = errors.New("email already has an rsvp for this event")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserBlocked        = errors.New("user account is blocked")
	ErrInvalidRole        = errors.New("invalid user role")
	ErrStaffNotFound      = errors.New("staff user not found")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden operation")
)
