package services

import "errors"

// Business outcomes the handlers translate into HTTP statuses. None of
// these are fatal; each request fails independently.
var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password. Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUsernameTaken is returned when registering an already-used username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrUnauthenticated signals a missing, malformed, expired or unknown
	// token. It is a normal outcome, not an exceptional one.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotInCart is returned when removing an item the cart does not hold.
	ErrNotInCart = errors.New("item not in cart")

	// ErrInvalidQuantity rejects non-positive quantities before any mutation.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrNegativePrice rejects item writes with a price below 0.00.
	ErrNegativePrice = errors.New("price must not be negative")
)
