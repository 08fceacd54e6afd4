package model

import "errors"

var (
	// Session related errors
	ErrAuthFailure        = errors.New("authentication failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no active session")
	ErrDecode             = errors.New("token cannot be decoded")

	// Inventory and cart related errors
	ErrSweetNotFound = errors.New("sweet not found")
	ErrOutOfStock    = errors.New("sweet is out of stock")
	ErrEmptyCart     = errors.New("cart is empty")

	// Mutation related errors
	ErrMutationFailure = errors.New("mutation failed")

	// Permission/Access related errors
	ErrForbidden = errors.New("forbidden")

	// Token store errors
	ErrKeyNotFound = errors.New("key not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
