package service

import "errors"

var (
	// ErrForbidden means the caller is authenticated but lacks the required
	// access level for the tenant.
	ErrForbidden = errors.New("insufficient tenant access")

	// ErrInvalidInput means a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means the requested drop does not exist.
	ErrNotFound = errors.New("drop not found")

	// ErrCrossTenant means the drop exists but belongs to a different tenant
	// than the caller's. Reported distinctly from ErrNotFound so handlers can
	// respond 403 to id-guessing across tenants.
	ErrCrossTenant = errors.New("drop does not belong to this tenant")
)
