package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrClientNotFound = errors.New("client not found")
	ErrClientExists   = errors.New("client already exists")

	ErrPlanNotFound = errors.New("plan not found")
	ErrPlanExists   = errors.New("plan already exists")
	ErrPlanInUse    = errors.New("plan is referenced by existing clients")

	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrInvalidPermission = errors.New("unknown permission")

	// Admin invariants, enforced on every user mutation.
	ErrLastAdmin          = errors.New("cannot remove the last administrator")
	ErrAdminNoPermissions = errors.New("an administrator must keep at least one permission")
	ErrSeedNotConfirmed   = errors.New("default administrator could not be seeded")
)
