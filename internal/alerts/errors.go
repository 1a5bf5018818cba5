package alerts

import "errors"

// Service errors surfaced to callers. Handlers map these onto API error
// responses; anything else is treated as an internal store failure.
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrAlertNotFound        = errors.New("alert not found")
	ErrInvalidVisibility    = errors.New("invalid visibility type")
)
