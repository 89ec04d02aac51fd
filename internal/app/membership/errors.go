package membership

import "errors"

var (
	// ErrTeamNameRequired is returned when a team name is empty after trimming.
	ErrTeamNameRequired = errors.New("team name is required")

	// ErrTeamNameTaken is returned when the best-effort pre-check finds a
	// team already using the folded form of the name.
	ErrTeamNameTaken = errors.New("a team with this name already exists")

	// ErrConfirmSwitch is returned when the user already belongs to a team
	// and has not confirmed leaving it. Callers surface a confirmation
	// dialog and retry with confirmed=true.
	ErrConfirmSwitch = errors.New("joining a new team requires leaving the current one")

	// ErrTeamNotFound is returned when the target team no longer exists.
	ErrTeamNotFound = errors.New("team not found")

	// ErrAlreadyMember is returned when the user already belongs to the
	// team they are asking to join.
	ErrAlreadyMember = errors.New("already a member of this team")

	// ErrNotRecipient is returned when someone tries to resolve a
	// notification addressed to a different admin.
	ErrNotRecipient = errors.New("notification belongs to another user")

	// ErrRequestNotFound is returned when a notification points at a join
	// request that no longer exists (superseded by an earlier acceptance).
	ErrRequestNotFound = errors.New("join request no longer exists")

	// ErrRequestResolved is returned when the join request was already
	// accepted or rejected.
	ErrRequestResolved = errors.New("join request already resolved")
)
