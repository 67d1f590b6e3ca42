package paperlayout

import "github.com/pkg/errors"

var (
	// ErrNoPageSource is returned when ingestion has nothing to read from.
	ErrNoPageSource = errors.New("no page source")

	// ErrInvalidRect is returned when the page source yields a rectangle with
	// inverted or NaN coordinates.
	ErrInvalidRect = errors.New("invalid rectangle")

	// ErrCollaboratorUnavailable wraps failures of the NLP, detection and
	// lookup collaborators. The pipeline logs and degrades on these.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

// unavailable marks err as a collaborator failure.
func unavailable(err error, what string) error {
	return errors.Wrapf(ErrCollaboratorUnavailable, "%s: %v", what, err)
}
