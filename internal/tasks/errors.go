package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/moodset/internal/shared"
)

// PhaseError records which phase and which input (phrase, playlist id, or batch range) a remote call failed for.
type PhaseError struct {
	Phase Phase
	Key   string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s failed for %q: %v", e.Phase, e.Key, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// fatal reports whether err must abort the run even under [Skip].
func fatal(parent context.Context, err error) bool {
	return parent.Err() != nil || errors.Is(err, shared.ErrAuthFailed)
}
