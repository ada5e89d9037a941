// Package pipeline - Per-frame background segmentation pipeline and its
// owning controller.
package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. No failure of any kind is fatal to the host: the worst
// observable outcome is that background removal silently stops applying for
// the affected frames.
var (
	// ErrConfiguration marks model-load and settings failures. The session is
	// left absent and renders pass frames through until the next
	// reconfiguration.
	ErrConfiguration = errors.New("configuration error")
	// ErrConversion marks unsupported frame geometry or format. The affected
	// frame passes through unmodified for that cycle only.
	ErrConversion = errors.New("conversion error")
	// ErrInference marks a transient failure of a single run. The frame
	// passes through unmodified; the session is kept, never torn down or
	// retried.
	ErrInference = errors.New("inference error")
)

// wrapKind ties a failure to its error kind so callers can match with
// errors.Is while keeping the cause text.
func wrapKind(kind, err error) error {
	return fmt.Errorf("%w: %v", kind, err)
}
