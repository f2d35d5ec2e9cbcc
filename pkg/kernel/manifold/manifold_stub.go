//go:build !manifold

// Package manifold binds the Manifold C library as an alternative preview
// kernel. Without the "manifold" build tag New always fails with
// ErrUnavailable and callers fall back to sdfx.
package manifold

import (
	"errors"

	"github.com/chazu/strut/pkg/kernel"
)

// ErrUnavailable is returned by New when the binary was built without
// Manifold support.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

// New reports ErrUnavailable.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
