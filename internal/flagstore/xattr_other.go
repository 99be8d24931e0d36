//go:build !linux && !darwin

package flagstore

import (
	"context"
	"runtime"

	derrors "github.com/Aman-CERP/dropignore/internal/errors"
)

// DefaultAttribute is the extended attribute the Dropbox client reads.
const DefaultAttribute = "com.dropbox.ignored"

// XattrStore is unavailable on this platform.
type XattrStore struct{}

// NewXattrStore always fails on this platform.
func NewXattrStore(string) (*XattrStore, error) {
	return nil, unsupported()
}

// Attribute returns DefaultAttribute.
func (s *XattrStore) Attribute() string { return DefaultAttribute }

// Set always fails on this platform.
func (s *XattrStore) Set(context.Context, string) error { return unsupported() }

// Clear always fails on this platform.
func (s *XattrStore) Clear(context.Context, string) error { return unsupported() }

// Query always fails on this platform.
func (s *XattrStore) Query(context.Context, string) (bool, error) { return false, unsupported() }

// Close is a no-op.
func (s *XattrStore) Close() error { return nil }

func unsupported() error {
	return derrors.New(derrors.ErrCodeXattrUnsupported,
		"extended attribute flags are not supported on "+runtime.GOOS, nil).
		WithSuggestion("Use --store sqlite or --store bolt")
}
