//go:build linux || darwin

package flagstore

import (
	"context"
	"errors"

	"golang.org/x/sys/unix"

	derrors "github.com/Aman-CERP/dropignore/internal/errors"
)

// XattrStore keeps the flag in an extended attribute on the path itself.
// Symlinks are followed.
type XattrStore struct {
	attr string
}

// Ensure XattrStore implements Store interface.
var _ Store = (*XattrStore)(nil)

// NewXattrStore creates a store using attr, or DefaultAttribute when empty.
func NewXattrStore(attr string) (*XattrStore, error) {
	if attr == "" {
		attr = DefaultAttribute
	}
	return &XattrStore{attr: attr}, nil
}

// Attribute returns the attribute name in use.
func (s *XattrStore) Attribute() string {
	return s.attr
}

// Set writes the attribute.
func (s *XattrStore) Set(_ context.Context, path string) error {
	if err := unix.Setxattr(path, s.attr, []byte(flagValue), 0); err != nil {
		return s.wrap("set", path, err)
	}
	return nil
}

// Clear removes the attribute if present.
func (s *XattrStore) Clear(ctx context.Context, path string) error {
	present, err := s.Query(ctx, path)
	if err != nil {
		return err
	}
	if !present {
		return nil
	}
	if err := unix.Removexattr(path, s.attr); err != nil && !errors.Is(err, errNoAttr) {
		return s.wrap("clear", path, err)
	}
	return nil
}

// Query reports whether the attribute is present. Its value is not checked.
func (s *XattrStore) Query(_ context.Context, path string) (bool, error) {
	_, err := unix.Getxattr(path, s.attr, nil)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errNoAttr):
		return false, nil
	default:
		return false, s.wrap("query", path, err)
	}
}

// Close is a no-op.
func (s *XattrStore) Close() error {
	return nil
}

func (s *XattrStore) wrap(op, path string, err error) error {
	if errors.Is(err, unix.ENOTSUP) || errors.Is(err, unix.EOPNOTSUPP) {
		return derrors.New(derrors.ErrCodeXattrUnsupported,
			"extended attributes are not supported here", err).
			WithDetail("op", op).
			WithDetail("path", path).
			WithSuggestion("Use --store sqlite or --store bolt on this filesystem")
	}
	return derrors.FlagStoreError(op, path, err).WithDetail("attribute", s.attr)
}
