//go:build !linux

package localinput

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/frudas24/touchsampler/internal/touch"
)

// Source is unavailable outside linux.
type Source struct{}

// Open always fails outside linux.
func Open(path string, log logrus.FieldLogger) (*Source, error) {
	_, _ = path, log
	return nil, ErrUnsupported
}

// Name returns an empty string.
func (s *Source) Name() string { return "" }

// Protocol returns ProtocolA.
func (s *Source) Protocol() touch.Protocol { return touch.ProtocolA }

// Run always fails outside linux.
func (s *Source) Run(ctx context.Context, sink func(line string)) error {
	_, _ = ctx, sink
	return ErrUnsupported
}

// Close is a no-op.
func (s *Source) Close() error { return nil }
