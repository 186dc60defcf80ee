package framerange

import (
	"context"
	"errors"
	"fmt"
)

// Attribute names every range-source candidate exposes.
const (
	AttrHead = "head"
	AttrTail = "tail"
)

// AttributeReader reads one numeric attribute from a candidate.
type AttributeReader interface {
	Read(ctx context.Context, id, attr string) (int, error)
}

// ReaderFunc adapts a function to the AttributeReader interface.
type ReaderFunc func(ctx context.Context, id, attr string) (int, error)

func (f ReaderFunc) Read(ctx context.Context, id, attr string) (int, error) {
	return f(ctx, id, attr)
}

// Chain tries each reader in order and returns the first success. When every
// reader fails the errors are aggregated so the caller sees the whole story.
type Chain []AttributeReader

func (c Chain) Read(ctx context.Context, id, attr string) (int, error) {
	if len(c) == 0 {
		return 0, fmt.Errorf("no attribute readers configured")
	}
	var failures []error
	for _, reader := range c {
		value, err := reader.Read(ctx, id, attr)
		if err == nil {
			return value, nil
		}
		failures = append(failures, err)
	}
	return 0, fmt.Errorf("read %s.%s: %w", id, attr, errors.Join(failures...))
}
