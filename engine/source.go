package engine

import "context"

// ProgramSource is an interface that defines the contract for program sources.
type ProgramSource interface {
	Name() string
	Read(ctx context.Context) (string, error)
}
