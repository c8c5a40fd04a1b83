// Package application defines the shape shared by every stock operation:
// a use case takes one command and returns one result.
package application

import "context"

// UseCase is implemented by all stock operations. Execute must be safe for
// concurrent use; callers pass per-call state through the command and ctx.
type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}
