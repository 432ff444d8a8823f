package executor

import "context"

// Executor runs external commands and returns their standard output.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error)
}
