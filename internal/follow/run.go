package follow

import "context"

// Run follows path and calls fn for every line, closing the file however
// following ends: ctx done, fn failing, or a panic unwinding through fn.
// It returns the error that ended following.
func Run(ctx context.Context, path string, fn func(line string) error, opts ...Option) (err error) {
	t, err := New(path, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := t.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return t.Follow(ctx, fn)
}
