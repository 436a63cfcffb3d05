package tier

import "fmt"

// InvalidateError is returned by Invalidate when both the generation bump
// and the provider delete failed, so the stale entry may still be served.
// errors.Is and errors.As see through to both causes.
type InvalidateError struct {
	Key     string // storage key
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	return fmt.Sprintf("tier: invalidate %s: gen bump: %v; delete: %v", e.Key, e.BumpErr, e.DelErr)
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	for _, err := range []error{e.BumpErr, e.DelErr} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
