package env

import (
	"fmt"
	"sync"
)

// VarLazy is a concurrency-safe lazy resolver for auth values tied to an Env.
// It implements fmt.Stringer so it can be used directly in template rendering:
// the first case that references {{.auth.name}} triggers acquisition, and the
// result is cached for the rest of the run.
type VarLazy struct {
	once     sync.Once
	res      string
	err      error
	env      *Env
	resolver func(*Env) (string, error)
}

// Value forces acquisition (once) and returns the resolved value and any acquisition error.
func (l *VarLazy) Value() (string, error) {
	_ = l.String()
	return l.res, l.err
}

func (l *VarLazy) String() string {
	l.once.Do(func() {
		if l.resolver == nil {
			l.res = ""
			return
		}
		v, err := l.resolver(l.env)
		if err != nil {
			// keep empty on error; Render paths just produce an empty value
			l.err = err
			l.res = ""
			return
		}
		l.res = v
	})
	return l.res
}

var _ fmt.Stringer = (*VarLazy)(nil)

// MakeLazy constructs a VarLazy bound to this Env using the provided resolver.
func (e *Env) MakeLazy(resolver func(*Env) (string, error)) *VarLazy {
	return &VarLazy{env: e, resolver: resolver}
}
