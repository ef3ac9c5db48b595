//go:build go1.21

// Package xflag provides small generic conveniences over the standard
// flag package, adopted from the teacher's internal/xflag.
package xflag

import (
	"flag"
	"sync"
)

var parsed = sync.OnceValue(func() map[string]struct{} {
	m := make(map[string]struct{})
	flag.Visit(func(f *flag.Flag) { m[f.Name] = struct{}{} })
	return m
})

// Func is like [flag.Func], but avoids the need for an init func by
// allocating its own storage for the return value.
func Func[T any](name, usage string, fn func(string) (T, error)) *T {
	v := new(T)
	flag.Func(name, usage, func(s string) (err error) {
		*v, err = fn(s)
		return err
	})
	return v
}

// Parsed returns whether the given flag was parsed.
func Parsed(name string) bool {
	if !flag.Parsed() {
		return false
	}
	_, ok := parsed()[name]
	return ok
}
