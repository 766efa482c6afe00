// Package memory implementa los repositorios de usuarios, clients y refresh
// tokens en memoria. Pensado para desarrollo, tests y despliegues de un solo nodo:
// el estado se pierde al reiniciar.
package memory

import "time"

// Option configura los stores en memoria.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock inyecta el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
