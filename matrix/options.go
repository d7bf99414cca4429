// SPDX-License-Identifier: MIT

package matrix

import "math"

// Defaults.
const (
	// DefaultEpsilon is the tolerance used by structural checks.
	DefaultEpsilon = 1e-9

	// DefaultValidateNaNInf rejects non-finite susceptances during assembly.
	DefaultValidateNaNInf = true
)

const panicEpsilonInvalid = "matrix: WithEpsilon: eps must be finite, non-negative"

// Option mutates Options. Constructors panic only on nonsensical values.
type Option func(*Options)

// Options holds the resolved assembly policy.
type Options struct {
	eps            float64
	validateNaNInf bool
}

// WithEpsilon sets the tolerance of the post-assembly structural checks.
// Panics if eps is negative, NaN or Inf.
func WithEpsilon(eps float64) Option {
	if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		panic(panicEpsilonInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithValidateNaNInf toggles rejection of non-finite susceptances.
func WithValidateNaNInf(on bool) Option {
	return func(o *Options) { o.validateNaNInf = on }
}

func gatherOptions(opts ...Option) Options {
	o := Options{eps: DefaultEpsilon, validateNaNInf: DefaultValidateNaNInf}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
