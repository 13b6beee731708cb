// Package random implements the weak, non-cryptographic pseudo-random
// helper backing the random()/random_range() built-ins (§6, §13),
// grounded on original_source's random/mod.rs collaborator.
package random

import "math/rand/v2"

// Float64 returns a pseudo-random value in [0, 1).
func Float64() float64 { return rand.Float64() }

// Range returns a pseudo-random value in [min, max).
func Range(min, max float64) float64 { return Float64()*(max-min) + min }
