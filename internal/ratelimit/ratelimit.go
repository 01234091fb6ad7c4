// Package ratelimit gates how often a caller may invoke an operation class
// within a sliding one-minute window.
package ratelimit

import (
	"context"
	"time"
)

// Class names a group of operations that share a limit.
type Class string

const (
	ClassSignup  Class = "signup"
	ClassLogin   Class = "login"
	ClassRefresh Class = "refresh"
	ClassMutate  Class = "mutate"
	ClassRead    Class = "read"
	ClassBulk    Class = "bulk"
	ClassBudget  Class = "budget"
)

// Window is the length of the sliding window every limit is expressed in.
const Window = time.Minute

// Limits maps each class to the number of calls allowed per Window.
type Limits map[Class]int

// DefaultLimits returns the per-minute allowances used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		ClassSignup:  5,
		ClassLogin:   10,
		ClassRefresh: 20,
		ClassMutate:  30,
		ClassRead:    60,
		ClassBulk:    10,
		ClassBudget:  20,
	}
}

// LimitsFromConfig builds Limits from a class-name keyed map, falling back to
// the defaults for classes it does not mention.
func LimitsFromConfig(m map[string]int) Limits {
	limits := DefaultLimits()
	for name, n := range m {
		if n > 0 {
			limits[Class(name)] = n
		}
	}
	return limits
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a call identified by (class, key) may proceed.
// A rejected call does not consume allowance.
type Limiter interface {
	Allow(ctx context.Context, class Class, key string) (Decision, error)
}

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time
