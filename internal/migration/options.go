package migration

import (
	"github.com/desertwitch/gomigrate/internal/configuration"
)

const (
	// DefaultMaxExternalRetries is the default of [Options.MaxExternalRetries].
	DefaultMaxExternalRetries = 2

	// DefaultConsecutiveFailureLimit is the default of
	// [Options.ConsecutiveFailureLimit].
	DefaultConsecutiveFailureLimit = 10

	// DefaultLoggedErrorCapacity is the default of
	// [Options.LoggedErrorCapacity].
	DefaultLoggedErrorCapacity = 10

	// DefaultConflictResolutionAttempts is the default of
	// [Options.ConflictResolutionAttempts].
	DefaultConflictResolutionAttempts = 5
)

// Options are the tunable limits of a migration.
type Options struct {
	// MaxExternalRetries is the amount of additional full passes over the
	// source after an unsuccessful one.
	MaxExternalRetries int

	// ConsecutiveFailureLimit is the amount of failures without progress in
	// between after which a migration is terminated.
	ConsecutiveFailureLimit int

	// LoggedErrorCapacity is the amount of recent errors kept for reporting.
	LoggedErrorCapacity int

	// ConflictResolutionAttempts is the amount of alternative names tried when
	// the conflict area already holds a file of the same name.
	ConflictResolutionAttempts int
}

// DefaultOptions returns the default [Options].
func DefaultOptions() Options {
	return Options{
		MaxExternalRetries:         DefaultMaxExternalRetries,
		ConsecutiveFailureLimit:    DefaultConsecutiveFailureLimit,
		LoggedErrorCapacity:        DefaultLoggedErrorCapacity,
		ConflictResolutionAttempts: DefaultConflictResolutionAttempts,
	}
}

// OptionsFromTunables returns the default [Options] overridden by all set and
// valid values of t.
func OptionsFromTunables(t configuration.Tunables) Options {
	opts := DefaultOptions()

	if t.MaxRetries >= 0 {
		opts.MaxExternalRetries = t.MaxRetries
	}
	if t.FailureLimit > 0 {
		opts.ConsecutiveFailureLimit = t.FailureLimit
	}
	if t.ErrorCapacity > 0 {
		opts.LoggedErrorCapacity = t.ErrorCapacity
	}
	if t.ConflictAttempts >= 0 {
		opts.ConflictResolutionAttempts = t.ConflictAttempts
	}

	return opts
}

func (o Options) normalized() Options {
	def := DefaultOptions()

	if o.MaxExternalRetries < 0 {
		o.MaxExternalRetries = def.MaxExternalRetries
	}
	if o.ConsecutiveFailureLimit <= 0 {
		o.ConsecutiveFailureLimit = def.ConsecutiveFailureLimit
	}
	if o.LoggedErrorCapacity <= 0 {
		o.LoggedErrorCapacity = def.LoggedErrorCapacity
	}
	if o.ConflictResolutionAttempts < 0 {
		o.ConflictResolutionAttempts = def.ConflictResolutionAttempts
	}

	return o
}
