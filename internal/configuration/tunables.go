package configuration

const (
	// KeyMaxRetries overrides the number of additional full migration passes.
	KeyMaxRetries = "MIGRATION_MAX_RETRIES"

	// KeyFailureLimit overrides the consecutive failure circuit breaker.
	KeyFailureLimit = "MIGRATION_FAILURE_LIMIT"

	// KeyErrorCapacity overrides the number of retained migration errors.
	KeyErrorCapacity = "MIGRATION_ERROR_CAPACITY"

	// KeyConflictAttempts overrides the number of alternative names tried when
	// moving a conflicting file into the conflict area.
	KeyConflictAttempts = "MIGRATION_CONFLICT_ATTEMPTS"
)

// Tunables holds optional overrides for the migration engine constants. A
// value below zero means the engine default is to be used.
type Tunables struct {
	MaxRetries       int
	FailureLimit     int
	ErrorCapacity    int
	ConflictAttempts int
}

// ReadTunables reads the [Tunables] from the state file. Unset or invalid
// values are returned as -1.
func (c *Handler) ReadTunables(filename string) (Tunables, error) {
	envMap, err := c.ReadGeneric(filename)
	if err != nil {
		return Tunables{-1, -1, -1, -1}, err
	}

	return Tunables{
		MaxRetries:       c.MapKeyToInt(envMap, KeyMaxRetries),
		FailureLimit:     c.MapKeyToInt(envMap, KeyFailureLimit),
		ErrorCapacity:    c.MapKeyToInt(envMap, KeyErrorCapacity),
		ConflictAttempts: c.MapKeyToInt(envMap, KeyConflictAttempts),
	}, nil
}
