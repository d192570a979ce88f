// Package configuration reads and writes the persisted state of a migration,
// which is kept in a Unix-type (dotenv) key-value file.
package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
)

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
	Write(envMap map[string]string, filename string) error
}

// Handler is the principal implementation for the configuration services.
type Handler struct {
	GenericHandler genericConfigProvider
}

// NewHandler returns a pointer to a new configuration [Handler].
func NewHandler(genericHandler genericConfigProvider) *Handler {
	return &Handler{
		GenericHandler: genericHandler,
	}
}

// ReadGeneric reads generic Unix-type configuration files into a map. A file
// that does not exist yet reads as an empty map.
func (c *Handler) ReadGeneric(filenames ...string) (map[string]string, error) {
	data, err := c.GenericHandler.Read(filenames...)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}

		return nil, fmt.Errorf("(config) %w", err)
	}

	return data, nil
}

// WriteGeneric writes a map into a Unix-type configuration file.
func (c *Handler) WriteGeneric(envMap map[string]string, filename string) error {
	if err := c.GenericHandler.Write(envMap, filename); err != nil {
		return fmt.Errorf("(config) %w", err)
	}

	return nil
}

// MapKeyToString returns the value for key, or an empty string if unset.
func (c *Handler) MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return value
	}

	return ""
}

// MapKeyToInt returns the integer value for key, or -1 if it is unset or not
// an integer.
func (c *Handler) MapKeyToInt(envMap map[string]string, key string) int {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return -1
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}

	return intValue
}
