package storage

import (
	"fmt"
	"io"
)

// Open builds a store for the configured driver. The returned closer is a no-op
// for backends that hold no resources.
func Open(driver, path string) (Store, io.Closer, error) {
	switch driver {
	case "memory":
		return NewMemory(), io.NopCloser(nil), nil
	case "file":
		f, err := NewFile(path)
		if err != nil {
			return nil, nil, err
		}
		return f, io.NopCloser(nil), nil
	case "sqlite", "":
		s, err := NewSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
