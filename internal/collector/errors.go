package collector

import (
	"fmt"

	"poolReport/internal/model"
)

// PoolError reports a pool that could not be turned into a snapshot.
type PoolError struct {
	Address string
	Version model.PoolVersion
	Err     error
}

func (e *PoolError) Error() string {
	return fmt.Sprintf("v%d pool %s: %v", e.Version, e.Address, e.Err)
}

func (e *PoolError) Unwrap() error {
	return e.Err
}
