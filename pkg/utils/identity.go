package utils

import (
	"fmt"
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/google/uuid"
)

// DefaultRunnerId derives a runner identity that is stable for this
// machine and process. When no machine id is available a random id is
// used instead.
func DefaultRunnerId() string {
	if id, err := machineid.ProtectedID("jolt-testrunner"); err == nil {
		return fmt.Sprintf("%s-%d", id[:12], os.Getpid())
	}

	uid, _ := uuid.NewRandom()
	return uid.String()
}

// IndexedRunnerId returns the identity of the n:th runner sharing one
// process, or id itself when only one runner is used.
func IndexedRunnerId(id string, n, count int) string {
	if count <= 1 {
		return id
	}
	return fmt.Sprintf("%s.%d", id, n)
}
