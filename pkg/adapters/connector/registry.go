package connector

import (
	"sync"

	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/models"
)

// Constructor builds a connector for one backend kind from a profile.
type Constructor func(profile *models.ConnectionProfile, logger *zap.Logger) SourceConnector

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Constructor)
)

// Register is called by each backend package's init().
func Register(kind string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = ctor
}

// RegisteredKinds returns the backend kinds compiled in.
func RegisteredKinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	return kinds
}

func getConstructor(kind string) Constructor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[kind]
}
