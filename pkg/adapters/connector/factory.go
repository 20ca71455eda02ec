package connector

import (
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/models"
)

// Factory builds a connector for a profile's backend kind. Inject the
// interface so tests can swap in fakes.
type Factory interface {
	New(profile *models.ConnectionProfile) (SourceConnector, error)
}

type registryFactory struct {
	logger *zap.Logger
}

// NewFactory returns a factory backed by the registry of compiled-in
// backends.
func NewFactory(logger *zap.Logger) Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &registryFactory{logger: logger}
}

// New selects the connector implementation once, from the profile's
// backend kind. Call sites downstream never branch on the kind again.
func (f *registryFactory) New(profile *models.ConnectionProfile) (SourceConnector, error) {
	ctor := getConstructor(profile.SourceKind)
	if ctor == nil {
		return nil, apperrors.Newf(apperrors.KindMissingParameters,
			"unsupported source kind: %s (supported: file, relational, document)", profile.SourceKind)
	}
	return ctor(profile, f.logger), nil
}

var _ Factory = (*registryFactory)(nil)
