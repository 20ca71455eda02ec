package mongo

import (
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/adapters/connector"
	"github.com/vizquery/vizquery-engine/pkg/models"
)

func init() {
	connector.Register(models.SourceKindDocument, func(profile *models.ConnectionProfile, logger *zap.Logger) connector.SourceConnector {
		return New(profile, logger)
	})
}
