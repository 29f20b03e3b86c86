package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnableDBTracing registers the otelgorm plugin so every query shows up
// as a span under the active request trace. Query variables are kept out
// of span attributes.
func EnableDBTracing(db *gorm.DB, dbName string, logger *zap.Logger) error {
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}
	logger.Info("database tracing enabled", zap.String("db", dbName))
	return nil
}
