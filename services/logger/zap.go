package logsvc

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger builds the log sink for env: JSON in PROD, colored console otherwise.
// Entries go to outputPaths (zap sink URLs or file paths), stdout by default.
func NewZapLogger(env string, outputPaths ...string) (*zap.Logger, error) {
	var config zap.Config

	if env == "PROD" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.OutputPaths = []string{"stdout"}
	if len(outputPaths) > 0 {
		config.OutputPaths = outputPaths
	}

	return config.Build()
}
