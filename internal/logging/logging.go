package logging

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// New instantiates a sugared zap logger. Mode selects the encoder:
// "prod"/"production" emits JSON, anything else the development console format.
func New(mode string) (*zap.SugaredLogger, error) {
	var config zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		config = zap.NewProductionConfig()
	default:
		config = zap.NewDevelopmentConfig()
	}

	logger, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	return logger.Sugar(), nil
}
