package config

import (
	"fmt"

	"go.uber.org/zap"
)

// setLogger builds the zap logger for the given environment name
func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "development":
		return zap.NewDevelopment()
	case "production":
		return zap.NewProduction()
	case "local", "":
		return zap.NewExample(), nil
	default:
		return nil, fmt.Errorf("unknown environment %q", env)
	}
}
