package config

import "go.uber.org/zap"

// NewLogger returns a production logger in production and a development
// logger otherwise.
func (c *Config) NewLogger() (*zap.Logger, error) {
	if c.Environment == Production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
