// Package logging builds the zap logger shared by the server and the admin CLI.
package logging

import "go.uber.org/zap"

// New returns a JSON production logger at info level when env is "production",
// and a console development logger at debug level otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		return config.Build()
	}

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	return config.Build()
}
