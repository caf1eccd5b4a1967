//go:build wireinject
// +build wireinject

package di

import (
	"NeoFin/pkg/config"
	"NeoFin/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		coreSet,

		// Audit sink
		ProvideKafkaConsumer,

		// HTTP
		ProvideRateLimiter,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeAssistant wires the use cases for the command-line front-end.
func InitializeAssistant(cfg *config.Config) (*Assistant, error) {
	wire.Build(
		coreSet,
		ProvideAssistant,
	)
	return &Assistant{}, nil
}
