package main

import (
	"strings"

	"go.uber.org/zap"

	cfg "placeshare/src/configuration"
	server "placeshare/src/server"
)

func main() {
	config := cfg.ReadProperties()

	logger := newLogger(config.LogLevel)
	defer logger.Sync()

	if err := server.RunServer(config, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if strings.EqualFold(level, "DEBUG") {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
