package logger

import "go.uber.org/zap"

// New builds the application logger. Development mode gets human-readable
// console output, everything else gets production JSON.
func New(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
