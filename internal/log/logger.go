package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service-wide logger. Development gets a colored console
// writer at debug level; production logs at info with color disabled.
func New(environment string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    environment == "production",
	}

	level := zerolog.InfoLevel
	if environment != "production" {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	return zerolog.New(output).With().
		Timestamp().
		Str("service", "storefront").
		Str("env", environment).
		Logger()
}
