package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// OperationTimer returns a func that logs how long operation took. Runs
// longer than slow are logged as warnings.
//
//	defer utils.OperationTimer("backup", time.Minute, log)()
func OperationTimer(operation string, slow time.Duration, log zerolog.Logger) func() {
	start := time.Now()

	return func() {
		duration := time.Since(start)

		if slow > 0 && duration > slow {
			log.Warn().
				Str("operation", operation).
				Dur("duration", duration).
				Msg("Slow operation detected")
			return
		}

		log.Debug().
			Str("operation", operation).
			Dur("duration_ms", duration).
			Msg("Operation completed")
	}
}
