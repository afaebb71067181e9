package database

import (
	"time"

	"github.com/rs/zerolog"
)

// LogSink adapts zerolog to the driver's options.LogSink interface.
//
// The driver reports level 1 for info and 2 for debug. Succeeded commands
// whose duration exceeds the slow threshold are promoted to warnings.
type LogSink struct {
	logger        zerolog.Logger
	slowThreshold time.Duration
}

// NewLogSink returns a sink that writes with the "mongo" component field.
func NewLogSink(logger *zerolog.Logger, slowThreshold time.Duration) *LogSink {
	return &LogSink{
		logger:        logger.With().Str("component", "mongo").Logger(),
		slowThreshold: slowThreshold,
	}
}

// Info implements options.LogSink.
func (s *LogSink) Info(level int, message string, keysAndValues ...interface{}) {
	event := s.logger.Debug()
	if level <= 1 {
		event = s.logger.Info()
	}
	if s.isSlow(keysAndValues) {
		event = s.logger.Warn().Bool("slow", true)
	}
	event.Fields(keysAndValues).Msg(message)
}

// Error implements options.LogSink.
func (s *LogSink) Error(err error, message string, keysAndValues ...interface{}) {
	s.logger.Error().Err(err).Fields(keysAndValues).Msg(message)
}

// isSlow looks for the durationMS key the driver attaches to command
// succeeded/failed messages.
func (s *LogSink) isSlow(keysAndValues []interface{}) bool {
	if s.slowThreshold <= 0 {
		return false
	}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok || key != "durationMS" {
			continue
		}
		var ms float64
		switch v := keysAndValues[i+1].(type) {
		case int64:
			ms = float64(v)
		case int:
			ms = float64(v)
		case float64:
			ms = v
		default:
			return false
		}
		return time.Duration(ms*float64(time.Millisecond)) > s.slowThreshold
	}
	return false
}
