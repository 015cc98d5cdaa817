package hbc

import (
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/hbc/bytecode"
)

// LogObserver writes decode events to a zerolog logger at debug level.
// Failed instruction decodes are logged at warn level.
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver returns an observer that logs to logger.
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (l *LogObserver) OnRegion(e bytecode.RegionEvent) {
	l.logger.Debug().
		Str("region", e.Name).
		Int("offset", e.Offset).
		Int("size", e.Size).
		Int("count", e.Count).
		Dur("took", e.Duration).
		Msg("read region")
}

func (l *LogObserver) OnFunction(e bytecode.FunctionEvent) {
	l.logger.Debug().
		Int("function", e.ID).
		Str("name", e.Name).
		Str("form", e.Form.String()).
		Dur("took", e.Duration).
		Msg("resolved function")
}

func (l *LogObserver) OnDecode(e bytecode.DecodeEvent) {
	if e.Err != nil {
		l.logger.Warn().Err(e.Err).Int("function", e.Function).Msg("decode instructions")
		return
	}
	l.logger.Debug().
		Int("function", e.Function).
		Int("instructions", e.Instructions).
		Int("bytes", e.Bytes).
		Dur("took", e.Duration).
		Msg("decoded instructions")
}

var _ bytecode.Observer = (*LogObserver)(nil)
