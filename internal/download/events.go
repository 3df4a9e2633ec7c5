package download

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l ProgressLevel) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

func (l ProgressLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelVerbose:
		return zapcore.DebugLevel
	case LevelWarning:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

func (m *Manager) progress(event ProgressEvent) {
	if ce := m.logger.Check(event.Level.zapLevel(), event.Message); ce != nil {
		ce.Write(zap.String("run", m.runID), zap.Stringer("kind", event.Level))
	}
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
