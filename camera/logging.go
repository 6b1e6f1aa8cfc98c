/*
NAME
  logging.go - registry load-time diagnostic logger.

DESCRIPTION
  The only logging the camera package performs is a warning when the
  registry loader skips a malformed entry, replaces a duplicate one, or
  fails to parse the embedded registry (spec §7, §9);
  the rest of the decode path never touches a logger. SetLogger lets a
  caller redirect that single warning path; absent a call, a lazily
  built zap-over-lumberjack logger is used, matching the teacher's
  command-line tools' logging wiring (cmd/rv, cmd/looper).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package camera

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the minimal leveled-logger interface registry loading warns
// through.
type Logger interface {
	Log(level int8, msg string, args ...interface{})
}

// Registry warning level, mirroring the teacher lineage's logging levels.
const levelWarning int8 = 2

var (
	loggerOnce sync.Once
	logger     Logger
	userLogger Logger
)

// SetLogger installs l as the logger registry loading warns through,
// replacing the default zap/lumberjack logger for every warning logged
// after the call.
func SetLogger(l Logger) { userLogger = l }

// zapLogger adapts *zap.SugaredLogger to Logger.
type zapLogger struct{ s *zap.SugaredLogger }

func (z zapLogger) Log(level int8, msg string, args ...interface{}) {
	switch {
	case level >= 3:
		z.s.Errorw(msg, args...)
	case level >= 2:
		z.s.Warnw(msg, args...)
	default:
		z.s.Infow(msg, args...)
	}
}

func defaultLogger() Logger {
	fileLog := &lumberjack.Logger{
		Filename:   "camera-registry.log",
		MaxSize:    1, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(fileLog), zap.InfoLevel)
	return zapLogger{s: zap.New(core).Sugar()}
}

// warnLogger returns the logger to use for this process, building the
// default lazily on first use.
func warnLogger() Logger {
	loggerOnce.Do(func() {
		if userLogger != nil {
			logger = userLogger
		} else {
			logger = defaultLogger()
		}
	})
	if userLogger != nil {
		return userLogger
	}
	return logger
}
