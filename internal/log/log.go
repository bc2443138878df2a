// Package log wraps a package-level zap logger for the streamflow services and tools.
package log

import (
	"fmt"

	"go.uber.org/zap"
)

var base *zap.Logger
var sugar *zap.SugaredLogger

// Init builds the package logger. Debug mode uses zap's human readable
// development encoder; otherwise JSON production output is used.
func Init(debug bool) error {
	var (
		zl  *zap.Logger
		err error
	)
	if debug {
		zl, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zl, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}

	base = zl
	sugar = zl.Sugar()
	return nil
}

// InitNop discards all log output. Tests use it.
func InitNop() {
	base = zap.NewNop()
	sugar = base.Sugar()
}

// Logger returns the sugared logger, creating a production logger on first use
func Logger() *zap.SugaredLogger {
	if sugar == nil {
		base, _ = zap.NewProduction(zap.AddCallerSkip(1))
		sugar = base.Sugar()
	}
	return sugar
}

// Sync flushes any buffered log entries
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}

func Debugw(msg string, keysAndValues ...interface{}) {
	Logger().Debugw(msg, keysAndValues...)
}

func Info(args ...interface{}) {
	Logger().Info(args...)
}

func Infof(template string, args ...interface{}) {
	Logger().Infof(template, args...)
}

func Warnf(template string, args ...interface{}) {
	Logger().Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	Logger().Errorf(template, args...)
}
