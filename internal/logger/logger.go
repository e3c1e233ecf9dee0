package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global structured logger.
var Log *zap.Logger

// Sugar is the printf-style companion for startup and background tasks.
var Sugar *zap.SugaredLogger

func init() {
	// No-op logger until Initialize runs; keeps library code and tests safe.
	Log = zap.NewNop()
	Sugar = Log.Sugar()
}

// Initialize sets up zap with console output plus a rotating JSON file.
// logLevel is one of "debug", "info", "warn", "error" (default "info").
func Initialize(logLevel, logFile string) error {
	if logFile == "" {
		logFile = "server.log"
	}

	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     7, // days
		Compress:   true,
	})

	level := parseLogLevel(logLevel)

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(os.Stdout),
		level,
	)

	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), fileWriter, level)

	Log = zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	Sugar = Log.Sugar()

	return nil
}

// Close flushes buffered entries before shutdown.
func Close() error {
	if Log != nil {
		return Log.Sync()
	}
	return nil
}

func parseLogLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// WithRequestID returns the request ID field used across handler logs.
func WithRequestID(requestID string) zap.Field {
	return zap.String("request_id", requestID)
}

// WithWallet returns the wallet address field used across handler logs.
func WithWallet(wallet string) zap.Field {
	return zap.String("wallet", wallet)
}
