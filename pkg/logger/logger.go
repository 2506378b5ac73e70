package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	return [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}[l]
}

// ParseLevel maps a config string to a LogLevel, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Logger is a structured logger
type Logger struct {
	level      LogLevel
	writer     io.Writer
	structured bool // JSON output if true
}

type entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

var defaultLogger = NewLogger(INFO, os.Stdout, false)

// NewLogger creates a new logger instance
func NewLogger(level LogLevel, writer io.Writer, structured bool) *Logger {
	return &Logger{level: level, writer: writer, structured: structured}
}

// SetDefault sets the default logger
func SetDefault(l *Logger) {
	defaultLogger = l
}

func (l *Logger) log(level LogLevel, message string, err error, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   message,
		Fields:    fields,
	}
	if err != nil {
		e.Error = err.Error()
	}

	if l.structured {
		data, _ := json.Marshal(e)
		fmt.Fprintln(l.writer, string(data))
		return
	}

	msg := fmt.Sprintf("[%s] %s: %s", e.Timestamp, e.Level, e.Message)
	if len(e.Fields) > 0 {
		msg += fmt.Sprintf(" %+v", e.Fields)
	}
	if e.Error != "" {
		msg += fmt.Sprintf(" error=%s", e.Error)
	}
	fmt.Fprintln(l.writer, msg)
}

// Convenience methods for the default logger

func Debug(message string, fields map[string]interface{}) {
	defaultLogger.log(DEBUG, message, nil, fields)
}

func Info(message string, fields map[string]interface{}) {
	defaultLogger.log(INFO, message, nil, fields)
}

func Warn(message string, fields map[string]interface{}) {
	defaultLogger.log(WARN, message, nil, fields)
}

func Error(message string, err error, fields map[string]interface{}) {
	defaultLogger.log(ERROR, message, err, fields)
}

func Fatal(message string, err error, fields map[string]interface{}) {
	defaultLogger.log(FATAL, message, err, fields)
	os.Exit(1)
}
