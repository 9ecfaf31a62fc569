// Package report appends crash-run records to a JSONL file so a harness can
// review what it launched and how each run ended.
package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event is one report record.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         string    `json:"type"` // "start", "end", "error"
	Binary       string    `json:"binary"`
	Args         []string  `json:"args,omitempty"`
	Pid          int       `json:"pid,omitempty"`
	NamespacePid int32     `json:"namespace_pid,omitempty"`
	ExitCode     int       `json:"exit_code,omitempty"`
	Signal       string    `json:"signal,omitempty"`
	CoreDumped   bool      `json:"core_dumped,omitempty"`
	Duration     string    `json:"duration,omitempty"`
	Error        string    `json:"error,omitempty"`
	Outcome      string    `json:"outcome,omitempty"` // "exited", "crashed", "timeout", "error"
}

// Logger appends events to a report file, one JSON object per line.
type Logger struct {
	logFile string
	file    *os.File
	lock    sync.Mutex
	logger  *slog.Logger
}

// NewLogger opens (or creates) the report file in append mode.
func NewLogger(logFile string) (*Logger, error) {
	if logFile == "" {
		return nil, fmt.Errorf("report file path cannot be empty")
	}

	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}

	return &Logger{
		logFile: logFile,
		file:    file,
		logger:  slog.Default(),
	}, nil
}

// Log writes one event to the report file.
func (l *Logger) Log(event Event) error {
	if l.file == nil {
		return fmt.Errorf("report file not initialized")
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal report event: %w", err)
	}

	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write report event: %w", err)
	}

	if err := l.file.Sync(); err != nil {
		l.logger.Warn("failed to sync report file", slog.String("error", err.Error()))
	}

	return nil
}

// LogStart records the launch of a fixture run.
func (l *Logger) LogStart(binary string, args []string, pid int) error {
	return l.Log(Event{
		Timestamp: time.Now().UTC(),
		Type:      "start",
		Binary:    binary,
		Args:      args,
		Pid:       pid,
	})
}

// LogEnd records how a fixture run terminated. namespacePid is the pid
// observed via the handoff socket, zero when no handoff was requested.
func (l *Logger) LogEnd(binary string, pid int, namespacePid int32, exitCode int, signal string, coreDumped bool, duration time.Duration, outcome string) error {
	return l.Log(Event{
		Timestamp:    time.Now().UTC(),
		Type:         "end",
		Binary:       binary,
		Pid:          pid,
		NamespacePid: namespacePid,
		ExitCode:     exitCode,
		Signal:       signal,
		CoreDumped:   coreDumped,
		Duration:     duration.String(),
		Outcome:      outcome,
	})
}

// LogError records a run that could not be carried out.
func (l *Logger) LogError(binary, errMsg string) error {
	return l.Log(Event{
		Timestamp: time.Now().UTC(),
		Type:      "error",
		Binary:    binary,
		Error:     errMsg,
		Outcome:   "error",
	})
}

// Close closes the report file.
func (l *Logger) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}
