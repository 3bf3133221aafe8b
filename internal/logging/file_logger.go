package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileLogger implements the Logger interface, writing logs asynchronously to
// a file. Writes go through a buffered channel so logging never blocks patch
// application; when the buffer is full, messages are dropped.
type FileLogger struct {
	logChan chan string
	file    *os.File
	waiter  sync.WaitGroup
	mu      sync.Mutex // Protects file handle during close
}

// NewFileLogger creates a logger that appends to the given file path,
// creating the directory if needed.
func NewFileLogger(filePath string) (*FileLogger, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	logger := &FileLogger{
		logChan: make(chan string, 100),
		file:    f,
	}

	logger.waiter.Add(1)
	go logger.writer()

	return logger, nil
}

// DefaultLogPath returns a timestamped log file path under the user cache
// directory, falling back to the current directory.
func DefaultLogPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = "."
	}
	name := fmt.Sprintf("applypatch-%s.log", time.Now().Format("20060102-150405"))
	return filepath.Join(cacheDir, "applypatch", "logs", name)
}

// writer drains logChan in the background and writes to the file.
func (l *FileLogger) writer() {
	defer l.waiter.Done()
	for msg := range l.logChan {
		l.mu.Lock()
		if l.file != nil {
			_, _ = l.file.WriteString(msg)
		}
		l.mu.Unlock()
	}
}

// Log formats the message with a timestamp and queues it for writing.
func (l *FileLogger) Log(format string, args ...interface{}) {
	now := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	msg := fmt.Sprintf("[%s] %s\n", now, fmt.Sprintf(format, args...))

	select {
	case l.logChan <- msg:
	default:
		// Buffer full, message dropped.
	}
}

// IsEnabled returns true for FileLogger.
func (l *FileLogger) IsEnabled() bool {
	return true
}

// Close signals the writer goroutine to exit and closes the log file.
func (l *FileLogger) Close() error {
	close(l.logChan)
	l.waiter.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Ensure FileLogger implements the Logger interface.
var _ Logger = (*FileLogger)(nil)
