// Package debug writes the optional decode log. Logging is off until Enable
// is called; every Logf before that is a no-op, so decoder code can log
// unconditionally.
package debug

import (
	"fmt"
	"os"
	"sync"
)

var (
	mu   sync.Mutex
	file *os.File
)

// Enable starts logging to the given path, truncating a previous log.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	file = f
	return nil
}

// Disable closes the log file and stops logging.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
}

// Logf writes one line to the log, prefixed with its category.
func Logf(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return
	}
	fmt.Fprintf(file, "%-6s %s\n", category, fmt.Sprintf(format, args...))
}
