package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/deviprasad97/swiftFetch/internal/config"
)

var (
	debugFile *os.File
	debugOnce sync.Once
)

// Debug writes a message to the swiftfetch log file in the state directory
func Debug(format string, args ...any) {
	// add timestamp to each debug message
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	debugOnce.Do(func() {
		path := config.GetLogPath()
		_ = os.MkdirAll(filepath.Dir(path), 0755)
		debugFile, _ = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	})
	if debugFile != nil {
		fmt.Fprintf(debugFile, "[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
		debugFile.Sync() // Flush immediately
	}
}
