package config

import (
	"os"
	"path/filepath"
)

// GetAppDir returns the swiftfetch state directory. The SWIFTFETCH_HOME
// environment variable overrides the default of ~/.swiftfetch.
func GetAppDir() string {
	if dir := os.Getenv("SWIFTFETCH_HOME"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".swiftfetch"
	}
	return filepath.Join(homeDir, ".swiftfetch")
}

// GetSettingsPath returns the path to the settings JSON file.
func GetSettingsPath() string {
	return filepath.Join(GetAppDir(), "settings.json")
}

// GetStorePath returns the path to the primary task database.
func GetStorePath() string {
	return filepath.Join(GetAppDir(), "tasks.db")
}

// GetBackupPath returns the path to the task snapshot used for recovery.
func GetBackupPath() string {
	return filepath.Join(GetAppDir(), "tasks_backup.json")
}

// GetLogPath returns the path to the debug log file.
func GetLogPath() string {
	return filepath.Join(GetAppDir(), "swiftfetch.log")
}

// GetLockPath returns the path of the single-instance lock file.
func GetLockPath() string {
	return filepath.Join(GetAppDir(), "swiftfetch.lock")
}
