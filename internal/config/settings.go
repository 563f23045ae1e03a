package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Settings holds all user-configurable application settings organized by category.
type Settings struct {
	General  GeneralSettings  `json:"general"`
	Engine   EngineSettings   `json:"engine"`
	Transfer TransferSettings `json:"transfer"`
}

// GeneralSettings contains application behavior settings.
type GeneralSettings struct {
	DefaultDownloadDir string `json:"default_download_dir"`
	CategoryFolders    bool   `json:"category_folders"`
}

// EngineSettings contains connection parameters for the remote transfer engine.
type EngineSettings struct {
	RPCURL         string        `json:"rpc_url"`
	Secret         string        `json:"secret"`
	RequestTimeout time.Duration `json:"request_timeout"`
}

// TransferSettings contains transfer tuning parameters.
type TransferSettings struct {
	DefaultSegments  int           `json:"default_segments"`
	GlobalSpeedLimit int64         `json:"global_speed_limit"`
	PollInterval     time.Duration `json:"poll_interval"`
	BackupInterval   time.Duration `json:"backup_interval"`
}

const (
	KB = 1024
	MB = 1024 * KB
)

// DefaultSettings returns a new Settings instance with sensible defaults.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	defaultDir := filepath.Join(homeDir, "Downloads")

	return &Settings{
		General: GeneralSettings{
			DefaultDownloadDir: defaultDir,
			CategoryFolders:    false,
		},
		Engine: EngineSettings{
			RPCURL:         "http://127.0.0.1:6800/jsonrpc",
			Secret:         "",
			RequestTimeout: 30 * time.Second,
		},
		Transfer: TransferSettings{
			DefaultSegments:  4,
			GlobalSpeedLimit: 0, // 0 means unlimited
			PollInterval:     2 * time.Second,
			BackupInterval:   5 * time.Minute,
		},
	}
}

// LoadSettings loads settings from disk. Returns defaults if file doesn't exist.
func LoadSettings() (*Settings, error) {
	path := GetSettingsPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings() // Start with defaults to fill any missing fields
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// SaveSettings saves settings to disk atomically.
func SaveSettings(s *Settings) error {
	path := GetSettingsPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: write to temp file, then rename
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}
