package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings == nil {
		t.Fatal("DefaultSettings returned nil")
	}

	t.Run("GeneralSettings", func(t *testing.T) {
		if settings.General.DefaultDownloadDir == "" {
			t.Error("Default download directory should not be empty")
		}
		if !strings.Contains(strings.ToLower(settings.General.DefaultDownloadDir), "downloads") {
			t.Errorf("Default download dir should contain 'Downloads', got: %s", settings.General.DefaultDownloadDir)
		}
		if settings.General.CategoryFolders {
			t.Error("CategoryFolders should be false by default")
		}
	})

	t.Run("EngineSettings", func(t *testing.T) {
		if !strings.HasPrefix(settings.Engine.RPCURL, "http") {
			t.Errorf("RPC URL should be an HTTP endpoint, got: %s", settings.Engine.RPCURL)
		}
		// Secret can be empty (means no authentication)
		if settings.Engine.RequestTimeout <= 0 {
			t.Errorf("RequestTimeout should be positive, got: %v", settings.Engine.RequestTimeout)
		}
	})

	t.Run("TransferSettings", func(t *testing.T) {
		if settings.Transfer.DefaultSegments < 1 || settings.Transfer.DefaultSegments > 16 {
			t.Errorf("DefaultSegments should be between 1 and 16, got: %d", settings.Transfer.DefaultSegments)
		}
		if settings.Transfer.GlobalSpeedLimit < 0 {
			t.Errorf("GlobalSpeedLimit should be non-negative, got: %d", settings.Transfer.GlobalSpeedLimit)
		}
		if settings.Transfer.PollInterval <= 0 {
			t.Errorf("PollInterval should be positive, got: %v", settings.Transfer.PollInterval)
		}
		if settings.Transfer.BackupInterval < time.Minute {
			t.Errorf("BackupInterval should be at least a minute, got: %v", settings.Transfer.BackupInterval)
		}
	})
}

func TestDefaultSettings_Consistency(t *testing.T) {
	// Multiple calls should return equivalent (but not same pointer) settings
	s1 := DefaultSettings()
	s2 := DefaultSettings()

	if s1 == s2 {
		t.Error("DefaultSettings should return new instance each time")
	}

	if s1.Transfer.DefaultSegments != s2.Transfer.DefaultSegments {
		t.Error("Default settings should be consistent")
	}
}

func TestGetSettingsPath(t *testing.T) {
	path := GetSettingsPath()

	if path == "" {
		t.Error("GetSettingsPath returned empty string")
	}

	appDir := GetAppDir()
	if !strings.HasPrefix(path, appDir) {
		t.Errorf("Settings path should be under app dir. Path: %s, AppDir: %s", path, appDir)
	}

	if !strings.HasSuffix(path, "settings.json") {
		t.Errorf("Settings path should end with 'settings.json', got: %s", path)
	}
}

func TestGetAppDir_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("SWIFTFETCH_HOME", tmpDir)

	if got := GetAppDir(); got != tmpDir {
		t.Errorf("GetAppDir should honor SWIFTFETCH_HOME, got: %s", got)
	}
	if !strings.HasPrefix(GetStorePath(), tmpDir) {
		t.Error("GetStorePath should be under the overridden app dir")
	}
}

func TestSaveAndLoadSettings(t *testing.T) {
	t.Setenv("SWIFTFETCH_HOME", t.TempDir())

	s := DefaultSettings()
	s.Engine.RPCURL = "http://127.0.0.1:16800/jsonrpc"
	s.Engine.Secret = "s3cret"
	s.Transfer.DefaultSegments = 8

	if err := SaveSettings(s); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	loaded, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	if loaded.Engine.RPCURL != s.Engine.RPCURL {
		t.Errorf("RPCURL not round-tripped: %s", loaded.Engine.RPCURL)
	}
	if loaded.Engine.Secret != s.Engine.Secret {
		t.Errorf("Secret not round-tripped: %s", loaded.Engine.Secret)
	}
	if loaded.Transfer.DefaultSegments != 8 {
		t.Errorf("DefaultSegments not round-tripped: %d", loaded.Transfer.DefaultSegments)
	}

	// The saved file should be valid, human-inspectable JSON
	data, err := os.ReadFile(GetSettingsPath())
	if err != nil {
		t.Fatalf("reading settings file: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Errorf("settings file is not valid JSON: %v", err)
	}
}

func TestLoadSettings_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("SWIFTFETCH_HOME", filepath.Join(t.TempDir(), "does-not-exist"))

	loaded, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	defaults := DefaultSettings()
	if loaded.Transfer.DefaultSegments != defaults.Transfer.DefaultSegments {
		t.Error("missing settings file should yield defaults")
	}
}

func TestLoadSettings_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("SWIFTFETCH_HOME", tmpDir)

	partial := `{"engine": {"rpc_url": "http://localhost:9999/jsonrpc"}}`
	if err := os.WriteFile(GetSettingsPath(), []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if loaded.Engine.RPCURL != "http://localhost:9999/jsonrpc" {
		t.Errorf("explicit value should win, got: %s", loaded.Engine.RPCURL)
	}
	if loaded.Transfer.PollInterval != DefaultSettings().Transfer.PollInterval {
		t.Error("missing fields should keep defaults")
	}
}
