package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	}

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "phonecore") {
		t.Errorf("GetConfigDir() = %v, should contain 'phonecore'", configDir)
	}

	t.Logf("Config directory: %s", configDir)
}

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(base, "phonecore"); configDir != want {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != CurrentVersion {
		t.Errorf("NewRegistry().Version = %v, want %v", reg.Version, CurrentVersion)
	}
	if reg.Profiles == nil {
		t.Error("NewRegistry().Profiles should not be nil")
	}
	if reg.Preferences == nil || reg.Preferences.DefaultProfile != DefaultProfileName {
		t.Errorf("NewRegistry().Preferences = %+v, want default profile %q", reg.Preferences, DefaultProfileName)
	}
}

func TestRegistry_Profiles(t *testing.T) {
	reg := NewRegistry()

	if p := reg.GetProfile("missing"); p != nil {
		t.Errorf("GetProfile(missing) = %+v, want nil", p)
	}

	p := reg.EnsureProfile("")
	p.BaseURL = "http://example.com"
	if got := reg.GetProfile(DefaultProfileName); got != p {
		t.Error("EnsureProfile(\"\") should create the default profile")
	}
	if again := reg.EnsureProfile(DefaultProfileName); again != p {
		t.Error("EnsureProfile should return the existing profile")
	}

	reg.SetProfile("upload", &Profile{Method: "POST"})
	reg.SetProfile("alpha", &Profile{})
	if diff := cmp.Diff([]string{"alpha", "default", "upload"}, reg.ProfileNames()); diff != "" {
		t.Errorf("ProfileNames() mismatch (-want +got):\n%s", diff)
	}

	reg.RemoveProfile("alpha")
	reg.RemoveProfile("never-existed")
	if reg.GetProfile("alpha") != nil {
		t.Error("RemoveProfile did not remove profile")
	}
}

func TestRegistry_DefaultProfilePreference(t *testing.T) {
	reg := NewRegistry()
	reg.Preferences.DefaultProfile = "staging"
	reg.SetProfile("staging", &Profile{BaseURL: "http://staging"})

	p := reg.GetProfile("")
	if p == nil || p.BaseURL != "http://staging" {
		t.Errorf("GetProfile(\"\") = %+v, want staging profile", p)
	}
}

func TestRegistry_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	reg.SetProfile("upload", &Profile{
		BaseURL:        "http://example.com/upload",
		Method:         "POST",
		TimeoutMS:      60000,
		AcceptLanguage: "en-US",
		Encoding:       "standard",
		FileFieldName:  "photo",
	})
	reg.Preferences.LogLevel = "debug"
	reg.Preferences.DownloadDir = "/tmp/downloads"

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after save")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "base_url: http://example.com/upload") {
		t.Errorf("saved file missing base_url:\n%s", data)
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if diff := cmp.Diff(reg, loaded); diff != "" {
		t.Errorf("loaded registry mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRegistryFrom_Missing(t *testing.T) {
	reg, err := LoadRegistryFrom(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if diff := cmp.Diff(NewRegistry(), reg); diff != "" {
		t.Errorf("missing file should yield default registry (-want +got):\n%s", diff)
	}
}

func TestLoadRegistryFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			content: "version: [",
			wantErr: "failed to parse",
		},
		{
			name:    "wrong version",
			content: "version: 99\n",
			wantErr: "unsupported config version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := LoadRegistryFrom(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadRegistryFrom() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRegistryFrom_FillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Profiles == nil {
		t.Error("Profiles should be initialized")
	}
	if reg.Preferences == nil || reg.Preferences.DefaultProfile != DefaultProfileName {
		t.Errorf("Preferences = %+v, want defaults", reg.Preferences)
	}
}

func TestLoadRegistry_UsesConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	reg := NewRegistry()
	reg.SetProfile("saved", &Profile{BaseURL: "http://saved"})
	if err := reg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := ReloadRegistry()
	if err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}
	if p := loaded.GetProfile("saved"); p == nil || p.BaseURL != "http://saved" {
		t.Errorf("GetProfile(saved) = %+v", p)
	}

	again, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if again != loaded {
		t.Error("LoadRegistry() should return the cached instance")
	}
}

func BenchmarkRegistry_SaveTo(b *testing.B) {
	path := filepath.Join(b.TempDir(), "config.yaml")
	reg := NewRegistry()
	for _, name := range []string{"a", "b", "c", "d"} {
		reg.SetProfile(name, &Profile{BaseURL: "http://" + name, TimeoutMS: 1000})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := reg.SaveTo(path); err != nil {
			b.Fatal(err)
		}
	}
}
