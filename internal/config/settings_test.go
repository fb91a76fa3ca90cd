package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

func TestSettings_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := OpenSettings(path)
	if err != nil {
		t.Fatalf("OpenSettings() error = %v", err)
	}

	if err := s.Save("user", "alice"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save("window", window{Width: 800, Height: 600, Title: "main"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var user string
	ok, err := s.Load("user", &user)
	if err != nil || !ok || user != "alice" {
		t.Errorf("Load(user) = %q, %v, %v", user, ok, err)
	}

	// A fresh store reads the persisted file.
	reopened, err := OpenSettings(path)
	if err != nil {
		t.Fatalf("OpenSettings() error = %v", err)
	}
	var w window
	ok, err = reopened.Load("window", &w)
	if err != nil || !ok {
		t.Fatalf("Load(window) = %v, %v", ok, err)
	}
	if diff := cmp.Diff(window{Width: 800, Height: 600, Title: "main"}, w); diff != "" {
		t.Errorf("Load(window) mismatch (-want +got):\n%s", diff)
	}
}

func TestSettings_SaveCopiesValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := OpenSettings(path)
	if err != nil {
		t.Fatal(err)
	}

	hosts := []string{"a.example", "b.example"}
	limits := map[string]int{"retries": 3}
	if err := s.Save("hosts", hosts); err != nil {
		t.Fatal(err)
	}
	if err := s.Save("limits", limits); err != nil {
		t.Fatal(err)
	}
	hosts[0] = "changed.example"
	limits["retries"] = 9
	limits["extra"] = 1

	var gotHosts []string
	if ok, err := s.Load("hosts", &gotHosts); err != nil || !ok {
		t.Fatalf("Load(hosts) = %v, %v", ok, err)
	}
	if diff := cmp.Diff([]string{"a.example", "b.example"}, gotHosts); diff != "" {
		t.Errorf("Load(hosts) mismatch (-want +got):\n%s", diff)
	}
	var gotLimits map[string]int
	if ok, err := s.Load("limits", &gotLimits); err != nil || !ok {
		t.Fatalf("Load(limits) = %v, %v", ok, err)
	}
	if diff := cmp.Diff(map[string]int{"retries": 3}, gotLimits); diff != "" {
		t.Errorf("Load(limits) mismatch (-want +got):\n%s", diff)
	}

	// the store and the file agree
	reopened, err := OpenSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	var diskLimits map[string]int
	if ok, err := reopened.Load("limits", &diskLimits); err != nil || !ok {
		t.Fatalf("reopened Load(limits) = %v, %v", ok, err)
	}
	if diff := cmp.Diff(gotLimits, diskLimits); diff != "" {
		t.Errorf("reopened Load(limits) mismatch (-want +got):\n%s", diff)
	}
}

func TestSettings_LoadMissing(t *testing.T) {
	s, err := OpenSettings(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	out := "untouched"
	ok, err := s.Load("nope", &out)
	if err != nil || ok {
		t.Errorf("Load(nope) = %v, %v, want false, nil", ok, err)
	}
	if out != "untouched" {
		t.Errorf("Load(nope) modified output: %q", out)
	}
}

func TestSettings_RemoveClearKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := OpenSettings(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, k := range []string{"b", "a", "c"} {
		if err := s.Save(k, 1); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, s.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	if err := s.Remove("b"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if s.Exists("b") {
		t.Error("Exists(b) after Remove")
	}
	if err := s.Remove("b"); err != nil {
		t.Errorf("Remove(missing) error = %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if len(s.Keys()) != 0 {
		t.Errorf("Keys() after Clear = %v", s.Keys())
	}

	reopened, err := OpenSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(reopened.Keys()) != 0 {
		t.Errorf("Clear was not persisted: %v", reopened.Keys())
	}
}

func TestOpenSettings_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("- not\n- a map\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenSettings(path); err == nil {
		t.Error("OpenSettings() should fail on non-map content")
	}
}
