// Package config provides user configuration management for phonecore.
//
// Two YAML files live in the OS-specific configuration directory:
//   - config.yaml: a versioned Registry of named request profiles and preferences
//   - settings.yaml: a free-form key/value Settings store
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/phonecore or $HOME/.config/phonecore
//   - macOS: $HOME/.config/phonecore
//   - Windows: %LOCALAPPDATA%\phonecore
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.SetProfile("upload", &config.Profile{
//	    BaseURL:   "http://example.com/upload",
//	    Method:    "POST",
//	    Encoding:  "standard",
//	    TimeoutMS: 60000,
//	})
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// Settings hold arbitrary YAML-serializable values:
//
//	settings, _ := config.OpenDefaultSettings()
//	_ = settings.Save("last_user", "alice")
//
//	var user string
//	if ok, _ := settings.Load("last_user", &user); ok {
//	    fmt.Println(user)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization. Writes to
// either file go through a temporary file and an atomic rename under a
// package-level mutex.
package config
