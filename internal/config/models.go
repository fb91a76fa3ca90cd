package config

import "sort"

// CurrentVersion is the config file format version
const CurrentVersion = 1

// DefaultProfileName is used when no profile is selected
const DefaultProfileName = "default"

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                 `yaml:"version"`
	Profiles    map[string]*Profile `yaml:"profiles,omitempty"` // Keyed by profile name
	Preferences *Preferences        `yaml:"preferences,omitempty"`
}

// Profile holds saved request settings. Empty fields mean "use the client
// default", so a profile only needs to list what differs.
type Profile struct {
	BaseURL        string `yaml:"base_url,omitempty"`
	Method         string `yaml:"method,omitempty"`          // GET or POST
	TimeoutMS      int    `yaml:"timeout_ms,omitempty"`      // Request timeout in milliseconds
	AcceptLanguage string `yaml:"accept_language,omitempty"` // e.g. "zh-CN"
	Encoding       string `yaml:"encoding,omitempty"`        // urlencoded, standard, json or none
	FileFieldName  string `yaml:"file_field_name,omitempty"` // multipart name attribute for uploads
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultProfile string `yaml:"default_profile,omitempty"`
	LogLevel       string `yaml:"log_level,omitempty"`    // Used when PHONECORE_LOG_LEVEL is unset
	DownloadDir    string `yaml:"download_dir,omitempty"` // Root for relative download paths
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:  CurrentVersion,
		Profiles: make(map[string]*Profile),
		Preferences: &Preferences{
			DefaultProfile: DefaultProfileName,
		},
	}
}

// GetProfile retrieves a profile by name. An empty name selects the
// default profile. Returns nil if the profile doesn't exist.
func (r *Registry) GetProfile(name string) *Profile {
	if name == "" {
		name = r.defaultProfileName()
	}
	return r.Profiles[name]
}

// EnsureProfile returns the named profile, creating an empty one if needed.
func (r *Registry) EnsureProfile(name string) *Profile {
	if name == "" {
		name = r.defaultProfileName()
	}
	if r.Profiles == nil {
		r.Profiles = make(map[string]*Profile)
	}
	if p, exists := r.Profiles[name]; exists {
		return p
	}
	p := &Profile{}
	r.Profiles[name] = p
	return p
}

// SetProfile stores or replaces a profile.
func (r *Registry) SetProfile(name string, p *Profile) {
	if r.Profiles == nil {
		r.Profiles = make(map[string]*Profile)
	}
	r.Profiles[name] = p
}

// RemoveProfile deletes a profile. Removing a missing profile is a no-op.
func (r *Registry) RemoveProfile(name string) {
	delete(r.Profiles, name)
}

// ProfileNames returns the profile names in sorted order.
func (r *Registry) ProfileNames() []string {
	names := make([]string, 0, len(r.Profiles))
	for name := range r.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) defaultProfileName() string {
	if r.Preferences != nil && r.Preferences.DefaultProfile != "" {
		return r.Preferences.DefaultProfile
	}
	return DefaultProfileName
}
