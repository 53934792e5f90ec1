package config

// KeyMappings defines the configurable key bindings for the board viewer
type KeyMappings struct {
	// Navigation
	PrevColumn  string `yaml:"prev_column"`
	NextColumn  string `yaml:"next_column"`
	PrevTask    string `yaml:"prev_task"`
	NextTask    string `yaml:"next_task"`
	NextProject string `yaml:"next_project"`
	PrevProject string `yaml:"prev_project"`

	// Other
	Refresh  string `yaml:"refresh"`
	ShowHelp string `yaml:"show_help"`
	Quit     string `yaml:"quit"`
}

// DefaultKeyMappings returns the default key mappings
func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		PrevColumn:  "h",
		NextColumn:  "l",
		PrevTask:    "k",
		NextTask:    "j",
		NextProject: "}",
		PrevProject: "{",

		Refresh:  "r",
		ShowHelp: "?",
		Quit:     "q",
	}
}

// applyDefaults fills in missing key mappings with defaults
func (k *KeyMappings) applyDefaults() {
	defaults := DefaultKeyMappings()

	if k.PrevColumn == "" {
		k.PrevColumn = defaults.PrevColumn
	}
	if k.NextColumn == "" {
		k.NextColumn = defaults.NextColumn
	}
	if k.PrevTask == "" {
		k.PrevTask = defaults.PrevTask
	}
	if k.NextTask == "" {
		k.NextTask = defaults.NextTask
	}
	if k.NextProject == "" {
		k.NextProject = defaults.NextProject
	}
	if k.PrevProject == "" {
		k.PrevProject = defaults.PrevProject
	}
	if k.Refresh == "" {
		k.Refresh = defaults.Refresh
	}
	if k.ShowHelp == "" {
		k.ShowHelp = defaults.ShowHelp
	}
	if k.Quit == "" {
		k.Quit = defaults.Quit
	}
}
