package models

// FeatureFlags mirror the agent backend's configuration options. They are
// fetched from the backend when available and used as run overrides otherwise.
type FeatureFlags struct {
	EnableSearchTool          bool `yaml:"enable_search_tool" json:"enable_search_tool"`
	EnableHITL                bool `yaml:"enable_hitl" json:"enable_hitl"`
	EnableSimpleTaskCheck     bool `yaml:"enable_simple_task_check" json:"enable_simple_task_check"`
	EnableDeepResearch        bool `yaml:"enable_deep_research" json:"enable_deep_research"`
	DeepResearchUseSimpleGoal bool `yaml:"deep_research_use_simple_goal" json:"deep_research_use_simple_goal"`
}

// Map converts the flags to the override map the /api/run endpoint accepts.
func (f FeatureFlags) Map() map[string]bool {
	return map[string]bool{
		"enable_search_tool":            f.EnableSearchTool,
		"enable_hitl":                   f.EnableHITL,
		"enable_simple_task_check":      f.EnableSimpleTaskCheck,
		"enable_deep_research":          f.EnableDeepResearch,
		"deep_research_use_simple_goal": f.DeepResearchUseSimpleGoal,
	}
}

// Settings holds the console's global configuration.
// This corresponds to ~/.agentdeck/settings.yaml.
type Settings struct {
	Version        int          `yaml:"version"`
	ServerURL      string       `yaml:"server_url"`
	PollIntervalMS int          `yaml:"poll_interval_ms"`
	Features       FeatureFlags `yaml:"features"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:        1,
		ServerURL:      "http://localhost:8000",
		PollIntervalMS: 1000,
		Features: FeatureFlags{
			EnableSearchTool:          true,
			EnableHITL:                true,
			EnableSimpleTaskCheck:     true,
			EnableDeepResearch:        true,
			DeepResearchUseSimpleGoal: false,
		},
	}
}
