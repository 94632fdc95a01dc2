// Package config provides YAML-based configuration loading for the replay
// post-processing pipeline.
package config

// PipelineConfig contains all configuration for the post-processing tools.
type PipelineConfig struct {
	// DataRoot is where collection runs live; each run is one
	// subdirectory holding monitor logs, json_metadata and audio maps.
	DataRoot string `yaml:"data_root"`
	// AssetRoot holds the sprite sets and the sound_effects directory.
	AssetRoot string `yaml:"asset_root"`

	Render  RenderConfig  `yaml:"render"`
	Video   VideoConfig   `yaml:"video"`
	Collect CollectConfig `yaml:"collect"`
}

// RenderConfig selects how frames are composited.
type RenderConfig struct {
	// Scheme is the semantic color scheme: "rgb", "compact" or "readable".
	Scheme string `yaml:"scheme"`
	// Original composites textured sprites instead of semantic labels.
	Original bool `yaml:"original"`
}

// VideoConfig defines clip slicing and soundtrack parameters.
type VideoConfig struct {
	FPS           int `yaml:"fps"`
	FramesPerClip int `yaml:"frames_per_clip"`
	Stride        int `yaml:"stride"`
	AudioRate     int `yaml:"audio_rate"`
	PowerUpRate   int `yaml:"power_up_rate"`
}

// CollectConfig defines rollout collection parameters.
type CollectConfig struct {
	NumEnvs   int `yaml:"num_envs"`
	NumLevels int `yaml:"num_levels"`
	// MaxSteps caps the rollout length per environment batch.
	MaxSteps int `yaml:"max_steps"`
}
