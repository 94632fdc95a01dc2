package config

import (
	_ "embed"
)

//go:embed defaults/coinrun.yaml
var defaultCoinrunYAML []byte

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		DataRoot:  "video_data",
		AssetRoot: "assets",
		Render: RenderConfig{
			Scheme:   "rgb",
			Original: false,
		},
		Video: VideoConfig{
			FPS:           30,
			FramesPerClip: 96,
			Stride:        96,
			AudioRate:     48000,
			PowerUpRate:   3,
		},
		Collect: CollectConfig{
			NumEnvs:   16,
			NumLevels: 500,
			MaxSteps:  5000,
		},
	}
}
