package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Normalize defaults, matching the historical CLI defaults
	v.SetDefault("normalize.output_path", "normalized.jsonl")
	v.SetDefault("normalize.discard_path", "discarded.jsonl")
	v.SetDefault("normalize.dedupe", false)

	// Concat defaults
	v.SetDefault("concat.source_dir", "norm_jsonl")
	v.SetDefault("concat.output_path", "combined.jsonl")
	v.SetDefault("concat.pattern", "normalized_*.jsonl")
	v.SetDefault("concat.dedupe", true) // concat has always deduped by default
	v.SetDefault("concat.discard_path", "")

	// Watch defaults
	v.SetDefault("watch.output_dir", "norm_jsonl")
	v.SetDefault("watch.dedupe", false)
	v.SetDefault("watch.settle_ms", 500)

	// Log defaults
	v.SetDefault("log.json", false)
}
