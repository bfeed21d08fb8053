// Package config holds jsonlkit configuration, loaded with Viper from
// jsonlkit.toml and JSONLKIT_* environment variables. Flags on individual
// commands override anything configured here.
package config

// Config represents the jsonlkit configuration
type Config struct {
	Normalize NormalizeConfig `mapstructure:"normalize"`
	Concat    ConcatConfig    `mapstructure:"concat"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Log       LogConfig       `mapstructure:"log"`
}

// NormalizeConfig configures the normalize command defaults
type NormalizeConfig struct {
	OutputPath  string `mapstructure:"output_path"`  // accepted-records output (default: normalized.jsonl)
	DiscardPath string `mapstructure:"discard_path"` // discard log (default: discarded.jsonl)
	Dedupe      bool   `mapstructure:"dedupe"`       // drop structural duplicates (default: false)
}

// ConcatConfig configures the concat command defaults
type ConcatConfig struct {
	SourceDir   string `mapstructure:"source_dir"`   // directory scanned for inputs (default: norm_jsonl)
	OutputPath  string `mapstructure:"output_path"`  // merged output (default: combined.jsonl)
	Pattern     string `mapstructure:"pattern"`      // input glob (default: normalized_*.jsonl)
	Dedupe      bool   `mapstructure:"dedupe"`       // cross-file dedupe (default: true)
	DiscardPath string `mapstructure:"discard_path"` // optional discard log; empty = count and warn only
}

// WatchConfig configures the watch command
type WatchConfig struct {
	OutputDir string `mapstructure:"output_dir"` // where normalized/discarded siblings land (default: norm_jsonl)
	Dedupe    bool   `mapstructure:"dedupe"`     // per-file dedupe (default: false)
	SettleMS  int    `mapstructure:"settle_ms"`  // quiet period before a new file is processed (default: 500)
}

// LogConfig configures log output
type LogConfig struct {
	JSON bool `mapstructure:"json"` // structured JSON log lines instead of console output
}
