package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	assert.Equal(t, "abc1234", Info{CommitHash: "abc1234def5678"}.Short())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}

func TestStringUsesShortCommit(t *testing.T) {
	info := Info{
		Version:    "1.2.0",
		CommitHash: "abc1234def5678",
		BuildTime:  "2026-08-28",
	}
	assert.Equal(t, "jsonlkit 1.2.0 (commit abc1234, built 2026-08-28)", info.String())

	dev := Info{Version: "dev", CommitHash: "dev", BuildTime: "unknown"}
	assert.Equal(t, "jsonlkit dev (commit dev, built unknown)", dev.String())
}

func TestGetPopulatesRuntimeFields(t *testing.T) {
	info := Get()
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
