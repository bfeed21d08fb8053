package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiscoverSortsMatches(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "normalized_b.jsonl", "")
	writeFixture(t, dir, "normalized_a.jsonl", "")
	writeFixture(t, dir, "other.jsonl", "")

	paths, err := Discover(dir, DefaultPattern)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "normalized_a.jsonl"), paths[0])
	assert.Equal(t, filepath.Join(dir, "normalized_b.jsonl"), paths[1])
}

func TestConcatMergesInOrder(t *testing.T) {
	dir := t.TempDir()
	f1 := writeFixture(t, dir, "normalized_a.jsonl", "{\"a\":1}\n{\"b\":2}\n")
	f2 := writeFixture(t, dir, "normalized_b.jsonl", "{\"c\":3}\n")

	var out bytes.Buffer
	stats, err := NewConcatenator(false).Run([]string{f1, f2}, &out, nil)
	require.NoError(t, err)

	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n{\"c\":3}\n", out.String())
	assert.Equal(t, 3, stats.Written)
	assert.Equal(t, 0, stats.Discarded)
}

func TestConcatFirstOccurrenceWins(t *testing.T) {
	dir := t.TempDir()
	f1 := writeFixture(t, dir, "normalized_a.jsonl", "{\"x\":1}\n")
	f2 := writeFixture(t, dir, "normalized_b.jsonl", "{\"x\":1}\n{\"y\":2}\n")

	var out bytes.Buffer
	stats, err := NewConcatenator(true).Run([]string{f1, f2}, &out, nil)
	require.NoError(t, err)

	assert.Equal(t, "{\"x\":1}\n{\"y\":2}\n", out.String())
	assert.Equal(t, 3, stats.RecordsSeen)
	assert.Equal(t, 2, stats.Written)
	assert.Equal(t, 1, stats.DuplicatesSkipped)
}

func TestConcatDedupeSpansFilesAndKeyOrder(t *testing.T) {
	dir := t.TempDir()
	f1 := writeFixture(t, dir, "normalized_a.jsonl", "{\"a\":1,\"b\":2}\n")
	f2 := writeFixture(t, dir, "normalized_b.jsonl", "{\"b\":2,\"a\":1}\n")

	var out bytes.Buffer
	stats, err := NewConcatenator(true).Run([]string{f1, f2}, &out, nil)
	require.NoError(t, err)

	// f1's byte form survives; f2's reordered twin is a structural duplicate.
	assert.Equal(t, "{\"a\":1,\"b\":2}\n", out.String())
	assert.Equal(t, 1, stats.DuplicatesSkipped)
}

func TestConcatDefensiveReparse(t *testing.T) {
	dir := t.TempDir()
	f1 := writeFixture(t, dir, "normalized_a.jsonl", "{\"a\":1}\n{oops\n[1,2]\n\"str\"\n{\"b\":2}]\n")

	var out, disc bytes.Buffer
	stats, err := NewConcatenator(false).Run([]string{f1}, &out, &disc)
	require.NoError(t, err)

	// The object with a trailing close delimiter is invalid JSON, not an
	// object with junk to strip.
	assert.Equal(t, "{\"a\":1}\n", out.String())
	assert.Equal(t, 1, stats.Written)
	assert.Equal(t, 4, stats.Discarded)

	lines := bytes.Count(disc.Bytes(), []byte("\n"))
	assert.Equal(t, 4, lines)
	assert.Contains(t, disc.String(), `"parse_error"`)
	assert.Contains(t, disc.String(), `{\"b\":2}]`)
	assert.Contains(t, disc.String(), `"top-level value is not dict or list"`)
}

func TestConcatDefensiveReparseWithoutSinkOnlyCounts(t *testing.T) {
	dir := t.TempDir()
	f1 := writeFixture(t, dir, "normalized_a.jsonl", "{oops\n{\"a\":1}\n")

	var out bytes.Buffer
	stats, err := NewConcatenator(false).Run([]string{f1}, &out, nil)
	require.NoError(t, err)

	assert.Equal(t, "{\"a\":1}\n", out.String())
	assert.Equal(t, 1, stats.Discarded)
}

func TestRunDir(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "normalized_b.jsonl", "{\"x\":1}\n")
	writeFixture(t, dir, "normalized_a.jsonl", "{\"x\":1}\n{\"y\":2}\n")

	outPath := filepath.Join(dir, "combined.jsonl")
	stats, err := NewConcatenator(true).RunDir(dir, DefaultPattern, outPath, "")
	require.NoError(t, err)

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	// normalized_a sorts first, so its records come first and win dedupe.
	assert.Equal(t, "{\"x\":1}\n{\"y\":2}\n", string(out))
	assert.Equal(t, 2, stats.Written)
	assert.Equal(t, 1, stats.DuplicatesSkipped)
}

func TestRunDirNoMatches(t *testing.T) {
	dir := t.TempDir()
	_, err := NewConcatenator(false).RunDir(dir, DefaultPattern, filepath.Join(dir, "out.jsonl"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files matching")
}
