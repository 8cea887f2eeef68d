package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFreeTextLine(t *testing.T) {
	line := "Presence: DETECTED | Distance: 1.52 m | Intra: 180.2 | Inter: 95.1"
	rec, err := ParseFreeTextLine(line)
	require.NoError(t, err)

	assert.True(t, rec.Presence)
	assert.InDelta(t, 1.52, rec.Distance, 1e-9)
	assert.InDelta(t, 180.2, rec.Intra, 1e-9)
	assert.InDelta(t, 95.1, rec.Inter, 1e-9)
	assert.False(t, rec.Timestamp.IsZero())
}

func TestParseFreeTextLine_NoDetection(t *testing.T) {
	line := "Presence: NONE | Distance: 0.00 m | Intra: 12.0 | Inter: 4.5"
	rec, err := ParseFreeTextLine(line)
	require.NoError(t, err)

	assert.False(t, rec.Presence)
	assert.Zero(t, rec.Distance)
}

func TestParseFreeTextLine_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "Presence: DETECTED | Distance: 1.0 m"},
		{"non-numeric distance", "Presence: DETECTED | Distance: abc m | Intra: 1.0 | Inter: 2.0"},
		{"missing separator", "Presence: DETECTED | 1.0 m | Intra: 1.0 | Inter: 2.0"},
		{"non-numeric intra", "Presence: DETECTED | Distance: 1.0 m | Intra: x | Inter: 2.0"},
		{"negative distance", "Presence: DETECTED | Distance: -0.3 m | Intra: 1.0 | Inter: 2.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFreeTextLine(tt.line)
			assert.Error(t, err)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatLog, DetectFormat("system_check.log", []byte("Presence: DETECTED")))
	assert.Equal(t, FormatFreeText, DetectFormat("range_1.0m.csv", []byte("Presence: DETECTED | ...")))
	assert.Equal(t, FormatTabular, DetectFormat("stability_test.csv", []byte("distance,presence\n1.0,1\n")))
}

func TestParseFile_FreeText(t *testing.T) {
	dir := t.TempDir()
	content := "XM125 monitor started\n" +
		"Presence: DETECTED | Distance: 1.50 m | Intra: 100.0 | Inter: 50.0\n" +
		"Presence: DETECTED | Distance: bad m | Intra: 100.0 | Inter: 50.0\n" +
		"Presence: NONE | Distance: 0.00 m | Intra: 5.0 | Inter: 2.0\n"
	path := writeFile(t, dir, "range_1.5m.csv", content)

	pf, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, FormatFreeText, pf.Format)
	require.Len(t, pf.Records, 2)
	assert.Len(t, pf.Warnings, 1)
	assert.True(t, pf.Records[0].Presence)
	assert.False(t, pf.Records[1].Presence)
}

func TestParseFile_Tabular(t *testing.T) {
	dir := t.TempDir()
	content := "distance,intra_score,inter_score,presence\n" +
		"1.02,150.0,80.0,1\n" +
		"0.98,abc,75.0,1\n" + // non-numeric intra defaults to 0, with a warning
		"1.01,140.0,,0\n"
	path := writeFile(t, dir, "stability_test.csv", content)

	pf, err := ParseFile(path)
	require.NoError(t, err)

	assert.Equal(t, FormatTabular, pf.Format)
	require.Len(t, pf.Records, 3)
	assert.Len(t, pf.Warnings, 1)

	assert.InDelta(t, 1.02, pf.Records[0].Distance, 1e-9)
	assert.True(t, pf.Records[0].Presence)
	assert.Zero(t, pf.Records[1].Intra)
	assert.Zero(t, pf.Records[2].Inter)
	assert.False(t, pf.Records[2].Presence)
}

func TestParseFile_Empty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "stability_test.csv", "")

	pf, err := ParseFile(path)
	require.NoError(t, err)
	assert.Empty(t, pf.Records)
	assert.Empty(t, pf.Warnings)
}

func TestParseFile_Unreadable(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestNominalDistanceFromFilename(t *testing.T) {
	tests := []struct {
		path    string
		want    float64
		wantErr bool
	}{
		{"range_2.0m.csv", 2.0, false},
		{"/tmp/results/range_0.5m.csv", 0.5, false},
		{"range_10m.csv", 10, false},
		{"range.csv", 0, true},
		{"range_farm.csv", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := NominalDistanceFromFilename(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
