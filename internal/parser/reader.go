package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// freeTextMarker distinguishes the human-readable monitor output from
// header-based CSV.
const freeTextMarker = "Presence:"

// detectionKeyword appears in the first pipe-delimited field of a free-text
// line when the sensor reported presence.
const detectionKeyword = "DETECTED"

// DetectFormat classifies a results file from its name and content.
// Log files are identified by extension alone; everything else is free-text
// monitor output when the marker substring occurs anywhere in the content,
// and header CSV otherwise.
func DetectFormat(path string, content []byte) Format {
	if strings.EqualFold(filepath.Ext(path), ".log") {
		return FormatLog
	}
	if bytes.Contains(content, []byte(freeTextMarker)) {
		return FormatFreeText
	}
	return FormatTabular
}

// ParseFile reads one results file and parses it according to its detected
// format. Malformed rows are dropped and recorded as warnings, never fatal.
// Log files are not row-parsed; their Records slice stays empty.
func ParseFile(path string) (*ParsedFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	pf := &ParsedFile{Path: path, Format: DetectFormat(path, content)}
	switch pf.Format {
	case FormatFreeText:
		parseFreeText(pf, content)
	case FormatTabular:
		parseTabular(pf, content)
	}
	return pf, nil
}

// parseFreeText extracts one Record per monitor line. Lines without the
// marker (startup banners, blank lines) are ignored silently.
func parseFreeText(pf *ParsedFile, content []byte) {
	for lineNum, line := range strings.Split(string(content), "\n") {
		if !strings.Contains(line, freeTextMarker) {
			continue
		}
		rec, err := ParseFreeTextLine(line)
		if err != nil {
			pf.Warnings = append(pf.Warnings,
				fmt.Sprintf("line %d: %v, record dropped", lineNum+1, err))
			continue
		}
		pf.Records = append(pf.Records, rec)
	}
}

// ParseFreeTextLine parses a single pipe-delimited monitor line, e.g.
//
//	Presence: DETECTED | Distance: 1.52 m | Intra: 180.2 | Inter: 95.1
//
// Field 0 carries the detection keyword, field 1 the distance in metres,
// fields 2 and 3 the intra/inter movement scores.
func ParseFreeTextLine(line string) (Record, error) {
	parts := strings.Split(line, "|")
	if len(parts) < 4 {
		return Record{}, fmt.Errorf("expected at least 4 '|' fields, got %d", len(parts))
	}

	distance, err := parseLabelledValue(parts[1], "m")
	if err != nil {
		return Record{}, fmt.Errorf("distance field: %w", err)
	}
	if distance < 0 {
		return Record{}, fmt.Errorf("negative distance %.3f m", distance)
	}
	intra, err := parseLabelledValue(parts[2], "")
	if err != nil {
		return Record{}, fmt.Errorf("intra field: %w", err)
	}
	inter, err := parseLabelledValue(parts[3], "")
	if err != nil {
		return Record{}, fmt.Errorf("inter field: %w", err)
	}

	return Record{
		Presence:  strings.Contains(parts[0], detectionKeyword),
		Distance:  distance,
		Intra:     intra,
		Inter:     inter,
		Timestamp: time.Now(),
	}, nil
}

// parseLabelledValue extracts the numeric value from a "label: value" field,
// stripping the unit suffix when one is expected.
func parseLabelledValue(field, unit string) (float64, error) {
	_, raw, found := strings.Cut(field, ":")
	if !found {
		return 0, fmt.Errorf("no ':' separator in %q", strings.TrimSpace(field))
	}
	raw = strings.TrimSpace(raw)
	if unit != "" {
		raw = strings.TrimSpace(strings.ReplaceAll(raw, unit, ""))
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric value %q", raw)
	}
	return v, nil
}

// parseTabular parses header CSV. Missing or non-numeric cells default to 0;
// rows the csv reader rejects are dropped with a warning.
func parseTabular(pf *ParsedFile, content []byte) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			pf.Warnings = append(pf.Warnings, fmt.Sprintf("header row: %v", err))
		}
		return
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for rowNum := 2; ; rowNum++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			pf.Warnings = append(pf.Warnings,
				fmt.Sprintf("row %d: %v, record dropped", rowNum, err))
			continue
		}

		rec := Record{
			Distance:  pf.numericCell(cols, row, ColDistance, rowNum),
			Intra:     pf.numericCell(cols, row, ColIntraScore, rowNum),
			Inter:     pf.numericCell(cols, row, ColInterScore, rowNum),
			Timestamp: time.Now(),
		}
		if idx, ok := cols[ColPresence]; ok && idx < len(row) {
			rec.Presence = strings.TrimSpace(row[idx]) == "1"
		}
		if rec.Distance < 0 {
			pf.Warnings = append(pf.Warnings,
				fmt.Sprintf("row %d: negative distance %.3f m, record dropped", rowNum, rec.Distance))
			continue
		}
		pf.Records = append(pf.Records, rec)
	}
}

// numericCell returns the named column's value for a row, defaulting to 0
// when the column is absent or the cell does not parse. Only genuine parse
// failures are surfaced as warnings.
func (pf *ParsedFile) numericCell(cols map[string]int, row []string, name string, rowNum int) float64 {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return 0
	}
	raw := strings.TrimSpace(row[idx])
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		pf.Warnings = append(pf.Warnings,
			fmt.Sprintf("row %d: non-numeric %s %q, using 0", rowNum, name, raw))
		return 0
	}
	return v
}

// NominalDistanceFromFilename extracts the nominal test distance from a
// range file name such as "range_2.0m.csv".
func NominalDistanceFromFilename(path string) (float64, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.SplitN(stem, "_", 2)
	if len(parts) < 2 {
		return 0, fmt.Errorf("no distance component in filename %q", stem)
	}
	raw := strings.TrimSpace(strings.ReplaceAll(parts[1], "m", ""))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse nominal distance from %q: %w", stem, err)
	}
	return v, nil
}
