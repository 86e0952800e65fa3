// Package scale handles the pixel-to-physical calibration reference that
// accompanies each micrograph. Detection never consumes it; the reference is
// passed through to the output table for the downstream statistics stage.
package scale

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
)

// Reference is a pixel measurement of a known physical distance, e.g. the
// 30 mm scale marker printed on each micrograph.
type Reference struct {
	KnownMM float64 // Physical length of the marker
	Pixels  float64 // Measured marker length in pixels

	// SourceColumn is the sidecar header this reference was read from,
	// carried through to the output table unchanged. Empty for references
	// not originating from a sidecar.
	SourceColumn string
}

// Column returns the output-table column name for this reference, matching
// the calibrator tool's convention.
func (r Reference) Column() string {
	if r.SourceColumn != "" {
		return r.SourceColumn
	}
	return fmt.Sprintf("distance_%g_mm_px", r.KnownMM)
}

// PixelsPerMM returns the calibration ratio, or 0 when undefined.
func (r Reference) PixelsPerMM() float64 {
	if r.KnownMM <= 0 {
		return 0
	}
	return r.Pixels / r.KnownMM
}

var columnPattern = regexp.MustCompile(`^distance_(\d+(?:\.\d+)?)_mm_px$`)

// LoadSidecar reads a calibration table produced by the pixel calibrator
// tool: a CSV with a "filename" column and one "distance_<mm>_mm_px"
// column. Returns a map keyed by filename.
func LoadSidecar(path string) (map[string]Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open calibration sidecar: %w", err)
	}
	defer f.Close()

	return parseSidecar(f)
}

func parseSidecar(r io.Reader) (map[string]Reference, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration header: %w", err)
	}

	fileCol, distCol := -1, -1
	knownMM := 0.0
	distName := ""
	for i, name := range header {
		if name == "filename" {
			fileCol = i
			continue
		}
		if m := columnPattern.FindStringSubmatch(name); m != nil {
			distCol = i
			distName = name
			knownMM, _ = strconv.ParseFloat(m[1], 64)
		}
	}
	if fileCol < 0 || distCol < 0 {
		return nil, fmt.Errorf("calibration sidecar missing filename or distance_<mm>_mm_px column")
	}

	refs := make(map[string]Reference)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read calibration row: %w", err)
		}

		pixels, err := strconv.ParseFloat(row[distCol], 64)
		if err != nil {
			continue // Malformed rows are skipped, not fatal
		}
		refs[row[fileCol]] = Reference{KnownMM: knownMM, Pixels: pixels, SourceColumn: distName}
	}
	return refs, nil
}
