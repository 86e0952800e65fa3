// Package meta recovers sample metadata encoded in micrograph filenames.
// Parsing happens exactly once per file; every downstream consumer receives
// the structured record instead of re-deriving fields ad hoc.
package meta

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Metadata holds the fields encoded in a micrograph filename following the
// lab convention <sample>_<composition>_<YYYY-MM-DD>[_<seq>].<ext>,
// e.g. "S12_PCL-20_2025-03-14_02.png".
type Metadata struct {
	Filename    string    // Original filename including extension
	Sample      string    // Sample identifier, e.g. "S12"
	Composition string    // Material composition tag, e.g. "PCL-20"
	Date        time.Time // Acquisition date, zero if absent
	Sequence    int       // Image sequence number within the sample, 0 if absent
}

var filenamePattern = regexp.MustCompile(
	`^(?P<sample>[A-Za-z0-9]+)_(?P<comp>[A-Za-z0-9.-]+)_(?P<date>\d{4}-\d{2}-\d{2})(?:_(?P<seq>\d+))?$`)

// ParseFilename parses the lab filename convention. Filenames that do not
// follow the convention still yield a usable record: the whole stem becomes
// the sample identifier and the remaining fields stay zero, since this core
// treats the filename as an opaque tag either way.
func ParseFilename(filename string) Metadata {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	m := Metadata{Filename: base}

	match := filenamePattern.FindStringSubmatch(stem)
	if match == nil {
		m.Sample = stem
		return m
	}

	m.Sample = match[1]
	m.Composition = match[2]
	if date, err := time.Parse("2006-01-02", match[3]); err == nil {
		m.Date = date
	}
	if match[4] != "" {
		if seq, err := strconv.Atoi(match[4]); err == nil {
			m.Sequence = seq
		}
	}
	return m
}

// Conforms reports whether the filename followed the full lab convention.
func (m Metadata) Conforms() bool {
	return m.Composition != ""
}
