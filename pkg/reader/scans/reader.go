// Package scans provides a streaming reader for plain-text scan lists.
//
// Each entry is a block of "Key: value" header lines followed by its peaks:
//
//	Scan: 1204
//	RT: 12.482
//	MSLevel: 2
//	PrecursorMZ: 524.2651
//	Num peaks: 3
//	175.1190	1830.5
//	262.1510	920.0	0.912
//	...
//
// Peak lines hold m/z, intensity and an optional ion mobility. MSLevel
// defaults to 1. Lines starting with '#' are ignored.
package scans

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/gapfill/pkg/core"
)

// maxLineSize bounds a single line; scan lists may carry long header comments.
const maxLineSize = 1024 * 1024

// Reader provides streaming access to scan list files
type Reader struct {
	scanner     *bufio.Scanner
	lineNum     int
	currentScan *core.Scan
	err         error
}

// NewReader creates a new scan list reader
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Next advances to the next scan. Returns false when no more scans or error.
func (r *Reader) Next() bool {
	r.currentScan = nil
	if r.err != nil {
		return false
	}

	scan, err := r.readScan()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.currentScan = scan
	return true
}

// Scan returns the current scan
func (r *Reader) Scan() *core.Scan {
	return r.currentScan
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads every scan from r.
func ReadAll(r io.Reader) ([]*core.Scan, error) {
	reader := NewReader(r)
	var out []*core.Scan
	for reader.Next() {
		out = append(out, reader.Scan())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// readScan reads a single scan entry
func (r *Reader) readScan() (*core.Scan, error) {
	scan := &core.Scan{MSLevel: 1}

	started := false
	numPeaks := -1

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if numPeaks >= 0 {
			peak, err := parsePeak(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
			scan.Peaks = append(scan.Peaks, peak)
			if len(scan.Peaks) == numPeaks {
				return finish(scan), nil
			}
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: expected 'Key: value', got '%s'", r.lineNum, line)
		}
		value = strings.TrimSpace(value)
		started = true

		var err error
		switch strings.TrimSpace(key) {
		case "Scan":
			scan.Number, err = strconv.Atoi(value)
		case "RT":
			scan.RT, err = strconv.ParseFloat(value, 64)
		case "MSLevel":
			scan.MSLevel, err = strconv.Atoi(value)
		case "PrecursorMZ":
			scan.PrecursorMZ, err = strconv.ParseFloat(value, 64)
		case "Num peaks":
			numPeaks, err = strconv.Atoi(value)
			if err == nil && numPeaks < 0 {
				err = errors.New("negative count")
			}
			if err == nil && numPeaks == 0 {
				return finish(scan), nil
			}
		default:
			// Unknown headers are tolerated.
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s value '%s': %w", r.lineNum, key, value, err)
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	if numPeaks > 0 {
		return nil, fmt.Errorf("line %d: scan %d ended after %d of %d peaks",
			r.lineNum, scan.Number, len(scan.Peaks), numPeaks)
	}
	if started {
		return nil, fmt.Errorf("line %d: scan %d has no 'Num peaks' line", r.lineNum, scan.Number)
	}

	return nil, io.EOF
}

func finish(scan *core.Scan) *core.Scan {
	if !scan.ArePeaksSorted() {
		scan.SortPeaks()
	}
	return scan
}

// parsePeak parses a single peak line (format: "mz intensity [mobility]")
func parsePeak(line string) (core.Peak, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return core.Peak{}, fmt.Errorf("invalid peak format, expected 2 or 3 fields")
	}

	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid m/z value: %w", err)
	}

	intensity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid intensity value: %w", err)
	}

	peak := core.Peak{MZ: mz, Intensity: intensity}
	if len(fields) == 3 {
		if peak.Mobility, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return core.Peak{}, fmt.Errorf("invalid mobility value: %w", err)
		}
	}
	return peak, nil
}
