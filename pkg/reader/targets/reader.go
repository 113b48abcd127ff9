// Package targets provides a streaming reader for CSV target lists.
//
// The first line is a header naming the columns. Recognized columns, in any
// order and case:
//
//	label     target name (defaults to "row N", or SEQUENCE/CHARGE)
//	mz        precursor m/z
//	rt        expected retention time in minutes (optional)
//	mobility  expected ion mobility (optional)
//	sequence  peptide sequence, used with charge when mz is empty
//	charge    precursor charge state
//	mods      modification string, e.g. "Carbamidomethyl@C3;Oxidation@M7"
package targets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/gapfill/pkg/core"
)

// ErrNoTargets reports a target list without a single target row.
var ErrNoTargets = errors.New("target list has no targets")

// Reader provides streaming access to target list files
type Reader struct {
	csv     *csv.Reader
	modDB   *core.ModDatabase
	columns map[string]int
	row     int
	current *core.Target
	err     error
}

// NewReader creates a new target list reader. A nil modDB uses the default
// modification database.
func NewReader(r io.Reader, modDB *core.ModDatabase) *Reader {
	if modDB == nil {
		modDB = core.DefaultModDatabase()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	return &Reader{csv: cr, modDB: modDB}
}

// Next advances to the next target. Returns false when no more targets or error.
func (r *Reader) Next() bool {
	r.current = nil
	if r.err != nil {
		return false
	}

	if r.columns == nil {
		if err := r.readHeader(); err != nil {
			if !errors.Is(err, io.EOF) {
				r.err = err
			}
			return false
		}
	}

	for {
		record, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			return false
		}
		if err != nil {
			r.err = fmt.Errorf("error reading target list: %w", err)
			return false
		}
		r.row++
		if blank(record) {
			continue
		}

		line, _ := r.csv.FieldPos(0)
		t, err := r.parseTarget(record)
		if err != nil {
			r.err = fmt.Errorf("line %d: %w", line, err)
			return false
		}
		if err := t.Validate(); err != nil {
			r.err = fmt.Errorf("line %d: %w", line, err)
			return false
		}
		r.current = t
		return true
	}
}

// Target returns the current target
func (r *Reader) Target() *core.Target {
	return r.current
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// Load reads every target from r.
func Load(r io.Reader, modDB *core.ModDatabase) ([]core.Target, error) {
	reader := NewReader(r, modDB)
	var out []core.Target
	for reader.Next() {
		out = append(out, *reader.Target())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("error reading target list header: %w", err)
	}

	r.columns = make(map[string]int, len(header))
	for i, name := range header {
		r.columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	_, hasMZ := r.columns["mz"]
	_, hasSeq := r.columns["sequence"]
	_, hasCharge := r.columns["charge"]
	if !hasMZ && !(hasSeq && hasCharge) {
		return fmt.Errorf("target list header needs an 'mz' column or 'sequence' and 'charge' columns")
	}
	return nil
}

func (r *Reader) field(record []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (r *Reader) parseTarget(record []string) (*core.Target, error) {
	t := &core.Target{Label: r.field(record, "label")}

	if mzStr := r.field(record, "mz"); mzStr != "" {
		mz, err := strconv.ParseFloat(mzStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid m/z value '%s': %w", mzStr, err)
		}
		t.MZ = mz
	} else {
		mz, name, err := r.peptideMZ(record)
		if err != nil {
			return nil, err
		}
		t.MZ = mz
		if t.Label == "" {
			t.Label = name
		}
	}

	var err error
	if t.RT, err = optionalFloat(r.field(record, "rt")); err != nil {
		return nil, fmt.Errorf("invalid retention time: %w", err)
	}
	if t.Mobility, err = optionalFloat(r.field(record, "mobility")); err != nil {
		return nil, fmt.Errorf("invalid mobility: %w", err)
	}

	if t.Label == "" {
		t.Label = fmt.Sprintf("row %d", r.row)
	}
	return t, nil
}

// peptideMZ derives the precursor m/z from sequence, charge and mods.
func (r *Reader) peptideMZ(record []string) (float64, string, error) {
	sequence := strings.ToUpper(r.field(record, "sequence"))
	chargeStr := r.field(record, "charge")
	if sequence == "" || chargeStr == "" {
		return 0, "", fmt.Errorf("row needs an m/z or a sequence and charge")
	}

	charge, err := strconv.Atoi(chargeStr)
	if err != nil || charge <= 0 {
		return 0, "", fmt.Errorf("invalid charge '%s'", chargeStr)
	}

	mods, err := r.modDB.ParseModString(r.field(record, "mods"))
	if err != nil {
		return 0, "", err
	}
	for _, m := range mods {
		if m.Position >= len(sequence) {
			return 0, "", fmt.Errorf("modification %s@%d is outside sequence %s", m.Name, m.Position+1, sequence)
		}
	}

	return core.CalculatePeptideMass(sequence, charge, mods), fmt.Sprintf("%s/%d", sequence, charge), nil
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
