package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Modification is a residue mass shift on a peptide target.
type Modification struct {
	Mass     float64
	Position int    // 0-based residue index; -1 for N-term
	Name     string // e.g. "Carbamidomethyl", "Oxidation"
}

// ModDatabase maps modification names to mass shifts.
type ModDatabase struct {
	mods map[string]float64
}

// NewModDatabase creates an empty modification database
func NewModDatabase() *ModDatabase {
	return &ModDatabase{mods: make(map[string]float64)}
}

// unimodMasses are the monoisotopic mass shifts loaded by DefaultModDatabase.
var unimodMasses = map[string]float64{
	"Acetyl":          42.010565,
	"Amidated":        -0.984016,
	"Carbamidomethyl": 57.021464,
	"Carbamyl":        43.005814,
	"Deamidated":      0.984016,
	"Dimethyl":        28.0313,
	"Gln->pyro-Glu":   -17.026549,
	"Glu->pyro-Glu":   -18.010565,
	"GlyGly":          114.042927,
	"HexNAc":          203.079373,
	"Methyl":          14.01565,
	"Oxidation":       15.994915,
	"Phospho":         79.966331,
	"Propionyl":       56.026215,
	"Succinyl":        100.016044,
	"TMT":             229.162932,
	"TMTPro":          304.207146,
	"Trimethyl":       42.04695,
	"iTRAQ4plex":      144.102063,
	"iTRAQ8plex":      304.205360,
}

// DefaultModDatabase returns a ModDatabase pre-loaded with common unimod entries.
func DefaultModDatabase() *ModDatabase {
	db := NewModDatabase()
	for name, mass := range unimodMasses {
		db.Add(name, mass)
	}
	return db
}

// LoadFromCSV loads modifications from CSV (header line, then name,massshift[,...]).
func (db *ModDatabase) LoadFromCSV(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("error reading CSV header: %w", err)
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(record) < 2 {
			return fmt.Errorf("line %d: invalid format, expected at least 2 comma-separated fields", line)
		}

		name := strings.TrimSpace(record[0])
		mass, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid mass value '%s': %w", line, record[1], err)
		}
		db.Add(name, mass)
	}
}

// GetMass returns the mass shift for a modification name
func (db *ModDatabase) GetMass(name string) (float64, bool) {
	mass, ok := db.mods[name]
	return mass, ok
}

// Add adds or updates a modification
func (db *ModDatabase) Add(name string, mass float64) {
	db.mods[name] = mass
}

// Len returns the number of known modifications.
func (db *ModDatabase) Len() int {
	return len(db.mods)
}

// ParseModString parses "57.021464@C2;Oxidation@M8" style modification lists.
// Each entry is a mass or a known name, then '@', then a 1-based position
// optionally prefixed by the residue letter.
func (db *ModDatabase) ParseModString(modStr string) ([]Modification, error) {
	if strings.TrimSpace(modStr) == "" {
		return nil, nil
	}

	var mods []Modification
	for _, part := range strings.Split(modStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		nameOrMass, posStr, ok := strings.Cut(part, "@")
		if !ok {
			return nil, fmt.Errorf("invalid modification format '%s', expected 'name@position' or 'mass@position'", part)
		}
		nameOrMass = strings.TrimSpace(nameOrMass)

		mass, err := strconv.ParseFloat(nameOrMass, 64)
		if err != nil {
			var known bool
			mass, known = db.GetMass(nameOrMass)
			if !known {
				return nil, fmt.Errorf("unknown modification '%s'", nameOrMass)
			}
		}

		position, err := parsePosition(posStr)
		if err != nil {
			return nil, fmt.Errorf("invalid position '%s': %w", posStr, err)
		}

		mods = append(mods, Modification{Mass: mass, Position: position, Name: nameOrMass})
	}

	return mods, nil
}

// parsePosition converts "2", "C2" or "-1" (N-term) into a 0-based index.
func parsePosition(posStr string) (int, error) {
	posStr = strings.TrimSpace(posStr)
	if strings.HasSuffix(posStr, "-1") {
		return -1, nil
	}

	pos, err := strconv.Atoi(strings.TrimLeft(posStr, "ACDEFGHIKLMNPQRSTVWY"))
	if err != nil {
		return 0, fmt.Errorf("invalid position number: %w", err)
	}
	if pos > 0 {
		pos--
	}
	return pos, nil
}
