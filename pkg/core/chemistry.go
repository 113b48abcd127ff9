package core

import "math"

// Monoisotopic atomic masses.
const (
	MassH = 1.0078250321
	MassC = 12.0000000000
	MassN = 14.0030740052
	MassO = 15.9949146221
	MassS = 31.9720706900

	// Proton mass for charge calculations
	ProtonMass = 1.00727646688
)

// Composition stores the elemental composition of a residue or molecule.
type Composition struct {
	C, H, N, O, S int
}

func (c Composition) add(o Composition) Composition {
	return Composition{C: c.C + o.C, H: c.H + o.H, N: c.N + o.N, O: c.O + o.O, S: c.S + o.S}
}

// MonoisotopicMass returns the monoisotopic mass of the composition.
func (c Composition) MonoisotopicMass() float64 {
	return float64(c.C)*MassC +
		float64(c.H)*MassH +
		float64(c.N)*MassN +
		float64(c.O)*MassO +
		float64(c.S)*MassS
}

// water is added once per peptide for the free termini.
var water = Composition{H: 2, O: 1}

// ResidueCompositions maps amino acid one-letter codes to residue compositions.
var ResidueCompositions = map[rune]Composition{
	'A': {C: 3, H: 5, N: 1, O: 1},
	'R': {C: 6, H: 12, N: 4, O: 1},
	'N': {C: 4, H: 6, N: 2, O: 2},
	'D': {C: 4, H: 5, N: 1, O: 3},
	'C': {C: 3, H: 5, N: 1, O: 1, S: 1},
	'E': {C: 5, H: 7, N: 1, O: 3},
	'Q': {C: 5, H: 8, N: 2, O: 2},
	'G': {C: 2, H: 3, N: 1, O: 1},
	'H': {C: 6, H: 7, N: 3, O: 1},
	'I': {C: 6, H: 11, N: 1, O: 1},
	'L': {C: 6, H: 11, N: 1, O: 1},
	'K': {C: 6, H: 12, N: 2, O: 1},
	'M': {C: 5, H: 9, N: 1, O: 1, S: 1},
	'F': {C: 9, H: 9, N: 1, O: 1},
	'P': {C: 5, H: 7, N: 1, O: 1},
	'S': {C: 3, H: 5, N: 1, O: 2},
	'T': {C: 4, H: 7, N: 1, O: 2},
	'W': {C: 11, H: 10, N: 2, O: 1},
	'Y': {C: 9, H: 9, N: 1, O: 2},
	'V': {C: 5, H: 9, N: 1, O: 1},
}

// CalculateNeutralMass computes the neutral monoisotopic mass of a peptide
// including modifications. Unknown residue letters are ignored.
func CalculateNeutralMass(sequence string, modifications []Modification) float64 {
	comp := water
	for _, aa := range sequence {
		if residue, ok := ResidueCompositions[aa]; ok {
			comp = comp.add(residue)
		}
	}

	mass := comp.MonoisotopicMass()
	for _, mod := range modifications {
		mass += mod.Mass
	}
	return mass
}

// CalculatePeptideMass returns the m/z of a peptide at the given charge state.
func CalculatePeptideMass(sequence string, charge int, modifications []Modification) float64 {
	return MassToMZ(CalculateNeutralMass(sequence, modifications), charge)
}

// MassToMZ converts a neutral mass into the m/z of its [M+zH]z+ ion.
func MassToMZ(mass float64, charge int) float64 {
	return (mass + float64(charge)*ProtonMass) / float64(charge)
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
