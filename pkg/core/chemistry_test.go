package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculatePeptideMass(t *testing.T) {
	tests := []struct {
		name          string
		sequence      string
		charge        int
		modifications []Modification
		wantMZ        float64
		tolerance     float64
	}{
		{
			name:      "simple peptide charge 1",
			sequence:  "AAA",
			charge:    1,
			wantMZ:    232.129,
			tolerance: 0.01,
		},
		{
			name:      "simple peptide charge 2",
			sequence:  "AAA",
			charge:    2,
			wantMZ:    116.568,
			tolerance: 0.01,
		},
		{
			name:     "peptide with modification",
			sequence: "PEPTIDE",
			charge:   2,
			modifications: []Modification{
				{Mass: 57.021464, Position: 0},
			},
			wantMZ:    429.2,
			tolerance: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePeptideMass(tt.sequence, tt.charge, tt.modifications)
			require.InDelta(t, tt.wantMZ, got, tt.tolerance)
		})
	}
}

func TestCalculateNeutralMass(t *testing.T) {
	tests := []struct {
		name          string
		sequence      string
		modifications []Modification
		wantMass      float64
	}{
		{"simple tripeptide", "AAA", nil, 231.1219},
		{"with modification", "AAA", []Modification{{Mass: 57.021464, Position: 0}}, 288.1434},
		{"unknown residues ignored", "AAXA", nil, 231.1219},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.wantMass, CalculateNeutralMass(tt.sequence, tt.modifications), 0.001)
		})
	}
}

func TestMassToMZ(t *testing.T) {
	require.InDelta(t, 100+ProtonMass, MassToMZ(100, 1), 1e-9)
	require.InDelta(t, (200+2*ProtonMass)/2, MassToMZ(200, 2), 1e-9)
}

func TestRoundFloat(t *testing.T) {
	tests := []struct {
		name      string
		val       float64
		precision int
		want      float64
	}{
		{"round to 2 decimals", 3.14159, 2, 3.14},
		{"round to 4 decimals", 3.14159, 4, 3.1416},
		{"round to 0 decimals", 3.6, 0, 4.0},
		{"round negative", -3.14159, 2, -3.14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RoundFloat(tt.val, tt.precision))
		})
	}
}
