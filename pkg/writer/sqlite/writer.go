// Package sqlite provides SQLite database writing for gap-fill results
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/gapfill/pkg/core"
	"github.com/ChrisMcGann/gapfill/pkg/gapfill"
)

// Date format for RunTable (ISO 8601)
const runDateFormat = "2006-01-02 15:04:05"

// RunInfo describes the inputs of one gap-fill run.
type RunInfo struct {
	TargetsPath string
	ScansPath   string
	Tolerances  core.Tolerances
	Mobility    bool
}

// Writer handles writing gap-fill results to SQLite database files
type Writer struct {
	db          *sql.DB
	outputPath  string
	runID       string
	clusterStmt *sql.Stmt
	featureStmt *sql.Stmt
	clusters    int
	features    int
}

// NewWriter creates a new SQLite writer and records the run.
func NewWriter(outputPath string, info RunInfo) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		runID:      uuid.NewString(),
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.writeRun(info); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// RunID returns the identifier stored with every row of this run.
func (w *Writer) RunID() string {
	return w.runID
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId TEXT PRIMARY KEY,
		CreationDate TEXT,
		CompletionDate TEXT,
		TargetsPath TEXT,
		ScansPath TEXT,
		MZToleranceAbs DOUBLE,
		MZTolerancePPM DOUBLE,
		RTWindow DOUBLE,
		MobilityWindow DOUBLE,
		ShapeTolerance DOUBLE,
		NoiseFloor DOUBLE,
		Mobility BOOL,
		ClusterCount INTEGER,
		FeatureCount INTEGER
	);

	CREATE TABLE IF NOT EXISTS ClusterTable (
		RunId TEXT REFERENCES RunTable(RunId),
		ClusterId INTEGER,
		Labels TEXT,
		TargetCount INTEGER,
		MZMin DOUBLE,
		MZMax DOUBLE,
		RTMin DOUBLE,
		RTMax DOUBLE,
		MobilityMin DOUBLE,
		MobilityMax DOUBLE,
		Outcome TEXT,
		PRIMARY KEY (RunId, ClusterId)
	);

	CREATE TABLE IF NOT EXISTS FeatureTable (
		FeatureId INTEGER PRIMARY KEY,
		RunId TEXT REFERENCES RunTable(RunId),
		ClusterId INTEGER,
		MZ DOUBLE,
		RetentionTime DOUBLE,
		Height DOUBLE,
		Area DOUBLE,
		MZMin DOUBLE,
		MZMax DOUBLE,
		RTMin DOUBLE,
		RTMax DOUBLE,
		IntensityMin DOUBLE,
		IntensityMax DOUBLE,
		Mobility DOUBLE,
		MobilityMin DOUBLE,
		MobilityMax DOUBLE,
		ScanNumber INTEGER,
		MS2Scans TEXT,
		NumPoints INTEGER,
		blobRetentionTime BLOB,
		blobIntensity BLOB
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

func (w *Writer) writeRun(info RunInfo) error {
	tol := info.Tolerances
	_, err := w.db.Exec(`
		INSERT INTO RunTable (
			RunId, CreationDate, TargetsPath, ScansPath,
			MZToleranceAbs, MZTolerancePPM, RTWindow, MobilityWindow,
			ShapeTolerance, NoiseFloor, Mobility
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, w.runID, time.Now().Format(runDateFormat), info.TargetsPath, info.ScansPath,
		tol.MZ.Abs, tol.MZ.PPM, tol.RTWindow, tol.MobilityWindow,
		tol.ShapeTolerance, tol.NoiseFloor, info.Mobility)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.clusterStmt, err = w.db.Prepare(`
		INSERT INTO ClusterTable (
			RunId, ClusterId, Labels, TargetCount, MZMin, MZMax,
			RTMin, RTMax, MobilityMin, MobilityMax, Outcome
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cluster statement: %w", err)
	}

	w.featureStmt, err = w.db.Prepare(`
		INSERT INTO FeatureTable (
			RunId, ClusterId, MZ, RetentionTime, Height, Area,
			MZMin, MZMax, RTMin, RTMax, IntensityMin, IntensityMax,
			Mobility, MobilityMin, MobilityMax, ScanNumber, MS2Scans,
			NumPoints, blobRetentionTime, blobIntensity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare feature statement: %w", err)
	}

	return nil
}

// WriteResult writes one cluster and, when present, its feature.
func (w *Writer) WriteResult(res gapfill.Result) error {
	c := res.Cluster
	rtMin, rtMax := optionalBounds(c.Window.RT)
	mobMin, mobMax := optionalBounds(c.Window.Mobility)

	_, err := w.clusterStmt.Exec(
		w.runID,              // RunId
		c.ID,                 // ClusterId
		c.Name(),             // Labels
		len(c.Targets),       // TargetCount
		c.Window.MZ.Min,      // MZMin
		c.Window.MZ.Max,      // MZMax
		rtMin,                // RTMin
		rtMax,                // RTMax
		mobMin,               // MobilityMin
		mobMax,               // MobilityMax
		res.Outcome.String(), // Outcome
	)
	if err != nil {
		return fmt.Errorf("failed to insert cluster %d: %w", c.ID, err)
	}
	w.clusters++

	if res.Feature == nil {
		return nil
	}

	f := res.Feature
	var mobility interface{}
	if f.Mobility != nil {
		mobility = *f.Mobility
	}
	fMobMin, fMobMax := optionalBounds(f.MobilityRange)

	_, err = w.featureStmt.Exec(
		w.runID,                              // RunId
		c.ID,                                 // ClusterId
		f.MZ,                                 // MZ
		f.RT,                                 // RetentionTime
		f.Height,                             // Height
		core.RoundFloat(f.Area, 4),           // Area
		f.MZRange.Min,                        // MZMin
		f.MZRange.Max,                        // MZMax
		f.RTRange.Min,                        // RTMin
		f.RTRange.Max,                        // RTMax
		f.IntensityRange.Min,                 // IntensityMin
		f.IntensityRange.Max,                 // IntensityMax
		mobility,                             // Mobility
		fMobMin,                              // MobilityMin
		fMobMax,                              // MobilityMax
		f.RepresentativeScan,                 // ScanNumber
		joinScans(f.MS2Scans),                // MS2Scans
		len(f.Points),                        // NumPoints
		encodePointsFloat64(f.Points, true),  // blobRetentionTime
		encodePointsFloat64(f.Points, false), // blobIntensity
	)
	if err != nil {
		return fmt.Errorf("failed to insert feature for cluster %d: %w", c.ID, err)
	}
	w.features++

	return nil
}

func optionalBounds(r *core.Range) (interface{}, interface{}) {
	if r == nil {
		return nil, nil
	}
	return r.Min, r.Max
}

func joinScans(scans []int) string {
	parts := make([]string, len(scans))
	for i, s := range scans {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}

// encodePointsFloat64 encodes a feature trace as little-endian float64 blob
func encodePointsFloat64(points []core.Point, useRT bool) []byte {
	buf := make([]byte, len(points)*8)
	for i, p := range points {
		value := p.Intensity
		if useRT {
			value = p.RT
		}
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(value))
	}
	return buf
}

// Finalize completes the run record and closes the database
func (w *Writer) Finalize() error {
	_, err := w.db.Exec(`
		UPDATE RunTable SET CompletionDate = ?, ClusterCount = ?, FeatureCount = ?
		WHERE RunId = ?
	`, time.Now().Format(runDateFormat), w.clusters, w.features, w.runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return w.close()
}

// Abort closes the database without marking the run complete.
func (w *Writer) Abort() error {
	return w.close()
}

func (w *Writer) close() error {
	if w.clusterStmt != nil {
		w.clusterStmt.Close()
	}
	if w.featureStmt != nil {
		w.featureStmt.Close()
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
