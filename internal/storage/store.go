// Package storage persists extracted BET records in sqlite. One record is a
// flat set of five related row groups keyed by the file_info id; records are
// written once and never updated, a re-upload always creates a new id.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"betlab/pkg/contracts/domain"
)

// ErrRecordNotFound is returned when no record exists for a file id.
var ErrRecordNotFound = errors.New("record not found")

// FileEntry is one row of the upload listing.
type FileEntry struct {
	ID                int64  `json:"id"`
	FileName          string `json:"file_name"`
	MeasurementID     string `json:"measurement_id"`
	DateOfMeasurement string `json:"date_of_measurement"`
	TimeOfMeasurement string `json:"time_of_measurement"`
}

// Store wraps the sqlite database holding all processed records.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (and if needed creates) the database at dsn and applies the
// schema.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// sqlite handles one writer; a single connection sidesteps SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &Store{db: db, logger: logger.With(slog.String("component", "storage"))}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks that the database file is still reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS file_info (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_name TEXT, date_of_measurement TEXT, time_of_measurement TEXT,
			comment1 TEXT, comment2 TEXT, comment3 TEXT, comment4 TEXT,
			serial_number TEXT, version TEXT, measurement_id TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS bet_parameters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_info_id INTEGER NOT NULL,
			sample_weight REAL, standard_volume REAL, dead_volume REAL,
			equilibrium_time REAL, adsorptive TEXT, apparatus_temperature REAL,
			adsorption_temperature REAL, starting_point INTEGER, end_point INTEGER,
			slope REAL, intercept REAL, correlation_coefficient REAL,
			vm REAL, as_bet REAL, c_value REAL,
			total_pore_volume REAL, average_pore_diameter REAL
		)`,
		`CREATE TABLE IF NOT EXISTS technical_info (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_info_id INTEGER NOT NULL,
			saturated_vapor_pressure REAL, adsorption_cross_section REAL,
			wall_adsorption_correction1 TEXT, wall_adsorption_correction2 TEXT,
			num_adsorption_points INTEGER, num_desorption_points INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS bet_plot_columns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_info_id INTEGER NOT NULL, col_index INTEGER, col_name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS bet_data_points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_info_id INTEGER NOT NULL, no INTEGER,
			col_index INTEGER, value REAL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// SaveRecord writes the record as one transaction and returns the new file
// id. Nothing is persisted when any part fails.
func (s *Store) SaveRecord(ctx context.Context, rec *domain.BetRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	fi := rec.FileInfo
	res, err := tx.ExecContext(ctx,
		`INSERT INTO file_info
			(file_name, date_of_measurement, time_of_measurement,
			 comment1, comment2, comment3, comment4, serial_number, version, measurement_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fi.FileName, fi.DateOfMeasurement, fi.TimeOfMeasurement,
		fi.Comment1, fi.Comment2, fi.Comment3, fi.Comment4,
		fi.SerialNumber, fi.Version, rec.MeasurementID)
	if err != nil {
		return 0, fmt.Errorf("insert file_info: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("file_info id: %w", err)
	}

	p := rec.Parameters
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO bet_parameters
			(file_info_id, sample_weight, standard_volume, dead_volume, equilibrium_time,
			 adsorptive, apparatus_temperature, adsorption_temperature, starting_point,
			 end_point, slope, intercept, correlation_coefficient, vm, as_bet, c_value,
			 total_pore_volume, average_pore_diameter)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.SampleWeight, p.StandardVolume, p.DeadVolume, p.EquilibriumTime,
		p.Adsorptive, p.ApparatusTemperature, p.AdsorptionTemperature, p.StartingPoint,
		p.EndPoint, p.Slope, p.Intercept, p.CorrelationCoefficient, p.Vm, p.AsBet,
		p.CValue, p.TotalPoreVolume, p.AveragePoreDiameter); err != nil {
		return 0, fmt.Errorf("insert bet_parameters: %w", err)
	}

	t := rec.Technical
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO technical_info
			(file_info_id, saturated_vapor_pressure, adsorption_cross_section,
			 wall_adsorption_correction1, wall_adsorption_correction2,
			 num_adsorption_points, num_desorption_points)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, t.SaturatedVaporPressure, t.AdsorptionCrossSection,
		t.WallAdsorptionCorrection1, t.WallAdsorptionCorrection2,
		t.NumAdsorptionPoints, t.NumDesorptionPoints); err != nil {
		return 0, fmt.Errorf("insert technical_info: %w", err)
	}

	for _, c := range rec.PlotColumns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bet_plot_columns (file_info_id, col_index, col_name) VALUES (?, ?, ?)`,
			id, c.Index, c.Name); err != nil {
			return 0, fmt.Errorf("insert bet_plot_columns: %w", err)
		}
	}

	for _, pt := range rec.DataPoints {
		for _, c := range rec.PlotColumns {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO bet_data_points (file_info_id, no, col_index, value) VALUES (?, ?, ?, ?)`,
				id, pt.No, c.Index, pt.Value(c.Index)); err != nil {
				return 0, fmt.Errorf("insert bet_data_points: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.logger.InfoContext(ctx, "record persisted",
		slog.Int64("file_id", id),
		slog.Int("data_points", len(rec.DataPoints)))
	return id, nil
}

// GetRecord reads one record back as the immutable aggregate.
func (s *Store) GetRecord(ctx context.Context, id int64) (*domain.BetRecord, error) {
	rec := &domain.BetRecord{}
	fi := &rec.FileInfo
	err := s.db.QueryRowContext(ctx,
		`SELECT file_name, date_of_measurement, time_of_measurement,
			comment1, comment2, comment3, comment4, serial_number, version, measurement_id
		 FROM file_info WHERE id = ?`, id).Scan(
		&fi.FileName, &fi.DateOfMeasurement, &fi.TimeOfMeasurement,
		&fi.Comment1, &fi.Comment2, &fi.Comment3, &fi.Comment4,
		&fi.SerialNumber, &fi.Version, &rec.MeasurementID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select file_info: %w", err)
	}

	p := &rec.Parameters
	err = s.db.QueryRowContext(ctx,
		`SELECT sample_weight, standard_volume, dead_volume, equilibrium_time,
			adsorptive, apparatus_temperature, adsorption_temperature, starting_point,
			end_point, slope, intercept, correlation_coefficient, vm, as_bet, c_value,
			total_pore_volume, average_pore_diameter
		 FROM bet_parameters WHERE file_info_id = ?`, id).Scan(
		&p.SampleWeight, &p.StandardVolume, &p.DeadVolume, &p.EquilibriumTime,
		&p.Adsorptive, &p.ApparatusTemperature, &p.AdsorptionTemperature, &p.StartingPoint,
		&p.EndPoint, &p.Slope, &p.Intercept, &p.CorrelationCoefficient, &p.Vm, &p.AsBet,
		&p.CValue, &p.TotalPoreVolume, &p.AveragePoreDiameter)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("select bet_parameters: %w", err)
	}

	t := &rec.Technical
	err = s.db.QueryRowContext(ctx,
		`SELECT saturated_vapor_pressure, adsorption_cross_section,
			wall_adsorption_correction1, wall_adsorption_correction2,
			num_adsorption_points, num_desorption_points
		 FROM technical_info WHERE file_info_id = ?`, id).Scan(
		&t.SaturatedVaporPressure, &t.AdsorptionCrossSection,
		&t.WallAdsorptionCorrection1, &t.WallAdsorptionCorrection2,
		&t.NumAdsorptionPoints, &t.NumDesorptionPoints)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("select technical_info: %w", err)
	}

	cols, err := s.db.QueryContext(ctx,
		`SELECT col_index, col_name FROM bet_plot_columns WHERE file_info_id = ? ORDER BY col_index`, id)
	if err != nil {
		return nil, fmt.Errorf("select bet_plot_columns: %w", err)
	}
	defer cols.Close()
	for cols.Next() {
		var c domain.PlotColumn
		if err := cols.Scan(&c.Index, &c.Name); err != nil {
			return nil, fmt.Errorf("scan plot column: %w", err)
		}
		rec.PlotColumns = append(rec.PlotColumns, c)
	}
	if err := cols.Err(); err != nil {
		return nil, fmt.Errorf("iterate plot columns: %w", err)
	}

	pts, err := s.db.QueryContext(ctx,
		`SELECT no, col_index, value FROM bet_data_points WHERE file_info_id = ? ORDER BY no, col_index`, id)
	if err != nil {
		return nil, fmt.Errorf("select bet_data_points: %w", err)
	}
	defer pts.Close()
	byNo := map[int]*domain.DataPoint{}
	var order []int
	for pts.Next() {
		var no, colIndex int
		var value *float64
		if err := pts.Scan(&no, &colIndex, &value); err != nil {
			return nil, fmt.Errorf("scan data point: %w", err)
		}
		dp, ok := byNo[no]
		if !ok {
			dp = &domain.DataPoint{No: no, Values: map[int]*float64{}}
			byNo[no] = dp
			order = append(order, no)
		}
		if value != nil {
			dp.Values[colIndex] = value
		}
	}
	if err := pts.Err(); err != nil {
		return nil, fmt.Errorf("iterate data points: %w", err)
	}
	for _, no := range order {
		rec.DataPoints = append(rec.DataPoints, *byNo[no])
	}

	return rec, nil
}

// SetMeasurementID stores the derived identifier for an existing record.
// The id is only known after the insert, so this runs as a second step.
func (s *Store) SetMeasurementID(ctx context.Context, id int64, measurementID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE file_info SET measurement_id = ? WHERE id = ?`, measurementID, id)
	if err != nil {
		return fmt.Errorf("set measurement id: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ListFiles returns all uploads, newest first.
func (s *Store) ListFiles(ctx context.Context) ([]FileEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_name, measurement_id, date_of_measurement, time_of_measurement
		 FROM file_info ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	entries := []FileEntry{}
	for rows.Next() {
		var e FileEntry
		if err := rows.Scan(&e.ID, &e.FileName, &e.MeasurementID, &e.DateOfMeasurement, &e.TimeOfMeasurement); err != nil {
			return nil, fmt.Errorf("scan file entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return entries, nil
}
