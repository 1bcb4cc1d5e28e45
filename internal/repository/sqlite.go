package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

var _ Repository = (*SQLiteDB)(nil)

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Single connection: the driver is single-writer, and pooled conns
	// would each get their own :memory: database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS wards (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			district TEXT NOT NULL,
			province TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL
		);

		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'viewer',
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			province TEXT NOT NULL,
			ward TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			overall_risk_score INTEGER NOT NULL,
			risk_level TEXT NOT NULL,
			confidence_level TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_wards_province ON wards(province);
		CREATE INDEX IF NOT EXISTS idx_assessments_province ON assessments(province);
		CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) Add(ctx context.Context, w *models.Ward) error {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM wards WHERE code = ?`, w.Code).Scan(&exists); err != nil {
		return fmt.Errorf("error checking ward code: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("ward %s: %w", w.Code, ErrDuplicate)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO wards (code, name, district, province, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?)`,
		w.Code, w.Name, w.District, w.Province, w.Latitude, w.Longitude)
	if err != nil {
		return fmt.Errorf("error inserting ward: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading ward id: %w", err)
	}
	w.ID = id
	return nil
}

func (s *SQLiteDB) GetByCode(ctx context.Context, code string) (*models.Ward, error) {
	var w models.Ward
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, district, province, latitude, longitude
		FROM wards WHERE code = ?`, code).
		Scan(&w.ID, &w.Code, &w.Name, &w.District, &w.Province, &w.Latitude, &w.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ward %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching ward: %w", err)
	}
	return &w, nil
}

func (s *SQLiteDB) ListWards(ctx context.Context, opts WardFilter) ([]models.Ward, error) {
	query := `SELECT id, code, name, district, province, latitude, longitude FROM wards`

	var (
		conds []string
		args  []any
	)
	if opts.Province != "" {
		conds = append(conds, "province = ?")
		args = append(args, opts.Province)
	}
	if opts.District != "" {
		conds = append(conds, "district = ?")
		args = append(args, opts.District)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY province, district, name"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing wards: %w", err)
	}
	defer rows.Close()

	var wards []models.Ward
	for rows.Next() {
		var w models.Ward
		if err := rows.Scan(&w.ID, &w.Code, &w.Name, &w.District, &w.Province, &w.Latitude, &w.Longitude); err != nil {
			return nil, fmt.Errorf("error scanning ward: %w", err)
		}
		wards = append(wards, w)
	}
	return wards, rows.Err()
}

func (s *SQLiteDB) DeleteByCode(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wards WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("error deleting ward: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("ward %s: %w", code, ErrNotFound)
	}
	return nil
}

func (s *SQLiteDB) CountByProvince(ctx context.Context, province string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM wards WHERE province = ?`, province).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting wards: %w", err)
	}
	return n, nil
}

func (s *SQLiteDB) AddUser(ctx context.Context, u *models.User) error {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, u.Email).Scan(&exists); err != nil {
		return fmt.Errorf("error checking email: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("user %s: %w", u.Email, ErrDuplicate)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?)`,
		u.Email, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading user id: %w", err)
	}
	u.ID = id
	return nil
}

func (s *SQLiteDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, created_at
		FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return &u, nil
}

func (s *SQLiteDB) AddAssessment(ctx context.Context, rec *models.AssessmentRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, province, ward, latitude, longitude, overall_risk_score, risk_level, confidence_level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Province, rec.Ward, rec.Latitude, rec.Longitude,
		rec.OverallRiskScore, string(rec.RiskLevel), string(rec.ConfidenceLevel), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting assessment: %w", err)
	}
	return nil
}

func (s *SQLiteDB) ListAssessments(ctx context.Context, opts AssessmentFilter) ([]models.AssessmentRecord, error) {
	query := `SELECT id, province, ward, latitude, longitude, overall_risk_score, risk_level, confidence_level, created_at FROM assessments`

	var (
		conds []string
		args  []any
	)
	if opts.Province != "" {
		conds = append(conds, "province = ?")
		args = append(args, opts.Province)
	}
	if opts.Since != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, *opts.Since)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing assessments: %w", err)
	}
	defer rows.Close()

	var records []models.AssessmentRecord
	for rows.Next() {
		var rec models.AssessmentRecord
		if err := rows.Scan(&rec.ID, &rec.Province, &rec.Ward, &rec.Latitude, &rec.Longitude,
			&rec.OverallRiskScore, &rec.RiskLevel, &rec.ConfidenceLevel, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning assessment: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteDB) AssessmentStats(ctx context.Context) (*models.AssessmentStats, error) {
	stats := &models.AssessmentStats{ByRiskLevel: make(map[models.RiskLevel]int)}

	rows, err := s.db.QueryContext(ctx, `SELECT risk_level, COUNT(1) FROM assessments GROUP BY risk_level`)
	if err != nil {
		return nil, fmt.Errorf("error aggregating risk levels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			level models.RiskLevel
			n     int
		)
		if err := rows.Scan(&level, &n); err != nil {
			return nil, fmt.Errorf("error scanning stats row: %w", err)
		}
		stats.ByRiskLevel[level] = n
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		if err := s.db.QueryRowContext(ctx, `SELECT AVG(overall_risk_score) FROM assessments`).Scan(&stats.AverageScore); err != nil {
			return nil, fmt.Errorf("error averaging scores: %w", err)
		}
	}
	return stats, nil
}
