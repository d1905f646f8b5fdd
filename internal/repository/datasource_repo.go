package repository

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/progress"
)

type completionDataSource struct {
	db *gorm.DB
}

// NewCompletionDataSource runs completion predicates against the host database.
func NewCompletionDataSource(db *gorm.DB) progress.DataSource {
	return &completionDataSource{db: db}
}

func (s *completionDataSource) Exists(ctx context.Context, query progress.BoundQuery) (bool, error) {
	return queryExists(ctx, s.db, query)
}

type gradeRow struct {
	FinalGrade *float64 `gorm:"column:finalgrade"`
	GradePass  float64  `gorm:"column:gradepass"`
}

func (s *completionDataSource) Grade(ctx context.Context, query progress.BoundQuery) (progress.Grade, bool, error) {
	rows, err := s.db.WithContext(ctx).Raw(query.Text, query.Args).Rows()
	if err != nil {
		return progress.Grade{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return progress.Grade{}, false, rows.Err()
	}

	var row gradeRow
	if err := s.db.ScanRows(rows, &row); err != nil {
		return progress.Grade{}, false, err
	}
	return progress.Grade{Final: row.FinalGrade, GradePass: row.GradePass}, true, nil
}

func queryExists(ctx context.Context, db *gorm.DB, query progress.BoundQuery) (bool, error) {
	rows, err := db.WithContext(ctx).Raw(query.Text, query.Args).Rows()
	if err != nil {
		return false, err
	}
	defer rows.Close()

	found := rows.Next()
	return found, rows.Err()
}

type logReader struct {
	db      *gorm.DB
	backend progress.LogBackend
}

// NewLogReader builds a reader for one log backend.
func NewLogReader(db *gorm.DB, backend progress.LogBackend) progress.LogReader {
	return &logReader{db: db, backend: backend}
}

func (r *logReader) Backend() progress.LogBackend {
	return r.backend
}

func (r *logReader) Exists(ctx context.Context, query progress.BoundQuery) (bool, error) {
	return queryExists(ctx, r.db, query)
}

var logBackendTables = map[progress.LogBackend]string{
	progress.LogBackendLegacy:   "log",
	progress.LogBackendStandard: "logstore_standard_log",
}

// NewLogReaders builds readers for the configured backends in order. Unknown
// backends and backends whose table is missing are skipped.
func NewLogReaders(db *gorm.DB, backends []string, logger zerolog.Logger) []progress.LogReader {
	log := logger.With().Str("component", "log_readers").Logger()

	readers := make([]progress.LogReader, 0, len(backends))
	for _, name := range backends {
		backend := progress.LogBackend(strings.ToLower(strings.TrimSpace(name)))
		if backend == "" {
			continue
		}
		table, ok := logBackendTables[backend]
		if !ok {
			log.Warn().Str("backend", string(backend)).Msg("unknown log backend skipped")
			continue
		}
		if !db.Migrator().HasTable(table) {
			log.Warn().Str("backend", string(backend)).Str("table", table).Msg("log backend table missing")
			continue
		}
		readers = append(readers, NewLogReader(db, backend))
	}

	if len(readers) == 0 {
		log.Warn().Strs("backends", backends).Msg("no log backend available; viewed actions will not complete")
	}
	return readers
}
