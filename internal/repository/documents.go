package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-intake/constants"
	"github.com/joseph-ayodele/doc-intake/internal/common"
	"github.com/joseph-ayodele/doc-intake/internal/entity"
)

// DocumentStore records finalized documents and serves the export and
// reprocessing tools.
type DocumentStore interface {
	Record(ctx context.Context, doc *entity.Document) (uuid.UUID, error)
	List(ctx context.Context, fromDate, toDate *time.Time) ([]*entity.Document, error)
	SetReprocessFlag(ctx context.Context, id uuid.UUID, flagged bool) error
}

type documentStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

func NewDocumentStore(db *sql.DB, dialect Dialect, logger *slog.Logger) DocumentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentStore{db: db, dialect: dialect, logger: logger}
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	file_name TEXT NOT NULL,
	basename TEXT NOT NULL,
	document_type TEXT NOT NULL,
	extracted_text TEXT NOT NULL DEFAULT '',
	orientation_corrected INTEGER NOT NULL DEFAULT 0,
	flagged_for_reprocessing INTEGER NOT NULL DEFAULT 0,
	processed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_processed_at ON documents (processed_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id UUID PRIMARY KEY,
	file_name TEXT NOT NULL,
	basename TEXT NOT NULL,
	document_type TEXT NOT NULL,
	extracted_text TEXT NOT NULL DEFAULT '',
	orientation_corrected BOOLEAN NOT NULL DEFAULT FALSE,
	flagged_for_reprocessing BOOLEAN NOT NULL DEFAULT FALSE,
	processed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_processed_at ON documents (processed_at);
`

// Migrate creates the documents table when absent.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	schema := sqliteSchema
	if dialect == DialectPostgres {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return common.NewAppError("MIGRATE", "could not create documents table", err)
	}
	return nil
}

// ph renders the placeholder for position n in the store's dialect.
func (s *documentStore) ph(n int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *documentStore) Record(ctx context.Context, doc *entity.Document) (uuid.UUID, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.ProcessedAt.IsZero() {
		doc.ProcessedAt = time.Now().UTC()
	}
	q := fmt.Sprintf(`INSERT INTO documents
		(id, file_name, basename, document_type, extracted_text, orientation_corrected, flagged_for_reprocessing, processed_at)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s)`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6), s.ph(7), s.ph(8))

	_, err := s.db.ExecContext(ctx, q,
		doc.ID.String(), doc.FileName, doc.Basename, string(doc.DocumentType),
		doc.ExtractedText, doc.OrientationCorrected, doc.FlaggedForReprocess, doc.ProcessedAt)
	if err != nil {
		s.logger.Error("documents.record.failed", "basename", doc.Basename, "error", err)
		return uuid.Nil, common.NewAppError("RECORD", "could not record document", err)
	}
	s.logger.Info("documents.record.ok", "id", doc.ID, "basename", doc.Basename, "type", doc.DocumentType)
	return doc.ID, nil
}

func (s *documentStore) List(ctx context.Context, fromDate, toDate *time.Time) ([]*entity.Document, error) {
	q := `SELECT id, file_name, basename, document_type, extracted_text,
		orientation_corrected, flagged_for_reprocessing, processed_at FROM documents`
	var args []any
	var conds []string
	if fromDate != nil {
		args = append(args, *fromDate)
		conds = append(conds, fmt.Sprintf("processed_at >= %s", s.ph(len(args))))
	}
	if toDate != nil {
		args = append(args, *toDate)
		conds = append(conds, fmt.Sprintf("processed_at <= %s", s.ph(len(args))))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY processed_at"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.logger.Error("documents.list.failed", "error", err)
		return nil, common.NewAppError("LIST", "could not list documents", err)
	}
	defer rows.Close()

	var out []*entity.Document
	for rows.Next() {
		var d entity.Document
		var id, docType string
		if err := rows.Scan(&id, &d.FileName, &d.Basename, &docType, &d.ExtractedText,
			&d.OrientationCorrected, &d.FlaggedForReprocess, &d.ProcessedAt); err != nil {
			return nil, err
		}
		d.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("bad document id %q: %w", id, err)
		}
		d.DocumentType = constants.DocType(docType)
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (s *documentStore) SetReprocessFlag(ctx context.Context, id uuid.UUID, flagged bool) error {
	q := fmt.Sprintf("UPDATE documents SET flagged_for_reprocessing = %s WHERE id = %s", s.ph(1), s.ph(2))
	res, err := s.db.ExecContext(ctx, q, flagged, id.String())
	if err != nil {
		s.logger.Error("documents.flag.failed", "id", id, "error", err)
		return common.NewAppError("FLAG", "could not update reprocess flag", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return common.NewAppError("FLAG", "no document with id "+id.String(), sql.ErrNoRows)
	}
	s.logger.Info("documents.flag.ok", "id", id, "flagged", flagged)
	return nil
}
