package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-intake/constants"
	"github.com/joseph-ayodele/doc-intake/internal/entity"
)

func newTestStore(t *testing.T) DocumentStore {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, dialect, err := Open(ctx, Config{DSN: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.Equal(t, DialectSQLite, dialect)
	require.NoError(t, Migrate(ctx, db, dialect))
	return NewDocumentStore(db, dialect, nil)
}

func TestRecordAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Record(ctx, &entity.Document{
		FileName:      "/final/scan_001.pdf",
		Basename:      "scan_001.pdf",
		DocumentType:  constants.DocTypeReferral,
		ExtractedText: "Patient referred to cardiology.",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	docs, err := store.List(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)
	assert.Equal(t, constants.DocTypeReferral, docs[0].DocumentType)
	assert.Equal(t, "scan_001.pdf", docs[0].Basename)
	assert.False(t, docs[0].FlaggedForReprocess)
	assert.False(t, docs[0].ProcessedAt.IsZero())
}

func TestListDateWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for _, d := range []*entity.Document{
		{Basename: "old.pdf", FileName: "/f/old.pdf", DocumentType: constants.DocTypeOther, ProcessedAt: old},
		{Basename: "new.pdf", FileName: "/f/new.pdf", DocumentType: constants.DocTypeOrder, ProcessedAt: recent},
	} {
		_, err := store.Record(ctx, d)
		require.NoError(t, err)
	}

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	docs, err := store.List(ctx, &from, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "new.pdf", docs[0].Basename)
}

func TestSetReprocessFlag(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Record(ctx, &entity.Document{
		Basename: "doc.tiff", FileName: "/f/doc.tiff", DocumentType: constants.DocTypeOther,
	})
	require.NoError(t, err)

	require.NoError(t, store.SetReprocessFlag(ctx, id, true))
	docs, err := store.List(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.True(t, docs[0].FlaggedForReprocess)

	err = store.SetReprocessFlag(ctx, uuid.New(), true)
	require.Error(t, err, "flagging an unknown id should fail")
}
