package service

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aparichit/backend/internal/domain"
	"aparichit/backend/internal/monitoring"
	"aparichit/backend/internal/storage"
	"aparichit/backend/internal/storage/filesystem"
	"aparichit/backend/internal/storage/memory"
)

// Shared across tests: promauto registers on the default registry,
// which tolerates only one registration per metric name.
var testMetrics = monitoring.NewMetrics()

func newTestService(t *testing.T) (*ComplaintService, *filesystem.Store) {
	t.Helper()

	base := t.TempDir()
	files, err := filesystem.NewStore(filepath.Join(base, "uploads"), filepath.Join(base, "backups"))
	require.NoError(t, err)

	svc := NewComplaintService(memory.NewStore(), files, testMetrics, zap.NewNop())
	return svc, files
}

func TestSubmit_NormalizesLooseInput(t *testing.T) {
	svc, _ := newTestService(t)

	c, err := svc.Submit(SubmitInput{
		Category: "no-such-category",
		Severity: 0,
		Text:     "  something bad happened  ",
	})
	require.NoError(t, err)

	// Unknown category falls back, out-of-range severity gets the default,
	// punishment is drawn from the fallback category.
	assert.Equal(t, "अधर्म", c.Category)
	assert.Equal(t, DefaultSeverity, c.Severity)
	assert.NotEmpty(t, c.Punishment)
	assert.Equal(t, "something bad happened", c.Text)
	assert.NotZero(t, c.ID)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, c.Timestamp)
}

func TestSubmit_KeepsValidInput(t *testing.T) {
	svc, _ := newTestService(t)

	c, err := svc.Submit(SubmitInput{
		Category:      "क्रोध",
		Severity:      9,
		Punishment:    "custom punishment",
		ReporterName:  "Ravi",
		ReporterEmail: "ravi@example.com",
		TargetName:    "Mohan",
		Text:          "he shouted at everyone",
	})
	require.NoError(t, err)
	assert.Equal(t, "क्रोध", c.Category)
	assert.Equal(t, 9, c.Severity)
	assert.Equal(t, "custom punishment", c.Punishment)
}

func TestSubmit_AttachmentLimits(t *testing.T) {
	svc, _ := newTestService(t)

	tooMany := make([]*domain.Attachment, MaxAttachments+1)
	for i := range tooMany {
		tooMany[i] = &domain.Attachment{Filename: "f.png", Content: []byte("x")}
	}
	_, err := svc.Submit(SubmitInput{Text: "t", Attachments: tooMany})
	assert.ErrorIs(t, err, ErrTooManyAttachments)

	huge := bytes.Repeat([]byte("a"), MaxAttachmentSize+1)
	_, err = svc.Submit(SubmitInput{Text: "t", Attachments: []*domain.Attachment{
		{Filename: "big.bin", Content: huge},
	}})
	assert.ErrorIs(t, err, ErrAttachmentTooLarge)
}

func TestSubmit_SavesAttachmentFiles(t *testing.T) {
	svc, files := newTestService(t)

	c, err := svc.Submit(SubmitInput{
		Category: "लोभ",
		Severity: 8,
		Text:     "kept the money",
		Attachments: []*domain.Attachment{
			{Filename: "proof.png", Mime: "image/png", Content: []byte("png-bytes")},
		},
	})
	require.NoError(t, err)
	require.Len(t, c.Attachments, 1)

	data, err := os.ReadFile(filepath.Join(files.UploadDir(), c.Attachments[0].Path))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Equal(t, c.ID, c.Attachments[0].ComplaintID)
}

// failingRepo wraps the memory store but rejects all writes.
type failingRepo struct {
	storage.ComplaintRepository
}

func (f *failingRepo) CreateComplaint(*domain.Complaint, []*domain.Attachment) (int64, error) {
	return 0, assert.AnError
}

func TestSubmit_CompensatesFilesOnDBFailure(t *testing.T) {
	base := t.TempDir()
	files, err := filesystem.NewStore(filepath.Join(base, "uploads"), filepath.Join(base, "backups"))
	require.NoError(t, err)

	svc := NewComplaintService(&failingRepo{memory.NewStore()}, files, testMetrics, zap.NewNop())

	_, err = svc.Submit(SubmitInput{
		Text: "t",
		Attachments: []*domain.Attachment{
			{Filename: "a.png", Content: []byte("x")},
			{Filename: "b.png", Content: []byte("y")},
		},
	})
	require.Error(t, err)

	// No orphaned files remain after the rollback.
	entries, err := os.ReadDir(files.UploadDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport_Snapshot(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(SubmitInput{Category: "छल", Severity: 8, Text: "deceived us"})
	require.NoError(t, err)
	_, err = svc.Submit(SubmitInput{Category: "आलस्य", Severity: 6, Text: "never works"})
	require.NoError(t, err)

	snap, err := svc.Export()
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ExportedAt)
	require.Len(t, snap.Complaints, 2)
	// Newest first.
	assert.Equal(t, "आलस्य", snap.Complaints[0].Category)
}

func TestBackup_WritesFile(t *testing.T) {
	svc, files := newTestService(t)

	_, err := svc.Submit(SubmitInput{Category: "काम", Severity: 8, Text: "misbehaved"})
	require.NoError(t, err)

	name, err := svc.Backup()
	require.NoError(t, err)
	assert.Regexp(t, `^backup_\d+.*\.json$`, name)

	names, err := files.ListBackups()
	require.NoError(t, err)
	assert.Contains(t, names, name)
}

func TestDelete_RemovesRowsAndFiles(t *testing.T) {
	svc, files := newTestService(t)

	c, err := svc.Submit(SubmitInput{
		Category: "अहंकार",
		Severity: 7,
		Text:     "too proud",
		Attachments: []*domain.Attachment{
			{Filename: "pic.jpg", Mime: "image/jpeg", Content: []byte("jpg")},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(c.ID))

	_, err = svc.Get(c.ID)
	assert.ErrorIs(t, err, storage.ErrComplaintNotFound)

	entries, err := os.ReadDir(files.UploadDir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, svc.Delete(c.ID), storage.ErrComplaintNotFound)
}
