package sql

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aparichit/backend/internal/domain"
	"aparichit/backend/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore("sqlite", path, 1, 1, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleComplaint() *domain.Complaint {
	return &domain.Complaint{
		Timestamp:     "2026-08-28T10:00:00.000Z",
		Category:      "लोभ",
		Severity:      8,
		Punishment:    "तरलौह नरक: पिघली हुई धातु निगलनी होगी सदा",
		ReporterName:  "Sita",
		ReporterEmail: "sita@example.com",
		TargetName:    "Lakhan",
		Identifier:    "colony-12",
		Text:          "he kept the borrowed money",
	}
}

func TestNewStore_UnsupportedDriver(t *testing.T) {
	_, err := NewStore("mysql", "dsn", 1, 1, time.Minute)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestCreateComplaint_WithAttachments(t *testing.T) {
	s := newTestStore(t)

	atts := []*domain.Attachment{
		{Filename: "proof.png", Path: "u1_proof.png", Mime: "image/png"},
		{Filename: "note.pdf", Path: "u2_note.pdf", Mime: "application/pdf"},
	}

	id, err := s.CreateComplaint(sampleComplaint(), atts)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	got, err := s.GetComplaint(id)
	require.NoError(t, err)
	assert.Equal(t, "लोभ", got.Category)
	assert.Equal(t, 8, got.Severity)
	require.Len(t, got.Attachments, 2)
	assert.Equal(t, "proof.png", got.Attachments[0].Filename)
	assert.Equal(t, id, got.Attachments[0].ComplaintID)
}

func TestGetComplaint_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetComplaint(99)
	assert.ErrorIs(t, err, storage.ErrComplaintNotFound)
}

func TestListComplaints_NewestFirstWithGroupedAttachments(t *testing.T) {
	s := newTestStore(t)

	first, err := s.CreateComplaint(sampleComplaint(), []*domain.Attachment{
		{Filename: "a.png", Path: "a.png", Mime: "image/png"},
	})
	require.NoError(t, err)

	second, err := s.CreateComplaint(sampleComplaint(), nil)
	require.NoError(t, err)

	list, err := s.ListComplaints()
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Newest first.
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)

	// Attachment rows land on the right complaint; no-attachment records
	// still carry an empty slice.
	assert.Empty(t, list[0].Attachments)
	assert.NotNil(t, list[0].Attachments)
	require.Len(t, list[1].Attachments, 1)
	assert.Equal(t, "a.png", list[1].Attachments[0].Filename)
}

func TestDeleteComplaint_CascadesAndReturnsRows(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateComplaint(sampleComplaint(), []*domain.Attachment{
		{Filename: "x.png", Path: "x.png", Mime: "image/png"},
	})
	require.NoError(t, err)

	removed, err := s.DeleteComplaint(id)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "x.png", removed[0].Path)

	_, err = s.GetComplaint(id)
	assert.ErrorIs(t, err, storage.ErrComplaintNotFound)

	count, err := s.CountComplaints()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = s.DeleteComplaint(id)
	assert.ErrorIs(t, err, storage.ErrComplaintNotFound)
}

func TestAdminLifecycle(t *testing.T) {
	s := newTestStore(t)

	count, err := s.CountAdmins()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	admin := &domain.Admin{Username: "admin", PassHash: "bcrypt-hash"}
	require.NoError(t, s.CreateAdmin(admin))
	assert.NotZero(t, admin.ID)

	err = s.CreateAdmin(&domain.Admin{Username: "admin", PassHash: "other"})
	assert.ErrorIs(t, err, storage.ErrAdminExists)

	got, err := s.GetAdminByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, "bcrypt-hash", got.PassHash)

	_, err = s.GetAdminByUsername("nobody")
	assert.ErrorIs(t, err, storage.ErrAdminNotFound)
}

func TestHealth(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Health())
}
