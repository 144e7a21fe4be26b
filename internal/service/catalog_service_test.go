package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-vault/campusvault-api/internal/dto"
	"github.com/campus-vault/campusvault-api/internal/models"
	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
	"github.com/campus-vault/campusvault-api/pkg/storage"
)

var pdfHeader = append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte{' '}, 64)...)

type mockNoteStore struct {
	notes     map[string]*models.Note
	createErr error
	deleteErr error
	listErr   error
}

func (m *mockNoteStore) Create(ctx context.Context, note *models.Note) error {
	if m.createErr != nil {
		return m.createErr
	}
	note.ID = "note-1"
	if m.notes == nil {
		m.notes = make(map[string]*models.Note)
	}
	m.notes[note.ID] = note
	return nil
}

func (m *mockNoteStore) GetByID(ctx context.Context, id string) (*models.Note, error) {
	note, ok := m.notes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return note, nil
}

func (m *mockNoteStore) List(ctx context.Context, filter models.NoteFilter) ([]models.Note, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	out := make([]models.Note, 0)
	for _, note := range m.notes {
		if strings.EqualFold(note.College, filter.College) {
			out = append(out, *note)
		}
	}
	return out, len(out), nil
}

func (m *mockNoteStore) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.notes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.notes, id)
	return nil
}

type mockPYQStore struct {
	papers    map[string]*models.PYQ
	createErr error
}

func (m *mockPYQStore) Create(ctx context.Context, paper *models.PYQ) error {
	if m.createErr != nil {
		return m.createErr
	}
	paper.ID = "pyq-1"
	if m.papers == nil {
		m.papers = make(map[string]*models.PYQ)
	}
	m.papers[paper.ID] = paper
	return nil
}

func (m *mockPYQStore) GetByID(ctx context.Context, id string) (*models.PYQ, error) {
	paper, ok := m.papers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return paper, nil
}

func (m *mockPYQStore) List(ctx context.Context, filter models.PYQFilter) ([]models.PYQ, int, error) {
	out := make([]models.PYQ, 0)
	for _, paper := range m.papers {
		if strings.EqualFold(paper.College, filter.College) {
			out = append(out, *paper)
		}
	}
	return out, len(out), nil
}

func (m *mockPYQStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.papers[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.papers, id)
	return nil
}

type mockTimetableStore struct {
	timetables map[string]*models.Timetable
}

func (m *mockTimetableStore) Create(ctx context.Context, timetable *models.Timetable) error {
	timetable.ID = "tt-1"
	if m.timetables == nil {
		m.timetables = make(map[string]*models.Timetable)
	}
	m.timetables[timetable.ID] = timetable
	return nil
}

func (m *mockTimetableStore) GetByID(ctx context.Context, id string) (*models.Timetable, error) {
	timetable, ok := m.timetables[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return timetable, nil
}

func (m *mockTimetableStore) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	out := make([]models.Timetable, 0)
	for _, timetable := range m.timetables {
		if strings.EqualFold(timetable.College, filter.College) {
			out = append(out, *timetable)
		}
	}
	return out, len(out), nil
}

func (m *mockTimetableStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.timetables[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.timetables, id)
	return nil
}

type mockBlobStore struct {
	uploads   map[string][]byte
	uploadErr error
	deleteErr error
	deleted   []string
}

func (m *mockBlobStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*storage.UploadResult, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if m.uploads == nil {
		m.uploads = make(map[string][]byte)
	}
	m.uploads[key] = payload
	return &storage.UploadResult{Key: key, URL: "https://files.test/" + key, Size: size}, nil
}

func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.uploads, key)
	return nil
}

func (m *mockBlobStore) URL(key string) string {
	return "https://files.test/" + key
}

type mockAuditLogger struct {
	logs []*models.AuditLog
	err  error
}

func (m *mockAuditLogger) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, log)
	return nil
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "u1", Role: models.RoleStudent, Email: "asha@nitw.ac.in", FullName: "Asha Rao", College: "NIT Warangal"}
}

func facultyClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "f1", Role: models.RoleFaculty, Email: "iyer@nitw.ac.in", FullName: "Dr. Iyer", College: "NIT Warangal"}
}

func otherCollegeClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "x1", Role: models.RoleStudent, Email: "dev@iitb.ac.in", FullName: "Dev Patel", College: "IIT Bombay"}
}

type catalogFixture struct {
	svc    *CatalogService
	notes  *mockNoteStore
	pyqs   *mockPYQStore
	tables *mockTimetableStore
	blobs  *mockBlobStore
	audit  *mockAuditLogger
}

func newCatalogFixture() *catalogFixture {
	notes := &mockNoteStore{}
	pyqs := &mockPYQStore{}
	tables := &mockTimetableStore{}
	blobs := &mockBlobStore{}
	audit := &mockAuditLogger{}
	svc := NewCatalogService(notes, pyqs, tables, blobs, NewAccessPolicy(), audit, nil, nil, CatalogServiceConfig{})
	return &catalogFixture{svc: svc, notes: notes, pyqs: pyqs, tables: tables, blobs: blobs, audit: audit}
}

func pdfUpload() ResourceUpload {
	return ResourceUpload{
		Filename: "algorithms.pdf",
		Size:     int64(len(pdfHeader)),
		Content:  bytes.NewReader(pdfHeader),
	}
}

func noteRequest() dto.CreateNoteRequest {
	return dto.CreateNoteRequest{Title: "DSA Unit 3", Subject: "Data Structures", Branch: "CSE", Semester: "3"}
}

func TestCatalogCreateNote(t *testing.T) {
	fx := newCatalogFixture()

	note, err := fx.svc.CreateNote(context.Background(), noteRequest(), pdfUpload(), studentClaims())
	require.NoError(t, err)
	assert.Equal(t, "note-1", note.ID)
	assert.Equal(t, "NIT Warangal", note.College)
	assert.Equal(t, "application/pdf", note.MimeType)
	assert.Equal(t, "Asha Rao", note.UploadedBy)
	assert.NotEmpty(t, note.StorageKey)
	assert.True(t, strings.HasPrefix(note.StorageKey, "notes/nit-warangal/cse/3/data-structures/"))
	assert.Contains(t, note.FileURL, note.StorageKey)
	require.Len(t, fx.audit.logs, 1)
	assert.Equal(t, models.AuditActionResourceUpload, fx.audit.logs[0].Action)
}

type mockStatsInvalidator struct {
	colleges []string
}

func (m *mockStatsInvalidator) Invalidate(ctx context.Context, college string) {
	m.colleges = append(m.colleges, college)
}

func TestCatalogWritesInvalidateCollegeStats(t *testing.T) {
	fx := newCatalogFixture()
	stats := &mockStatsInvalidator{}
	fx.svc.WithStatsInvalidator(stats)

	note, err := fx.svc.CreateNote(context.Background(), noteRequest(), pdfUpload(), studentClaims())
	require.NoError(t, err)
	require.NoError(t, fx.svc.DeleteNote(context.Background(), note.ID, studentClaims()))

	assert.Equal(t, []string{"NIT Warangal", "NIT Warangal"}, stats.colleges)
}

func TestCatalogCreateNoteRejectsOversizedFile(t *testing.T) {
	fx := newCatalogFixture()
	upload := pdfUpload()
	upload.Size = 50 * 1024 * 1024

	_, err := fx.svc.CreateNote(context.Background(), noteRequest(), upload, studentClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, fx.blobs.uploads)
}

func TestCatalogCreateNoteRejectsDisallowedMime(t *testing.T) {
	fx := newCatalogFixture()
	payload := []byte("MZ\x90\x00 not a document")
	upload := ResourceUpload{Filename: "malware.exe", Size: int64(len(payload)), Content: bytes.NewReader(payload)}

	_, err := fx.svc.CreateNote(context.Background(), noteRequest(), upload, studentClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, fx.blobs.uploads)
}

func TestCatalogCreateNoteCompensatesOnMetadataFailure(t *testing.T) {
	fx := newCatalogFixture()
	fx.notes.createErr = errors.New("insert failed")

	_, err := fx.svc.CreateNote(context.Background(), noteRequest(), pdfUpload(), studentClaims())
	require.Error(t, err)
	require.Len(t, fx.blobs.deleted, 1, "orphaned blob should be cleaned up")
	assert.Empty(t, fx.blobs.uploads)
}

func TestCatalogCreateNoteUploadFailure(t *testing.T) {
	fx := newCatalogFixture()
	fx.blobs.uploadErr = errors.New("bucket unreachable")

	_, err := fx.svc.CreateNote(context.Background(), noteRequest(), pdfUpload(), studentClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrCollaborator.Code, appErr.Code)
}

func TestCatalogListNotesScopedToCollege(t *testing.T) {
	fx := newCatalogFixture()
	_, err := fx.svc.CreateNote(context.Background(), noteRequest(), pdfUpload(), studentClaims())
	require.NoError(t, err)

	notes, total, err := fx.svc.ListNotes(context.Background(), dto.NoteFilter{}, otherCollegeClaims())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, notes)

	notes, total, err = fx.svc.ListNotes(context.Background(), dto.NoteFilter{}, studentClaims())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, notes, 1)
}

func TestCatalogGetNoteHidesOtherColleges(t *testing.T) {
	fx := newCatalogFixture()
	note, err := fx.svc.CreateNote(context.Background(), noteRequest(), pdfUpload(), studentClaims())
	require.NoError(t, err)

	_, err = fx.svc.GetNote(context.Background(), note.ID, otherCollegeClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCatalogDeleteNoteByOwner(t *testing.T) {
	fx := newCatalogFixture()
	note, err := fx.svc.CreateNote(context.Background(), noteRequest(), pdfUpload(), studentClaims())
	require.NoError(t, err)

	require.NoError(t, fx.svc.DeleteNote(context.Background(), note.ID, studentClaims()))
	assert.Empty(t, fx.notes.notes)
	assert.Empty(t, fx.blobs.uploads)
}

func TestCatalogDeleteNoteByFaculty(t *testing.T) {
	fx := newCatalogFixture()
	note, err := fx.svc.CreateNote(context.Background(), noteRequest(), pdfUpload(), studentClaims())
	require.NoError(t, err)

	require.NoError(t, fx.svc.DeleteNote(context.Background(), note.ID, facultyClaims()))
}

func TestCatalogDeleteNoteForbiddenForUnrelatedStudent(t *testing.T) {
	fx := newCatalogFixture()
	note, err := fx.svc.CreateNote(context.Background(), noteRequest(), pdfUpload(), studentClaims())
	require.NoError(t, err)

	stranger := &models.JWTClaims{UserID: "u9", Role: models.RoleStudent, Email: "other@nitw.ac.in", FullName: "Someone Else", College: "NIT Warangal"}
	err = fx.svc.DeleteNote(context.Background(), note.ID, stranger)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	require.NotEmpty(t, fx.notes.notes)
}

func TestCatalogDeleteNoteProceedsWhenBlobDeleteFails(t *testing.T) {
	fx := newCatalogFixture()
	note, err := fx.svc.CreateNote(context.Background(), noteRequest(), pdfUpload(), studentClaims())
	require.NoError(t, err)
	fx.blobs.deleteErr = errors.New("object locked")

	require.NoError(t, fx.svc.DeleteNote(context.Background(), note.ID, studentClaims()))
	assert.NotContains(t, fx.notes.notes, note.ID, "record delete must not block on the blob")
}

func TestCatalogCreatePYQRequiresPDF(t *testing.T) {
	fx := newCatalogFixture()
	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0}, 32)...)
	upload := ResourceUpload{Filename: "paper.png", Size: int64(len(png)), Content: bytes.NewReader(png)}

	_, err := fx.svc.CreatePYQ(context.Background(), dto.CreatePYQRequest{Subject: "Maths", Branch: "CSE", Year: 2024, ExamType: models.ExamTypeFinal}, upload, studentClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCatalogCreatePYQ(t *testing.T) {
	fx := newCatalogFixture()

	paper, err := fx.svc.CreatePYQ(context.Background(), dto.CreatePYQRequest{Subject: "Maths", Branch: "CSE", Year: 2024, ExamType: models.ExamTypeFinal}, pdfUpload(), studentClaims())
	require.NoError(t, err)
	assert.Equal(t, models.ExamTypeFinal, paper.ExamType)
	assert.Equal(t, "NIT Warangal", paper.College)
}

func TestCatalogCreatePYQRejectsUnknownExamType(t *testing.T) {
	fx := newCatalogFixture()

	_, err := fx.svc.CreatePYQ(context.Background(), dto.CreatePYQRequest{Subject: "Maths", Branch: "CSE", Year: 2024, ExamType: "makeup"}, pdfUpload(), studentClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCatalogCreateTimetableFacultyOnly(t *testing.T) {
	fx := newCatalogFixture()
	req := dto.CreateTimetableRequest{Title: "CSE Sem 3", Branch: "CSE", Semester: "3"}

	_, err := fx.svc.CreateTimetable(context.Background(), req, pdfUpload(), studentClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	timetable, err := fx.svc.CreateTimetable(context.Background(), req, pdfUpload(), facultyClaims())
	require.NoError(t, err)
	assert.Equal(t, "tt-1", timetable.ID)
}
