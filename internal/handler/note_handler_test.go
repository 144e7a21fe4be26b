package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-vault/campusvault-api/internal/middleware"
	"github.com/campus-vault/campusvault-api/internal/models"
	"github.com/campus-vault/campusvault-api/internal/service"
	"github.com/campus-vault/campusvault-api/pkg/storage"
)

type fakeNoteStore struct {
	notes map[string]*models.Note
}

func (f *fakeNoteStore) Create(ctx context.Context, note *models.Note) error {
	note.ID = "note-1"
	if f.notes == nil {
		f.notes = make(map[string]*models.Note)
	}
	f.notes[note.ID] = note
	return nil
}

func (f *fakeNoteStore) GetByID(ctx context.Context, id string) (*models.Note, error) {
	note, ok := f.notes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return note, nil
}

func (f *fakeNoteStore) List(ctx context.Context, filter models.NoteFilter) ([]models.Note, int, error) {
	out := make([]models.Note, 0)
	for _, note := range f.notes {
		if strings.EqualFold(note.College, filter.College) {
			out = append(out, *note)
		}
	}
	return out, len(out), nil
}

func (f *fakeNoteStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.notes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.notes, id)
	return nil
}

type fakePYQStore struct{}

func (fakePYQStore) Create(context.Context, *models.PYQ) error { return nil }
func (fakePYQStore) GetByID(context.Context, string) (*models.PYQ, error) {
	return nil, sql.ErrNoRows
}
func (fakePYQStore) List(context.Context, models.PYQFilter) ([]models.PYQ, int, error) {
	return nil, 0, nil
}
func (fakePYQStore) Delete(context.Context, string) error { return sql.ErrNoRows }

type fakeTimetableStore struct{}

func (fakeTimetableStore) Create(context.Context, *models.Timetable) error { return nil }
func (fakeTimetableStore) GetByID(context.Context, string) (*models.Timetable, error) {
	return nil, sql.ErrNoRows
}
func (fakeTimetableStore) List(context.Context, models.TimetableFilter) ([]models.Timetable, int, error) {
	return nil, 0, nil
}
func (fakeTimetableStore) Delete(context.Context, string) error { return sql.ErrNoRows }

type fakeBlobStore struct {
	uploads map[string][]byte
}

func (f *fakeBlobStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*storage.UploadResult, error) {
	payload, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[key] = payload
	return &storage.UploadResult{Key: key, URL: "https://files.test/" + key, Size: size}, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	delete(f.uploads, key)
	return nil
}

func (f *fakeBlobStore) URL(key string) string { return "https://files.test/" + key }

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newNoteHandlerFixture() (*NoteHandler, *fakeNoteStore, *fakeBlobStore) {
	notes := &fakeNoteStore{}
	blobs := &fakeBlobStore{}
	catalog := service.NewCatalogService(notes, fakePYQStore{}, fakeTimetableStore{}, blobs, nil, nil, nil, nil, service.CatalogServiceConfig{})
	return NewNoteHandler(catalog), notes, blobs
}

func testClaims(role models.UserRole) *models.JWTClaims {
	return &models.JWTClaims{UserID: "u1", Role: role, Email: "asha@nitw.ac.in", FullName: "Asha Rao", College: "NIT Warangal"}
}

func multipartNoteRequest(t *testing.T) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "DSA Unit 3"))
	require.NoError(t, writer.WriteField("subject", "Data Structures"))
	require.NoError(t, writer.WriteField("branch", "CSE"))
	require.NoError(t, writer.WriteField("semester", "3"))
	part, err := writer.CreateFormFile("file", "notes.pdf")
	require.NoError(t, err)
	_, err = part.Write(append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte{' '}, 64)...))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/notes", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestNoteHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, notes, blobs := newNoteHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartNoteRequest(t)
	c.Set(middleware.ContextUserKey, testClaims(models.RoleStudent))

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "DSA Unit 3", envelope.Data["title"])
	assert.Equal(t, "NIT Warangal", envelope.Data["college"])
	assert.NotEmpty(t, envelope.Data["file_url"])
	assert.NotContains(t, envelope.Data, "storage_key")
	require.Len(t, notes.notes, 1)
	require.Len(t, blobs.uploads, 1)
}

func TestNoteHandlerCreateUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newNoteHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartNoteRequest(t)

	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNoteHandlerCreateMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newNoteHandlerFixture()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "DSA Unit 3"))
	require.NoError(t, writer.WriteField("subject", "Data Structures"))
	require.NoError(t, writer.WriteField("branch", "CSE"))
	require.NoError(t, writer.WriteField("semester", "3"))
	require.NoError(t, writer.Close())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/notes", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	c.Set(middleware.ContextUserKey, testClaims(models.RoleStudent))

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoteHandlerListScopedToClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, notes, _ := newNoteHandlerFixture()
	notes.notes = map[string]*models.Note{
		"note-1": {ID: "note-1", Title: "Ours", College: "NIT Warangal"},
		"note-2": {ID: "note-2", Title: "Theirs", College: "IIT Bombay"},
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/notes", nil)
	c.Set(middleware.ContextUserKey, testClaims(models.RoleStudent))

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Data       []map[string]interface{} `json:"data"`
		Pagination map[string]interface{}   `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 1)
	assert.Equal(t, "Ours", payload.Data[0]["title"])
	assert.Equal(t, float64(1), payload.Pagination["total_count"])
}

func TestNoteHandlerDeleteForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, notes, _ := newNoteHandlerFixture()
	notes.notes = map[string]*models.Note{
		"note-1": {ID: "note-1", Title: "Ours", College: "NIT Warangal", UploadedBy: "Somebody Else", UploaderEmail: "other@nitw.ac.in"},
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/notes/note-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "note-1"}}
	c.Set(middleware.ContextUserKey, testClaims(models.RoleStudent))

	handler.Delete(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
