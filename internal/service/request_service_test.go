package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-vault/campusvault-api/internal/dto"
	"github.com/campus-vault/campusvault-api/internal/models"
	appErrors "github.com/campus-vault/campusvault-api/pkg/errors"
)

type mockRequestStore struct {
	requests map[string]*models.ResourceRequest
	nextID   int
}

func (m *mockRequestStore) Create(ctx context.Context, request *models.ResourceRequest) error {
	m.nextID++
	request.ID = fmt.Sprintf("req-%d", m.nextID)
	if m.requests == nil {
		m.requests = make(map[string]*models.ResourceRequest)
	}
	m.requests[request.ID] = request
	return nil
}

func (m *mockRequestStore) GetByID(ctx context.Context, id string) (*models.ResourceRequest, error) {
	request, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return request, nil
}

func (m *mockRequestStore) List(ctx context.Context, filter models.RequestFilter) ([]models.ResourceRequest, int, error) {
	out := make([]models.ResourceRequest, 0)
	for _, request := range m.requests {
		if !strings.EqualFold(request.College, filter.College) {
			continue
		}
		if filter.Status != "" && request.Status != filter.Status {
			continue
		}
		out = append(out, *request)
	}
	return out, len(out), nil
}

func (m *mockRequestStore) UpdateStatus(ctx context.Context, id string, status models.RequestStatus, resolvedBy string) error {
	request, ok := m.requests[id]
	if !ok {
		return sql.ErrNoRows
	}
	request.Status = status
	request.ResolvedBy = &resolvedBy
	return nil
}

func (m *mockRequestStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.requests[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.requests, id)
	return nil
}

func newRequestFixture() (*RequestService, *mockRequestStore) {
	store := &mockRequestStore{}
	svc := NewRequestService(store, NewAccessPolicy(), &mockAuditLogger{}, nil, nil)
	return svc, store
}

func createRequest() dto.CreateResourceRequest {
	return dto.CreateResourceRequest{Title: "OS previous papers", Subject: "Operating Systems", Branch: "CSE", Semester: "5"}
}

func TestRequestCreate(t *testing.T) {
	svc, store := newRequestFixture()

	request, err := svc.Create(context.Background(), createRequest(), studentClaims())
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.Equal(t, "NIT Warangal", request.College)
	assert.Equal(t, "Asha Rao", request.RequestedBy)
	require.Len(t, store.requests, 1)
}

func TestRequestListScopedToCollege(t *testing.T) {
	svc, _ := newRequestFixture()
	_, err := svc.Create(context.Background(), createRequest(), studentClaims())
	require.NoError(t, err)

	requests, total, err := svc.List(context.Background(), dto.RequestFilter{}, otherCollegeClaims())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, requests)
}

func TestRequestUpdateStatusFacultyOnly(t *testing.T) {
	svc, _ := newRequestFixture()
	request, err := svc.Create(context.Background(), createRequest(), studentClaims())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), request.ID, dto.UpdateRequestStatusRequest{Status: models.RequestStatusFulfilled}, studentClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	updated, err := svc.UpdateStatus(context.Background(), request.ID, dto.UpdateRequestStatusRequest{Status: models.RequestStatusFulfilled}, facultyClaims())
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusFulfilled, updated.Status)
	require.NotNil(t, updated.ResolvedBy)
	assert.Equal(t, "Dr. Iyer", *updated.ResolvedBy)
}

func TestRequestUpdateStatusAlreadyResolved(t *testing.T) {
	svc, _ := newRequestFixture()
	request, err := svc.Create(context.Background(), createRequest(), studentClaims())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), request.ID, dto.UpdateRequestStatusRequest{Status: models.RequestStatusRejected}, facultyClaims())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), request.ID, dto.UpdateRequestStatusRequest{Status: models.RequestStatusFulfilled}, facultyClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRequestDeleteByRequester(t *testing.T) {
	svc, store := newRequestFixture()
	request, err := svc.Create(context.Background(), createRequest(), studentClaims())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), request.ID, studentClaims()))
	assert.Empty(t, store.requests)
}

func TestRequestDeleteForbiddenForOtherStudent(t *testing.T) {
	svc, _ := newRequestFixture()
	request, err := svc.Create(context.Background(), createRequest(), studentClaims())
	require.NoError(t, err)

	stranger := &models.JWTClaims{UserID: "u9", Role: models.RoleStudent, Email: "other@nitw.ac.in", FullName: "Someone Else", College: "NIT Warangal"}
	err = svc.Delete(context.Background(), request.ID, stranger)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}
