package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/auth"
	"github.com/vizquery/vizquery-engine/pkg/config"
	"github.com/vizquery/vizquery-engine/pkg/models"
	"github.com/vizquery/vizquery-engine/pkg/schema"
)

func authedRequest(t *testing.T, method, target string, body string, userID uuid.UUID) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(auth.WithUserID(req.Context(), userID))
}

func TestProfilesHandler_Create(t *testing.T) {
	userID := uuid.New()
	profiles := &mockProfileService{
		CreateFunc: func(ctx context.Context, profile *models.ConnectionProfile) (*models.ConnectionProfile, error) {
			assert.Equal(t, userID, profile.UserID)
			assert.Equal(t, "sales db", profile.Name)
			assert.Equal(t, models.SourceKindRelational, profile.SourceKind)
			assert.Equal(t, "s3cret", profile.Password)
			profile.ID = uuid.New()
			return profile, nil
		},
	}
	handler := NewProfilesHandler(profiles, config.UploadsConfig{}, zap.NewNop())

	body := `{"name":"sales db","source_kind":"relational","host":"db.local","port":3306,"database":"sales","username":"reader","password":"s3cret"}`
	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(t, http.MethodPost, "/api/profiles", body, userID))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, profiles.CreateCalls)
	// The password must never appear in the response.
	assert.NotContains(t, rec.Body.String(), "s3cret")
}

func TestProfilesHandler_CreateUnauthenticated(t *testing.T) {
	profiles := &mockProfileService{}
	handler := NewProfilesHandler(profiles, config.UploadsConfig{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/profiles", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, profiles.CreateCalls)
}

func TestProfilesHandler_ListEmpty(t *testing.T) {
	handler := NewProfilesHandler(&mockProfileService{}, config.UploadsConfig{}, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.List(rec, authedRequest(t, http.MethodGet, "/api/profiles", "", uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool                        `json:"success"`
		Data    []*models.ConnectionProfile `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}

func TestProfilesHandler_GetInvalidID(t *testing.T) {
	handler := NewProfilesHandler(&mockProfileService{}, config.UploadsConfig{}, zap.NewNop())

	req := authedRequest(t, http.MethodGet, "/api/profiles/not-a-uuid", "", uuid.New())
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfilesHandler_GetNotFound(t *testing.T) {
	profiles := &mockProfileService{
		GetFunc: func(ctx context.Context, userID, id uuid.UUID) (*models.ConnectionProfile, error) {
			return nil, apperrors.New(apperrors.KindNotFound, "profile not found")
		},
	}
	handler := NewProfilesHandler(profiles, config.UploadsConfig{}, zap.NewNop())

	req := authedRequest(t, http.MethodGet, "/api/profiles/x", "", uuid.New())
	req.SetPathValue("id", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfilesHandler_Delete(t *testing.T) {
	userID := uuid.New()
	profileID := uuid.New()
	profiles := &mockProfileService{
		DeleteFunc: func(ctx context.Context, gotUser, gotID uuid.UUID) error {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, profileID, gotID)
			return nil
		},
	}
	handler := NewProfilesHandler(profiles, config.UploadsConfig{}, zap.NewNop())

	req := authedRequest(t, http.MethodDelete, "/api/profiles/x", "", userID)
	req.SetPathValue("id", profileID.String())
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, profiles.DeleteCalls)
}

func TestProfilesHandler_Schema(t *testing.T) {
	profiles := &mockProfileService{
		DescribeSchemaFunc: func(ctx context.Context, userID, id uuid.UUID) (schema.Schema, error) {
			return schema.Schema{
				"orders": {
					{Name: "id", Type: schema.TypeInteger},
					{Name: "amount", Type: schema.TypeFloat},
				},
			}, nil
		},
	}
	handler := NewProfilesHandler(profiles, config.UploadsConfig{}, zap.NewNop())

	req := authedRequest(t, http.MethodGet, "/api/profiles/x/schema", "", uuid.New())
	req.SetPathValue("id", uuid.NewString())
	rec := httptest.NewRecorder()
	handler.Schema(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data schema.Schema `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data["orders"], 2)
	assert.Equal(t, "amount", resp.Data["orders"][1].Name)
}

func TestProfilesHandler_TestConnectionFailure(t *testing.T) {
	profiles := &mockProfileService{
		TestConnectionFunc: func(ctx context.Context, profile *models.ConnectionProfile) (schema.Schema, error) {
			return nil, apperrors.New(apperrors.KindAuthenticationFailed, "access denied for user")
		},
	}
	handler := NewProfilesHandler(profiles, config.UploadsConfig{}, zap.NewNop())

	body := `{"name":"x","source_kind":"relational","host":"db","port":3306,"database":"d","username":"u","password":"bad"}`
	rec := httptest.NewRecorder()
	handler.TestConnection(rec, authedRequest(t, http.MethodPost, "/api/profiles/test", body, uuid.New()))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1, profiles.TestConnectionCalls)
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestProfilesHandler_Upload(t *testing.T) {
	dir := t.TempDir()
	handler := NewProfilesHandler(&mockProfileService{},
		config.UploadsConfig{Dir: dir, MaxSizeMB: 1}, zap.NewNop())

	buf, contentType := multipartUpload(t, "file", "sales.csv", "region,amount\nnorth,10\n")
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", buf)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(auth.WithUserID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Data UploadResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Data.FilePath)
	assert.Equal(t, dir, filepath.Dir(resp.Data.FilePath))
	assert.Equal(t, ".csv", filepath.Ext(resp.Data.FilePath))

	stored, err := os.ReadFile(resp.Data.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "region,amount\nnorth,10\n", string(stored))
}

func TestProfilesHandler_UploadRejectsUnsupportedType(t *testing.T) {
	handler := NewProfilesHandler(&mockProfileService{},
		config.UploadsConfig{Dir: t.TempDir(), MaxSizeMB: 1}, zap.NewNop())

	buf, contentType := multipartUpload(t, "file", "payload.exe", "MZ")
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", buf)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(auth.WithUserID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfilesHandler_UploadMissingFile(t *testing.T) {
	handler := NewProfilesHandler(&mockProfileService{},
		config.UploadsConfig{Dir: t.TempDir(), MaxSizeMB: 1}, zap.NewNop())

	buf, contentType := multipartUpload(t, "wrong_field", "sales.csv", "a,b\n")
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", buf)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(auth.WithUserID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
