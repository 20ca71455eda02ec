package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/auth"
	"github.com/vizquery/vizquery-engine/pkg/config"
	"github.com/vizquery/vizquery-engine/pkg/models"
	"github.com/vizquery/vizquery-engine/pkg/services"
)

// ProfileRequest for POST /api/profiles and /api/profiles/test.
type ProfileRequest struct {
	Name       string `json:"name"`
	SourceKind string `json:"source_kind"`
	Host       string `json:"host,omitempty"`
	Port       int    `json:"port,omitempty"`
	Database   string `json:"database,omitempty"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	FilePath   string `json:"file_path,omitempty"`
}

func (r *ProfileRequest) toModel(userID uuid.UUID) *models.ConnectionProfile {
	return &models.ConnectionProfile{
		UserID:     userID,
		Name:       r.Name,
		SourceKind: r.SourceKind,
		Host:       r.Host,
		Port:       r.Port,
		Database:   r.Database,
		Username:   r.Username,
		Password:   r.Password,
		FilePath:   r.FilePath,
	}
}

// UploadResponse carries the stored location of an uploaded file.
type UploadResponse struct {
	FilePath string `json:"file_path"`
}

// ProfilesHandler handles connection profile endpoints.
type ProfilesHandler struct {
	profiles services.ProfileService
	uploads  config.UploadsConfig
	logger   *zap.Logger
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(profiles services.ProfileService, uploads config.UploadsConfig, logger *zap.Logger) *ProfilesHandler {
	return &ProfilesHandler{profiles: profiles, uploads: uploads, logger: logger}
}

// RegisterRoutes registers the profile routes behind auth middleware.
func (h *ProfilesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/profiles", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/profiles", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/profiles/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("DELETE /api/profiles/{id}", authMiddleware.RequireAuth(h.Delete))
	mux.HandleFunc("GET /api/profiles/{id}/schema", authMiddleware.RequireAuth(h.Schema))
	mux.HandleFunc("POST /api/profiles/test", authMiddleware.RequireAuth(h.TestConnection))
	mux.HandleFunc("POST /api/uploads", authMiddleware.RequireAuth(h.Upload))
}

// Create handles POST /api/profiles.
func (h *ProfilesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.KindMissingParameters, "invalid request body"))
		return
	}

	profile, err := h.profiles.Create(r.Context(), req.toModel(userID))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: profile})
}

// List handles GET /api/profiles.
func (h *ProfilesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	profiles, err := h.profiles.List(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if profiles == nil {
		profiles = []*models.ConnectionProfile{}
	}
	h.writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: profiles})
}

// Get handles GET /api/profiles/{id}.
func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, profileID, err := h.pathIDs(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	profile, err := h.profiles.Get(r.Context(), userID, profileID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: profile})
}

// Delete handles DELETE /api/profiles/{id}.
func (h *ProfilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, profileID, err := h.pathIDs(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.profiles.Delete(r.Context(), userID, profileID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Profile deleted"})
}

// Schema handles GET /api/profiles/{id}/schema.
func (h *ProfilesHandler) Schema(w http.ResponseWriter, r *http.Request) {
	userID, profileID, err := h.pathIDs(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	s, err := h.profiles.DescribeSchema(r.Context(), userID, profileID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: s})
}

// TestConnection handles POST /api/profiles/test.
func (h *ProfilesHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.KindMissingParameters, "invalid request body"))
		return
	}

	s, err := h.profiles.TestConnection(r.Context(), req.toModel(userID))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: s, Message: "Connection successful"})
}

// Upload handles POST /api/uploads: stores a spreadsheet under a
// generated name in the uploads directory and returns its path.
func (h *ProfilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireUserID(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}

	maxBytes := h.uploads.MaxSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, apperrors.Wrap(apperrors.KindMissingParameters, "a file field is required", err))
		return
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	switch ext {
	case ".csv", ".xlsx", ".xls":
	default:
		h.writeError(w, apperrors.Newf(apperrors.KindMissingParameters, "unsupported file type: %s", ext))
		return
	}

	if err := os.MkdirAll(h.uploads.Dir, 0o755); err != nil {
		h.writeError(w, fmt.Errorf("failed to prepare uploads dir: %w", err))
		return
	}

	path := filepath.Join(h.uploads.Dir, uuid.NewString()+ext)
	dst, err := os.Create(path)
	if err != nil {
		h.writeError(w, fmt.Errorf("failed to store upload: %w", err))
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		h.writeError(w, fmt.Errorf("failed to store upload: %w", err))
		return
	}

	h.writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: UploadResponse{FilePath: path}})
}

func (h *ProfilesHandler) pathIDs(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	profileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperrors.New(apperrors.KindMissingParameters, "invalid profile id")
	}
	return userID, profileID, nil
}

func (h *ProfilesHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

func (h *ProfilesHandler) writeError(w http.ResponseWriter, err error) {
	if werr := ErrorResponse(w, err); werr != nil {
		h.logger.Error("failed to write error response", zap.Error(werr))
	}
}
