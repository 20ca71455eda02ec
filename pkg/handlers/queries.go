package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/auth"
	"github.com/vizquery/vizquery-engine/pkg/models"
	"github.com/vizquery/vizquery-engine/pkg/services"
)

// historyPageSize caps GET /api/queries/history responses.
const historyPageSize = 50

// QueryRequest for POST /api/queries.
type QueryRequest struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Question  string    `json:"question"`
}

// QueriesHandler handles natural-language query endpoints.
type QueriesHandler struct {
	gateway services.QueryGateway
	history services.HistoryService
	logger  *zap.Logger
}

// NewQueriesHandler creates a new queries handler.
func NewQueriesHandler(gateway services.QueryGateway, history services.HistoryService, logger *zap.Logger) *QueriesHandler {
	return &QueriesHandler{gateway: gateway, history: history, logger: logger}
}

// RegisterRoutes registers the query routes behind auth middleware.
func (h *QueriesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/queries", authMiddleware.RequireAuth(h.Execute))
	mux.HandleFunc("GET /api/queries/history", authMiddleware.RequireAuth(h.History))
}

// Execute handles POST /api/queries.
func (h *QueriesHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.KindMissingParameters, "invalid request body"))
		return
	}
	if req.ProfileID == uuid.Nil {
		h.writeError(w, apperrors.New(apperrors.KindMissingParameters, "profile_id is required"))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		h.writeError(w, apperrors.New(apperrors.KindMissingParameters, "question is required"))
		return
	}

	envelope, err := h.gateway.Execute(r.Context(), userID, req.ProfileID, req.Question)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: envelope})
}

// History handles GET /api/queries/history.
func (h *QueriesHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	records, err := h.history.List(r.Context(), userID, historyPageSize)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if records == nil {
		records = []*models.QueryHistoryRecord{}
	}
	h.writeJSON(w, http.StatusOK, ApiResponse{Success: true, Data: records})
}

func (h *QueriesHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := WriteJSON(w, status, data); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

func (h *QueriesHandler) writeError(w http.ResponseWriter, err error) {
	if werr := ErrorResponse(w, err); werr != nil {
		h.logger.Error("failed to write error response", zap.Error(werr))
	}
}
