package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"docgen-worker-service/internal/entity"
	"docgen-worker-service/internal/render"
	"docgen-worker-service/internal/repository/postgresql"
	"docgen-worker-service/internal/service"
)

// ThemeLister is the port over the renderer's theme catalog (implementation:
// render.Client).
type ThemeLister interface {
	Themes(ctx context.Context) ([]render.Theme, error)
}

type Handler struct {
	taskSvc *service.TaskService
	themes  ThemeLister
}

func NewHandler(taskSvc *service.TaskService, themes ThemeLister) *Handler {
	return &Handler{taskSvc: taskSvc, themes: themes}
}

type createTaskDTO struct {
	OwnerChatID int64           `json:"owner_chat_id"`
	Kind        string          `json:"kind"`
	Params      json.RawMessage `json:"params"`
	Free        bool            `json:"free,omitempty"`
}

type createTaskResp struct {
	UUID string `json:"uuid"`
}

type taskResp struct {
	UUID          string            `json:"uuid"`
	Kind          entity.TaskKind   `json:"kind"`
	Status        entity.TaskStatus `json:"status"`
	Progress      int               `json:"progress"`
	AmountCharged int64             `json:"amount_charged"`
	ErrorDetail   *string           `json:"error_detail,omitempty"`
	CreatedAt     string            `json:"created_at"`
	CompletedAt   *string           `json:"completed_at,omitempty"`
}

type balanceResp struct {
	ChatID  int64 `json:"chat_id"`
	Balance int64 `json:"balance"`
}

// CreateTask godoc
// @Summary Create a generation task
// @Description Charges the owner's balance and inserts a pending task for background processing.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body createTaskDTO true "task payload (kind: slide_deck|pitch_deck|document)"
// @Success 201 {object} createTaskResp
// @Failure 400 {object} apiError
// @Failure 402 {object} apiError
// @Router /tasks [post]
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var dto createTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if dto.OwnerChatID == 0 {
		writeErr(w, http.StatusBadRequest, "owner_chat_id is required")
		return
	}

	id, err := h.taskSvc.CreateTask(r.Context(), service.CreateTaskRequest{
		OwnerChatID: dto.OwnerChatID,
		Kind:        entity.TaskKind(dto.Kind),
		Params:      dto.Params,
		Free:        dto.Free,
	})
	if err != nil {
		if errors.Is(err, postgresql.ErrInsufficientBalance) {
			writeErr(w, http.StatusPaymentRequired, "insufficient balance")
			return
		}
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, createTaskResp{UUID: id.String()})
}

// GetTask godoc
// @Summary Get task status by uuid
// @Tags tasks
// @Produce json
// @Param uuid path string true "task uuid"
// @Success 200 {object} taskResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /tasks/{uuid} [get]
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid uuid")
		return
	}

	t, err := h.taskSvc.GetTask(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusNotFound, "task not found")
		return
	}

	resp := taskResp{
		UUID:          t.UUID.String(),
		Kind:          t.Kind,
		Status:        t.Status,
		Progress:      t.Progress,
		AmountCharged: t.AmountCharged,
		ErrorDetail:   t.ErrorDetail,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
	if t.CompletedAt != nil {
		done := t.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &done
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetBalance godoc
// @Summary Get a user's balance
// @Tags users
// @Produce json
// @Param chatID path int true "owner chat id"
// @Success 200 {object} balanceResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /users/{chatID}/balance [get]
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(chi.URLParam(r, "chatID"), 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	balance, err := h.taskSvc.Balance(r.Context(), chatID)
	if err != nil {
		writeErr(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, balanceResp{ChatID: chatID, Balance: balance})
}

// ListThemes godoc
// @Summary List the renderer's visual themes
// @Description Serves the theme catalog users pick a deck theme from; cached upstream.
// @Tags themes
// @Produce json
// @Success 200 {array} render.Theme
// @Failure 502 {object} apiError
// @Router /themes [get]
func (h *Handler) ListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.themes.Themes(r.Context())
	if err != nil {
		writeErr(w, http.StatusBadGateway, "theme catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, themes)
}

type apiError struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] response encode error: %v", err)
	}
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiError{Message: msg})
}
