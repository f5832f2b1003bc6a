package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Aurelien-D/ToDoList-IA/api/transport"
	"github.com/Aurelien-D/ToDoList-IA/domain"
	"github.com/Aurelien-D/ToDoList-IA/pkg/httpcontext"
	"github.com/Aurelien-D/ToDoList-IA/usecase/board"
)

// BoardHandler exposes the task board over HTTP. Undo tokens handed out by
// deletions are parked here until they are consumed or expire.
type BoardHandler struct {
	baseHandler
	board *board.Board

	mu         sync.Mutex
	undoTokens map[string]*board.UndoToken
}

func NewBoardHandler(b *board.Board, adapter *httpcontext.Adapter, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		board:       b,
		undoTokens:  make(map[string]*board.UndoToken),
	}
}

// ListTasks returns all tasks, optionally filtered by column or search term.
func (h *BoardHandler) ListTasks(ctx *fasthttp.RequestCtx) {
	column := string(ctx.QueryArgs().Peek("column"))
	term := string(ctx.QueryArgs().Peek("q"))

	var tasks []domain.Task
	switch {
	case column != "":
		if !domain.IsValidColumn(domain.Column(column)) {
			h.respondError(ctx, domain.ErrInvalidColumn)
			return
		}
		tasks = h.board.TasksByColumn(domain.Column(column))
	case term != "":
		tasks = h.board.Search(term)
	default:
		tasks = h.board.Tasks()
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// CreateTask adds a task to the board.
func (h *BoardHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	due, ok := parseDueDate(req.DueDate)
	if !ok {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid due date", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.board.AddTask(stdCtx, board.AddTaskInput{
		Title:    req.Title,
		Category: req.Category,
		Priority: domain.Priority(req.Priority),
		Column:   domain.Column(req.Column),
		DueDate:  due,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, task)
}

// EditTask applies a partial update to a task.
func (h *BoardHandler) EditTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.TaskEditRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	patch := board.TaskPatch{
		Title:    req.Title,
		Category: req.Category,
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		patch.Priority = &p
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			patch.ClearDueDate = true
		} else {
			due, ok := parseDueDate(*req.DueDate)
			if !ok {
				h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid due date", nil))
				return
			}
			patch.DueDate = due
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.board.EditTask(stdCtx, id, patch); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// MoveTask changes a task's workflow stage.
func (h *BoardHandler) MoveTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.TaskMoveRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.board.MoveTask(stdCtx, id, domain.Column(req.Column)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// DeleteTask removes a task. With ?undo=1 the deletion stays reversible via
// RestoreTask until the undo window closes.
func (h *BoardHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}
	withUndo := ctx.QueryArgs().GetBool("undo")

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	token, err := h.board.DeleteTask(stdCtx, id, withUndo)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if token != nil {
		h.mu.Lock()
		h.undoTokens[id] = token
		h.mu.Unlock()
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// RestoreTask reverses a recent deletion.
func (h *BoardHandler) RestoreTask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	h.mu.Lock()
	token := h.undoTokens[id]
	delete(h.undoTokens, id)
	h.mu.Unlock()

	if token == nil {
		h.respondError(ctx, domain.ErrTaskNotFound)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.board.RestoreTask(stdCtx, token); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// AddSubtask appends a free-text subtask.
func (h *BoardHandler) AddSubtask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.SubtaskRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.board.AddSubtask(stdCtx, id, req.Text); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// RemoveSubtask removes the subtask at the path index.
func (h *BoardHandler) RemoveSubtask(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}
	indexRaw, _ := ctx.UserValue("index").(string)
	index, err := strconv.Atoi(indexRaw)
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid subtask index", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.board.RemoveSubtask(stdCtx, id, index); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// Absorb merges the task into the target's subtask list and deletes it.
func (h *BoardHandler) Absorb(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	var req transport.AbsorbRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.TargetID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.board.AbsorbAsSubtask(stdCtx, id, req.TargetID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// GenerateSubtasks asks the AI gateway for subtasks and merges them in.
func (h *BoardHandler) GenerateSubtasks(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.board.GenerateSubtasks(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// SuggestCategory asks the AI gateway for a category suggestion.
func (h *BoardHandler) SuggestCategory(ctx *fasthttp.RequestCtx) {
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.board.SuggestCategory(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// Metrics returns the derived counters.
func (h *BoardHandler) Metrics(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.board.Metrics())
}

// Reset wipes tasks, metrics, persisted blobs and the AI cache.
func (h *BoardHandler) Reset(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.board.Reset(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

func (h *BoardHandler) taskID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return "", false
	}
	return id, true
}

// parseDueDate accepts RFC3339 or the HTML datetime-local input format;
// empty means no deadline.
func parseDueDate(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed, true
	}
	if parsed, err := time.Parse("2006-01-02T15:04", raw); err == nil {
		return &parsed, true
	}
	return nil, false
}
