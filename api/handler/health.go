package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Aurelien-D/ToDoList-IA/pkg/httpcontext"
)

// StorageStatus reports on the durable store.
type StorageStatus interface {
	Size() (int, error)
}

// GatewayStatus reports on the AI gateway configuration gate.
type GatewayStatus interface {
	IsConfigured() bool
}

type HealthHandler struct {
	baseHandler
	appName string
	storage StorageStatus
	gateway GatewayStatus
}

func NewHealthHandler(appName string, storage StorageStatus, gateway GatewayStatus, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		appName:     appName,
		storage:     storage,
		gateway:     gateway,
	}
}

// Check reports storage reachability and AI availability.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	storageOK := false
	blobs := 0
	if h.storage != nil {
		if size, err := h.storage.Size(); err == nil {
			storageOK = true
			blobs = size
		}
	}

	data := map[string]interface{}{
		"app":          h.appName,
		"time":         time.Now().UTC().Format(time.RFC3339),
		"storage":      storageOK,
		"blobs":        blobs,
		"aiConfigured": h.gateway != nil && h.gateway.IsConfigured(),
	}

	status := http.StatusOK
	if !storageOK {
		status = http.StatusServiceUnavailable
	}
	h.respondSuccess(ctx, status, data)
}
