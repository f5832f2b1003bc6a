package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Aurelien-D/ToDoList-IA/domain"
	"github.com/Aurelien-D/ToDoList-IA/internal/notify"
	"github.com/Aurelien-D/ToDoList-IA/pkg/httpcontext"
)

// NoticesHandler lets the presentation layer poll pending notices.
type NoticesHandler struct {
	baseHandler
	feed *notify.Feed
}

func NewNoticesHandler(feed *notify.Feed, adapter *httpcontext.Adapter, logger *zap.Logger) *NoticesHandler {
	return &NoticesHandler{
		baseHandler: newBaseHandler(adapter, logger),
		feed:        feed,
	}
}

// List returns buffered notices; ?drain=1 also empties the feed.
func (h *NoticesHandler) List(ctx *fasthttp.RequestCtx) {
	var notices []domain.Notice
	if ctx.QueryArgs().GetBool("drain") {
		notices = h.feed.Drain()
	} else {
		notices = h.feed.Recent()
	}
	if notices == nil {
		notices = []domain.Notice{}
	}
	h.respondSuccess(ctx, http.StatusOK, notices)
}
