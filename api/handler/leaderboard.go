package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	leaderboardUC "github.com/fastygo/taskboard/usecase/leaderboard"
)

type LeaderboardHandler struct {
	baseHandler
	uc *leaderboardUC.UseCase
}

func NewLeaderboardHandler(uc *leaderboardUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Rank users by completed tasks
// @Tags leaderboard
// @Param period query string false "daily, weekly, monthly or all-time"
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(ctx *fasthttp.RequestCtx) {
	if _, ok := h.session(ctx); !ok {
		return
	}

	period := domain.ParsePeriod(string(ctx.QueryArgs().Peek("period")))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	board, err := h.uc.Leaderboard(stdCtx, period)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, board)
}

// @Summary Stored leaderboard snapshots, newest first
// @Tags leaderboard
// @Router /api/v1/leaderboard/snapshots [get]
func (h *LeaderboardHandler) ListSnapshots(ctx *fasthttp.RequestCtx) {
	if _, ok := h.session(ctx); !ok {
		return
	}

	period := domain.ParsePeriod(string(ctx.QueryArgs().Peek("period")))
	limit := parseInt(ctx.QueryArgs().Peek("limit"), 0)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	snaps, err := h.uc.Snapshots(stdCtx, period, limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, snaps)
}
