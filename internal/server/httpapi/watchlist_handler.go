package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinecircle/cinecircle/internal/common"
	"github.com/cinecircle/cinecircle/internal/server/repositories/watchlists"
	"github.com/cinecircle/cinecircle/internal/server/services"
)

// WatchlistHandler serves watchlist creation, mutation, and gated reads.
type WatchlistHandler struct {
	watchlist *services.WatchlistService
}

func NewWatchlistHandler(watchlist *services.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{watchlist: watchlist}
}

func (h *WatchlistHandler) Create(c *gin.Context) {
	var req struct {
		ListName string `json:"listName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	ctx, userID := requestContext(c)
	w, err := h.watchlist.Create(ctx, userID, req.ListName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *WatchlistHandler) Update(c *gin.Context) {
	var req struct {
		ListName *string `json:"listName"`
		IsPublic *bool   `json:"isPublic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		// A wrong-typed isPublic is called out specifically; any other
		// malformed body is a plain bad request.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "isPublic" {
			writeError(c, common.ErrIsPublicNotBoolean)
			return
		}
		badRequest(c)
		return
	}

	ctx, userID := requestContext(c)
	w, err := h.watchlist.Update(ctx, userID, c.Param("listId"), watchlists.UpdateFields{
		Name:     req.ListName,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WatchlistHandler) Get(c *gin.Context) {
	ctx, userID := requestContext(c)
	w, err := h.watchlist.Get(ctx, userID, c.Param("listId"))
	if err != nil {
		writeError(c, err)
		return
	}
	if w == nil {
		c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{
			Error:     "no permission to view this list",
			RequestID: c.GetString(ctxRequestIDKey),
		})
		return
	}
	c.JSON(http.StatusOK, w)
}
