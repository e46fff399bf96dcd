package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agentstation/fieldeval/internal/server/response"
	"github.com/agentstation/fieldeval/internal/store"
)

// HandleListRuns handles GET /api/v1/runs?tenant=&file_type=&limit=.
func (h *Handlers) HandleListRuns(c *gin.Context) {
	if h.runs == nil {
		response.NotFound(c, "Run history disabled", "start the server with a history store")
		return
	}
	f := store.Filter{
		TenantID:   c.Query("tenant"),
		FileTypeID: c.Query("file_type"),
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			response.BadRequest(c, "Invalid limit", "limit must be a non-negative integer")
			return
		}
		f.Limit = n
	}

	runs, err := h.runs.List(c.Request.Context(), f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// HandleGetRun handles GET /api/v1/runs/:id.
func (h *Handlers) HandleGetRun(c *gin.Context) {
	if h.runs == nil {
		response.NotFound(c, "Run history disabled", "start the server with a history store")
		return
	}
	run, err := h.runs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
