package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentstation/fieldeval/internal/server/cache"
	"github.com/agentstation/fieldeval/internal/server/response"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/logging"
	"github.com/agentstation/fieldeval/pkg/reconcile"
	"github.com/agentstation/fieldeval/pkg/record"
)

// ReconcileRequest is the body of POST /api/v1/reconcile.
type ReconcileRequest struct {
	Reference  map[string]any   `json:"reference"`
	Candidates []map[string]any `json:"candidates"`
	Catalogue  []string         `json:"catalogue,omitempty"`
}

// HandleReconcile handles POST /api/v1/reconcile.
func (h *Handlers) HandleReconcile(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.FromContext(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		response.BadRequest(c, "Unreadable request body", err.Error())
		return
	}

	var req ReconcileRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		response.BadRequest(c, "Malformed JSON body", err.Error())
		return
	}
	if len(req.Candidates) == 0 {
		response.BadRequest(c, "Invalid request", "at least one candidate is required")
		return
	}

	key := cache.Key(body)
	if res, ok := h.cache.Get(key); ok {
		logger.Debug().Msg("Serving cached reconciliation")
		c.JSON(http.StatusOK, res)
		return
	}

	candidates := make([]*record.Record, len(req.Candidates))
	for i, cand := range req.Candidates {
		candidates[i] = record.NormalizeCandidate(cand)
	}
	res, err := h.reconciler.Run(ctx, reconcile.Input{
		Reference:  record.NormalizeReference(req.Reference),
		Candidates: candidates,
		Catalogue:  record.NewFieldSet(req.Catalogue...),
	})
	if err != nil {
		if !errors.IsReferenceMissing(err) && !errors.IsValidationError(err) {
			logger.Error().Err(err).Msg("Reconciliation failed")
		}
		response.FromError(c, err)
		return
	}

	h.cache.Set(key, res)
	c.JSON(http.StatusOK, res)
}
