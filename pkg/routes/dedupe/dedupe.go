package dedupe

import (
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/config"
	rulesetrepo "github.com/Ramsey-B/clover/internal/repositories/ruleset"
	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/dedupe"
	"github.com/Ramsey-B/clover/pkg/models"
)

// Register registers dedupe routes
func Register(g *echo.Group) {
	g.POST("/run", Run)
}

// RunRequest is the request body for a synchronous dedupe run. Exactly one of
// RulesetID or Definition may be set; with neither, the tenant's active
// ruleset is used, falling back to the built-in defaults.
type RunRequest struct {
	Records    []models.Record           `json:"records" validate:"required"`
	RulesetID  *string                   `json:"ruleset_id,omitempty"`
	Definition *models.RulesetDefinition `json:"definition,omitempty"`
	Threshold  int                       `json:"threshold,omitempty"`
	Neighbors  int                       `json:"neighbors,omitempty"`
}

// Run executes duplicate detection over the posted batch and returns the
// cleaned set, the duplicate report, and the export rows.
func Run(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	var req RunRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Records == nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "records is required")
	}
	if req.RulesetID != nil && req.Definition != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "ruleset_id and definition are mutually exclusive")
	}

	ctx, cfg, err := ectoinject.GetContext[config.Config](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}
	if cfg.MaxBatchSize > 0 && len(req.Records) > cfg.MaxBatchSize {
		return httperror.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch of %d records exceeds the maximum of %d", len(req.Records), cfg.MaxBatchSize))
	}

	def, rulesetID, err := resolveDefinition(c, cfg, tenantID, &req)
	if err != nil {
		return err
	}

	ctx, engine, err := ectoinject.GetContext[*dedupe.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := engine.Run(ctx, def, req.Records, dedupe.RunOptions{
		Threshold: req.Threshold,
		Neighbors: req.Neighbors,
	})
	if err != nil {
		if httperror.IsHTTPError(err) {
			return err
		}
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result.Summary.TenantID = tenantID
	result.Summary.RulesetID = rulesetID

	return c.JSON(http.StatusOK, result)
}

func resolveDefinition(c echo.Context, cfg config.Config, tenantID string, req *RunRequest) (*models.RulesetDefinition, string, error) {
	ctx := c.Request().Context()

	if req.Definition != nil {
		return req.Definition, "", nil
	}

	ctx, repo, err := ectoinject.GetContext[*rulesetrepo.Repository](ctx)
	if err != nil {
		return nil, "", httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if req.RulesetID != nil {
		rs, err := repo.Get(ctx, tenantID, *req.RulesetID)
		if err != nil {
			return nil, "", err
		}
		def, err := rs.ParseDefinition()
		if err != nil {
			return nil, "", httperror.NewHTTPError(http.StatusInternalServerError, "stored ruleset definition is invalid")
		}
		return def, rs.ID, nil
	}

	rs, err := repo.GetActive(ctx, tenantID)
	if err != nil {
		return nil, "", err
	}
	if rs == nil {
		def := models.DefaultDefinition()
		// Env-level tuning applies only to the built-in fallback; stored
		// rulesets carry their own thresholds.
		if cfg.AcceptThreshold > 0 {
			def.AcceptThreshold = cfg.AcceptThreshold
		}
		if cfg.NeighborCount > 0 {
			def.NeighborCount = cfg.NeighborCount
		}
		return &def, "", nil
	}
	def, err := rs.ParseDefinition()
	if err != nil {
		return nil, "", httperror.NewHTTPError(http.StatusInternalServerError, "stored ruleset definition is invalid")
	}
	return def, rs.ID, nil
}
