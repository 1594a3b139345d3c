package ruleset

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository handles ruleset persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new ruleset repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new ruleset. The definition is validated before it is
// stored so a bad ruleset can never reach the engine.
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreateRulesetRequest) (*models.Ruleset, error) {
	ctx, span := tracing.StartSpan(ctx, "ruleset.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Create",
		"tenant_id": tenantID,
		"name":      req.Name,
	})

	id := uuid.New().String()
	now := time.Now().UTC()

	rs := &models.Ruleset{
		ID:          id,
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		Definition:  req.Definition,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := rs.ParseDefinition(); err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid ruleset definition: %v", err))
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("dedupe_rulesets")
	sb.Cols("id", "tenant_id", "name", "description", "is_active", "definition", "created_at", "updated_at")
	sb.Values(rs.ID, rs.TenantID, rs.Name, rs.Description, rs.IsActive, []byte(rs.Definition), rs.CreatedAt, rs.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create ruleset")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create ruleset")
	}

	log.WithFields(map[string]any{"id": id}).Info("Created ruleset")
	return rs, nil
}

// Get retrieves a ruleset by ID
func (r *Repository) Get(ctx context.Context, tenantID string, id string) (*models.Ruleset, error) {
	ctx, span := tracing.StartSpan(ctx, "ruleset.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "name", "description", "is_active", "definition", "created_at", "updated_at", "deleted_at")
	sb.From("dedupe_rulesets")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var rs models.Ruleset
	if err := r.db.GetContext(ctx, &rs, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("ruleset %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get ruleset")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get ruleset")
	}

	return &rs, nil
}

// GetActive retrieves the most recently updated active ruleset for a tenant.
// Returns nil without error when the tenant has none.
func (r *Repository) GetActive(ctx context.Context, tenantID string) (*models.Ruleset, error) {
	ctx, span := tracing.StartSpan(ctx, "ruleset.Repository.GetActive")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "name", "description", "is_active", "definition", "created_at", "updated_at", "deleted_at")
	sb.From("dedupe_rulesets")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("is_active", true),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("updated_at DESC")
	sb.Limit(1)

	query, args := sb.Build()
	var rs models.Ruleset
	if err := r.db.GetContext(ctx, &rs, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get active ruleset")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get active ruleset")
	}

	return &rs, nil
}

// List retrieves all rulesets for a tenant
func (r *Repository) List(ctx context.Context, tenantID string, page, pageSize int) ([]models.Ruleset, int, error) {
	ctx, span := tracing.StartSpan(ctx, "ruleset.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("dedupe_rulesets")
	countSb.Where(
		countSb.Equal("tenant_id", tenantID),
		countSb.IsNull("deleted_at"),
	)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count rulesets")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count rulesets")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "name", "description", "is_active", "definition", "created_at", "updated_at", "deleted_at")
	sb.From("dedupe_rulesets")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("created_at DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var rulesets []models.Ruleset
	if err := r.db.SelectContext(ctx, &rulesets, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list rulesets")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list rulesets")
	}

	return rulesets, totalCount, nil
}

// Update updates a ruleset
func (r *Repository) Update(ctx context.Context, tenantID string, id string, req models.UpdateRulesetRequest) (*models.Ruleset, error) {
	ctx, span := tracing.StartSpan(ctx, "ruleset.Repository.Update")
	defer span.End()

	existing, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if req.Definition != nil {
		existing.Definition = req.Definition
	}
	existing.UpdatedAt = time.Now().UTC()

	if _, err := existing.ParseDefinition(); err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid ruleset definition: %v", err))
	}

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("dedupe_rulesets")
	sb.Set(
		sb.Assign("name", existing.Name),
		sb.Assign("description", existing.Description),
		sb.Assign("is_active", existing.IsActive),
		sb.Assign("definition", []byte(existing.Definition)),
		sb.Assign("updated_at", existing.UpdatedAt),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update ruleset")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update ruleset")
	}

	return existing, nil
}

// Delete soft deletes a ruleset
func (r *Repository) Delete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "ruleset.Repository.Delete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("dedupe_rulesets")
	sb.Set(sb.Assign("deleted_at", now))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete ruleset")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete ruleset")
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("ruleset %s not found", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted ruleset")
	return nil
}
