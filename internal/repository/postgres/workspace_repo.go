package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WorkspaceRepository implements domain.WorkspaceStore using PostgreSQL
type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

var _ domain.WorkspaceStore = (*WorkspaceRepository)(nil)

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

// GenerateID returns a new random id for a workspace, category or document
func (r *WorkspaceRepository) GenerateID() uuid.UUID {
	return uuid.New()
}

// Exists reports whether owner has a workspace named name
func (r *WorkspaceRepository) Exists(name string, ownerID string) (bool, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return false, err
	}

	var exists bool
	err = r.pool.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM workspaces WHERE name = $1 AND owner_id = $2)`,
		name, owner,
	).Scan(&exists)
	return exists, err
}

// GetByName retrieves a workspace by its name
func (r *WorkspaceRepository) GetByName(name string, ownerID string) (*domain.WorkspaceSnapshot, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, owner_id, model_id, metrics FROM workspaces WHERE name = $1 AND owner_id = $2`,
		name, owner,
	)
	return r.loadWorkspace(ctx, r.pool, row)
}

// Get retrieves a workspace by id
func (r *WorkspaceRepository) Get(id string, ownerID string) (*domain.WorkspaceSnapshot, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return nil, err
	}
	workspaceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: workspace id %q", domain.ErrInvalidID, id)
	}

	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, owner_id, model_id, metrics FROM workspaces WHERE id = $1 AND owner_id = $2`,
		workspaceID, owner,
	)
	return r.loadWorkspace(ctx, r.pool, row)
}

// GetAll retrieves every workspace of an owner, ordered by name
func (r *WorkspaceRepository) GetAll(ownerID string) ([]*domain.WorkspaceSnapshot, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, owner_id, model_id, metrics FROM workspaces WHERE owner_id = $1 ORDER BY name`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	workspaces, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.WorkspaceSnapshot, error) {
		return scanWorkspace(row)
	})
	if err != nil {
		return nil, err
	}

	for _, w := range workspaces {
		if w.Categories, err = r.loadCategories(ctx, r.pool, w.ID); err != nil {
			return nil, err
		}
	}
	return workspaces, nil
}

// Save inserts a new workspace with its categories and documents in one transaction
func (r *WorkspaceRepository) Save(workspace *domain.WorkspaceSnapshot) error {
	ctx := context.Background()

	metrics, err := marshalMetrics(workspace.Metrics)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO workspaces (id, name, owner_id, model_id, metrics) VALUES ($1, $2, $3, $4, $5)`,
		workspace.ID, workspace.Name, workspace.Owner, workspace.ModelID, metrics,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return fmt.Errorf("%w: %q", domain.ErrWorkspaceAlreadyExists, workspace.Name)
		}
		return err
	}

	for _, category := range workspace.Categories {
		if _, err := tx.Exec(ctx,
			`INSERT INTO categories (id, name, workspace_id) VALUES ($1, $2, $3)`,
			category.ID, category.Name, workspace.ID,
		); err != nil {
			return err
		}
	}
	if err := copyDocuments(ctx, tx, workspace.Categories); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update writes an existing workspace in one transaction. Every listed category is
// upserted and its documents replaced; categories not listed are left untouched.
func (r *WorkspaceRepository) Update(workspace *domain.WorkspaceSnapshot) error {
	ctx := context.Background()

	metrics, err := marshalMetrics(workspace.Metrics)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var id uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM workspaces WHERE name = $1 AND owner_id = $2 FOR UPDATE`,
		workspace.Name, workspace.Owner,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %q", domain.ErrWorkspaceDoesNotExist, workspace.Name)
		}
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE workspaces SET model_id = $2, metrics = $3, updated_at = NOW() WHERE id = $1`,
		id, workspace.ModelID, metrics,
	); err != nil {
		return err
	}

	for _, category := range workspace.Categories {
		if _, err := tx.Exec(ctx,
			`INSERT INTO categories (id, name, workspace_id) VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
			category.ID, category.Name, id,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM documents WHERE category_id = $1`, category.ID); err != nil {
			return err
		}
	}
	if err := copyDocuments(ctx, tx, workspace.Categories); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *WorkspaceRepository) loadWorkspace(ctx context.Context, q querier, row pgx.Row) (*domain.WorkspaceSnapshot, error) {
	workspace, err := scanWorkspace(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}
	if workspace.Categories, err = r.loadCategories(ctx, q, workspace.ID); err != nil {
		return nil, err
	}
	return workspace, nil
}

// loadCategories reads a workspace's categories with their documents, ordered by name
// and text
func (r *WorkspaceRepository) loadCategories(ctx context.Context, q querier, workspaceID string) ([]domain.CategorySnapshot, error) {
	rows, err := q.Query(ctx,
		`SELECT c.id, c.name, d.id, d.text
		 FROM categories c
		 LEFT JOIN documents d ON d.category_id = c.id
		 WHERE c.workspace_id = $1
		 ORDER BY c.name, c.id, d.text, d.id`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var joined []categoryDocumentRow
	for rows.Next() {
		var row categoryDocumentRow
		if err := rows.Scan(&row.CategoryID, &row.CategoryName, &row.DocumentID, &row.DocumentText); err != nil {
			return nil, err
		}
		joined = append(joined, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupCategoryRows(workspaceID, joined), nil
}

// categoryDocumentRow is one row of the categories/documents join. Document columns are
// null for a category without documents.
type categoryDocumentRow struct {
	CategoryID   string
	CategoryName string
	DocumentID   *string
	DocumentText *string
}

// groupCategoryRows folds joined rows, already ordered by category, into snapshots
func groupCategoryRows(workspaceID string, rows []categoryDocumentRow) []domain.CategorySnapshot {
	categories := make([]domain.CategorySnapshot, 0)
	for _, row := range rows {
		if len(categories) == 0 || categories[len(categories)-1].ID != row.CategoryID {
			categories = append(categories, domain.CategorySnapshot{
				ID:          row.CategoryID,
				Name:        row.CategoryName,
				WorkspaceID: workspaceID,
				Documents:   []domain.DocumentSnapshot{},
			})
		}
		if row.DocumentID == nil || row.DocumentText == nil {
			continue
		}
		current := &categories[len(categories)-1]
		current.Documents = append(current.Documents, domain.DocumentSnapshot{
			ID:         *row.DocumentID,
			Text:       *row.DocumentText,
			CategoryID: row.CategoryID,
		})
	}
	return categories
}

func scanWorkspace(row pgx.Row) (*domain.WorkspaceSnapshot, error) {
	var (
		w       domain.WorkspaceSnapshot
		metrics []byte
	)
	if err := row.Scan(&w.ID, &w.Name, &w.Owner, &w.ModelID, &metrics); err != nil {
		return nil, err
	}
	w.Metrics = map[string]any{}
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &w.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode metrics of workspace %s: %w", w.ID, err)
		}
	}
	w.Categories = []domain.CategorySnapshot{}
	return &w, nil
}

func copyDocuments(ctx context.Context, tx pgx.Tx, categories []domain.CategorySnapshot) error {
	var rows [][]any
	for _, category := range categories {
		for _, document := range category.Documents {
			rows = append(rows, []any{document.ID, document.Text, category.ID})
		}
	}
	if len(rows) == 0 {
		return nil
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"documents"},
		[]string{"id", "text", "category_id"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func marshalMetrics(metrics map[string]any) ([]byte, error) {
	if metrics == nil {
		metrics = map[string]any{}
	}
	data, err := json.Marshal(metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metrics: %w", err)
	}
	return data, nil
}

func parseOwner(ownerID string) (uuid.UUID, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: owner id %q", domain.ErrInvalidID, ownerID)
	}
	return owner, nil
}

// isPgUniqueViolation checks if an error is a PostgreSQL unique constraint violation
func isPgUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// PostgreSQL unique violation error code is 23505
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
