package service

import (
	"fmt"
	"maps"
	"slices"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// Reconciler merges workspaces read from a file into the workspaces already persisted
// for an owner. It keeps the ids of matched workspaces and categories and mints new
// ids for everything else. It never writes to storage.
type Reconciler struct {
	finder     domain.WorkspaceFinder
	serializer *WorkspaceSerializer
	ids        domain.IDGenerator
	policy     domain.DocumentPolicy
}

// NewReconciler creates a new Reconciler
func NewReconciler(finder domain.WorkspaceFinder, serializer *WorkspaceSerializer, ids domain.IDGenerator, policy domain.DocumentPolicy) *Reconciler {
	if policy == "" {
		policy = domain.DocumentPolicyReplace
	}
	return &Reconciler{
		finder:     finder,
		serializer: serializer,
		ids:        ids,
		policy:     policy,
	}
}

// ReconcileResult holds the workspaces produced by one reconciliation pass, split into
// those to save and those to update
type ReconcileResult struct {
	created map[string]*domain.Workspace
	updated map[string]*domain.Workspace
}

// New returns the workspaces that have no persisted counterpart, ordered by name
func (r *ReconcileResult) New() []*domain.Workspace {
	return sortedByName(r.created)
}

// Updated returns the reconciled persisted workspaces, ordered by name
func (r *ReconcileResult) Updated() []*domain.Workspace {
	return sortedByName(r.updated)
}

// Get returns the workspace reconciled under name. New entries win over updated ones.
func (r *ReconcileResult) Get(name string) (*domain.Workspace, bool) {
	combined := maps.Clone(r.updated)
	maps.Copy(combined, r.created)
	w, ok := combined[name]
	return w, ok
}

// Len returns the total number of reconciled workspaces
func (r *ReconcileResult) Len() int {
	return len(r.created) + len(r.updated)
}

func sortedByName(workspaces map[string]*domain.Workspace) []*domain.Workspace {
	names := slices.Sorted(maps.Keys(workspaces))
	sorted := make([]*domain.Workspace, 0, len(names))
	for _, name := range names {
		sorted = append(sorted, workspaces[name])
	}
	return sorted
}

// Reconcile processes a batch of file workspaces for owner. Workspaces and categories
// repeated in the batch are merged by name first, so input order does not matter.
// Any validation failure aborts the whole batch.
func (r *Reconciler) Reconcile(owner domain.OwnerID, files []domain.FileWorkspace) (*ReconcileResult, error) {
	result := &ReconcileResult{
		created: make(map[string]*domain.Workspace),
		updated: make(map[string]*domain.Workspace),
	}

	for _, file := range domain.MergeFileWorkspaces(files) {
		exists, err := r.finder.Exists(file.Name, owner.String())
		if err != nil {
			return nil, fmt.Errorf("failed to check workspace %q: %w", file.Name, err)
		}

		if !exists {
			workspace, err := r.BuildNew(owner, file)
			if err != nil {
				return nil, err
			}
			log.Debug().
				Str("owner_id", owner.String()).
				Str("workspace_name", file.Name).
				Msg("Reconciled workspace as new")
			result.created[file.Name] = workspace
			continue
		}

		snapshot, err := r.finder.GetByName(file.Name, owner.String())
		if err != nil {
			return nil, fmt.Errorf("failed to load workspace %q: %w", file.Name, err)
		}
		existing, err := r.serializer.Deserialize(snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to load workspace %q: %w", file.Name, err)
		}
		workspace, err := r.merge(existing, file)
		if err != nil {
			return nil, err
		}
		log.Debug().
			Str("owner_id", owner.String()).
			Str("workspace_id", workspace.ID().String()).
			Str("workspace_name", file.Name).
			Int("categories", workspace.Categories().Len()).
			Msg("Reconciled workspace as updated")
		result.updated[file.Name] = workspace
	}

	return result, nil
}

// BuildNew builds a workspace with fresh ids for the workspace, its categories and their documents
func (r *Reconciler) BuildNew(owner domain.OwnerID, file domain.FileWorkspace) (*domain.Workspace, error) {
	name, err := domain.NewWorkspaceName(file.Name)
	if err != nil {
		return nil, err
	}

	workspace := domain.NewWorkspace(domain.WorkspaceID(r.ids.GenerateID()), name, owner, nil)
	for _, c := range domain.MergeFileCategories(file.Categories) {
		category, err := r.newCategory(workspace.ID(), c)
		if err != nil {
			return nil, err
		}
		if err := workspace.AddCategory(category); err != nil {
			return nil, err
		}
	}
	return workspace, nil
}

// merge rebuilds existing with the categories named in file. Persisted categories the
// file does not mention are left out.
func (r *Reconciler) merge(existing *domain.Workspace, file domain.FileWorkspace) (*domain.Workspace, error) {
	var opts []domain.WorkspaceOption
	if modelID, ok := existing.ModelID(); ok {
		opts = append(opts, domain.WithModelID(modelID))
	}
	opts = append(opts, domain.WithMetrics(existing.Metrics()))
	workspace := domain.NewWorkspace(existing.ID(), existing.Name(), existing.Owner(), nil, opts...)

	for _, c := range domain.MergeFileCategories(file.Categories) {
		var (
			category *domain.Category
			err      error
		)
		if current, ok := existing.CategoryByName(c.Name); ok {
			category, err = r.rebuildCategory(current, c)
		} else {
			category, err = r.newCategory(workspace.ID(), c)
		}
		if err != nil {
			return nil, err
		}
		if err := workspace.AddCategory(category); err != nil {
			return nil, err
		}
	}
	return workspace, nil
}

func (r *Reconciler) newCategory(workspaceID domain.WorkspaceID, file domain.FileCategory) (*domain.Category, error) {
	name, err := domain.NewCategoryName(file.Name)
	if err != nil {
		return nil, err
	}
	category := domain.NewCategory(domain.CategoryID(r.ids.GenerateID()), name, workspaceID, nil)
	if err := r.addFileDocuments(category, file.Documents, nil); err != nil {
		return nil, err
	}
	return category, nil
}

// rebuildCategory keeps the id of current and fills its documents according to the policy
func (r *Reconciler) rebuildCategory(current *domain.Category, file domain.FileCategory) (*domain.Category, error) {
	category := domain.NewCategory(current.ID(), current.Name(), current.WorkspaceID(), nil)

	var known map[string]struct{}
	if r.policy == domain.DocumentPolicyMerge {
		known = make(map[string]struct{}, current.Documents().Len())
		for document := range current.Documents().Values() {
			if err := category.AddDocument(document); err != nil {
				return nil, err
			}
			known[document.Text().String()] = struct{}{}
		}
	}

	if err := r.addFileDocuments(category, file.Documents, known); err != nil {
		return nil, err
	}
	return category, nil
}

// addFileDocuments adds a fresh document for every file document whose text is not in skip
func (r *Reconciler) addFileDocuments(category *domain.Category, documents []domain.FileDocument, skip map[string]struct{}) error {
	for _, d := range documents {
		if _, ok := skip[d.Text]; ok {
			continue
		}
		text, err := domain.NewDocumentText(d.Text)
		if err != nil {
			return fmt.Errorf("category %q: %w", category.Name(), err)
		}
		document := domain.NewDocument(domain.DocumentID(r.ids.GenerateID()), text, category.ID())
		if err := category.AddDocument(document); err != nil {
			return err
		}
	}
	return nil
}

// RequireAbsent fails with ErrWorkspaceAlreadyExists if owner already has a workspace named name
func (r *Reconciler) RequireAbsent(owner domain.OwnerID, name string) error {
	exists, err := r.finder.Exists(name, owner.String())
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %q", domain.ErrWorkspaceAlreadyExists, name)
	}
	return nil
}

// FindFileWorkspace returns the workspace named name from a batch. If the batch has none
// the error matches both ErrSheetNotFound and ErrWorkspaceDoesNotExist.
func FindFileWorkspace(files []domain.FileWorkspace, name string) (domain.FileWorkspace, error) {
	for _, file := range domain.MergeFileWorkspaces(files) {
		if file.Name == name {
			return file, nil
		}
	}
	return domain.FileWorkspace{}, fmt.Errorf("%w: %w: %q", domain.ErrWorkspaceDoesNotExist, domain.ErrSheetNotFound, name)
}

