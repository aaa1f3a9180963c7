package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/clasifica/clasifica-backend/internal/repository/storage"
	"github.com/clasifica/clasifica-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// TrainingClient talks to the external training service
type TrainingClient interface {
	Train(ctx context.Context, dataset *domain.TrainDataset) (domain.WorkspaceModelID, error)
	Metrics(ctx context.Context, dataset *domain.TrainDataset) (domain.WorkspaceMetrics, error)
}

// WorkspaceService handles workspace-related business logic
type WorkspaceService struct {
	store          domain.WorkspaceStore
	serializer     *WorkspaceSerializer
	reconciler     *Reconciler
	reader         domain.FileReader
	archive        storage.UploadArchive
	training       TrainingClient
	eventPublisher websocket.EventPublisher
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(
	store domain.WorkspaceStore,
	reconciler *Reconciler,
	reader domain.FileReader,
	archive storage.UploadArchive,
	training TrainingClient,
) *WorkspaceService {
	return &WorkspaceService{
		store:      store,
		serializer: NewWorkspaceSerializer(),
		reconciler: reconciler,
		reader:     reader,
		archive:    archive,
		training:   training,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *WorkspaceService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *WorkspaceService) publishEvent(ownerID domain.OwnerID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ownerID, event)
	}
}

// CreateWorkspace creates an empty workspace
func (s *WorkspaceService) CreateWorkspace(owner domain.OwnerID, name string) (*domain.WorkspaceSnapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	workspaceName, err := domain.NewWorkspaceName(name)
	if err != nil {
		return nil, err
	}
	if err := s.reconciler.RequireAbsent(owner, name); err != nil {
		return nil, err
	}

	workspace := domain.NewWorkspace(domain.WorkspaceID(s.store.GenerateID()), workspaceName, owner, nil)
	snapshot := s.serializer.Serialize(workspace)
	if err := s.store.Save(snapshot); err != nil {
		return nil, err
	}

	log.Info().
		Str("owner_id", owner.String()).
		Str("workspace_id", snapshot.ID).
		Str("workspace_name", snapshot.Name).
		Msg("Workspace created")
	s.publishEvent(owner, websocket.WorkspaceCreated(snapshot.Summarize()))
	return snapshot, nil
}

// ImportFile archives an uploaded spreadsheet and creates or updates every workspace
// it describes. New workspaces are saved before updated ones; a failure stops the import
// but does not undo workspaces already written.
func (s *WorkspaceService) ImportFile(ctx context.Context, owner domain.OwnerID, filename string, data []byte) (*domain.ImportResult, error) {
	archiveKey := s.archiveUpload(ctx, owner, filename, data)

	files, err := s.reader.Read(data)
	if err != nil {
		return nil, err
	}

	result, err := s.reconciler.Reconcile(owner, files)
	if err != nil {
		return nil, err
	}

	importResult := &domain.ImportResult{
		Created:    make([]domain.WorkspaceSummary, 0, len(result.New())),
		Updated:    make([]domain.WorkspaceSummary, 0, len(result.Updated())),
		ArchiveKey: archiveKey,
	}

	for _, workspace := range result.New() {
		snapshot := s.serializer.Serialize(workspace)
		if err := s.store.Save(snapshot); err != nil {
			return nil, fmt.Errorf("failed to save workspace %q: %w", snapshot.Name, err)
		}
		importResult.Created = append(importResult.Created, snapshot.Summarize())
		s.publishEvent(owner, websocket.WorkspaceCreated(snapshot.Summarize()))
	}

	for _, workspace := range result.Updated() {
		snapshot := s.serializer.Serialize(workspace)
		if err := s.store.Update(snapshot); err != nil {
			return nil, fmt.Errorf("failed to update workspace %q: %w", snapshot.Name, err)
		}
		// storage keeps categories the file leaves out, so report what was stored
		stored, err := s.store.GetByName(snapshot.Name, owner.String())
		if err != nil {
			return nil, fmt.Errorf("failed to reload workspace %q: %w", snapshot.Name, err)
		}
		importResult.Updated = append(importResult.Updated, stored.Summarize())
		s.publishEvent(owner, websocket.WorkspaceUpdated(stored.Summarize()))
	}

	log.Info().
		Str("owner_id", owner.String()).
		Str("filename", filename).
		Int("created", len(importResult.Created)).
		Int("updated", len(importResult.Updated)).
		Msg("Spreadsheet imported")
	return importResult, nil
}

// CreateWorkspaceFromFile creates the workspace named name from the matching worksheet.
// Fails with ErrSheetNotFound if the file has no such sheet and with
// ErrWorkspaceAlreadyExists if the owner already has that workspace.
func (s *WorkspaceService) CreateWorkspaceFromFile(ctx context.Context, owner domain.OwnerID, name, filename string, data []byte) (*domain.WorkspaceSnapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	files, err := s.reader.Read(data)
	if err != nil {
		return nil, err
	}
	file, err := FindFileWorkspace(files, name)
	if err != nil {
		return nil, err
	}
	if err := s.reconciler.RequireAbsent(owner, name); err != nil {
		return nil, err
	}

	workspace, err := s.reconciler.BuildNew(owner, file)
	if err != nil {
		return nil, err
	}
	s.archiveUpload(ctx, owner, filename, data)

	snapshot := s.serializer.Serialize(workspace)
	if err := s.store.Save(snapshot); err != nil {
		return nil, err
	}

	log.Info().
		Str("owner_id", owner.String()).
		Str("workspace_id", snapshot.ID).
		Str("workspace_name", snapshot.Name).
		Int("documents", snapshot.DocumentCount()).
		Msg("Workspace created from file")
	s.publishEvent(owner, websocket.WorkspaceCreated(snapshot.Summarize()))
	return snapshot, nil
}

// archiveUpload keeps a copy of the upload. Archive failures are logged, not returned.
func (s *WorkspaceService) archiveUpload(ctx context.Context, owner domain.OwnerID, filename string, data []byte) string {
	key, err := s.archive.Store(ctx, owner, filename, data)
	if err != nil {
		log.Warn().
			Err(err).
			Str("owner_id", owner.String()).
			Str("filename", filename).
			Msg("Failed to archive upload")
		return ""
	}
	return key
}

// GetWorkspace retrieves a workspace of owner by id
func (s *WorkspaceService) GetWorkspace(owner domain.OwnerID, id domain.WorkspaceID) (*domain.WorkspaceSnapshot, error) {
	return s.store.Get(id.String(), owner.String())
}

// ListWorkspaces retrieves every workspace of owner
func (s *WorkspaceService) ListWorkspaces(owner domain.OwnerID) ([]*domain.WorkspaceSnapshot, error) {
	return s.store.GetAll(owner.String())
}

// TrainWorkspace trains a model on the workspace's documents and stores its id
func (s *WorkspaceService) TrainWorkspace(ctx context.Context, owner domain.OwnerID, id domain.WorkspaceID) (*domain.WorkspaceSnapshot, error) {
	workspace, dataset, err := s.loadForTraining(owner, id)
	if err != nil {
		return nil, err
	}

	modelID, err := s.training.Train(ctx, dataset)
	if err != nil {
		return nil, err
	}
	workspace.SetModelID(modelID)

	snapshot := s.serializer.Serialize(workspace)
	if err := s.store.Update(snapshot); err != nil {
		return nil, err
	}

	log.Info().
		Str("owner_id", owner.String()).
		Str("workspace_id", snapshot.ID).
		Str("model_id", string(modelID)).
		Int("documents", dataset.Len()).
		Msg("Workspace trained")
	s.publishEvent(owner, websocket.WorkspaceTrained(snapshot.Summarize()))
	return snapshot, nil
}

// ComputeMetrics scores the workspace's documents and stores the classification report
func (s *WorkspaceService) ComputeMetrics(ctx context.Context, owner domain.OwnerID, id domain.WorkspaceID) (*domain.WorkspaceSnapshot, error) {
	workspace, dataset, err := s.loadForTraining(owner, id)
	if err != nil {
		return nil, err
	}

	metrics, err := s.training.Metrics(ctx, dataset)
	if err != nil {
		return nil, err
	}
	workspace.SetMetrics(metrics)

	snapshot := s.serializer.Serialize(workspace)
	if err := s.store.Update(snapshot); err != nil {
		return nil, err
	}

	log.Info().
		Str("owner_id", owner.String()).
		Str("workspace_id", snapshot.ID).
		Int("documents", dataset.Len()).
		Msg("Workspace metrics updated")
	s.publishEvent(owner, websocket.WorkspaceMetricsUpdated(snapshot.Summarize()))
	return snapshot, nil
}

func (s *WorkspaceService) loadForTraining(owner domain.OwnerID, id domain.WorkspaceID) (*domain.Workspace, *domain.TrainDataset, error) {
	snapshot, err := s.store.Get(id.String(), owner.String())
	if err != nil {
		return nil, nil, err
	}
	dataset, err := domain.NewTrainDataset(snapshot)
	if err != nil {
		return nil, nil, err
	}
	workspace, err := s.serializer.Deserialize(snapshot)
	if err != nil {
		return nil, nil, err
	}
	return workspace, dataset, nil
}
