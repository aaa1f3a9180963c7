package testutil

import (
	"context"
	"encoding/binary"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/clasifica/clasifica-backend/internal/websocket"
	"github.com/google/uuid"
)

// MockWorkspaceStore is a map-backed implementation of domain.WorkspaceStore.
// Update follows the database semantics: listed categories are upserted with their
// documents replaced, unlisted categories are kept.
type MockWorkspaceStore struct {
	Workspaces  map[string]*domain.WorkspaceSnapshot
	IDs         domain.IDGenerator
	SaveErr     error
	UpdateErr   error
	FindErr     error
	SaveCalls   int
	UpdateCalls int
	mu          sync.Mutex
}

// NewMockWorkspaceStore creates a new MockWorkspaceStore
func NewMockWorkspaceStore() *MockWorkspaceStore {
	return &MockWorkspaceStore{
		Workspaces: make(map[string]*domain.WorkspaceSnapshot),
		IDs:        domain.RandomIDGenerator{},
	}
}

// GenerateID returns the next id of the configured generator
func (m *MockWorkspaceStore) GenerateID() uuid.UUID {
	return m.IDs.GenerateID()
}

// Exists reports whether owner has a workspace named name
func (m *MockWorkspaceStore) Exists(name string, ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return false, m.FindErr
	}
	return m.byName(name, ownerID) != nil, nil
}

// GetByName retrieves a workspace by name
func (m *MockWorkspaceStore) GetByName(name string, ownerID string) (*domain.WorkspaceSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	if w := m.byName(name, ownerID); w != nil {
		return CloneSnapshot(w), nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// Get retrieves a workspace by id
func (m *MockWorkspaceStore) Get(id string, ownerID string) (*domain.WorkspaceSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	if w, ok := m.Workspaces[id]; ok && w.Owner == ownerID {
		return CloneSnapshot(w), nil
	}
	return nil, domain.ErrWorkspaceNotFound
}

// GetAll retrieves every workspace of an owner, ordered by name
func (m *MockWorkspaceStore) GetAll(ownerID string) ([]*domain.WorkspaceSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	result := make([]*domain.WorkspaceSnapshot, 0)
	for _, w := range m.Workspaces {
		if w.Owner == ownerID {
			result = append(result, CloneSnapshot(w))
		}
	}
	slices.SortFunc(result, func(a, b *domain.WorkspaceSnapshot) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

// Save stores a new workspace
func (m *MockWorkspaceStore) Save(workspace *domain.WorkspaceSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if m.byName(workspace.Name, workspace.Owner) != nil {
		return fmt.Errorf("%w: %q", domain.ErrWorkspaceAlreadyExists, workspace.Name)
	}
	m.Workspaces[workspace.ID] = CloneSnapshot(workspace)
	return nil
}

// Update merges a workspace into the stored one
func (m *MockWorkspaceStore) Update(workspace *domain.WorkspaceSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	current := m.byName(workspace.Name, workspace.Owner)
	if current == nil {
		return fmt.Errorf("%w: %q", domain.ErrWorkspaceDoesNotExist, workspace.Name)
	}

	updated := CloneSnapshot(workspace)
	listed := make(map[string]bool, len(updated.Categories))
	for _, c := range updated.Categories {
		listed[c.ID] = true
	}
	for _, c := range current.Categories {
		if !listed[c.ID] {
			updated.Categories = append(updated.Categories, c)
		}
	}
	delete(m.Workspaces, current.ID)
	m.Workspaces[updated.ID] = updated
	return nil
}

// AddWorkspace seeds the store
func (m *MockWorkspaceStore) AddWorkspace(workspace *domain.WorkspaceSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Workspaces[workspace.ID] = CloneSnapshot(workspace)
}

func (m *MockWorkspaceStore) byName(name, ownerID string) *domain.WorkspaceSnapshot {
	for _, w := range m.Workspaces {
		if w.Name == name && w.Owner == ownerID {
			return w
		}
	}
	return nil
}

// CloneSnapshot deep-copies a snapshot
func CloneSnapshot(s *domain.WorkspaceSnapshot) *domain.WorkspaceSnapshot {
	clone := *s
	clone.Categories = make([]domain.CategorySnapshot, len(s.Categories))
	for i, c := range s.Categories {
		c.Documents = slices.Clone(c.Documents)
		clone.Categories[i] = c
	}
	if s.ModelID != nil {
		modelID := *s.ModelID
		clone.ModelID = &modelID
	}
	clone.Metrics = domain.WorkspaceMetrics(s.Metrics).Clone()
	return &clone
}

// SequentialIDGenerator mints predictable UUIDs: 00000000-0000-0000-0000-000000000001, ...
type SequentialIDGenerator struct {
	next uint64
	mu   sync.Mutex
}

// GenerateID returns the next id in the sequence
func (g *SequentialIDGenerator) GenerateID() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], g.next)
	return id
}

// MockOwnerRepository is a map-backed implementation of domain.OwnerRepository
type MockOwnerRepository struct {
	Owners     map[string]domain.OwnerID
	Identities map[string]domain.OwnerIdentity
	Err        error
	mu         sync.Mutex
}

// NewMockOwnerRepository creates a new MockOwnerRepository
func NewMockOwnerRepository() *MockOwnerRepository {
	return &MockOwnerRepository{
		Owners:     make(map[string]domain.OwnerID),
		Identities: make(map[string]domain.OwnerIdentity),
	}
}

// ResolveOwner returns the owner of the identity's subject, creating it on first use.
// Empty profile fields keep the stored values.
func (m *MockOwnerRepository) ResolveOwner(identity domain.OwnerIdentity) (domain.OwnerID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return domain.OwnerID(uuid.Nil), m.Err
	}
	if identity.Auth0ID == "" {
		return domain.OwnerID(uuid.Nil), domain.ErrOwnerNotFound
	}

	stored := m.Identities[identity.Auth0ID]
	stored.Auth0ID = identity.Auth0ID
	if identity.Email != "" {
		stored.Email = identity.Email
	}
	if identity.Name != "" {
		stored.Name = identity.Name
	}
	m.Identities[identity.Auth0ID] = stored

	if owner, ok := m.Owners[identity.Auth0ID]; ok {
		return owner, nil
	}
	owner := domain.OwnerID(uuid.New())
	m.Owners[identity.Auth0ID] = owner
	return owner, nil
}

// MockFileReader returns preset file workspaces
type MockFileReader struct {
	Workspaces []domain.FileWorkspace
	Err        error
	Reads      int
}

// Read returns the preset workspaces or error
func (m *MockFileReader) Read(data []byte) ([]domain.FileWorkspace, error) {
	m.Reads++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Workspaces, nil
}

// StoredUpload records one call to MockUploadArchive.Store
type StoredUpload struct {
	Owner    domain.OwnerID
	Filename string
	Size     int
}

// MockUploadArchive records stored uploads
type MockUploadArchive struct {
	Stored []StoredUpload
	Err    error
}

// Store records the upload
func (m *MockUploadArchive) Store(ctx context.Context, owner domain.OwnerID, filename string, data []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Stored = append(m.Stored, StoredUpload{Owner: owner, Filename: filename, Size: len(data)})
	return fmt.Sprintf("uploads/%s/%s", owner, filename), nil
}

// MockTrainingClient is a test double for the training service client
type MockTrainingClient struct {
	ModelID  domain.WorkspaceModelID
	Report   domain.WorkspaceMetrics
	Err      error
	Datasets []*domain.TrainDataset
}

// Train records the dataset and returns ModelID
func (m *MockTrainingClient) Train(ctx context.Context, dataset *domain.TrainDataset) (domain.WorkspaceModelID, error) {
	m.Datasets = append(m.Datasets, dataset)
	if m.Err != nil {
		return "", m.Err
	}
	return m.ModelID, nil
}

// Metrics records the dataset and returns Report
func (m *MockTrainingClient) Metrics(ctx context.Context, dataset *domain.TrainDataset) (domain.WorkspaceMetrics, error) {
	m.Datasets = append(m.Datasets, dataset)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Report, nil
}

// PublishedEvent records one published event
type PublishedEvent struct {
	OwnerID domain.OwnerID
	Event   websocket.Event
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	Events []PublishedEvent
	mu     sync.Mutex
}

// Publish records the event
func (m *MockEventPublisher) Publish(ownerID domain.OwnerID, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{OwnerID: ownerID, Event: event})
}

// Types returns the types of the published events in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.Event.Type)
	}
	return types
}
