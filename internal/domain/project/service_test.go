package project

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type repoStub struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*Project

	updatedDoc    []byte
	updateDocErr  error
	updateDocTime *time.Time
}

func newRepoStub() *repoStub {
	return &repoStub{projects: map[uuid.UUID]*Project{}}
}

func (r *repoStub) Create(_ context.Context, p *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[p.ID] = p
	return nil
}

func (r *repoStub) GetByID(_ context.Context, id uuid.UUID) (*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projects[id], nil
}

func (r *repoStub) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Project
	for _, p := range r.projects {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *repoStub) UpdateMeta(_ context.Context, id uuid.UUID, name string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.projects[id]; ok {
		p.Name = name
		p.Status = status
	}
	return nil
}

func (r *repoStub) UpdateDocument(_ context.Context, id uuid.UUID, document, thumbnails []byte, savedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateDocErr != nil {
		return r.updateDocErr
	}
	r.updatedDoc = document
	r.updateDocTime = &savedAt
	if p, ok := r.projects[id]; ok {
		p.DocumentRaw = document
		p.SavedAt = &savedAt
	}
	return nil
}

func (r *repoStub) UpdateArtifact(_ context.Context, id uuid.UUID, pdfKey string, generatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.projects[id]; ok {
		p.PDFKey = pdfKey
		p.PDFGeneratedAt = &generatedAt
		p.Status = StatusExported
	}
	return nil
}

func (r *repoStub) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.projects, id)
	return nil
}

type snapshotStub struct {
	mu     sync.Mutex
	snaps  map[uuid.UUID]*Snapshot
	locked map[uuid.UUID]bool
}

func newSnapshotStub() *snapshotStub {
	return &snapshotStub{snaps: map[uuid.UUID]*Snapshot{}, locked: map[uuid.UUID]bool{}}
}

func (s *snapshotStub) Put(_ context.Context, id uuid.UUID, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[id] = snap
	return nil
}

func (s *snapshotStub) Get(_ context.Context, id uuid.UUID) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snaps[id], nil
}

func (s *snapshotStub) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, id)
	return nil
}

func (s *snapshotStub) AcquireLock(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked[id] {
		return false, nil
	}
	s.locked[id] = true
	return true, nil
}

func (s *snapshotStub) ReleaseLock(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locked, id)
	return nil
}

type materializerStub struct {
	mu    sync.Mutex
	calls int
	fail  map[string]bool // data URIs that should fail
}

func (m *materializerStub) MaterializeDataURI(_ context.Context, _ uuid.UUID, dataURI string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.fail[dataURI] {
		return "", errors.New("decode failed")
	}
	return "https://cdn.example.com/" + uuid.New().String() + ".jpg", nil
}

type presetStub struct {
	snap *PresetSnapshot
	err  error
}

func (p *presetStub) Snapshot(_ context.Context, _ uuid.UUID) (*PresetSnapshot, error) {
	return p.snap, p.err
}

func newTestService() (*Service, *repoStub, *snapshotStub, *materializerStub) {
	repo := newRepoStub()
	snaps := newSnapshotStub()
	mat := &materializerStub{fail: map[string]bool{}}
	presets := &presetStub{snap: &PresetSnapshot{
		PresetID:        uuid.New(),
		WidthCm:         21,
		HeightCm:        21,
		DPI:             300,
		PageCount:       24,
		BackgroundColor: "#ffffff",
		ProductType:     "photobook",
	}}
	return NewService(repo, snaps, mat, presets), repo, snaps, mat
}

func createTestProject(t *testing.T, s *Service, ownerID uuid.UUID) *Project {
	t.Helper()
	p, err := s.Create(context.Background(), ownerID, uuid.New(), "My Album")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

func TestCreateStartsWithOnePage(t *testing.T) {
	s, _, _, _ := newTestService()
	p := createTestProject(t, s, uuid.New())

	doc, err := p.Document()
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}
	if doc.Pages[0].BackgroundColor != "#ffffff" {
		t.Errorf("background = %q", doc.Pages[0].BackgroundColor)
	}
	if p.Status != StatusDraft {
		t.Errorf("status = %q, want draft", p.Status)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	s, _, _, _ := newTestService()
	owner := uuid.New()
	p := createTestProject(t, s, owner)

	if _, err := s.Get(context.Background(), uuid.New(), p.ID); !errors.Is(err, ErrNotProjectOwner) {
		t.Fatalf("expected ErrNotProjectOwner, got %v", err)
	}
	if _, err := s.Get(context.Background(), owner, uuid.New()); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestDeleteOrderedProjectRefused(t *testing.T) {
	s, repo, _, _ := newTestService()
	owner := uuid.New()
	p := createTestProject(t, s, owner)
	repo.projects[p.ID].Status = StatusOrdered

	if err := s.Delete(context.Background(), owner, p.ID); !errors.Is(err, ErrProjectOrdered) {
		t.Fatalf("expected ErrProjectOrdered, got %v", err)
	}
}

func TestSaveProgressLastWriterWins(t *testing.T) {
	s, _, snaps, _ := newTestService()
	owner := uuid.New()
	p := createTestProject(t, s, owner)

	now := time.Now()
	doc := NewDocument("#111111")
	if err := s.SaveProgress(context.Background(), owner, p.ID, doc, nil, now); err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}

	// An older snapshot must not overwrite the newer one.
	older := NewDocument("#222222")
	if err := s.SaveProgress(context.Background(), owner, p.ID, older, nil, now.Add(-time.Minute)); err != nil {
		t.Fatalf("SaveProgress older: %v", err)
	}

	snap, _ := snaps.Get(context.Background(), p.ID)
	got, err := DecodeDocument(snap.Document)
	if err != nil {
		t.Fatal(err)
	}
	if got.Pages[0].BackgroundColor != "#111111" {
		t.Errorf("older auto-save overwrote newer snapshot")
	}
}

func TestSaveProgressDroppedAfterNewerManualSave(t *testing.T) {
	s, repo, snaps, _ := newTestService()
	owner := uuid.New()
	p := createTestProject(t, s, owner)

	savedAt := time.Now()
	repo.projects[p.ID].SavedAt = &savedAt

	doc := NewDocument("#333333")
	if err := s.SaveProgress(context.Background(), owner, p.ID, doc, nil, savedAt.Add(-time.Second)); err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}
	if snap, _ := snaps.Get(context.Background(), p.ID); snap != nil {
		t.Error("stale auto-save should have been dropped")
	}
}

func TestLoadProgressPrefersNewerSnapshot(t *testing.T) {
	s, repo, snaps, _ := newTestService()
	owner := uuid.New()
	p := createTestProject(t, s, owner)

	savedAt := time.Now().Add(-time.Hour)
	repo.projects[p.ID].SavedAt = &savedAt

	snapDoc := NewDocument("#abcdef")
	data, _ := snapDoc.Encode()
	_ = snaps.Put(context.Background(), p.ID, &Snapshot{Document: data, Timestamp: time.Now()})

	doc, _, err := s.LoadProgress(context.Background(), owner, p.ID)
	if err != nil {
		t.Fatalf("LoadProgress: %v", err)
	}
	if doc.Pages[0].BackgroundColor != "#abcdef" {
		t.Errorf("expected the auto-save snapshot, got persisted document")
	}

	// Move the manual save past the snapshot: persisted wins.
	newer := time.Now().Add(time.Hour)
	repo.projects[p.ID].SavedAt = &newer

	doc, _, err = s.LoadProgress(context.Background(), owner, p.ID)
	if err != nil {
		t.Fatalf("LoadProgress: %v", err)
	}
	if doc.Pages[0].BackgroundColor != "#ffffff" {
		t.Errorf("expected the persisted document, got snapshot")
	}
}

const tinyDataURI = "data:image/jpeg;base64,/9j/4AAQSkZJRg=="
const badDataURI = "data:image/jpeg;base64,broken"

func docWithImages() *Document {
	doc := NewDocument("#ffffff")
	doc.Pages[0].Cells[0].Elements = []Element{
		{ID: "img-ok", Type: ElementImage, Opacity: 1, Seq: 1, Content: tinyDataURI},
		{ID: "img-bad", Type: ElementImage, Opacity: 1, Seq: 2, Content: badDataURI},
		{ID: "img-done", Type: ElementImage, Opacity: 1, Seq: 3, Content: "https://cdn.example.com/done.jpg"},
	}
	doc.NextSeq = 4
	return doc
}

func TestSaveMaterializesDataURIs(t *testing.T) {
	s, repo, snaps, mat := newTestService()
	mat.fail[badDataURI] = true
	owner := uuid.New()
	p := createTestProject(t, s, owner)

	// A stale auto-save snapshot that the save must supersede.
	_ = snaps.Put(context.Background(), p.ID, &Snapshot{Document: []byte(`{"pages":[]}`), Timestamp: time.Now()})

	result, err := s.Save(context.Background(), owner, p.ID, docWithImages(), []string{"thumb-1"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// One failure never fails the save, it marks the element instead.
	if len(result.FailedElements) != 1 || result.FailedElements[0] != "img-bad" {
		t.Fatalf("FailedElements = %v, want [img-bad]", result.FailedElements)
	}

	ok := result.Document.FindElement("img-ok")
	if strings.HasPrefix(ok.Content, "data:") {
		t.Error("materialized element still holds a data URI")
	}
	if ok.UploadError != "" {
		t.Errorf("unexpected uploadError on success: %q", ok.UploadError)
	}

	bad := result.Document.FindElement("img-bad")
	if bad.Content != badDataURI {
		t.Error("failed element must keep its original content for retry")
	}
	if bad.UploadError == "" {
		t.Error("failed element missing uploadError marker")
	}

	done := result.Document.FindElement("img-done")
	if done.Content != "https://cdn.example.com/done.jpg" {
		t.Error("already-materialized element must not be touched")
	}
	if mat.calls != 2 {
		t.Errorf("materializer called %d times, want 2", mat.calls)
	}

	// Persisted state matches the returned document.
	var persisted Document
	if err := json.Unmarshal(repo.updatedDoc, &persisted); err != nil {
		t.Fatalf("persisted document invalid: %v", err)
	}

	// The finalized save supersedes the auto-save snapshot.
	if snap, _ := snaps.Get(context.Background(), p.ID); snap != nil {
		t.Error("auto-save snapshot not deleted after manual save")
	}

	// Lock released: a second save is possible.
	if _, err := s.Save(context.Background(), owner, p.ID, docWithImages(), nil); err != nil {
		t.Fatalf("second Save: %v", err)
	}
}

func TestSaveRefusedWhileLocked(t *testing.T) {
	s, _, snaps, _ := newTestService()
	owner := uuid.New()
	p := createTestProject(t, s, owner)

	if ok, _ := snaps.AcquireLock(context.Background(), p.ID); !ok {
		t.Fatal("setup: could not take lock")
	}

	if _, err := s.Save(context.Background(), owner, p.ID, NewDocument("#fff"), nil); !errors.Is(err, ErrSaveInProgress) {
		t.Fatalf("expected ErrSaveInProgress, got %v", err)
	}
}

func TestSaveRejectsInvalidDocument(t *testing.T) {
	s, _, _, _ := newTestService()
	owner := uuid.New()
	p := createTestProject(t, s, owner)

	doc := NewDocument("#fff")
	doc.Pages[0].Cells[0].Elements = []Element{
		{ID: "dup", Type: ElementText, Opacity: 1},
		{ID: "dup", Type: ElementText, Opacity: 1},
	}

	if _, err := s.Save(context.Background(), owner, p.ID, doc, nil); err == nil {
		t.Fatal("expected validation error for duplicate element ids")
	}
}

func TestPageOperationsThroughService(t *testing.T) {
	s, _, _, _ := newTestService()
	owner := uuid.New()
	p := createTestProject(t, s, owner)

	doc, err := s.AddPage(context.Background(), owner, p.ID, 0)
	if err != nil {
		t.Fatalf("AddPage: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}

	doc, err = s.DuplicatePage(context.Background(), owner, p.ID, 0)
	if err != nil {
		t.Fatalf("DuplicatePage: %v", err)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(doc.Pages))
	}

	doc, err = s.DeletePage(context.Background(), owner, p.ID, 2)
	if err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
}
