package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-reader-be/internal/dto"
	"ai-reader-be/internal/entity"
	"ai-reader-be/internal/repository/contract"
	"ai-reader-be/internal/repository/specification"
	"ai-reader-be/internal/repository/unitofwork"
	"ai-reader-be/pkg/outline"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- in-memory doubles ----

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error { return nil }

type fakeDocumentRepo struct {
	documents     map[uuid.UUID]*entity.Document
	statusUpdates []string
}

func (r *fakeDocumentRepo) Create(ctx context.Context, document *entity.Document) error {
	r.documents[document.Id] = document
	return nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, document *entity.Document) error {
	r.documents[document.Id] = document
	return nil
}

func (r *fakeDocumentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	doc, ok := r.documents[id]
	if !ok {
		return errors.New("document not found")
	}
	doc.Status = status
	r.statusUpdates = append(r.statusUpdates, status)
	return nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.documents, id)
	return nil
}

func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	var byId *uuid.UUID
	var byUser *uuid.UUID
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			id := spec.ID
			byId = &id
		case specification.OwnedByUser:
			uid := spec.UserID
			byUser = &uid
		}
	}
	if byId == nil {
		return nil, nil
	}
	doc, ok := r.documents[*byId]
	if !ok {
		return nil, nil
	}
	if byUser != nil && doc.UserId != *byUser {
		return nil, nil
	}
	return doc, nil
}

func (r *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	out := make([]*entity.Document, 0, len(r.documents))
	for _, d := range r.documents {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.documents)), nil
}

// fakeStructureNodeRepo separates pending writes from committed rows so the
// tests can observe what actually survives a mid-build failure. Reads only
// ever see committed rows, like a real transaction.
type fakeStructureNodeRepo struct {
	committed  []*entity.StructureNode
	pending    []*entity.StructureNode
	batches    [][]*entity.StructureNode
	deleted    []uuid.UUID
	saveCalls  int
	failOnSave int // 1-based SaveAll call that fails, 0 disables
}

func (r *fakeStructureNodeRepo) SaveAll(ctx context.Context, nodes []*entity.StructureNode) error {
	r.saveCalls++
	if r.failOnSave > 0 && r.saveCalls == r.failOnSave {
		return errors.New("batch insert failed")
	}
	r.batches = append(r.batches, nodes)
	r.pending = append(r.pending, nodes...)
	return nil
}

func (r *fakeStructureNodeRepo) FindByDocumentAndDepthLessThan(ctx context.Context, documentId uuid.UUID, depth int) ([]*entity.StructureNode, error) {
	out := make([]*entity.StructureNode, 0)
	for _, n := range r.committed {
		if n.DocumentId == documentId && n.Depth < depth {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeStructureNodeRepo) FindByDocumentOrderByStartOffset(ctx context.Context, documentId uuid.UUID) ([]*entity.StructureNode, error) {
	out := make([]*entity.StructureNode, 0)
	for _, n := range r.committed {
		if n.DocumentId == documentId {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeStructureNodeRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StructureNode, error) {
	for _, s := range specs {
		if spec, ok := s.(specification.ByID); ok {
			for _, n := range r.committed {
				if n.Id == spec.ID {
					return n, nil
				}
			}
		}
	}
	return nil, nil
}

func (r *fakeStructureNodeRepo) CountByDocument(ctx context.Context, documentId uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.committed {
		if n.DocumentId == documentId {
			count++
		}
	}
	return count, nil
}

func (r *fakeStructureNodeRepo) DeleteByDocument(ctx context.Context, documentId uuid.UUID) error {
	r.deleted = append(r.deleted, documentId)
	kept := r.committed[:0]
	for _, n := range r.committed {
		if n.DocumentId != documentId {
			kept = append(kept, n)
		}
	}
	r.committed = kept
	return nil
}

type fakeUnitOfWork struct {
	documentRepo *fakeDocumentRepo
	nodeRepo     *fakeStructureNodeRepo
	begins       int
	commits      int
	rollbacks    int
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.begins++
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.commits++
	u.nodeRepo.committed = append(u.nodeRepo.committed, u.nodeRepo.pending...)
	u.nodeRepo.pending = nil
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	u.rollbacks++
	u.nodeRepo.pending = nil
	return nil
}

func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return u.documentRepo
}

func (u *fakeUnitOfWork) StructureNodeRepository() contract.StructureNodeRepository {
	return u.nodeRepo
}

func (u *fakeUnitOfWork) TagRepository() contract.TagRepository { return nil }

func (u *fakeUnitOfWork) ArticleRepository() contract.ArticleRepository { return nil }

func (u *fakeUnitOfWork) ReviewCardRepository() contract.ReviewCardRepository { return nil }

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type capturingPublisher struct {
	payloads [][]byte
	err      error
}

func (p *capturingPublisher) Publish(ctx context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

type scriptedGenerator struct {
	proposals []*outline.NodeProposal
	err       error
	calls     int
}

func (g *scriptedGenerator) GenerateStructure(ctx context.Context, text string, opts outline.GenerateOptions) ([]*outline.NodeProposal, error) {
	g.calls++
	return g.proposals, g.err
}

func (g *scriptedGenerator) GenerateStructureWithContext(ctx context.Context, text string, opts outline.GenerateOptions, previousNodes []*outline.NodeProposal, chunkIndex, totalChunks int) ([]*outline.NodeProposal, error) {
	g.calls++
	return g.proposals, g.err
}

// ---- fixtures ----

const serviceTestDoc = "Chapter One\n\nThe opening chapter text.\n\nSection A\n\nSome section body.\n\nChapter Two\n\nThe closing chapter text.\n"

func proposalFor(title, nodeType string, depth int) *outline.NodeProposal {
	var endAnchor string
	switch title {
	case "Chapter One":
		endAnchor = "Some section body."
	case "Section A":
		endAnchor = "Some section body."
	case "Chapter Two":
		endAnchor = "closing chapter text."
	}
	return &outline.NodeProposal{
		Type:        nodeType,
		Title:       title,
		StartAnchor: title,
		EndAnchor:   endAnchor,
		Depth:       depth,
	}
}

func threeNodeProposals() []*outline.NodeProposal {
	return []*outline.NodeProposal{
		proposalFor("Chapter One", "chapter", 0),
		proposalFor("Section A", "section", 1),
		proposalFor("Chapter Two", "chapter", 0),
	}
}

func newServiceUnderTest(gen outline.StructureGenerator, pub *capturingPublisher, uow *fakeUnitOfWork) IStructureService {
	log := noopLogger{}
	orchestrator := outline.NewChunkedOrchestrator(gen, outline.DefaultConfig(), log)
	return NewStructureService(
		&fakeUowFactory{uow: uow},
		pub,
		gen,
		orchestrator,
		nil,
		time.Minute,
		log,
	)
}

func seededUow(doc *entity.Document) *fakeUnitOfWork {
	docs := map[uuid.UUID]*entity.Document{}
	if doc != nil {
		docs[doc.Id] = doc
	}
	return &fakeUnitOfWork{
		documentRepo: &fakeDocumentRepo{documents: docs},
		nodeRepo:     &fakeStructureNodeRepo{},
	}
}

// ---- tests ----

func TestBuildMarksStructuringAndPublishes(t *testing.T) {
	userId := uuid.New()
	doc := &entity.Document{
		Id:      uuid.New(),
		Title:   "My Book",
		Content: serviceTestDoc,
		Status:  entity.DocumentStatusNormalized,
		UserId:  userId,
	}
	uow := seededUow(doc)
	pub := &capturingPublisher{}
	svc := newServiceUnderTest(&scriptedGenerator{}, pub, uow)

	res, err := svc.Build(context.Background(), userId, &dto.BuildStructureRequest{DocumentId: doc.Id, MaxDepth: 2})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, entity.DocumentStatusStructuring, res.Status)
	assert.Equal(t, []string{entity.DocumentStatusStructuring}, uow.documentRepo.statusUpdates)

	require.Len(t, pub.payloads, 1)
	var msg dto.PublishStructureBuildMessage
	require.NoError(t, json.Unmarshal(pub.payloads[0], &msg))
	assert.Equal(t, doc.Id, msg.DocumentId)
	assert.Equal(t, 2, msg.MaxDepth)
}

func TestBuildIsIdempotentWhileStructuring(t *testing.T) {
	userId := uuid.New()
	doc := &entity.Document{
		Id:      uuid.New(),
		Content: serviceTestDoc,
		Status:  entity.DocumentStatusStructuring,
		UserId:  userId,
	}
	uow := seededUow(doc)
	pub := &capturingPublisher{}
	svc := newServiceUnderTest(&scriptedGenerator{}, pub, uow)

	res, err := svc.Build(context.Background(), userId, &dto.BuildStructureRequest{DocumentId: doc.Id})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, entity.DocumentStatusStructuring, res.Status)
	assert.Empty(t, pub.payloads, "already running jobs must not enqueue again")
	assert.Empty(t, uow.documentRepo.statusUpdates)
}

func TestBuildRejectsForeignDocument(t *testing.T) {
	doc := &entity.Document{
		Id:      uuid.New(),
		Content: serviceTestDoc,
		Status:  entity.DocumentStatusNormalized,
		UserId:  uuid.New(),
	}
	uow := seededUow(doc)
	svc := newServiceUnderTest(&scriptedGenerator{}, &capturingPublisher{}, uow)

	res, err := svc.Build(context.Background(), uuid.New(), &dto.BuildStructureRequest{DocumentId: doc.Id})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestProcessDocumentPersistsByDepthLayers(t *testing.T) {
	userId := uuid.New()
	doc := &entity.Document{
		Id:      uuid.New(),
		Title:   "My Book",
		Content: serviceTestDoc,
		Status:  entity.DocumentStatusStructuring,
		UserId:  userId,
	}
	uow := seededUow(doc)
	gen := &scriptedGenerator{proposals: threeNodeProposals()}
	svc := newServiceUnderTest(gen, &capturingPublisher{}, uow)

	require.NoError(t, svc.ProcessDocument(context.Background(), doc.Id, 2))

	assert.Equal(t, entity.DocumentStatusStructured, doc.Status)
	assert.Equal(t, 3, doc.NodeCount)
	assert.Equal(t, []uuid.UUID{doc.Id}, uow.nodeRepo.deleted)

	// One committed transaction for the delete, one per depth layer.
	assert.Equal(t, 3, uow.begins)
	assert.Equal(t, 3, uow.commits)
	assert.Zero(t, uow.rollbacks)

	require.Len(t, uow.nodeRepo.batches, 2)
	require.Len(t, uow.nodeRepo.batches[0], 2)
	require.Len(t, uow.nodeRepo.batches[1], 1)

	roots := uow.nodeRepo.batches[0]
	assert.Equal(t, "Chapter One", roots[0].Title)
	assert.Equal(t, "Chapter Two", roots[1].Title)
	assert.Nil(t, roots[0].ParentId)
	assert.Equal(t, 1, roots[0].SiblingIndex)
	assert.Equal(t, 2, roots[1].SiblingIndex)
	assert.Less(t, roots[0].StartOffset, roots[1].StartOffset)

	// The depth-1 node's parent comes from the committed depth-0 layer.
	section := uow.nodeRepo.batches[1][0]
	require.NotNil(t, section.ParentId)
	assert.Equal(t, roots[0].Id, *section.ParentId)
	assert.Equal(t, 1, section.SiblingIndex)
}

func TestProcessDocumentKeepsCommittedLayersOnLaterFailure(t *testing.T) {
	doc := &entity.Document{
		Id:      uuid.New(),
		Title:   "My Book",
		Content: serviceTestDoc,
		Status:  entity.DocumentStatusStructuring,
		UserId:  uuid.New(),
	}
	uow := seededUow(doc)
	uow.nodeRepo.failOnSave = 2 // depth-0 layer succeeds, depth-1 layer fails
	gen := &scriptedGenerator{proposals: threeNodeProposals()}
	svc := newServiceUnderTest(gen, &capturingPublisher{}, uow)

	err := svc.ProcessDocument(context.Background(), doc.Id, 2)
	require.Error(t, err)
	assert.Equal(t, entity.DocumentStatusFailed, doc.Status)

	// The depth-0 layer stays on disk; only the failing layer rolled back.
	require.Len(t, uow.nodeRepo.committed, 2)
	assert.Equal(t, "Chapter One", uow.nodeRepo.committed[0].Title)
	assert.Equal(t, "Chapter Two", uow.nodeRepo.committed[1].Title)
	assert.Equal(t, 2, uow.commits, "delete step and depth-0 layer each commit")
	assert.Equal(t, 1, uow.rollbacks)
}

func TestProcessDocumentRejectsEmptyContent(t *testing.T) {
	doc := &entity.Document{
		Id:      uuid.New(),
		Content: "   \n\t",
		Status:  entity.DocumentStatusStructuring,
		UserId:  uuid.New(),
	}
	uow := seededUow(doc)
	gen := &scriptedGenerator{}
	svc := newServiceUnderTest(gen, &capturingPublisher{}, uow)

	err := svc.ProcessDocument(context.Background(), doc.Id, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text")
	assert.Equal(t, entity.DocumentStatusFailed, doc.Status)
	assert.Zero(t, gen.calls, "empty documents must never reach the model")
}

func TestProcessDocumentRequiresQueuedStatus(t *testing.T) {
	doc := &entity.Document{
		Id:      uuid.New(),
		Content: serviceTestDoc,
		Status:  entity.DocumentStatusNormalized,
		UserId:  uuid.New(),
	}
	uow := seededUow(doc)
	gen := &scriptedGenerator{proposals: threeNodeProposals()}
	svc := newServiceUnderTest(gen, &capturingPublisher{}, uow)

	err := svc.ProcessDocument(context.Background(), doc.Id, 2)
	require.Error(t, err)

	// Not an enqueued job: the status is left alone rather than failed.
	assert.Equal(t, entity.DocumentStatusNormalized, doc.Status)
	assert.Zero(t, gen.calls)
	assert.Empty(t, uow.nodeRepo.committed)
}

func TestProcessDocumentMarksFailedOnGenerationError(t *testing.T) {
	doc := &entity.Document{
		Id:      uuid.New(),
		Content: serviceTestDoc,
		Status:  entity.DocumentStatusStructuring,
		UserId:  uuid.New(),
	}
	uow := seededUow(doc)
	gen := &scriptedGenerator{err: &outline.GenerationError{Message: "model unavailable"}}
	svc := newServiceUnderTest(gen, &capturingPublisher{}, uow)

	err := svc.ProcessDocument(context.Background(), doc.Id, 2)
	require.Error(t, err)
	assert.Equal(t, entity.DocumentStatusFailed, doc.Status)
	assert.Empty(t, uow.nodeRepo.committed)
}

func TestProcessDocumentUnknownDocument(t *testing.T) {
	uow := seededUow(nil)
	svc := newServiceUnderTest(&scriptedGenerator{}, &capturingPublisher{}, uow)

	err := svc.ProcessDocument(context.Background(), uuid.New(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestShowBuildsNestedTree(t *testing.T) {
	userId := uuid.New()
	doc := &entity.Document{
		Id:      uuid.New(),
		Title:   "My Book",
		Content: serviceTestDoc,
		Status:  entity.DocumentStatusStructuring,
		UserId:  userId,
	}
	uow := seededUow(doc)
	gen := &scriptedGenerator{proposals: threeNodeProposals()}
	svc := newServiceUnderTest(gen, &capturingPublisher{}, uow)
	require.NoError(t, svc.ProcessDocument(context.Background(), doc.Id, 2))

	res, err := svc.Show(context.Background(), userId, doc.Id)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, entity.DocumentStatusStructured, res.Status)
	assert.Equal(t, 3, res.NodeCount)
	require.Len(t, res.Roots, 2)
	assert.Equal(t, "Chapter One", res.Roots[0].Title)
	require.Len(t, res.Roots[0].Children, 1)
	assert.Equal(t, "Section A", res.Roots[0].Children[0].Title)
	assert.Empty(t, res.Roots[1].Children)
}

func TestShowCacheInvalidatedByStatusChange(t *testing.T) {
	userId := uuid.New()
	doc := &entity.Document{
		Id:      uuid.New(),
		Content: serviceTestDoc,
		Status:  entity.DocumentStatusNormalized,
		UserId:  userId,
	}
	uow := seededUow(doc)
	gen := &scriptedGenerator{proposals: []*outline.NodeProposal{
		proposalFor("Chapter One", "chapter", 0),
	}}
	svc := newServiceUnderTest(gen, &capturingPublisher{}, uow)

	// Prime the cache with the empty, pre-build tree.
	res, err := svc.Show(context.Background(), userId, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, res.NodeCount)

	doc.Status = entity.DocumentStatusStructuring
	require.NoError(t, svc.ProcessDocument(context.Background(), doc.Id, 1))

	res, err = svc.Show(context.Background(), userId, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentStatusStructured, res.Status)
	assert.Equal(t, 1, res.NodeCount, "stale cached tree must not survive the status change")
}

func TestSectionTextSlicesByOffsets(t *testing.T) {
	userId := uuid.New()
	doc := &entity.Document{
		Id:      uuid.New(),
		Content: serviceTestDoc,
		Status:  entity.DocumentStatusStructuring,
		UserId:  userId,
	}
	uow := seededUow(doc)
	gen := &scriptedGenerator{proposals: []*outline.NodeProposal{
		proposalFor("Chapter Two", "chapter", 0),
	}}
	svc := newServiceUnderTest(gen, &capturingPublisher{}, uow)
	require.NoError(t, svc.ProcessDocument(context.Background(), doc.Id, 1))
	require.Len(t, uow.nodeRepo.committed, 1)

	node := uow.nodeRepo.committed[0]
	res, err := svc.SectionText(context.Background(), userId, node.Id)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, node.Id, res.NodeId)
	assert.True(t, strings.HasPrefix(res.Text, "Chapter Two"))
	assert.Equal(t, doc.Content[node.StartOffset:node.EndOffset], res.Text)

	// A stranger never sees another user's text.
	foreign, err := svc.SectionText(context.Background(), uuid.New(), node.Id)
	require.NoError(t, err)
	assert.Nil(t, foreign)
}
