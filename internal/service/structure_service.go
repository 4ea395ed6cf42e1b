// FILE: internal/service/structure_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"ai-reader-be/internal/constant"
	"ai-reader-be/internal/dto"
	"ai-reader-be/internal/entity"
	"ai-reader-be/internal/pkg/logger"
	"ai-reader-be/internal/repository/specification"
	"ai-reader-be/internal/repository/unitofwork"
	"ai-reader-be/pkg/events"
	pktNats "ai-reader-be/pkg/nats"
	"ai-reader-be/pkg/outline"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

type IStructureService interface {
	// Build enqueues a structuring job for the document and marks it
	// STRUCTURING. The heavy lifting happens in ProcessDocument.
	Build(ctx context.Context, userId uuid.UUID, req *dto.BuildStructureRequest) (*dto.BuildStructureResponse, error)
	// ProcessDocument runs the whole pipeline for one document: generation,
	// anchor resolution, hierarchy assembly and depth-layered persistence.
	ProcessDocument(ctx context.Context, documentId uuid.UUID, maxDepth int) error
	Show(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) (*dto.ShowStructureResponse, error)
	SectionText(ctx context.Context, userId uuid.UUID, nodeId uuid.UUID) (*dto.ShowSectionTextResponse, error)
}

type structureService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	generator        outline.StructureGenerator
	orchestrator     *outline.ChunkedOrchestrator
	resolver         *outline.AnchorResolver
	hierarchy        *outline.HierarchyBuilder
	eventPublisher   *pktNats.Publisher
	treeCache        *gocache.Cache
	log              logger.ILogger
}

func NewStructureService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	generator outline.StructureGenerator,
	orchestrator *outline.ChunkedOrchestrator,
	eventPublisher *pktNats.Publisher,
	treeCacheTTL time.Duration,
	log logger.ILogger,
) IStructureService {
	return &structureService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		generator:        generator,
		orchestrator:     orchestrator,
		resolver:         outline.NewAnchorResolver(log, nil),
		hierarchy:        outline.NewHierarchyBuilder(),
		eventPublisher:   eventPublisher,
		treeCache:        gocache.New(treeCacheTTL, 2*treeCacheTTL),
		log:              log,
	}
}

func (c *structureService) Build(ctx context.Context, userId uuid.UUID, req *dto.BuildStructureRequest) (*dto.BuildStructureResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: req.DocumentId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil // Not found
	}

	if document.Status == entity.DocumentStatusStructuring {
		return &dto.BuildStructureResponse{
			DocumentId: document.Id,
			Status:     document.Status,
		}, nil
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, document.Id, entity.DocumentStatusStructuring); err != nil {
		return nil, err
	}

	msgPayload := dto.PublishStructureBuildMessage{
		DocumentId: document.Id,
		MaxDepth:   req.MaxDepth,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	return &dto.BuildStructureResponse{
		DocumentId: document.Id,
		Status:     entity.DocumentStatusStructuring,
	}, nil
}

func (c *structureService) ProcessDocument(ctx context.Context, documentId uuid.UUID, maxDepth int) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return err
	}
	if document == nil {
		return fmt.Errorf("document %s not found", documentId)
	}
	if document.Status != entity.DocumentStatusStructuring {
		// Not an enqueued job; the document keeps whatever status it has.
		return fmt.Errorf("document %s is not queued for structuring (status %s)", documentId, document.Status)
	}

	if err := c.process(ctx, uow, document, maxDepth); err != nil {
		c.log.Error("structure.service", "structuring failed", map[string]interface{}{
			"document_id": documentId,
			"error":       err.Error(),
		})
		if statusErr := uow.DocumentRepository().UpdateStatus(ctx, documentId, entity.DocumentStatusFailed); statusErr != nil {
			c.log.Error("structure.service", "failed to mark document FAILED", map[string]interface{}{
				"document_id": documentId,
				"error":       statusErr.Error(),
			})
		}
		c.publishEvent(ctx, constant.EventDocumentStructureFailed, document, 0)
		return err
	}
	return nil
}

func (c *structureService) process(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document, maxDepth int) error {
	if strings.TrimSpace(document.Content) == "" {
		return fmt.Errorf("document %s has no text to structure", document.Id)
	}

	opts := outline.GenerateOptions{
		DocumentTitle: document.Title,
		MaxDepth:      maxDepth,
		Language:      document.Language,
	}

	var proposals []*outline.NodeProposal
	var err error
	if c.orchestrator.NeedsChunking(document.Content) {
		proposals, err = c.orchestrator.ProcessLargeDocument(ctx, document.Content, opts, document.Id.String())
	} else {
		proposals, err = c.generator.GenerateStructure(ctx, document.Content, opts)
	}
	if err != nil {
		return err
	}
	if len(proposals) == 0 {
		return fmt.Errorf("model returned no structure proposals for document %s", document.Id)
	}

	resolved, err := c.resolver.Resolve(proposals, document.Content)
	if err != nil {
		return err
	}
	resolved = c.hierarchy.Build(resolved)

	// Clearing a previous build commits on its own, like every depth layer
	// after it. A rebuild that dies mid-layer keeps the layers it finished.
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.StructureNodeRepository().DeleteByDocument(ctx, document.Id); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if err := c.persistByDepth(ctx, uow, document.Id, resolved); err != nil {
		return err
	}

	document.Status = entity.DocumentStatusStructured
	document.NodeCount = len(resolved)
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return err
	}

	// Consistency checks after the fact: violations are logged, never fatal.
	if err := outline.ValidateHierarchyContainment(resolved); err != nil {
		c.log.Warn("structure.service", "containment violation in persisted structure", map[string]interface{}{
			"document_id": document.Id,
			"error":       err.Error(),
		})
	}
	if err := outline.ValidateSiblingNonOverlap(resolved); err != nil {
		c.log.Warn("structure.service", "sibling overlap detected in persisted structure", map[string]interface{}{
			"document_id": document.Id,
			"error":       err.Error(),
		})
	}

	c.treeCache.Delete(treeCacheKey(document.Id))
	c.publishEvent(ctx, constant.EventDocumentStructured, document, len(resolved))

	c.log.Info("structure.service", "document structured", map[string]interface{}{
		"document_id": document.Id,
		"node_count":  len(resolved),
	})
	return nil
}

// persistByDepth writes the resolved nodes one depth layer at a time, each
// layer in its own committed transaction. A batch failure at layer N leaves
// layers 0..N-1 durably on disk, so a later attempt can reason from what is
// already persisted. Parents for the shallowest layer are nil; deeper layers
// pick the deepest already-persisted node containing them. Sibling indices
// are 1-based within each parent, ordered by start offset.
func (c *structureService) persistByDepth(ctx context.Context, uow unitofwork.UnitOfWork, documentId uuid.UUID, resolved []*outline.ResolvedNode) error {
	byDepth := make(map[int][]int)
	depths := make([]int, 0)
	for i, n := range resolved {
		if _, ok := byDepth[n.Depth]; !ok {
			depths = append(depths, n.Depth)
		}
		byDepth[n.Depth] = append(byDepth[n.Depth], i)
	}
	sort.Ints(depths)

	siblingCounts := make(map[uuid.UUID]int)
	rootSiblings := 0

	for _, depth := range depths {
		indices := byDepth[depth]
		sort.Slice(indices, func(a, b int) bool {
			return resolved[indices[a]].StartOffset < resolved[indices[b]].StartOffset
		})

		if err := uow.Begin(ctx); err != nil {
			return err
		}

		var persisted []*entity.StructureNode
		if depth > depths[0] {
			var err error
			persisted, err = uow.StructureNodeRepository().FindByDocumentAndDepthLessThan(ctx, documentId, depth)
			if err != nil {
				uow.Rollback()
				return err
			}
		}

		layer := make([]*entity.StructureNode, 0, len(indices))
		for _, i := range indices {
			n := resolved[i]

			var parentId *uuid.UUID
			var siblingIndex int
			if parent := deepestContaining(persisted, n); parent != nil {
				pid := parent.Id
				parentId = &pid
				siblingCounts[pid]++
				siblingIndex = siblingCounts[pid]
			} else {
				rootSiblings++
				siblingIndex = rootSiblings
			}

			layer = append(layer, &entity.StructureNode{
				Id:           uuid.New(),
				DocumentId:   documentId,
				ParentId:     parentId,
				Type:         n.Type,
				Title:        n.Title,
				Depth:        n.Depth,
				SiblingIndex: siblingIndex,
				StartOffset:  n.StartOffset,
				EndOffset:    n.EndOffset,
				Confidence:   n.Confidence,
				StartAnchor:  n.StartAnchor,
				EndAnchor:    n.EndAnchor,
				CreatedAt:    time.Now(),
			})
		}

		if err := uow.StructureNodeRepository().SaveAll(ctx, layer); err != nil {
			uow.Rollback()
			return fmt.Errorf("persisting depth %d layer: %w", depth, err)
		}
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("committing depth %d layer: %w", depth, err)
		}
	}
	return nil
}

// deepestContaining picks the parent for a node out of the already persisted
// shallower layers: the deepest node whose range contains the child's range,
// ties broken toward the later start (the closest ancestor).
func deepestContaining(persisted []*entity.StructureNode, n *outline.ResolvedNode) *entity.StructureNode {
	var best *entity.StructureNode
	for _, p := range persisted {
		if p.StartOffset > n.StartOffset || n.EndOffset > p.EndOffset {
			continue
		}
		if best == nil || p.Depth > best.Depth || (p.Depth == best.Depth && p.StartOffset > best.StartOffset) {
			best = p
		}
	}
	return best
}

func (c *structureService) Show(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) (*dto.ShowStructureResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil
	}

	if cached, ok := c.treeCache.Get(treeCacheKey(documentId)); ok {
		if res, ok := cached.(*dto.ShowStructureResponse); ok && res.Status == document.Status {
			return res, nil
		}
	}

	nodes, err := uow.StructureNodeRepository().FindByDocumentOrderByStartOffset(ctx, documentId)
	if err != nil {
		return nil, err
	}

	res := &dto.ShowStructureResponse{
		DocumentId: documentId,
		Status:     document.Status,
		NodeCount:  len(nodes),
		Roots:      buildTree(nodes),
	}
	c.treeCache.SetDefault(treeCacheKey(documentId), res)
	return res, nil
}

func (c *structureService) SectionText(ctx context.Context, userId uuid.UUID, nodeId uuid.UUID) (*dto.ShowSectionTextResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	node, err := uow.StructureNodeRepository().FindOne(ctx, specification.ByID{ID: nodeId})
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: node.DocumentId},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil
	}

	start, end := node.StartOffset, node.EndOffset
	if start < 0 {
		start = 0
	}
	if end > len(document.Content) {
		end = len(document.Content)
	}
	if start > end {
		start = end
	}

	return &dto.ShowSectionTextResponse{
		NodeId:      node.Id,
		Title:       node.Title,
		StartOffset: node.StartOffset,
		EndOffset:   node.EndOffset,
		Text:        document.Content[start:end],
	}, nil
}

func (c *structureService) publishEvent(ctx context.Context, eventType string, document *entity.Document, nodeCount int) {
	if c.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"document_id": document.Id,
			"user_id":     document.UserId,
			"title":       document.Title,
			"node_count":  nodeCount,
		},
		OccurredAt: time.Now(),
	}
	// Notification is auxiliary, a publish failure never fails the pipeline.
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.log.Warn("structure.service", "failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func treeCacheKey(documentId uuid.UUID) string {
	return "structure:tree:" + documentId.String()
}

// buildTree folds the flat, start-ordered node list into the nested response
// shape. Children end up ordered by sibling index.
func buildTree(nodes []*entity.StructureNode) []*dto.StructureNodeItem {
	items := make(map[uuid.UUID]*dto.StructureNodeItem, len(nodes))
	for _, n := range nodes {
		items[n.Id] = &dto.StructureNodeItem{
			Id:           n.Id,
			Type:         n.Type,
			Title:        n.Title,
			Depth:        n.Depth,
			SiblingIndex: n.SiblingIndex,
			StartOffset:  n.StartOffset,
			EndOffset:    n.EndOffset,
			Confidence:   n.Confidence,
			Children:     []*dto.StructureNodeItem{},
		}
	}

	roots := make([]*dto.StructureNodeItem, 0)
	for _, n := range nodes {
		item := items[n.Id]
		if n.ParentId != nil {
			if parent, ok := items[*n.ParentId]; ok {
				parent.Children = append(parent.Children, item)
				continue
			}
		}
		roots = append(roots, item)
	}

	sortChildren(roots)
	return roots
}

func sortChildren(items []*dto.StructureNodeItem) {
	sort.Slice(items, func(a, b int) bool {
		return items[a].SiblingIndex < items[b].SiblingIndex
	})
	for _, item := range items {
		sortChildren(item.Children)
	}
}
