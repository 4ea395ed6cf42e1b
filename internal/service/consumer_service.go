// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"

	"ai-reader-be/internal/dto"
	"ai-reader-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub           *gochannel.GoChannel
	topicName        string
	structureService IStructureService
	log              logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	structureService IStructureService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:           pubSub,
		topicName:        topicName,
		structureService: structureService,
		log:              log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishStructureBuildMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("structure.consumer", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.log.Info("structure.consumer", "processing structuring job", map[string]interface{}{
		"document_id": payload.DocumentId,
	})

	if err := cs.structureService.ProcessDocument(ctx, payload.DocumentId, payload.MaxDepth); err != nil {
		// ProcessDocument already marked the document FAILED; requeueing the
		// same content would fail again, so the message is acked.
		cs.log.Error("structure.consumer", "structuring job failed", map[string]interface{}{
			"document_id": payload.DocumentId,
			"error":       err.Error(),
		})
		msg.Ack()
		return
	}

	cs.log.Info("structure.consumer", "structuring job done", map[string]interface{}{
		"document_id": payload.DocumentId,
	})
	msg.Ack()
}
