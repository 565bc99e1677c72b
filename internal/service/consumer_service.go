package service

import (
	"context"
	"encoding/json"
	"log"

	"agentic-rag-be/internal/repository/memory"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the run-events topic and persists completed runs
// so GET /runs/:id can serve them.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	runRepo   *memory.RunRepository
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	runRepo *memory.RunRepository,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		runRepo:   runRepo,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var record memory.RunRecord
	if err := json.Unmarshal(msg.Payload, &record); err != nil {
		log.Printf("[ERROR] Failed to unmarshal run record: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if record.ID == "" {
		log.Printf("[ERROR] Run record without id, dropping")
		msg.Ack()
		return
	}

	cs.runRepo.Save(&record)
	log.Printf("[INFO] Stored run %s (rewrites=%d retrievals=%d)", record.ID, record.Rewrites, record.Retrievals)
	msg.Ack()
}
