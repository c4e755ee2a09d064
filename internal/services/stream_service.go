package services

import (
	"context"
	"fmt"
	"io"

	"streamtally/internal/amqp"
	"streamtally/internal/core"
	"streamtally/internal/log"
	"streamtally/internal/repository"
)

// Publisher announces appended activities to other processes.
type Publisher interface {
	PublishActivityAppended(ctx context.Context, msg *amqp.ActivityAppendedMessage) error
}

// StreamService records stream activity in the repository and announces
// each new activity. Publishing is best effort: the repository is the
// source of truth and a failed publish never fails the request.
type StreamService struct {
	repo      *repository.Repository
	publisher Publisher
	logger    *log.Logger
}

// NewStreamService wires the service. publisher may be nil, in which
// case nothing is announced.
func NewStreamService(repo *repository.Repository, publisher Publisher, logger *log.Logger) *StreamService {
	if logger == nil {
		logger = log.Discard()
	}
	return &StreamService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentService),
	}
}

// CreateOrGetHeader returns the id of the stream log for h, creating it
// when needed.
func (s *StreamService) CreateOrGetHeader(ctx context.Context, h core.Header) (string, bool, error) {
	return s.repo.CreateOrGetHeader(ctx, h)
}

// AppendActivity records the activity and publishes it.
func (s *StreamService) AppendActivity(ctx context.Context, id string, p core.ActivityPayload) (core.Activity, error) {
	a, err := s.repo.AppendActivity(ctx, id, p)
	if err != nil {
		return core.Activity{}, err
	}

	if err := s.publish(ctx, id, a); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish activity message",
			log.FieldStreamID, id, log.FieldActivityID, a.ID, log.FieldError, err)
	}
	return a, nil
}

func (s *StreamService) publish(ctx context.Context, id string, a core.Activity) error {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not available, skipping activity message")
		return nil
	}
	l, ok := s.repo.Get(id)
	if !ok {
		return fmt.Errorf("stream log %s vanished after append", id)
	}
	return s.publisher.PublishActivityAppended(ctx, amqp.NewActivityAppendedMessage(l, a))
}

// Close closes the publisher when it holds a connection.
func (s *StreamService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
