package worker

import (
	"context"
	"fmt"
	"time"

	"streamtally/internal/amqp"
	"streamtally/internal/log"
	"streamtally/internal/sheets"
)

// MirrorWorker copies activity.appended messages into an ActivityMirror.
type MirrorWorker struct {
	mirror  sheets.ActivityMirror
	timeout time.Duration
	logger  *log.Logger
}

func NewMirrorWorker(mirror sheets.ActivityMirror, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &MirrorWorker{
		mirror:  mirror,
		timeout: 30 * time.Second,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleActivityAppended mirrors a single message. A returned error asks
// the consumer to redeliver it.
func (w *MirrorWorker) HandleActivityAppended(ctx context.Context, msg *amqp.ActivityAppendedMessage) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	w.logger.InfoContext(ctx, "Processing activity message",
		log.FieldStreamID, msg.StreamID,
		log.FieldActivityID, msg.Activity.ID,
		log.FieldActivity, string(msg.Activity.Kind))

	start := time.Now()
	ref, err := w.mirror.AppendActivity(ctx, msg.Header(), msg.Activity)
	if err != nil {
		return fmt.Errorf("mirror activity %s: %w", msg.Activity.ID, err)
	}

	w.logger.InfoContext(ctx, "Activity mirrored",
		log.FieldActivityID, msg.Activity.ID,
		log.FieldMirrorRef, ref,
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}
