// Package worker mirrors bills created in the local SQLite store to the
// Google sheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"billed/internal/amqp"
	"billed/internal/core"
	"billed/internal/log"
)

// BillSource is the local store the worker drains.
type BillSource interface {
	GetBill(ctx context.Context, id string) (core.Bill, error)
	PendingSync(ctx context.Context, limit int) ([]core.Bill, error)
	MarkSynced(ctx context.Context, id string) error
}

// Mirror receives copies of local bills, keeping their IDs.
type Mirror interface {
	Mirror(ctx context.Context, b core.Bill) error
}

// Consumer delivers bill-created messages until ctx is done.
type Consumer interface {
	ConsumeBillCreated(ctx context.Context, handler func(context.Context, *amqp.BillCreatedMessage) error) error
}

// SyncWorker handles synchronization of bills from SQLite to Google Sheets
type SyncWorker struct {
	source    BillSource
	mirror    Mirror
	batchSize int
	logger    *log.Logger
}

func NewSyncWorker(source BillSource, mirror Mirror, batchSize int, logger *log.Logger) *SyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	return &SyncWorker{
		source:    source,
		mirror:    mirror,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleBillCreated mirrors the bill named by msg. Returning an error makes
// the consumer requeue the message.
func (w *SyncWorker) HandleBillCreated(ctx context.Context, msg *amqp.BillCreatedMessage) error {
	w.logger.InfoContext(ctx, "Processing bill created message",
		log.FieldBillID, msg.ID,
		log.FieldEmail, msg.Email)

	bill, err := w.source.GetBill(ctx, msg.ID)
	if err != nil {
		if core.ClassifyFailure(err) == core.FailureNotFound {
			// Nothing to mirror; requeueing would loop forever.
			w.logger.WarnContext(ctx, "Bill from message not found locally, dropping",
				log.FieldBillID, msg.ID)
			return nil
		}
		return fmt.Errorf("get bill from storage: %w", err)
	}

	return w.syncBill(ctx, bill)
}

// ProcessPending mirrors up to one batch of bills that have not been synced
// yet. It covers messages lost while the broker or the worker was down.
func (w *SyncWorker) ProcessPending(ctx context.Context) (synced int, err error) {
	pending, err := w.source.PendingSync(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending bills: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending bills", log.FieldCount, len(pending))

	for _, b := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.syncBill(ctx, b); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync bill",
				log.FieldBillID, b.ID,
				log.FieldError, err)
			continue
		}
		synced++
	}

	w.logger.InfoContext(ctx, "Pending sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", len(pending)-synced)
	return synced, nil
}

// Run sweeps pending bills every interval and, when consumer is not nil,
// handles bill-created messages concurrently. It returns when ctx is done or
// the consumer fails.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer, interval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	if consumer != nil {
		consumeCtx := log.NewContext(ctx, w.logger.WithComponent(log.ComponentAMQP))
		g.Go(func() error {
			return consumer.ConsumeBillCreated(consumeCtx, w.HandleBillCreated)
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if _, err := w.ProcessPending(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "Pending sweep failed", log.FieldError, err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *SyncWorker) syncBill(ctx context.Context, b core.Bill) error {
	if err := w.mirror.Mirror(ctx, b); err != nil {
		return fmt.Errorf("mirror bill: %w", err)
	}

	if err := w.source.MarkSynced(ctx, b.ID); err != nil {
		// The row is mirrored; a failed mark only means a duplicate on the next sweep.
		w.logger.ErrorContext(ctx, "Failed to mark as synced",
			log.FieldBillID, b.ID,
			log.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Successfully synced bill",
		log.FieldBillID, b.ID,
		log.FieldEmail, b.Email)
	return nil
}
