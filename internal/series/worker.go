// Package series deletes transactions individually or as a whole recurring
// series.
package series

import (
	"context"

	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/changebus"
	"github.com/pocketledger/backend/internal/metrics"
	"github.com/pocketledger/backend/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Worker deletes transactions and publishes the resulting change payloads.
//
// Series deletion is the one genuinely long-running operation in the engine.
// It runs on its own goroutine against a dedicated store connection so the
// caller's connection is never blocked.
type Worker struct {
	db   *gorm.DB // handle used on the caller's goroutine
	conn *gorm.DB // dedicated handle for background series deletes
	bus  *changebus.Bus
	log  zerolog.Logger
}

// NewWorker returns a Worker. conn must be a connection separate from db.
func NewWorker(db, conn *gorm.DB, bus *changebus.Bus, log zerolog.Logger) *Worker {
	return &Worker{db: db, conn: conn, bus: bus, log: log}
}

// Handle tracks a background series deletion.
type Handle struct {
	done chan struct{}
	err  error
}

// Wait blocks until the deletion finished or ctx is canceled. It returns
// the deletion error, or the context error when canceled first. The
// deletion itself keeps running after a canceled Wait, only the caller
// stops waiting.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func completedHandle(err error) *Handle {
	h := &Handle{done: make(chan struct{}), err: err}
	close(h.done)
	return h
}

// DeleteSingle deletes one transaction on the caller's goroutine and
// publishes a change payload scoped to its account and category. Intended
// for immediate UI feedback.
func (w *Worker) DeleteSingle(transaction models.Transaction) error {
	err := w.db.Delete(&models.Transaction{}, transaction.ID).Error
	if err != nil {
		w.log.Error().Err(err).Str("transaction", transaction.ID.String()).Msg("deleting transaction failed")
		return err
	}

	w.publish(payloadFor(changebus.MutationDelete, []models.Transaction{transaction}))
	return nil
}

// DeleteSeries deletes every transaction sharing the recurrence group id on
// the worker's dedicated connection and returns a handle the caller can
// await.
//
// The sentinel uuid.Nil group id is a guaranteed no-op: non-recurring
// transactions are never bulk-deleted. Deleting an empty series exits
// silently. Bulk deletion is expected to be atomic at the store layer, the
// worker does not retry partial failures.
func (w *Worker) DeleteSeries(ctx context.Context, groupID uuid.UUID) *Handle {
	if groupID == uuid.Nil {
		return completedHandle(nil)
	}

	handle := &Handle{done: make(chan struct{})}

	go func() {
		defer close(handle.done)
		handle.err = w.deleteSeries(ctx, groupID)
	}()

	return handle
}

func (w *Worker) deleteSeries(ctx context.Context, groupID uuid.UUID) error {
	db := w.conn.WithContext(ctx)

	var transactions []models.Transaction
	err := db.
		Where("recurrence_group_id = ?", groupID).
		Where("recurrence <> ?", models.RecurrenceNone).
		Find(&transactions).Error
	if err != nil {
		w.log.Error().Err(err).Str("group", groupID.String()).Msg("fetching series members failed")
		return err
	}

	if len(transactions) == 0 {
		return nil
	}

	err = db.
		Where("recurrence_group_id = ?", groupID).
		Where("recurrence <> ?", models.RecurrenceNone).
		Delete(&models.Transaction{}).Error
	if err != nil {
		w.log.Error().Err(err).Str("group", groupID.String()).Msg("deleting series failed")
		return err
	}

	metrics.SeriesDeletions.Inc()
	w.log.Info().Str("group", groupID.String()).Int("transactions", len(transactions)).Msg("series deleted")

	// One aggregated payload covering all affected accounts and categories
	w.publish(payloadFor(changebus.MutationDelete, transactions))
	return nil
}

func (w *Worker) publish(payload *changebus.Payload) {
	w.bus.Publish(payload)
	metrics.PayloadsPublished.Inc()
}

// payloadFor unions the affected account and category ids of the
// transactions into one payload.
func payloadFor(kind changebus.MutationKind, transactions []models.Transaction) *changebus.Payload {
	accounts := make(map[uuid.UUID]struct{})
	categories := make(map[uuid.UUID]struct{})

	for _, transaction := range transactions {
		if transaction.AccountID != nil {
			accounts[*transaction.AccountID] = struct{}{}
		}
		if transaction.CategoryID != nil {
			categories[*transaction.CategoryID] = struct{}{}
		}
	}

	payload := &changebus.Payload{Kind: kind}
	for id := range accounts {
		payload.AccountIDs = append(payload.AccountIDs, id)
	}
	for id := range categories {
		payload.CategoryIDs = append(payload.CategoryIDs, id)
	}

	return payload
}
