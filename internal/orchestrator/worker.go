package orchestrator

import (
	"context"
	"errors"
	"time"

	"ripmedia/internal/events"
	"ripmedia/internal/history"
	"ripmedia/internal/logging"
	"ripmedia/internal/model"
	"ripmedia/internal/notifications"
	"ripmedia/internal/services"
)

const (
	statusStarting    = "Starting"
	notifyTimeout     = 15 * time.Second
	persistTimeout    = 5 * time.Second
	progressLogBucket = 25
	shutdownErrorText = "Cancelled: the server is shutting down."
)

func (m *Manager) work(id int64, url, batchID string) {
	defer m.wg.Done()

	ctx := services.WithItemID(m.baseCtx, id)
	ctx = services.WithBatchID(ctx, batchID)
	logger := logging.WithContext(ctx, m.logger)
	started := m.now().UTC()

	select {
	case m.sem <- struct{}{}:
	case <-m.stopping:
		m.finish(ctx, id, batchID, started, nil, errors.New(shutdownErrorText))
		return
	}
	defer func() { <-m.sem }()
	select {
	case <-m.stopping:
		m.finish(ctx, id, batchID, started, nil, errors.New(shutdownErrorText))
		return
	default:
	}

	if snapshot, ok := m.setStatus(id, model.StatusRunning, func(s *model.ItemState) { s.Current = statusStarting }); ok {
		m.publish(events.Event{Type: events.TypeStatus, ID: id, Status: snapshot.Status, Current: snapshot.Current})
	}
	logger.Info("item started",
		logging.String(logging.FieldEventType, "item_started"),
		logging.String(logging.FieldURL, url),
	)

	rep := &itemReporter{m: m, id: id, logger: logger, sampler: logging.NewProgressSampler(progressLogBucket)}
	paths, err := m.runner.Run(ctx, url, m.cfg.Pipeline, rep, nil)
	m.finish(ctx, id, batchID, started, paths, err)
}

func (m *Manager) finish(ctx context.Context, id int64, batchID string, started time.Time, paths []string, runErr error) {
	logger := logging.WithContext(ctx, m.logger)
	finished := m.now().UTC()
	if paths == nil {
		paths = []string{}
	}

	var (
		snapshot model.ItemState
		stage    string
	)
	if runErr == nil {
		snapshot, _ = m.setStatus(id, model.StatusDone, func(s *model.ItemState) {
			s.Paths = append([]string(nil), paths...)
			s.Current = ""
		})
		m.publish(events.Event{
			Type:     events.TypeDone,
			ID:       id,
			Status:   model.StatusDone,
			Paths:    snapshot.Paths,
			Duration: finished.Sub(started).Seconds(),
		})
		logger.Info("item completed",
			logging.String(logging.FieldEventType, "item_completed"),
			logging.Paths(paths),
			logging.Duration("duration", finished.Sub(started)),
		)
	} else {
		var message string
		message, stage = services.Details(runErr)
		var partial *services.PartialSuccessError
		if errors.As(runErr, &partial) && len(partial.Saved) > 0 {
			paths = append([]string(nil), partial.Saved...)
		}
		snapshot, _ = m.setStatus(id, model.StatusError, func(s *model.ItemState) {
			s.Error = message
			s.Paths = append([]string(nil), paths...)
			s.Current = ""
		})
		m.publish(events.Event{
			Type:   events.TypeError,
			ID:     id,
			Status: model.StatusError,
			Error:  message,
			Stage:  stage,
			Paths:  snapshot.Paths,
		})
		attrs := []logging.Attr{
			logging.String(logging.FieldEventType, "item_failed"),
			logging.String(logging.FieldStage, stage),
			logging.Error(runErr),
		}
		if services.IsDetectionFailure(runErr) {
			logger.Info("item failed", logging.Args(attrs...)...)
		} else {
			logging.ErrorWithContext(logger, "item failed", "item_failed", attrs...)
		}
		m.notify(ctx, notifications.EventItemFailed, notifications.Payload{
			"url":   snapshot.URL,
			"title": snapshot.Title,
			"stage": stage,
			"error": message,
		})
	}

	m.record(ctx, history.Entry{
		BatchID:    batchID,
		URL:        snapshot.URL,
		Title:      snapshot.Title,
		Provider:   snapshot.Provider,
		Kind:       snapshot.Kind,
		Status:     snapshot.Status,
		Stage:      stage,
		Error:      snapshot.Error,
		Paths:      snapshot.Paths,
		StartedAt:  started,
		FinishedAt: finished,
	})
	m.completeBatch(ctx, batchID, runErr == nil)
}

func (m *Manager) completeBatch(ctx context.Context, batchID string, ok bool) {
	m.mu.Lock()
	batch, found := m.batches[batchID]
	if !found {
		m.mu.Unlock()
		return
	}
	batch.remaining--
	if ok {
		batch.saved++
	} else {
		batch.failed++
	}
	if batch.remaining > 0 {
		m.mu.Unlock()
		return
	}
	delete(m.batches, batchID)
	summary := *batch
	m.mu.Unlock()

	finished := m.now().UTC()
	m.logger.Info("batch completed",
		logging.String(logging.FieldEventType, "batch_completed"),
		logging.String(logging.FieldCorrelationID, summary.id),
		logging.Int("saved", summary.saved),
		logging.Int("failed", summary.failed),
	)
	m.notify(ctx, notifications.EventBatchCompleted, notifications.Payload{
		"saved":    summary.saved,
		"failed":   summary.failed,
		"duration": finished.Sub(summary.started),
	})
	if m.recorder != nil {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
		if err := m.recorder.RecordBatch(pctx, history.Batch{
			ID:         summary.id,
			Source:     m.cfg.Source,
			Total:      summary.total,
			Saved:      summary.saved,
			Failed:     summary.failed,
			StartedAt:  summary.started,
			FinishedAt: finished,
		}); err != nil {
			logging.WarnWithContext(m.logger, "batch history write failed", "history_write_failed",
				logging.String(logging.FieldCorrelationID, summary.id),
				logging.Error(err),
			)
		}
	}
}

func (m *Manager) record(ctx context.Context, entry history.Entry) {
	if m.recorder == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if _, err := m.recorder.Record(pctx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, m.logger), "history write failed", "history_write_failed",
			logging.String(logging.FieldURL, entry.URL),
			logging.Error(err),
		)
	}
}

func (m *Manager) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := m.notifier.Publish(nctx, event, payload); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, m.logger), "notification failed", "notification_failed",
			logging.String("notification", string(event)),
			logging.Error(err),
		)
	}
}
