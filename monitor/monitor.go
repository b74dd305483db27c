// Package monitor polls the direct-message inbox for shared post links and
// feeds them through the processing pipeline.
package monitor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"insta-archiver/logger"
	"insta-archiver/pipeline"
)

const defaultInterval = 30 * time.Second

// Processor is the slice of the pipeline the monitor needs.
type Processor interface {
	Process(ctx context.Context, rawURL, source string) (*pipeline.Result, error)
}

// Monitor scans the inbox on a fixed interval. A scan that outlasts the
// interval simply delays the next one; the single loop goroutine never runs
// two scans concurrently.
type Monitor struct {
	Inbox        InboxClient
	Store        *ProcessedStore
	Processor    Processor
	Interval     time.Duration
	ThreadAmount int
}

// Run polls until the context is cancelled. One scan happens immediately on
// start.
func (m *Monitor) Run(ctx context.Context) error {
	interval := m.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	amount := m.ThreadAmount
	if amount <= 0 {
		amount = 10
	}

	logger.InfoWithFields("DM monitor started", logger.Fields{
		"interval_s": int(interval.Seconds()),
		"threads":    amount,
	})

	m.scan(ctx, amount)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("DM monitor stopping")
			return ctx.Err()
		case <-ticker.C:
			m.scan(ctx, amount)
		}
	}
}

// scan handles one inbox pass. Every new message is marked processed after
// its attempt, success or not, so a failing post cannot wedge the loop.
func (m *Monitor) scan(ctx context.Context, amount int) {
	scanID := uuid.NewString()

	threads, err := m.Inbox.RecentThreads(ctx, amount)
	if err != nil {
		logger.WarnWithFields("inbox fetch failed", logger.Fields{"scan_id": scanID, "error": err.Error()})
		return
	}

	for _, thread := range threads {
		for _, msg := range thread.Messages {
			if msg.ID == "" || m.Store.Contains(msg.ID) {
				continue
			}
			m.handleMessage(ctx, scanID, thread.ID, msg)
			if err := m.Store.Mark(msg.ID); err != nil {
				logger.WarnWithFields("failed to persist processed message ID", logger.Fields{
					"message": msg.ID,
					"error":   err.Error(),
				})
			}
		}
	}
}

func (m *Monitor) handleMessage(ctx context.Context, scanID, threadID string, msg Message) {
	urls := msg.PostURLs()
	if len(urls) == 0 {
		return
	}

	for _, u := range urls {
		logger.InfoWithFields("processing shared post from DM", logger.Fields{
			"scan_id": scanID,
			"thread":  threadID,
			"url":     u,
		})
		if _, err := m.Processor.Process(ctx, u, "dm-monitor"); err != nil {
			logger.ErrorWithFields("failed to process shared post", logger.Fields{
				"url":   u,
				"error": err.Error(),
			})
		}
	}
}
