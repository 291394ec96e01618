package worker

import (
	"context"
	"sync"
	"time"

	"github.com/karimsalah/crm-insights/internal/config"
	"github.com/karimsalah/crm-insights/internal/infra/http/middleware"
	"github.com/karimsalah/crm-insights/internal/infra/mail"
	"github.com/karimsalah/crm-insights/internal/infra/storage"
	"github.com/karimsalah/crm-insights/internal/usecase"
)

type DigestSender interface {
	SendDelayDigest(to string, data mail.DelayDigestData) error
}

// DelayScanWorker periodically recomputes the delayed-lead gauges from a
// fresh snapshot and, when configured, mails a digest. It is also the
// recomputation entry point for change notifications: a notification for a
// lead key triggers an immediate scan.
type DelayScanWorker struct {
	reader        *usecase.LeadReader
	thresholdDays int
	tickInterval  time.Duration

	digest   DigestSender
	digestTo string

	// Scans run from both the ticker goroutine and the change-notification
	// consumer; mu serializes them and guards lastSent.
	mu       sync.Mutex
	lastSent time.Time
}

func NewDelayScanWorker(reader *usecase.LeadReader, thresholdDays int) *DelayScanWorker {
	if thresholdDays <= 0 {
		thresholdDays = usecase.DefaultDelayThresholdDays
	}
	return &DelayScanWorker{
		reader:        reader,
		thresholdDays: thresholdDays,
		tickInterval:  15 * time.Minute,
	}
}

// WithDigest enables the daily digest mail.
func (w *DelayScanWorker) WithDigest(sender DigestSender, to string) *DelayScanWorker {
	w.digest = sender
	w.digestTo = to
	return w
}

func (w *DelayScanWorker) Start(ctx context.Context) {
	log := config.GetLogger()
	log.Infof("delay scan worker started (threshold=%dd, every %s)", w.thresholdDays, w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("delay scan worker stopped")
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

// Refresh satisfies the change-notification callback. Only lead data
// changes warrant a re-scan; config and search changes are ignored.
func (w *DelayScanWorker) Refresh(ctx context.Context, key string) error {
	if key != storage.KeyLeads && key != storage.KeyLeadsSecondary {
		return nil
	}
	w.scan(ctx)
	return nil
}

func (w *DelayScanWorker) scan(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	log := config.GetLogger()

	leads := w.reader.Snapshot(ctx)
	delayed := usecase.DelayedLeads(leads, w.thresholdDays, time.Now(), "", "", "")
	byCategory := usecase.CountByCategory(delayed)

	for category, count := range byCategory {
		middleware.SetDelayedLeads(string(category), count)
	}

	if len(delayed) > 0 {
		log.WithField("delayed", len(delayed)).Infof("delay scan: %d of %d leads overdue", len(delayed), len(leads))
	}

	w.maybeSendDigest(byCategory, len(delayed))
}

func (w *DelayScanWorker) maybeSendDigest(byCategory map[usecase.Category]int, total int) {
	if w.digest == nil || w.digestTo == "" || total == 0 {
		return
	}
	// At most one digest per day; the scan runs far more often.
	if time.Since(w.lastSent) < 24*time.Hour {
		return
	}

	data := mail.DelayDigestData{
		Total:     total,
		Threshold: w.thresholdDays,
	}
	for _, category := range usecase.Categories {
		data.Categories = append(data.Categories, mail.CategoryLine{
			Label: humanizeCategory(category),
			Count: byCategory[category],
		})
	}

	if err := w.digest.SendDelayDigest(w.digestTo, data); err != nil {
		config.GetLogger().Warnf("delay digest not sent: %v", err)
		return
	}
	w.lastSent = time.Now()
}

func humanizeCategory(c usecase.Category) string {
	switch c {
	case usecase.CategoryFollowUpAfterMeeting:
		return "Follow up after meeting"
	case usecase.CategoryRescheduleMeeting:
		return "Reschedule meeting"
	case usecase.CategoryNoAnswerFirstCall:
		return "No answer on 1st call"
	default:
		return "Follow up"
	}
}
