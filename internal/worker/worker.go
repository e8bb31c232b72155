// Package worker is the background task processor: it polls the task store
// for pending work, drives each task through content generation, rendering
// and delivery, and refunds the charge when a task fails.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docgen-worker-service/internal/content"
	"docgen-worker-service/internal/entity"
	"docgen-worker-service/internal/notify"
	"docgen-worker-service/internal/render"
	"docgen-worker-service/internal/storage"
)

// TaskRepo is the port over the task store (implementation:
// postgresql.TaskRepository).
type TaskRepo interface {
	ListPending(ctx context.Context) ([]entity.Task, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*entity.Task, error)
	MarkProcessing(ctx context.Context, id uuid.UUID, progress int) error
	SetProgress(ctx context.Context, id uuid.UUID, progress int) error
	MarkCompleted(ctx context.Context, id uuid.UUID, resultPath string) error
	MarkFailed(ctx context.Context, id uuid.UUID, errDetail string) (bool, error)
}

// Ledger is the port over user balances, used only for compensation here.
type Ledger interface {
	Credit(ctx context.Context, ownerChatID int64, amount int64) error
	RecordEntry(ctx context.Context, ownerChatID int64, kind string, amount int64, description string) error
}

// Notifier reports progress and delivers finished documents.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) (notify.MessageRef, error)
	Edit(ctx context.Context, ref notify.MessageRef, text string) error
	SendDocument(ctx context.Context, chatID int64, path, caption string) error
}

// ContentGenerator produces structured document content.
type ContentGenerator interface {
	GenerateSlides(ctx context.Context, topic, details string, slideCount int, language string) (*content.SlideContent, error)
	GeneratePitch(ctx context.Context, answers []string, language string) (*content.PitchContent, error)
	GenerateCourseWork(ctx context.Context, req content.CourseWorkRequest) (*content.CourseContent, error)
}

// Renderer is the port over the remote slide-rendering API.
type Renderer interface {
	Submit(ctx context.Context, req render.SubmitRequest) (string, error)
	WaitForArtifact(ctx context.Context, generationID string) (string, error)
	Download(ctx context.Context, url, path string) error
}

// DocumentBuilder produces documents locally.
type DocumentBuilder interface {
	BuildDocx(c *content.CourseContent, path string) error
	ConvertToPDF(ctx context.Context, docxPath, pdfPath string) error
}

// RefundGuard reports whether this call is the first to refund a task.
type RefundGuard interface {
	Acquire(ctx context.Context, taskID string) (bool, error)
}

// Deps bundles the worker's collaborators.
type Deps struct {
	Repo      TaskRepo
	Ledger    Ledger
	Notifier  Notifier
	Generator ContentGenerator
	Renderer  Renderer
	Docs      DocumentBuilder
	Guard     RefundGuard
	WorkDir   *storage.WorkDir
}

// Config tunes the polling loop. Zero values get defaults.
type Config struct {
	PollInterval time.Duration
	ErrBackoff   time.Duration
}

// Worker owns the polling loop and all per-task execution state.
type Worker struct {
	deps         Deps
	pollInterval time.Duration
	errBackoff   time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(deps Deps, cfg Config) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.ErrBackoff <= 0 {
		cfg.ErrBackoff = 10 * time.Second
	}
	return &Worker{
		deps:         deps,
		pollInterval: cfg.PollInterval,
		errBackoff:   cfg.ErrBackoff,
	}
}

// Start launches the polling loop in the background. Calling Start on a
// running worker is a no-op.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.loop(ctx, w.done)
	log.Printf("[worker] started poll_interval=%s", w.pollInterval)
}

// Stop cancels the polling wait and blocks until the loop exits. Tasks
// dispatched in the last scan run to their own completion.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Printf("[worker] stopped")
}

func (w *Worker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		interval := w.pollInterval

		pending, err := w.deps.Repo.ListPending(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			// Store hiccups are retried after a longer wait, never fatal.
			log.Printf("[worker] list pending error: %v", err)
			interval = w.errBackoff
		case len(pending) > 0:
			log.Printf("[worker] scan found=%d", len(pending))

			// Every task in the scan runs concurrently; runTask reports
			// its own failures, so one task can never abort its siblings
			// or the loop. Tasks run on their own context: Stop cancels
			// only the poll wait, and a dispatched task finishes on its
			// own terms, compensation included.
			g := new(errgroup.Group)
			for _, t := range pending {
				t := t
				g.Go(func() error {
					w.runTask(context.Background(), t)
					return nil
				})
			}
			_ = g.Wait()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
