package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"docgen-worker-service/internal/content"
	"docgen-worker-service/internal/entity"
	"docgen-worker-service/internal/notify"
	"docgen-worker-service/internal/render"
)

// runTask drives one task to a terminal state. Every failure, panics
// included, funnels into the compensation handler; nothing escapes to the
// polling loop.
func (w *Worker) runTask(ctx context.Context, task entity.Task) {
	start := time.Now()
	log.Printf("[worker] task=%s kind=%s status=picked_up", task.UUID, task.Kind)

	defer func() {
		if r := recover(); r != nil {
			w.compensate(ctx, &task, fmt.Errorf("panic: %v", r))
		}
	}()

	var err error
	switch task.Kind {
	case entity.KindSlideDeck, entity.KindPitchDeck:
		err = w.processDeck(ctx, &task)
	case entity.KindDocument:
		err = w.processDocument(ctx, &task)
	default:
		err = fmt.Errorf("unknown task kind: %s", task.Kind)
	}

	if err != nil {
		log.Printf("[worker] task=%s kind=%s status=failed duration_ms=%d error=%v",
			task.UUID, task.Kind, time.Since(start).Milliseconds(), err)
		w.compensate(ctx, &task, err)
		return
	}

	log.Printf("[worker] task=%s kind=%s status=completed duration_ms=%d",
		task.UUID, task.Kind, time.Since(start).Milliseconds())
}

// progressTracker enforces non-decreasing progress and edits the single
// status message in place instead of reposting.
type progressTracker struct {
	w       *Worker
	task    *entity.Task
	ref     notify.MessageRef
	hasRef  bool
	current int
}

func (p *progressTracker) begin(ctx context.Context, text string) error {
	if err := p.w.deps.Repo.MarkProcessing(ctx, p.task.UUID, 5); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	p.current = 5

	ref, err := p.w.deps.Notifier.Send(ctx, p.task.OwnerChatID, text)
	if err != nil {
		// The status message is informational, the pipeline goes on.
		log.Printf("[worker] task=%s status message send error: %v", p.task.UUID, err)
		return nil
	}
	p.ref, p.hasRef = ref, true
	return nil
}

func (p *progressTracker) advance(ctx context.Context, progress int, text string) {
	if progress <= p.current {
		return
	}
	p.current = progress

	if err := p.w.deps.Repo.SetProgress(ctx, p.task.UUID, progress); err != nil {
		log.Printf("[worker] task=%s set progress=%d error: %v", p.task.UUID, progress, err)
	}
	if p.hasRef && text != "" {
		if err := p.w.deps.Notifier.Edit(ctx, p.ref, text); err != nil {
			log.Printf("[worker] task=%s status message edit error: %v", p.task.UUID, err)
		}
	}
}

// processDeck runs the slide_deck and pitch_deck pipelines: remote content
// generation, remote rendering, download, delivery.
func (w *Worker) processDeck(ctx context.Context, task *entity.Task) error {
	decoded, err := entity.DecodeParams(task.Kind, task.Params)
	if err != nil {
		return err
	}

	tracker := &progressTracker{w: w, task: task}
	if err := tracker.begin(ctx, deckProgressText(task.Kind, 5)); err != nil {
		return err
	}

	var (
		text       string
		title      string
		slideCount int
		language   string
		themeID    string
	)
	switch p := decoded.(type) {
	case *entity.SlideDeckParams:
		generated, err := w.deps.Generator.GenerateSlides(ctx, p.Topic, p.Details, p.SlideCount, p.Language)
		if err != nil {
			return fmt.Errorf("content generation: %w", err)
		}
		text = render.FormatSlides(generated)
		title = generated.Title
		slideCount, language, themeID = p.SlideCount, p.Language, p.ThemeID
	case *entity.PitchDeckParams:
		generated, err := w.deps.Generator.GeneratePitch(ctx, p.Answers, p.Language)
		if err != nil {
			return fmt.Errorf("content generation: %w", err)
		}
		text = render.FormatPitch(generated)
		title = generated.ProjectName
		slideCount, language, themeID = p.SlideCount, p.Language, p.ThemeID
	}
	if text == "" {
		return fmt.Errorf("content generation: empty output")
	}

	tracker.advance(ctx, 30, deckProgressText(task.Kind, 30))

	generationID, err := w.deps.Renderer.Submit(ctx, render.SubmitRequest{
		Text:       text,
		Title:      title,
		SlideCount: slideCount,
		Language:   language,
		ThemeID:    themeID,
	})
	if err != nil {
		return fmt.Errorf("render submit: %w", err)
	}

	tracker.advance(ctx, 50, deckProgressText(task.Kind, 50))

	artifactURL, err := w.deps.Renderer.WaitForArtifact(ctx, generationID)
	if err != nil {
		return fmt.Errorf("render wait: %w", err)
	}

	tracker.advance(ctx, 80, deckProgressText(task.Kind, 80))

	path := w.deps.WorkDir.PathFor(title, "pptx")
	if err := w.deps.Renderer.Download(ctx, artifactURL, path); err != nil {
		return fmt.Errorf("render download: %w", err)
	}

	tracker.advance(ctx, 95, deckProgressText(task.Kind, 95))

	// Delivery failure is a task failure: the user paid for this file.
	if err := w.deps.Notifier.SendDocument(ctx, task.OwnerChatID, path, deckCaption(task.Kind)); err != nil {
		return fmt.Errorf("delivery: %w", err)
	}

	w.removeArtifact(task, path)

	if err := w.deps.Repo.MarkCompleted(ctx, task.UUID, path); err != nil {
		log.Printf("[worker] task=%s mark completed error: %v", task.UUID, err)
	}
	tracker.advance(ctx, 100, deckProgressText(task.Kind, 100))
	return nil
}

// processDocument runs the document pipeline: remote content generation,
// local DOCX build, optional PDF conversion, delivery.
func (w *Worker) processDocument(ctx context.Context, task *entity.Task) error {
	decoded, err := entity.DecodeParams(task.Kind, task.Params)
	if err != nil {
		return err
	}
	p := decoded.(*entity.DocumentParams)

	tracker := &progressTracker{w: w, task: task}
	if err := tracker.begin(ctx, documentProgressText(p.Topic, 5)); err != nil {
		return err
	}

	generated, err := w.deps.Generator.GenerateCourseWork(ctx, content.CourseWorkRequest{
		WorkType:  p.WorkType,
		Topic:     p.Topic,
		Subject:   p.Subject,
		Details:   p.Details,
		PageCount: p.PageCount,
		Language:  p.Language,
	})
	if err != nil {
		return fmt.Errorf("content generation: %w", err)
	}

	tracker.advance(ctx, 40, documentProgressText(p.Topic, 40))

	docxPath := w.deps.WorkDir.PathFor(p.WorkType+" "+p.Topic, "docx")
	if err := w.deps.Docs.BuildDocx(generated, docxPath); err != nil {
		return fmt.Errorf("docx build: %w", err)
	}

	outPath := docxPath
	format := p.Format
	if p.Format == "pdf" {
		pdfPath := w.deps.WorkDir.PathFor(p.WorkType+" "+p.Topic, "pdf")
		if err := w.deps.Docs.ConvertToPDF(ctx, docxPath, pdfPath); err != nil {
			// Conversion is optional: deliver the native DOCX instead.
			log.Printf("[worker] task=%s pdf conversion failed, delivering docx: %v", task.UUID, err)
			format = "docx"
		} else {
			outPath = pdfPath
			w.removeArtifact(task, docxPath)
		}
	}

	tracker.advance(ctx, 80, documentProgressText(p.Topic, 80))

	if err := w.deps.Notifier.SendDocument(ctx, task.OwnerChatID, outPath, documentCaption(p, format)); err != nil {
		return fmt.Errorf("delivery: %w", err)
	}

	w.removeArtifact(task, outPath)

	if err := w.deps.Repo.MarkCompleted(ctx, task.UUID, outPath); err != nil {
		log.Printf("[worker] task=%s mark completed error: %v", task.UUID, err)
	}
	tracker.advance(ctx, 100, documentProgressText(p.Topic, 100))
	return nil
}

func (w *Worker) removeArtifact(task *entity.Task, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("[worker] task=%s remove artifact %s error: %v", task.UUID, path, err)
	}
}
