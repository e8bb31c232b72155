package worker

import (
	"context"
	"fmt"
	"log"

	"docgen-worker-service/internal/entity"
)

const maxErrorDetail = 500

// compensate converts a per-task failure into the failed terminal state, a
// refund of the exact charged amount and a best-effort user notification.
// It never returns an error: anything going wrong inside compensation is
// logged and swallowed so the polling loop is never disturbed.
func (w *Worker) compensate(ctx context.Context, task *entity.Task, cause error) {
	detail := cause.Error()
	if len(detail) > maxErrorDetail {
		detail = detail[:maxErrorDetail]
	}

	transitioned, err := w.deps.Repo.MarkFailed(ctx, task.UUID, detail)
	if err != nil {
		log.Printf("[worker] task=%s mark failed error: %v", task.UUID, err)
		return
	}
	if !transitioned {
		// Already terminal: a replayed handler must not refund again.
		log.Printf("[worker] task=%s already terminal, compensation skipped", task.UUID)
		return
	}

	// Re-read the row for the authoritative charged amount.
	amount := task.AmountCharged
	if stored, err := w.deps.Repo.GetByUUID(ctx, task.UUID); err == nil {
		amount = stored.AmountCharged
	} else {
		log.Printf("[worker] task=%s reload error, using in-memory amount: %v", task.UUID, err)
	}

	refunded := int64(0)
	if amount > 0 {
		if w.refund(ctx, task.UUID.String(), task.OwnerChatID, amount) {
			refunded = amount
		}
	}

	text := failureText(refunded)
	if _, err := w.deps.Notifier.Send(ctx, task.OwnerChatID, text); err != nil {
		log.Printf("[worker] task=%s failure notification error: %v", task.UUID, err)
	}
}

// refund credits the charged amount back and records the compensating ledger
// entry. Reports whether the credit happened.
func (w *Worker) refund(ctx context.Context, taskID string, ownerChatID, amount int64) bool {
	first, err := w.deps.Guard.Acquire(ctx, taskID)
	if err != nil {
		// With a single worker instance a double refund here is unlikely;
		// withholding a paid user's money is the worse failure.
		log.Printf("[worker] task=%s refund guard error, proceeding: %v", taskID, err)
		first = true
	}
	if !first {
		log.Printf("[worker] task=%s refund already issued, skipped", taskID)
		return false
	}

	if err := w.deps.Ledger.Credit(ctx, ownerChatID, amount); err != nil {
		log.Printf("[worker] task=%s refund credit error: %v", taskID, err)
		return false
	}

	desc := fmt.Sprintf("Xatolik - avtomatik qaytarildi (task %s)", taskID)
	if err := w.deps.Ledger.RecordEntry(ctx, ownerChatID, "refund", amount, desc); err != nil {
		log.Printf("[worker] task=%s refund ledger entry error: %v", taskID, err)
	}

	log.Printf("[worker] task=%s refunded amount=%d", taskID, amount)
	return true
}
