package worker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docgen-worker-service/internal/entity"
)

func TestCompensate_RefundsExactlyOnce(t *testing.T) {
	h := newHarness(t)
	task := slideTask("Climate change", 20000)
	h.repo.add(task)

	cause := errors.New("render wait: render wait deadline exceeded")
	h.worker.compensate(context.Background(), &task, cause)
	// Replayed handler: the terminal transition already happened.
	h.worker.compensate(context.Background(), &task, cause)

	if len(h.ledger.credits) != 1 || h.ledger.credits[0].amount != 20000 {
		t.Fatalf("expected exactly one credit of 20000, got %#v", h.ledger.credits)
	}
	if got := h.ledger.refunds(); len(got) != 1 {
		t.Fatalf("expected exactly one refund entry, got %#v", got)
	}
}

func TestCompensate_GuardBlocksReplayWhenStoreMisreports(t *testing.T) {
	h := newHarness(t)
	h.repo.failedAlwaysTransitions = true

	task := slideTask("Climate change", 20000)
	h.repo.add(task)

	cause := errors.New("delivery: network down")
	h.worker.compensate(context.Background(), &task, cause)
	h.worker.compensate(context.Background(), &task, cause)

	if len(h.ledger.credits) != 1 {
		t.Fatalf("guard must block the second credit, got %#v", h.ledger.credits)
	}
	if h.guard.denied != 1 {
		t.Fatalf("guard denied = %d, want 1", h.guard.denied)
	}
}

func TestCompensate_GuardErrorStillRefunds(t *testing.T) {
	h := newHarness(t)
	h.guard.err = errors.New("redis: connection pool timeout")

	task := slideTask("Climate change", 20000)
	h.repo.add(task)

	h.worker.compensate(context.Background(), &task, errors.New("boom"))

	if len(h.ledger.credits) != 1 {
		t.Fatalf("a guard outage must not withhold the refund, got %#v", h.ledger.credits)
	}
}

func TestCompensate_TruncatesErrorDetail(t *testing.T) {
	h := newHarness(t)
	task := slideTask("Climate change", 0)
	h.repo.add(task)

	h.worker.compensate(context.Background(), &task, errors.New(strings.Repeat("x", 2000)))

	got := h.repo.get(task.UUID)
	if got.ErrorDetail == nil {
		t.Fatal("error detail not set")
	}
	if len(*got.ErrorDetail) > maxErrorDetail {
		t.Fatalf("error detail len = %d, want <= %d", len(*got.ErrorDetail), maxErrorDetail)
	}
}

func TestCompensate_NotifiesWithRefundedAmount(t *testing.T) {
	h := newHarness(t)
	task := slideTask("Climate change", 20000)
	h.repo.add(task)

	h.worker.compensate(context.Background(), &task, errors.New("boom"))

	texts := h.notifier.sentTexts()
	if len(texts) != 1 {
		t.Fatalf("expected one failure notification, got %d", len(texts))
	}
	if !strings.Contains(texts[0], "20000") {
		t.Fatalf("notification should state the refunded amount: %q", texts[0])
	}
	// Internal error text never reaches the user.
	if strings.Contains(texts[0], "boom") {
		t.Fatalf("internal error leaked to the user: %q", texts[0])
	}
}

func TestCompensate_NeverResurrectsCompletedTask(t *testing.T) {
	h := newHarness(t)
	task := slideTask("Climate change", 20000)
	task.Status = entity.StatusCompleted
	h.repo.add(task)

	h.worker.compensate(context.Background(), &task, errors.New("late failure"))

	if got := h.repo.get(task.UUID); got.Status != entity.StatusCompleted {
		t.Fatalf("status = %s, completed must stay completed", got.Status)
	}
	if len(h.ledger.credits) != 0 {
		t.Fatalf("no refund for a delivered task: %#v", h.ledger.credits)
	}
}
