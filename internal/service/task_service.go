package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"docgen-worker-service/internal/entity"
)

// Ports over the repositories (implementations: postgresql.*Repository).

type TaskRepository interface {
	Create(ctx context.Context, ownerChatID int64, kind entity.TaskKind, params json.RawMessage, amountCharged int64) (uuid.UUID, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*entity.Task, error)
}

type Ledger interface {
	Debit(ctx context.Context, ownerChatID int64, amount int64) error
	Credit(ctx context.Context, ownerChatID int64, amount int64) error
	Balance(ctx context.Context, ownerChatID int64) (int64, error)
	RecordEntry(ctx context.Context, ownerChatID int64, kind string, amount int64, description string) error
}

type Pricing interface {
	Price(ctx context.Context, kind entity.TaskKind) (int64, error)
}

type TaskService struct {
	repo    TaskRepository
	ledger  Ledger
	pricing Pricing
}

func NewTaskService(repo TaskRepository, ledger Ledger, pricing Pricing) *TaskService {
	return &TaskService{repo: repo, ledger: ledger, pricing: pricing}
}

type CreateTaskRequest struct {
	OwnerChatID int64
	Kind        entity.TaskKind
	Params      json.RawMessage
	// Free skips the charge (admin-granted units); amount_charged stays 0
	// and a failed task refunds nothing.
	Free bool
}

// CreateTask validates the request, charges the owner and inserts the
// pending row the worker will pick up. The debit always happens before the
// task exists; the worker never charges.
func (s *TaskService) CreateTask(ctx context.Context, req CreateTaskRequest) (uuid.UUID, error) {
	if !req.Kind.Valid() {
		return uuid.Nil, fmt.Errorf("unknown task kind: %s", req.Kind)
	}
	if _, err := entity.DecodeParams(req.Kind, req.Params); err != nil {
		return uuid.Nil, err
	}

	var amount int64
	if !req.Free {
		price, err := s.pricing.Price(ctx, req.Kind)
		if err != nil {
			return uuid.Nil, fmt.Errorf("price lookup: %w", err)
		}
		amount = price

		if err := s.ledger.Debit(ctx, req.OwnerChatID, amount); err != nil {
			return uuid.Nil, err
		}
		desc := fmt.Sprintf("%s buyurtmasi", req.Kind)
		if err := s.ledger.RecordEntry(ctx, req.OwnerChatID, "charge", amount, desc); err != nil {
			log.Printf("[service] charge ledger entry error: %v", err)
		}
	}

	id, err := s.repo.Create(ctx, req.OwnerChatID, req.Kind, req.Params, amount)
	if err != nil {
		// The user was already charged for a task that never got enqueued.
		if amount > 0 {
			if crErr := s.ledger.Credit(ctx, req.OwnerChatID, amount); crErr != nil {
				log.Printf("[service] compensating credit error owner=%d amount=%d: %v", req.OwnerChatID, amount, crErr)
			} else if reErr := s.ledger.RecordEntry(ctx, req.OwnerChatID, "refund", amount, "Buyurtma yaratilmadi - qaytarildi"); reErr != nil {
				log.Printf("[service] compensating ledger entry error: %v", reErr)
			}
		}
		return uuid.Nil, err
	}

	log.Printf("[service] task created uuid=%s kind=%s owner=%d charged=%d", id, req.Kind, req.OwnerChatID, amount)
	return id, nil
}

var ErrTaskNotFound = errors.New("task not found")

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*entity.Task, error) {
	t, err := s.repo.GetByUUID(ctx, id)
	if err != nil {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

func (s *TaskService) Balance(ctx context.Context, ownerChatID int64) (int64, error) {
	return s.ledger.Balance(ctx, ownerChatID)
}
