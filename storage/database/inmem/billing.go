package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/upendo/core/billing"
)

type billingRepository struct {
	db *DB
}

var _ billing.Repository = (*billingRepository)(nil) // interface compliance check

func NewBillingRepository(db *DB) *billingRepository {
	return &billingRepository{db: db}
}

func (repo *billingRepository) CreateTransaction(ctx context.Context, tx billing.Transaction) (billing.Transaction, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	repo.db.transactions[tx.ID] = &tx
	return tx, nil
}

func (repo *billingRepository) GetTransactionByPaymentID(ctx context.Context, paymentID string) (billing.Transaction, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, tx := range repo.db.transactions {
		if tx.PaymentID == paymentID {
			return *tx, nil
		}
	}
	return billing.Transaction{}, billing.ErrNoTransaction
}
