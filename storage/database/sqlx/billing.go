package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/upendo/core/billing"
)

type transactionRow struct {
	ID            string      `db:"id"`
	UserID        string      `db:"user_id"`
	Amount        float64     `db:"amount"`
	Currency      string      `db:"currency"`
	PaymentMethod null.String `db:"payment_method"`
	PaymentID     string      `db:"payment_id"`
	Status        string      `db:"status"`
	Tier          string      `db:"tier"`
	PeriodStart   time.Time   `db:"period_start"`
	PeriodEnd     null.Time   `db:"period_end"`
	PaidAt        time.Time   `db:"paid_at"`
	CreatedAt     time.Time   `db:"created_at"`
}

func newTransactionRow(tx billing.Transaction) transactionRow {
	return transactionRow{
		ID:            tx.ID,
		UserID:        tx.UserID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		PaymentMethod: null.NewString(tx.PaymentMethod, tx.PaymentMethod != ""),
		PaymentID:     tx.PaymentID,
		Status:        tx.Status,
		Tier:          tx.Tier,
		PeriodStart:   tx.PeriodStart.UTC(),
		PeriodEnd:     tx.PeriodEnd,
		PaidAt:        tx.PaidAt.UTC(),
		CreatedAt:     tx.CreatedAt.UTC(),
	}
}

func (r transactionRow) transaction() billing.Transaction {
	return billing.Transaction{
		ID:            r.ID,
		UserID:        r.UserID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		PaymentMethod: r.PaymentMethod.String,
		PaymentID:     r.PaymentID,
		Status:        r.Status,
		Tier:          r.Tier,
		PeriodStart:   r.PeriodStart,
		PeriodEnd:     r.PeriodEnd,
		PaidAt:        r.PaidAt,
		CreatedAt:     r.CreatedAt,
	}
}

type billingRepository struct {
	db *sqlx.DB
}

var _ billing.Repository = (*billingRepository)(nil) // interface compliance check

func NewBillingRepository(db *sqlx.DB) *billingRepository {
	return &billingRepository{db: db}
}

func (repo billingRepository) CreateTransaction(ctx context.Context, tx billing.Transaction) (billing.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	query := `
		INSERT INTO payment_transactions
			(id, user_id, amount, currency, payment_method, payment_id, status, tier, period_start, period_end, paid_at, created_at)
		VALUES
			(:id, :user_id, :amount, :currency, :payment_method, :payment_id, :status, :tier, :period_start, :period_end, :paid_at, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, newTransactionRow(tx)); err != nil {
		return billing.Transaction{}, errors.Wrap(err, "inserting payment transaction")
	}
	return tx, nil
}

func (repo billingRepository) GetTransactionByPaymentID(ctx context.Context, paymentID string) (billing.Transaction, error) {
	var row transactionRow
	query := repo.db.Rebind(`SELECT * FROM payment_transactions WHERE payment_id = ?`)
	if err := repo.db.GetContext(ctx, &row, query, paymentID); err != nil {
		if err == sql.ErrNoRows {
			return billing.Transaction{}, billing.ErrNoTransaction
		}
		return billing.Transaction{}, errors.Wrap(err, "getting payment transaction")
	}
	return row.transaction(), nil
}
