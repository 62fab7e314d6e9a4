package billing

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Transaction statuses
const (
	StatusCompleted = "completed"
)

// Gateway plan codes (the hosted checkout is configured in Portuguese)
const (
	PlanWeekly   = "semanal"
	PlanMonthly  = "mensal"
	PlanLifetime = "vitalicio"
)

type (
	// PaymentNotice is a normalized gateway webhook payload.
	PaymentNotice struct {
		Event         string
		Email         string
		Name          string
		Amount        float64
		TransactionID string
		PlanType      string
	}

	// Transaction is the audit record of a confirmed payment.
	Transaction struct {
		ID            string    `json:"id"`
		UserID        string    `json:"user_id"`
		Amount        float64   `json:"amount"`
		Currency      string    `json:"currency"`
		PaymentMethod string    `json:"payment_method"`
		PaymentID     string    `json:"payment_id"`
		Status        string    `json:"status"`
		Tier          string    `json:"tier"`
		PeriodStart   time.Time `json:"period_start"` // UTC
		PeriodEnd     null.Time `json:"period_end"`
		PaidAt        time.Time `json:"paid_at"` // UTC
		CreatedAt     time.Time `json:"created_at"` // UTC
	}

	// Product is an upsell catalog entry shown on the dashboard carousel.
	Product struct {
		ID          string  `json:"id"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Currency    string  `json:"currency"`
		CheckoutURL string  `json:"checkout_url"`
	}
)
