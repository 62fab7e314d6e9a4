package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/upendo/core/billing"
)

// grantAccess provisions course access manually, going through the same
// payment-notice path as the gateway webhook so the member account,
// subscription, enrollment and audit record all line up.
func (cli *commandLine) grantAccess(email, name, plan string, amount float64) error {
	tx, err := cli.billingSvc.HandlePaymentNotice(context.Background(), billing.PaymentNotice{
		Event:         "payment.completed",
		Email:         email,
		Name:          name,
		Amount:        amount,
		TransactionID: fmt.Sprintf("manual_%d", time.Now().UnixNano()),
		PlanType:      plan,
	})
	if err != nil {
		return err
	}
	logger.Printf("access granted: %s (%s) - transaction %s", email, tx.Tier, tx.ID)
	return nil
}
