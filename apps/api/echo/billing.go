package echoapi

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/upendo/core"
	"github.com/trezcool/upendo/core/billing"
)

// webhookSecretHeader carries the shared secret configured on the payment
// gateway's webhook endpoint.
var webhookSecretHeader = "X-Webhook-Secret"

type billingApi struct {
	svc  *billing.Service
	conf *core.Config
}

func registerBillingAPI(g *echo.Group, deps *ServerDeps) {
	api := billingApi{
		svc:  deps.BillingSvc,
		conf: deps.Conf,
	}

	bg := g.Group("/billing")
	bg.POST("/webhook", api.webhook)
	bg.GET("/checkout/:tier", api.checkout)
	bg.GET("/upsells", api.upsells)
}

// Handlers

// webhook ingests a payment gateway notification. Unhandled events are
// acknowledged with 200 so the gateway stops retrying them.
func (api *billingApi) webhook(ctx echo.Context) error {
	if !api.validSecret(ctx) {
		return errHttpForbidden
	}

	var payload PaymentWebhookPayload
	if err := ctx.Bind(&payload); err != nil {
		return errors.Wrap(err, "binding to PaymentWebhookPayload")
	}

	tx, err := api.svc.HandlePaymentNotice(ctx.Request().Context(), payload.Notice())
	if err != nil {
		switch errors.Cause(err) {
		case billing.ErrUnhandledEvent:
			return ctx.JSON(http.StatusOK, echo.Map{"message": "event ignored", "event": payload.Event})
		case billing.ErrMissingEmail, billing.ErrUnknownPlan:
			return core.NewValidationError(errors.Cause(err))
		}
		return errors.Wrap(err, "handling payment notice")
	}
	return ctx.JSON(http.StatusOK, WebhookResponse{Success: true, TransactionID: tx.ID})
}

func (api *billingApi) checkout(ctx echo.Context) error {
	url, err := api.svc.CheckoutURL(ctx.Param("tier"))
	if err != nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, CheckoutResponse{CheckoutURL: url})
}

func (api *billingApi) upsells(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Upsells())
}

func (api *billingApi) validSecret(ctx echo.Context) bool {
	secret := api.conf.Billing.WebhookSecret
	if secret == "" {
		return true
	}
	given := ctx.Request().Header.Get(webhookSecretHeader)
	return subtle.ConstantTimeCompare([]byte(given), []byte(secret)) == 1
}

type (
	// PaymentWebhookPayload tolerates the gateway's loose JSON: buyer fields
	// may arrive nested under "data" or flat at the top level, under several
	// alternative key names.
	PaymentWebhookPayload struct {
		Event string              `json:"event"`
		Type  string              `json:"type"`
		Data  *PaymentWebhookData `json:"data"`
		PaymentWebhookData
	}

	PaymentWebhookData struct {
		Email         string  `json:"email"`
		BuyerEmail    string  `json:"buyer_email"`
		Name          string  `json:"name"`
		BuyerName     string  `json:"buyer_name"`
		Amount        float64 `json:"amount"`
		PaidAmount    float64 `json:"paid_amount"`
		TransactionID string  `json:"transaction_id"`
		PaymentID     string  `json:"payment_id"`
		PlanType      string  `json:"plan_type"`
	}

	WebhookResponse struct {
		Success       bool   `json:"success"`
		TransactionID string `json:"transaction_id"`
	}

	CheckoutResponse struct {
		CheckoutURL string `json:"checkout_url"`
	}
)

// Notice normalizes the payload into a billing.PaymentNotice.
func (p *PaymentWebhookPayload) Notice() billing.PaymentNotice {
	data := p.PaymentWebhookData
	if p.Data != nil {
		data = *p.Data
	}

	event := p.Event
	if event == "" {
		event = p.Type
	}
	email := data.Email
	if email == "" {
		email = data.BuyerEmail
	}
	name := data.Name
	if name == "" {
		name = data.BuyerName
	}
	amount := data.Amount
	if amount == 0 {
		amount = data.PaidAmount
	}
	txID := data.TransactionID
	if txID == "" {
		txID = data.PaymentID
	}
	// the hosted checkout omits the plan on the one-time full-price offer
	planType := data.PlanType
	if planType == "" {
		planType = billing.PlanLifetime
	}

	return billing.PaymentNotice{
		Event:         event,
		Email:         email,
		Name:          name,
		Amount:        amount,
		TransactionID: txID,
		PlanType:      planType,
	}
}
