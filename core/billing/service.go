package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/upendo/core"
	"github.com/trezcool/upendo/core/course"
	"github.com/trezcool/upendo/core/user"
)

var (
	// errors
	ErrUnhandledEvent = errors.New("unhandled payment event")
	ErrUnknownPlan    = errors.New("unknown plan type")
	ErrMissingEmail   = errors.New("missing buyer email")
	ErrNoTransaction  = errors.New("transaction not found")

	handledEvents = map[string]bool{
		"payment.completed": true,
		"payment.approved":  true,
		"order.paid":        true,
	}

	// upsell catalog shown on the dashboard carousel
	upsells = []Product{
		{
			ID:          "frases-caidinho",
			Title:       "130 Frases Para Deixar O Gajo Caidinho Por Ti",
			Description: "Frases prontas para usar em qualquer situação.",
			Price:       87,
			Currency:    "MZN",
			CheckoutURL: "https://pay.lojou.app/p/frases-caidinho",
		},
		{
			ID:          "guia-obediencia",
			Title:       "Guia da Obediência",
			Description: "O guia completo para ele fazer tudo por ti.",
			Price:       97,
			Currency:    "MZN",
			CheckoutURL: "https://pay.lojou.app/p/guia-obediencia",
		},
		{
			ID:          "respostas-infaliveis",
			Title:       "130 Respostas Infalíveis",
			Description: "Nunca mais fiques sem resposta no WhatsApp.",
			Price:       67,
			Currency:    "MZN",
			CheckoutURL: "https://pay.lojou.app/p/respostas-infaliveis",
		},
		{
			ID:          "deusa-na-cama",
			Title:       "A Deusa na Cama",
			Description: "O curso complementar mais pedido.",
			Price:       597,
			Currency:    "MZN",
			CheckoutURL: "https://pay.lojou.app/p/deusa-na-cama",
		},
	}
)

type (
	Repository interface {
		CreateTransaction(ctx context.Context, tx Transaction) (Transaction, error)
		GetTransactionByPaymentID(ctx context.Context, paymentID string) (Transaction, error)
	}

	ServiceInterface interface {
		HandlePaymentNotice(ctx context.Context, notice PaymentNotice) (Transaction, error)
		CheckoutURL(tier string) (string, error)
		Upsells() []Product
	}

	Service struct {
		repo      Repository
		usrRepo   user.Repository
		usrSvc    user.ServiceInterface
		courseSvc course.ServiceInterface
		conf      *core.Config
		logger    core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	repo Repository,
	usrRepo user.Repository,
	usrSvc user.ServiceInterface,
	courseSvc course.ServiceInterface,
	conf *core.Config,
	logger core.Logger,
) *Service {
	return &Service{
		repo:      repo,
		usrRepo:   usrRepo,
		usrSvc:    usrSvc,
		courseSvc: courseSvc,
		conf:      conf,
		logger:    logger,
	}
}

// HandlePaymentNotice processes a confirmed gateway payment: the member is
// found or provisioned by email, their subscription is granted or extended,
// and an audit transaction is recorded. Idempotent per gateway payment ID:
// a replayed webhook returns the original transaction.
func (svc *Service) HandlePaymentNotice(ctx context.Context, notice PaymentNotice) (Transaction, error) {
	if !handledEvents[notice.Event] {
		return Transaction{}, ErrUnhandledEvent
	}
	email := core.CleanString(notice.Email, true /* lower */)
	if email == "" {
		return Transaction{}, ErrMissingEmail
	}

	tier, expiresAt, err := planToTier(notice.PlanType, time.Now().UTC())
	if err != nil {
		return Transaction{}, err
	}

	// replayed webhook?
	if prev, err := svc.repo.GetTransactionByPaymentID(ctx, notice.TransactionID); err == nil {
		return prev, nil
	} else if err != ErrNoTransaction {
		return Transaction{}, err
	}

	usr, created, err := svc.findOrCreateMember(ctx, email, notice.Name)
	if err != nil {
		return Transaction{}, pkgerrors.Wrap(err, "provisioning member")
	}

	if _, err = svc.courseSvc.GrantAccess(ctx, usr.ID, tier, expiresAt, time.Now()); err != nil {
		return Transaction{}, pkgerrors.Wrap(err, "granting access")
	}

	now := time.Now().UTC()
	tx, err := svc.repo.CreateTransaction(ctx, Transaction{
		ID:            uuid.New().String(),
		UserID:        usr.ID,
		Amount:        notice.Amount,
		Currency:      "MZN",
		PaymentMethod: "gateway",
		PaymentID:     notice.TransactionID,
		Status:        StatusCompleted,
		Tier:          tier,
		PeriodStart:   now,
		PeriodEnd:     expiresAt,
		PaidAt:        now,
		CreatedAt:     now,
	})
	if err != nil {
		return Transaction{}, pkgerrors.Wrap(err, "recording transaction")
	}

	if created {
		svc.usrSvc.SendWelcomeEmail(usr)
	}
	svc.logger.Info("payment processed", map[string]interface{}{
		"payment_id": notice.TransactionID,
		"tier":       tier,
	}, usr)
	return tx, nil
}

// CheckoutURL returns the hosted gateway redirect for a tier.
func (svc *Service) CheckoutURL(tier string) (string, error) {
	switch tier {
	case course.TierWeekly:
		return svc.conf.Billing.WeeklyCheckoutURL, nil
	case course.TierMonthly:
		return svc.conf.Billing.MonthlyCheckoutURL, nil
	case course.TierLifetime:
		return svc.conf.Billing.LifetimeCheckoutURL, nil
	}
	return "", ErrUnknownPlan
}

// Upsells returns the upsell product catalog.
func (svc *Service) Upsells() []Product {
	out := make([]Product, len(upsells))
	copy(out, upsells)
	return out
}

func (svc *Service) findOrCreateMember(ctx context.Context, email, name string) (user.User, bool, error) {
	usr, err := svc.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	if err == nil {
		return usr, false, nil
	}
	if err != user.ErrNotFound {
		return user.User{}, false, err
	}

	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	now := time.Now().UTC()
	usr = user.User{
		Name:      name,
		Email:     email,
		Roles:     user.MemberRoles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	// accounts provisioned by the webhook start with an unusable random
	// password; the welcome email carries a set-password link
	if err = usr.SetPassword(uuid.New().String()); err != nil {
		return user.User{}, false, err
	}
	usr, err = svc.usrRepo.CreateUser(ctx, usr)
	if err != nil {
		return user.User{}, false, err
	}
	return usr, true, nil
}

// planToTier maps a gateway plan code to a subscription tier and its expiry.
func planToTier(planType string, now time.Time) (string, null.Time, error) {
	switch core.CleanString(planType, true /* lower */) {
	case PlanWeekly, course.TierWeekly:
		return course.TierWeekly, null.TimeFrom(now.AddDate(0, 0, 7)), nil
	case PlanMonthly, course.TierMonthly:
		return course.TierMonthly, null.TimeFrom(now.AddDate(0, 1, 0)), nil
	case PlanLifetime, course.TierLifetime:
		return course.TierLifetime, null.Time{}, nil
	}
	return "", null.Time{}, ErrUnknownPlan
}
