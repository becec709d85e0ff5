package notify

import (
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/plantee/storefront/config"
	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/pkg/common"
)

// Sender delivers mail. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Notifier sends order confirmations and contact alerts from a bounded
// worker pool so request handlers never wait on SMTP.
type Notifier struct {
	cfg    config.MailConfig
	sender Sender
	pool   *ants.Pool
	wg     sync.WaitGroup
}

func New(cfg config.MailConfig, sender Sender) (*Notifier, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		zap.S().Errorf("mail worker panic: %v", p)
	}))
	if err != nil {
		return nil, errors.Wrap(err, "create mail pool")
	}
	return &Notifier{cfg: cfg, sender: sender, pool: pool}, nil
}

// NewDialerSender builds the SMTP sender from config.
func NewDialerSender(cfg config.MailConfig) Sender {
	return gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
}

func (n *Notifier) submit(kind string, m *gomail.Message) {
	n.wg.Add(1)
	err := n.pool.Submit(func() {
		defer n.wg.Done()
		if err := n.sender.DialAndSend(m); err != nil {
			zap.L().Error("send mail failed",
				zap.String("namespace", "notify"),
				zap.String("kind", kind),
				zap.Error(err))
			return
		}
		zap.L().Info("mail sent", zap.String("namespace", "notify"), zap.String("kind", kind))
	})
	if err != nil {
		n.wg.Done()
		zap.L().Error("queue mail failed", zap.String("namespace", "notify"), zap.Error(err))
	}
}

// OrderPlaced mails the buyer a confirmation.
func (n *Notifier) OrderPlaced(o *domain.Order) {
	if strings.TrimSpace(o.User.Email) == "" {
		return
	}
	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\nThank you for your order #%d.\n\n", o.User.Name, o.OrderNumber)
	for _, it := range o.Items {
		fmt.Fprintf(&body, "  %d x %s @ %.2f\n", it.Quantity, common.IfEmptyStr(it.Name, it.Plant), it.Price)
	}
	fmt.Fprintf(&body, "\nTotal: %.2f\nShipping to: %s\n\nPlantee\n", o.TotalAmount, o.User.Address)

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", o.User.Email)
	m.SetHeader("Subject", fmt.Sprintf("Your Plantee order #%d", o.OrderNumber))
	m.SetBody("text/plain", body.String())
	n.submit("order_confirmation", m)
}

// ContactReceived forwards a contact form message to the shop owner.
func (n *Notifier) ContactReceived(msg *domain.ContactMessage) {
	if n.cfg.OwnerAddress == "" {
		return
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.OwnerAddress)
	m.SetHeader("Reply-To", msg.Email)
	m.SetHeader("Subject", "New contact message from "+msg.Name)
	m.SetBody("text/plain", fmt.Sprintf("From: %s <%s>\n\n%s\n", msg.Name, msg.Email, msg.Message))
	n.submit("contact_alert", m)
}

// Wait blocks until queued mail has been handled.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) Release() {
	n.wg.Wait()
	n.pool.Release()
}
