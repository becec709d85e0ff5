package notify

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/plantee/storefront/config"
	"github.com/plantee/storefront/internal/domain"
)

type mockSender struct {
	mu   sync.Mutex
	sent []*gomail.Message
	err  error
}

func (s *mockSender) DialAndSend(m ...*gomail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, m...)
	return nil
}

func body(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func newNotifier(t *testing.T, sender Sender) *Notifier {
	t.Helper()
	n, err := New(config.MailConfig{From: "shop@plantee.local", OwnerAddress: "owner@plantee.local", Workers: 2}, sender)
	require.NoError(t, err)
	t.Cleanup(n.Release)
	return n
}

func TestOrderPlacedMailsBuyer(t *testing.T) {
	sender := &mockSender{}
	n := newNotifier(t, sender)

	n.OrderPlaced(&domain.Order{
		OrderNumber: 42,
		User:        domain.Buyer{Name: "Ada", Email: "ada@example.com", Address: "1 Fern Way"},
		Items: []domain.OrderItem{
			{Plant: "6ad35bd6f1e2a3b4c5d6e7f8", Name: "Snake Plant", Quantity: 2, Price: 19.99},
			{Plant: "6ad35bd6f1e2a3b4c5d6e7f9", Quantity: 1, Price: 0.01},
		},
		TotalAmount: 39.98,
	})
	n.Wait()

	require.Len(t, sender.sent, 1)
	m := sender.sent[0]
	assert.Equal(t, []string{"ada@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Your Plantee order #42"}, m.GetHeader("Subject"))
	text := body(t, m)
	assert.Contains(t, text, "2 x Snake Plant @ 19.99")
	assert.NotContains(t, text, "6ad35bd6f1e2a3b4c5d6e7f8")
	assert.Contains(t, text, "1 x 6ad35bd6f1e2a3b4c5d6e7f9 @ 0.01", "lines without a name fall back to the id")
	assert.Contains(t, text, "Total: 39.98")
}

func TestOrderPlacedWithoutEmailIsSkipped(t *testing.T) {
	sender := &mockSender{}
	n := newNotifier(t, sender)

	n.OrderPlaced(&domain.Order{User: domain.Buyer{Name: "Ada"}})
	n.Wait()

	assert.Empty(t, sender.sent)
}

func TestContactReceivedMailsOwner(t *testing.T) {
	sender := &mockSender{}
	n := newNotifier(t, sender)

	n.ContactReceived(&domain.ContactMessage{Name: "Bo", Email: "bo@example.com", Message: "Do you ship cacti?"})
	n.Wait()

	require.Len(t, sender.sent, 1)
	m := sender.sent[0]
	assert.Equal(t, []string{"owner@plantee.local"}, m.GetHeader("To"))
	assert.Equal(t, []string{"bo@example.com"}, m.GetHeader("Reply-To"))
	assert.Contains(t, body(t, m), "Do you ship cacti?")
}

func TestSendFailureIsLoggedNotPropagated(t *testing.T) {
	sender := &mockSender{err: errors.New("connection refused")}
	n := newNotifier(t, sender)

	n.ContactReceived(&domain.ContactMessage{Name: "Bo", Email: "bo@example.com", Message: "hi"})
	n.Wait()

	assert.Empty(t, sender.sent)
}
