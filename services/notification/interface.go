package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"quickbook/models"

	"go.uber.org/zap"
)

// Sender delivers one rendered message over one channel.
type Sender interface {
	Channel() string
	Send(ctx context.Context, msg models.Message) error
}

// DeliveryReport is the outcome of one channel for one notification.
type DeliveryReport struct {
	Channel string
	Result  RetryResult
}

// NotificationService alerts staff about intent transitions.
type NotificationService interface {
	NotifyIntent(ctx context.Context, n models.IntentNotification) []DeliveryReport
}

// DefaultNotificationService fans a notification out to every channel the
// tenant has a recipient for, each wrapped in the retry loop.
type DefaultNotificationService struct {
	senders map[string]Sender
	retrier *Retrier
	logger  *zap.Logger
}

// NewDefaultNotificationService registers the given senders by channel.
func NewDefaultNotificationService(retrier *Retrier, logger *zap.Logger, senders ...Sender) (*DefaultNotificationService, error) {
	if retrier == nil {
		return nil, fmt.Errorf("notification service initialization error: retrier is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	byChannel := make(map[string]Sender, len(senders))
	for _, s := range senders {
		if s == nil {
			continue
		}
		byChannel[s.Channel()] = s
	}
	return &DefaultNotificationService{senders: byChannel, retrier: retrier, logger: logger}, nil
}

// Deliver sends msg over one sender with retries.
func (s *DefaultNotificationService) Deliver(ctx context.Context, sender Sender, msg models.Message) RetryResult {
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		return sender.Send(ctx, msg)
	})
}

// NotifyIntent renders and delivers n on every configured channel. Channels
// run concurrently and never affect each other. Failures are logged only.
func (s *DefaultNotificationService) NotifyIntent(ctx context.Context, n models.IntentNotification) []DeliveryReport {
	targets := s.messagesFor(n)
	if len(targets) == 0 {
		s.logger.Info("NotifyIntent: no staff recipients configured",
			zap.String("intentId", n.IntentID), zap.String("workspaceId", n.WorkspaceID))
		return nil
	}

	reports := make([]DeliveryReport, len(targets))
	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t target) {
			defer wg.Done()
			result := s.Deliver(ctx, t.sender, t.msg)
			reports[i] = DeliveryReport{Channel: t.sender.Channel(), Result: result}
			recordDelivery(t.sender.Channel(), result)
			s.logReport(n, reports[i])
		}(i, t)
	}
	wg.Wait()
	return reports
}

func (s *DefaultNotificationService) logReport(n models.IntentNotification, r DeliveryReport) {
	fields := []zap.Field{
		zap.String("intentId", n.IntentID),
		zap.String("event", string(n.Event)),
		zap.String("channel", r.Channel),
		zap.Int("attempts", r.Result.Attempts),
		zap.Duration("totalDelay", r.Result.TotalDelay),
	}
	switch {
	case r.Result.Success:
		s.logger.Info("staff notification delivered", fields...)
	case IsRetryable(r.Result.Err):
		s.logger.Error("staff notification failed after retries", append(fields, zap.Error(r.Result.Err))...)
	default:
		s.logger.Error("staff notification rejected", append(fields, zap.Error(r.Result.Err))...)
	}
}

type target struct {
	sender Sender
	msg    models.Message
}

func (s *DefaultNotificationService) messagesFor(n models.IntentNotification) []target {
	subject, body := render(n)
	data := map[string]string{
		"type":     string(n.Event),
		"intentId": n.IntentID,
		"botId":    n.BotID,
	}

	var out []target
	if sender, ok := s.senders[models.ChannelEmail]; ok && n.NotifyEmail != "" {
		out = append(out, target{sender, models.Message{To: n.NotifyEmail, Subject: subject, Body: body}})
	}
	if sender, ok := s.senders[models.ChannelSMS]; ok && n.NotifyPhone != "" {
		out = append(out, target{sender, models.Message{To: n.NotifyPhone, Body: smsBody(subject, n)}})
	}
	if sender, ok := s.senders[models.ChannelPush]; ok && n.NotifyFCMToken != "" {
		out = append(out, target{sender, models.Message{To: n.NotifyFCMToken, Subject: subject, Body: smsBody(subject, n), Data: data}})
	}
	return out
}

func render(n models.IntentNotification) (subject, body string) {
	var b strings.Builder
	switch n.Event {
	case models.EventLeadCaptured:
		subject = fmt.Sprintf("New booking lead: %s", n.ServiceName)
	case models.EventBookingClicked:
		subject = fmt.Sprintf("Booking requested: %s", n.ServiceName)
	default:
		subject = fmt.Sprintf("Booking update: %s", n.ServiceName)
	}

	fmt.Fprintf(&b, "Service: %s\n", n.ServiceName)
	if n.PriceCents != nil {
		fmt.Fprintf(&b, "Price: %s\n", formatCents(*n.PriceCents))
	}
	if c := n.Contact; c != nil {
		fmt.Fprintf(&b, "Name: %s\n", c.Name)
		if c.Phone != "" {
			fmt.Fprintf(&b, "Phone: %s\n", c.Phone)
		}
		if c.Email != "" {
			fmt.Fprintf(&b, "Email: %s\n", c.Email)
		}
	}
	if r := n.Resolution; r != nil {
		if r.IsExternal() {
			provider := n.ProviderName
			if provider == "" {
				provider = "external scheduler"
			}
			fmt.Fprintf(&b, "Handoff: %s (%s)\n", provider, r.ExternalURL)
		} else {
			b.WriteString("Handoff: in chat, please follow up with the visitor\n")
		}
	}
	if n.AlertFailsafe && n.Resolution != nil {
		fmt.Fprintf(&b, "\nYour external booking link could not be used (%s). "+
			"The visitor was kept in chat instead. Please check your booking settings.\n", n.Resolution.FailsafeReason)
	}
	fmt.Fprintf(&b, "\nReference: %s\nSent: %s\n", n.IntentID, time.Now().UTC().Format(time.RFC1123))
	return subject, b.String()
}

// smsBody keeps text channels to one short line.
func smsBody(subject string, n models.IntentNotification) string {
	line := subject
	if c := n.Contact; c != nil {
		reach := c.Phone
		if reach == "" {
			reach = c.Email
		}
		line = fmt.Sprintf("%s - %s (%s)", subject, c.Name, reach)
	}
	if n.AlertFailsafe {
		line += " [check booking link]"
	}
	return line
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
