package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"flipyard/internal/config"
	"flipyard/internal/ids"
)

type Message struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNotConfigured is returned when no SMTP host is set.
var ErrNotConfigured = errors.New("mail is not configured")

const defaultSendTimeout = 15 * time.Second

type deliverFunc func(ctx context.Context, client *gomail.Client, msg *gomail.Msg) error

type SMTPSender struct {
	cfg     config.MailConfig
	timeout time.Duration
	deliver deliverFunc
	now     func() time.Time
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &SMTPSender{
		cfg:     cfg,
		timeout: timeout,
		deliver: func(ctx context.Context, client *gomail.Client, msg *gomail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
		now: time.Now,
	}
}

// Send delivers one message. The whole SMTP conversation is bounded by the
// configured timeout and by ctx.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enabled() {
		return ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	m, err := s.compose(msg)
	if err != nil {
		return err
	}
	client, err := s.client(ctx)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	if err := s.deliver(ctx, client, m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", addr, err)
	}
	return nil
}

func (s *SMTPSender) client(ctx context.Context) (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(s.timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithDialContextFunc(boundDialer(ctx, s.timeout)),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return client, nil
}

// boundDialer ties the SMTP connection to sendCtx: the socket gets the
// send deadline and is closed as soon as sendCtx ends, so a server that
// stops talking cannot stall the worker. The dial context go-mail passes in
// is only used for the dial itself.
func boundDialer(sendCtx context.Context, timeout time.Duration) gomail.DialContextFunc {
	return func(dialCtx context.Context, network, address string) (net.Conn, error) {
		conn, err := (&net.Dialer{Timeout: timeout}).DialContext(dialCtx, network, address)
		if err != nil {
			return nil, err
		}
		deadline, ok := sendCtx.Deadline()
		if !ok {
			deadline = time.Now().Add(timeout)
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		stop := context.AfterFunc(sendCtx, func() { _ = conn.Close() })
		return &stoppingConn{Conn: conn, stop: stop}, nil
	}
}

type stoppingConn struct {
	net.Conn
	stop func() bool
}

func (c *stoppingConn) Close() error {
	c.stop()
	return c.Conn.Close()
}

func (s *SMTPSender) compose(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	// An unparsable reply-to is dropped rather than failing the relay.
	if msg.ReplyTo != "" && !strings.ContainsAny(msg.ReplyTo, "\r\n") {
		_ = m.ReplyTo(msg.ReplyTo)
	}
	m.Subject(headerValue(msg.Subject))
	m.SetDateWithValue(s.now().UTC())
	m.SetMessageIDWithValue(ids.New() + "@" + s.cfg.Host)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m, nil
}

// headerValue drops line breaks so user input cannot add headers.
func headerValue(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
