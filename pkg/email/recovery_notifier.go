package email

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"strings"
	"sync"
)

//go:embed templates/recovery.html
var templatesFS embed.FS

var recoveryTemplate = template.Must(template.ParseFS(templatesFS, "templates/recovery.html"))

// Directory resolves the e-mail address on file for an account.
type Directory interface {
	LookupEmail(ctx context.Context, account string) (address string, confirmed bool, err error)
}

// MapDirectory is a static Directory where every listed address counts as
// confirmed.
type MapDirectory struct {
	mu        sync.RWMutex
	addresses map[string]string
}

func NewMapDirectory(addresses map[string]string) *MapDirectory {
	d := &MapDirectory{addresses: make(map[string]string, len(addresses))}
	for account, addr := range addresses {
		d.addresses[strings.TrimSpace(account)] = strings.TrimSpace(addr)
	}
	return d
}

func (d *MapDirectory) LookupEmail(_ context.Context, account string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	addr, ok := d.addresses[account]
	if !ok {
		return "", false, ErrUnknownAccount
	}
	return addr, true, nil
}

// RecoveryNotifier mails rescue codes to the account's confirmed address.
type RecoveryNotifier struct {
	sender    EmailSender
	directory Directory
	siteName  string
	subject   string
}

type RecoveryNotifierOption func(*RecoveryNotifier)

func WithSiteName(name string) RecoveryNotifierOption {
	return func(n *RecoveryNotifier) { n.siteName = name }
}

func WithSubject(subject string) RecoveryNotifierOption {
	return func(n *RecoveryNotifier) {
		if subject != "" {
			n.subject = subject
		}
	}
}

func NewRecoveryNotifier(sender EmailSender, directory Directory, opts ...RecoveryNotifierOption) *RecoveryNotifier {
	n := &RecoveryNotifier{
		sender:    sender,
		directory: directory,
		subject:   "Your two-factor rescue codes",
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SendRecoveryMessage renders the rescue codes and sends them. Unknown
// accounts and unconfirmed addresses are refused.
func (n *RecoveryNotifier) SendRecoveryMessage(ctx context.Context, account string, codes []string) error {
	addr, confirmed, err := n.directory.LookupEmail(ctx, account)
	if err != nil {
		return err
	}
	if addr == "" {
		return ErrUnknownAccount
	}
	if !confirmed {
		return ErrEmailNotConfirmed
	}

	var body strings.Builder
	if err := recoveryTemplate.Execute(&body, struct {
		Account  string
		SiteName string
		Codes    []string
	}{account, n.siteName, codes}); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	return n.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   addr,
		Subject:  n.subject,
		BodyHTML: body.String(),
		Tag:      "twofa-recovery",
	})
}
