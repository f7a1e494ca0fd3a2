// Package email sends transactional mail for the two-factor service.
//
// EmailSender has two implementations: the Postmark client for real
// delivery and DevSender, which writes each message to a directory as an
// .html body plus a .json envelope. Both validate SendEmailParams first and
// report delivery problems wrapped in ErrFailedToSendEmail.
//
// RecoveryNotifier mails an account's rescue codes. It resolves the address
// through a Directory, refuses unknown accounts (ErrUnknownAccount) and
// unconfirmed addresses (ErrEmailNotConfirmed), and renders the embedded
// templates/recovery.html with html/template.
package email
