package totp

import (
	"fmt"
	"net/url"
	"strings"
)

// SiteNamePlaceholder is replaced with the deployment's site name when an
// issuer template is resolved.
const SiteNamePlaceholder = "__SITENAME__"

// Issuer describes how the issuer shown in authenticator apps is derived.
type Issuer struct {
	SiteName string // Deployment name, e.g. "Acme Wiki"
	Template string // Issuer template; empty means SiteNamePlaceholder
}

// Resolve returns the issuer with SiteNamePlaceholder substituted.
func (i Issuer) Resolve() string {
	tpl := i.Template
	if tpl == "" {
		tpl = SiteNamePlaceholder
	}
	return strings.ReplaceAll(tpl, SiteNamePlaceholder, i.SiteName)
}

// ProvisioningURI builds the otpauth:// URI used to enroll secret in an
// authenticator app. Spaces in accountLabel become dashes.
//
// Format: otpauth://totp/{label}?secret={secret}&issuer={issuer}
func ProvisioningURI(secret, accountLabel string, issuer Issuer) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	label := strings.ReplaceAll(strings.TrimSpace(accountLabel), " ", "-")
	if label == "" {
		return "", ErrMissingAccountName
	}

	return fmt.Sprintf("otpauth://totp/%s?secret=%s&issuer=%s",
		url.PathEscape(label),
		url.QueryEscape(secret),
		url.QueryEscape(issuer.Resolve()),
	), nil
}
