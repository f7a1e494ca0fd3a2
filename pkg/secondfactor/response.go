package secondfactor

// Status tells the caller what to do next.
type Status string

const (
	StatusUI   Status = "ui"   // Render the challenge and ask for a token
	StatusPass Status = "pass" // Second factor satisfied
	StatusFail Status = "fail" // Attempt is over
)

// Message keys for the host's translation layer.
const (
	MessageInfo         = "twofa.info"
	MessageSetupFailure = "twofa.setup_failure"
	MessageLoginFailure = "twofa.login_failure"
	MessageRetryLimit   = "twofa.retry_limit"
	MessageReset        = "twofa.reset"
)

// Response is the outcome of Begin or Continue.
type Response struct {
	Status    Status     `json:"status"`
	State     State      `json:"state"`
	Message   string     `json:"message,omitempty"`
	Challenge *Challenge `json:"challenge,omitempty"`
}

// Challenge carries what the UI needs to ask for a token. Secret,
// ProvisioningURI, QRCode and RescueCodes are only set during setup.
type Challenge struct {
	Setup           bool     `json:"setup"`
	Secret          string   `json:"secret,omitempty"`
	ProvisioningURI string   `json:"provisioning_uri,omitempty"`
	QRCode          string   `json:"qr_code,omitempty"` // PNG data URI
	RescueCodes     []string `json:"rescue_codes,omitempty"`
	TokenLost       bool     `json:"token_lost,omitempty"` // Recovery mail can be requested
}
