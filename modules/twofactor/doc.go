// Package twofactor mounts the second-factor login flow as a JSON API.
//
// A client starts with POST /begin, renders the returned challenge, and
// submits tokens to POST /continue until the response status is "pass" or
// "fail". Attempts are parked in a secondfactor.AttemptStore between
// requests and referenced by attempt_id. Responses use a single envelope:
//
//	{"data": {"attempt_id": "...", "response": {...}}}
//	{"error": {"code": "retry_limit_exceeded", "message": "..."}}
//
// Status codes: 400 for malformed input, 404 for unknown attempts, 409 for
// finished attempts or a recovery mail already sent, 423 once the retry
// limit is hit, 502 when the recovery mail cannot be delivered and 503
// when the option store is unavailable.
package twofactor
