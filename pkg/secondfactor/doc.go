// Package secondfactor implements the TOTP second step of a login.
//
// A Provider drives each LoginAttempt through a small state machine:
//
//	new ──begin──▶ needs_setup | awaiting_code
//	needs_setup, awaiting_code ──submit──▶ needs_setup | awaiting_code | passed | retry_limit_exceeded
//
// Begin provisions a secret and three rescue codes for accounts that have
// none. Continue evaluates a submitted token in this order:
//
//  1. A rescue code wipes the account and starts setup again.
//  2. A valid TOTP code passes, completing setup if it was pending.
//  3. A wrong code during setup keeps the attempt in setup.
//  4. Any other wrong code counts as a failure; the attempt locks once the
//     count reaches the retry limit.
//
// Store errors move the attempt to the failed state and are returned joined
// with ErrStorePersistence.
//
// Per-account data lives in an OptionStore. StagedStore turns any Backend
// into one; MemoryBackend ships here and Redis, Postgres and MongoDB
// backends live in their own packages. EncryptedStore keeps secrets and
// rescue codes encrypted at rest.
//
// Recovery mails an account's rescue codes once through a Notifier.
package secondfactor
