package twofactor

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/twofa/pkg/logger"
	"github.com/dmitrymomot/twofa/pkg/qrcode"
	"github.com/dmitrymomot/twofa/pkg/ratelimiter"
	"github.com/dmitrymomot/twofa/pkg/secondfactor"
)

type BeginRequest struct {
	Account string `json:"account"`
}

type ContinueRequest struct {
	AttemptID string `json:"attempt_id"`
	Token     string `json:"token"`
}

type RecoverRequest struct {
	Account string `json:"account"`
}

// AttemptResponse is the data member returned by /begin and /continue.
type AttemptResponse struct {
	AttemptID string                `json:"attempt_id"`
	Response  secondfactor.Response `json:"response"`
}

func (s *Service) begin(w http.ResponseWriter, r *http.Request) {
	var req BeginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	account := strings.TrimSpace(req.Account)
	if !s.allow(w, r, "begin", account) {
		return
	}

	attempt, resp, err := s.provider.Begin(r.Context(), account)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.attempts.SaveAttempt(r.Context(), attempt); err != nil {
		s.fail(w, r, errors.Join(secondfactor.ErrStorePersistence, err))
		return
	}

	writeJSON(w, http.StatusOK, envelope{Data: AttemptResponse{AttemptID: attempt.ID, Response: resp}})
}

func (s *Service) continueAttempt(w http.ResponseWriter, r *http.Request) {
	var req ContinueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.AttemptID == "" {
		s.fail(w, r, ErrMissingAttemptID)
		return
	}

	ctx := r.Context()
	unlock, err := s.locker.LockAttempt(ctx, req.AttemptID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer unlock()

	// Loaded under the lock so FailureCount reflects every earlier submission.
	attempt, err := s.attempts.LoadAttempt(ctx, req.AttemptID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if !s.allow(w, r, "continue", attempt.Account) {
		return
	}

	resp, err := s.provider.Continue(ctx, attempt, req.Token)
	if err != nil {
		if attempt.State == secondfactor.StateFailed {
			if serr := s.attempts.SaveAttempt(ctx, attempt); serr != nil {
				s.logger.WarnContext(ctx, "failed attempt not saved", logger.AttemptID(attempt.ID), logger.Error(serr))
			}
		}
		s.fail(w, r, err)
		return
	}

	// A passed attempt is consumed so its token cannot be replayed. Locked
	// attempts stay until they expire so retries keep answering 423.
	if attempt.State == secondfactor.StatePassed {
		err = s.attempts.DeleteAttempt(ctx, attempt.ID)
	} else {
		err = s.attempts.SaveAttempt(ctx, attempt)
	}
	if err != nil {
		s.fail(w, r, errors.Join(secondfactor.ErrStorePersistence, err))
		return
	}
	if attempt.State == secondfactor.StatePassed {
		s.resetThrottle(r, "continue", attempt.Account)
	}

	status := http.StatusOK
	if attempt.State == secondfactor.StateRetryLimitExceeded {
		status = http.StatusLocked
	}
	writeJSON(w, status, envelope{Data: AttemptResponse{AttemptID: attempt.ID, Response: resp}})
}

func (s *Service) recover(w http.ResponseWriter, r *http.Request) {
	if s.recovery == nil {
		s.fail(w, r, secondfactor.ErrMissingNotifier)
		return
	}

	var req RecoverRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	account := strings.TrimSpace(req.Account)
	if !s.allow(w, r, "recover", account) {
		return
	}
	if err := s.recovery.Send(r.Context(), account); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Service) qr(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attempt, err := s.attempts.LoadAttempt(ctx, chi.URLParam(r, "attempt_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	uri, err := s.provider.SetupURI(ctx, attempt)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	png, err := qrcode.ProvisioningPNG(uri, s.qrSize)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// allow reports whether the request may proceed, writing the error
// response when it may not. Empty accounts pass through so the provider
// can reject them.
func (s *Service) allow(w http.ResponseWriter, r *http.Request, op, account string) bool {
	if s.throttle == nil || account == "" {
		return true
	}

	res, err := s.throttle.Allow(r.Context(), op+":"+account)
	if err != nil {
		s.fail(w, r, errors.Join(ErrThrottleUnavailable, err))
		return false
	}
	ratelimiter.SetHeaders(w, res)
	if !res.Allowed() {
		s.logger.WarnContext(r.Context(), "account throttled", logger.Account(account), logger.Event(op))
		s.fail(w, r, ErrThrottled)
		return false
	}
	return true
}

// resetThrottle refills the bucket of op for account after a successful
// login so earlier typos do not count against the next one.
func (s *Service) resetThrottle(r *http.Request, op, account string) {
	resetter, ok := s.throttle.(interface {
		Reset(ctx context.Context, key string) error
	})
	if !ok {
		return
	}
	if err := resetter.Reset(r.Context(), op+":"+account); err != nil {
		s.logger.WarnContext(r.Context(), "throttle not reset", logger.Account(account), logger.Error(err))
	}
}

func (s *Service) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", logger.Error(err))
	} else {
		s.logger.DebugContext(r.Context(), "request rejected", logger.Error(err))
	}
	writeJSON(w, status, envelope{Error: &body})
}
