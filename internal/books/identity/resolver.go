// Package identity resolves bearer credentials into request-scoped
// principals. The credential is verified locally first, then the embedded
// subject is confirmed against the auth service with a single bounded HTTP
// call. Nothing is cached: a revoked or deleted user disappears on the very
// next request, at the price of one upstream round trip per request.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/readshelf/library-system/internal/books/metrics"
	"github.com/readshelf/library-system/internal/books/core/domain"
	"github.com/readshelf/library-system/internal/token"
)

// DefaultTimeout bounds the upstream user lookup so a hung auth service
// cannot pin request handlers indefinitely.
const DefaultTimeout = 5 * time.Second

// Resolver is the remote identity resolver of the books service.
type Resolver struct {
	baseURL  string
	client   *http.Client
	verifier *token.Verifier
	log      zerolog.Logger
}

func NewResolver(baseURL string, timeout time.Duration, verifier *token.Verifier, log zerolog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		verifier: verifier,
		log:      log,
	}
}

// Resolve verifies the credential locally, then fetches the subject's record
// from the auth service, forwarding the presented bearer string unchanged so
// the upstream endpoint re-verifies it independently. No retries: a single
// synchronous call per request, so upstream degradation is never amplified.
func (r *Resolver) Resolve(ctx context.Context, rawToken string) (*domain.Principal, error) {
	start := time.Now()
	defer func() {
		metrics.IdentityResolutionDuration.Observe(time.Since(start).Seconds())
	}()

	subject, err := r.verifier.VerifyAccess(rawToken)
	if err != nil {
		// Local failure: the upstream service is never contacted.
		metrics.IdentityResolutionsTotal.WithLabelValues("invalid_credential").Inc()
		return nil, domain.ErrInvalidCredential
	}

	info, err := r.FetchUser(ctx, subject, rawToken)
	if err != nil {
		return nil, err
	}

	metrics.IdentityResolutionsTotal.WithLabelValues("success").Inc()
	return &domain.Principal{
		ID:            info.ID,
		Username:      info.Username,
		Email:         info.Email,
		IsStaff:       info.IsStaff,
		Authenticated: true,
	}, nil
}

// FetchUser performs the bounded upstream lookup and maps every failure mode
// to its place in the error taxonomy.
func (r *Resolver) FetchUser(ctx context.Context, userID int64, rawToken string) (*domain.UserInfo, error) {
	url := fmt.Sprintf("%s/api/auth/users/%d/", r.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build user lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+rawToken)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, r.classifyTransportError(err, userID)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var info domain.UserInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			metrics.IdentityResolutionsTotal.WithLabelValues("upstream_error").Inc()
			r.log.Error().Err(err).Int64("user_id", userID).Msg("auth service returned an unreadable user payload")
			return nil, &domain.UpstreamStatusError{Status: resp.StatusCode}
		}
		// A payload whose id is absent or does not match the requested
		// subject must never become a principal.
		if info.ID != userID {
			metrics.IdentityResolutionsTotal.WithLabelValues("upstream_error").Inc()
			r.log.Error().Int64("user_id", userID).Int64("payload_id", info.ID).Msg("auth service returned a mismatched user payload")
			return nil, &domain.UpstreamStatusError{Status: resp.StatusCode}
		}
		return &info, nil

	case http.StatusNotFound:
		metrics.IdentityResolutionsTotal.WithLabelValues("user_not_found").Inc()
		r.log.Warn().Int64("user_id", userID).Msg("credential valid but subject missing upstream")
		return nil, domain.ErrUserNotFound

	case http.StatusUnauthorized:
		metrics.IdentityResolutionsTotal.WithLabelValues("invalid_credential").Inc()
		r.log.Info().Int64("user_id", userID).Msg("credential rejected upstream")
		return nil, domain.ErrInvalidCredential

	default:
		metrics.IdentityResolutionsTotal.WithLabelValues("upstream_error").Inc()
		r.log.Error().Int("status", resp.StatusCode).Int64("user_id", userID).Msg("unexpected auth service status")
		return nil, &domain.UpstreamStatusError{Status: resp.StatusCode}
	}
}

func (r *Resolver) classifyTransportError(err error, userID int64) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		metrics.IdentityResolutionsTotal.WithLabelValues("upstream_timeout").Inc()
		r.log.Error().Err(err).Int64("user_id", userID).Msg("auth service lookup timed out")
		return domain.ErrUpstreamTimeout
	}

	metrics.IdentityResolutionsTotal.WithLabelValues("upstream_unavailable").Inc()
	r.log.Error().Err(err).Int64("user_id", userID).Msg("auth service unreachable")
	return domain.ErrUpstreamUnavailable
}
