package rpc

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"ledgergate/internal/ledger/tracer"
)

const (
	// sessionSkew renews a token shortly before the node would reject it.
	sessionSkew = 10 * time.Second
	// defaultLoginTimeout bounds a shared login when the client has no timeout.
	defaultLoginTimeout = 30 * time.Second
)

// session caches the bearer token issued by the node. Concurrent callers that
// find it missing or expired share a single login, which outlives any one
// caller's context and is bounded by loginTimeout instead.
type session struct {
	mu           sync.RWMutex
	token        string
	expiresAt    time.Time
	logins       singleflight.Group
	loginTimeout time.Duration
	now          func() time.Time
}

func newSession(loginTimeout time.Duration) *session {
	if loginTimeout <= 0 {
		loginTimeout = defaultLoginTimeout
	}
	return &session{now: time.Now, loginTimeout: loginTimeout}
}

type loginFunc func(ctx context.Context) (SessionResponse, error)

func (s *session) current(ctx context.Context, login loginFunc) (string, error) {
	s.mu.RLock()
	token, expiresAt := s.token, s.expiresAt
	s.mu.RUnlock()
	if token != "" && s.now().Add(sessionSkew).Before(expiresAt) {
		return token, nil
	}

	results := s.logins.DoChan("login", func() (any, error) {
		loginCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loginTimeout)
		defer cancel()
		resp, err := login(loginCtx)
		if err != nil {
			return "", err
		}
		s.mu.Lock()
		s.token, s.expiresAt = resp.Token, resp.ExpiresAt
		s.mu.Unlock()
		return resp.Token, nil
	})
	select {
	case res := <-results:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		category := CategoryTransport
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			category = CategoryTimeout
		}
		return "", newError(category, OpSession, ctx.Err().Error(), ctx.Err())
	}
}

// invalidate drops token unless a newer one already replaced it.
func (s *session) invalidate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == token {
		s.token = ""
		s.expiresAt = time.Time{}
	}
}

func (c *Client) login(ctx context.Context) (resp SessionResponse, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanSession)
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			outcome := "ok"
			if err != nil {
				outcome = string(CategoryOf(err))
			}
			c.metrics.ObserveCall(OpSession, outcome, time.Since(start).Seconds())
			c.metrics.IncrementLogins()
		}
		span.End(err)
	}()

	req, err := c.newRequest(ctx, OpSession, http.MethodPost, PathSession, nil)
	if err != nil {
		return SessionResponse{}, err
	}
	req.SetBasicAuth(c.user, c.password)

	if _, err = c.do(ctx, OpSession, req, &resp); err != nil {
		return SessionResponse{}, err
	}
	if resp.Token == "" {
		return SessionResponse{}, newError(CategoryBadData, OpSession, "node issued an empty session token", nil)
	}
	span.AddEvent(tracer.EventSessionRenewed)
	c.logger.DebugContext(ctx, "node rpc session renewed", "user", c.user, "expires_at", resp.ExpiresAt)
	return resp, nil
}
