package network

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Pacer is an http.RoundTripper that waits on a shared limiter before each
// request. The wait honours the request context.
type Pacer struct {
	next    http.RoundTripper
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewPacer(next http.RoundTripper, limiter *rate.Limiter, logger *zap.Logger) *Pacer {
	return &Pacer{next: next, limiter: limiter, logger: logger.Named("pacer")}
}

func (p *Pacer) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := p.limiter.Wait(req.Context()); err != nil {
		p.logger.Debug("Request dropped while waiting for rate limit.", zap.String("url", req.URL.Redacted()), zap.Error(err))
		return nil, err
	}
	return p.next.RoundTrip(req)
}
