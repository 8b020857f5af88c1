package sources

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"proxydash/core/metrics"
	"proxydash/core/reconcile"
	"proxydash/core/utils"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	tokenPath      = "/api/tokens"
	proxyHostsPath = "/api/nginx/proxy-hosts"
	// maxResponseBytes caps any single API response.
	maxResponseBytes = 16 << 20
)

// ErrUnauthorized is returned when the API rejects the configured credentials.
var ErrUnauthorized = errors.New("api rejected credentials")

// RemoteAPI reads proxy hosts through a proxy manager's management API.
// Access lists and advanced config are not exposed there, so its routes
// are always reported degraded.
type RemoteAPI struct {
	client *http.Client
	logger *zap.Logger

	mu       sync.Mutex
	breakers map[uint]*gobreaker.CircuitBreaker[[]reconcile.Route]
}

// NewRemoteAPI creates an API source. Upstream certificates are not verified.
func NewRemoteAPI(timeout time.Duration, logger *zap.Logger) *RemoteAPI {
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	return &RemoteAPI{
		client:   &http.Client{Timeout: timeout, Transport: transport},
		logger:   logger,
		breakers: make(map[uint]*gobreaker.CircuitBreaker[[]reconcile.Route]),
	}
}

// Fetch logs in and lists the instance's proxy hosts.
func (s *RemoteAPI) Fetch(ctx context.Context, inst reconcile.Instance) ([]reconcile.Route, bool, error) {
	cb := s.breaker(inst)
	routes, err := cb.Execute(func() ([]reconcile.Route, error) {
		return s.fetch(ctx, inst)
	})
	if err != nil {
		return nil, true, reconcile.Unreachable(inst, err)
	}
	return routes, true, nil
}

func (s *RemoteAPI) breaker(inst reconcile.Instance) *gobreaker.CircuitBreaker[[]reconcile.Route] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cb, ok := s.breakers[inst.ID]; ok {
		return cb
	}
	name := "npm:" + inst.Name
	cb := gobreaker.NewCircuitBreaker[[]reconcile.Route](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			// Bad credentials are a configuration error, not an outage.
			return err == nil || errors.Is(err, ErrUnauthorized)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.RecordBreakerTransition(name, from, to)
		},
	})
	s.breakers[inst.ID] = cb
	return cb
}

func (s *RemoteAPI) fetch(ctx context.Context, inst reconcile.Instance) ([]reconcile.Route, error) {
	base := strings.TrimRight(inst.APIURL, "/")
	if base == "" {
		return nil, fmt.Errorf("instance has no api url")
	}

	token, err := s.login(ctx, base, inst)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+proxyHostsPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	var hosts []proxyHost
	if err := s.do(req, &hosts); err != nil {
		return nil, fmt.Errorf("failed to list proxy hosts: %w", err)
	}

	routes := make([]reconcile.Route, 0, len(hosts))
	for _, h := range hosts {
		routes = append(routes, h.route())
	}
	return routes, nil
}

type tokenRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

type tokenResponse struct {
	Token   string `json:"token"`
	Expires string `json:"expires"`
}

func (s *RemoteAPI) login(ctx context.Context, base string, inst reconcile.Instance) (string, error) {
	body, err := json.Marshal(tokenRequest{Identity: inst.APIIdentity, Secret: inst.APISecret})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+tokenPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var tok tokenResponse
	if err := s.do(req, &tok); err != nil {
		return "", fmt.Errorf("failed to log in: %w", err)
	}
	if tok.Token == "" {
		return "", fmt.Errorf("failed to log in: empty token")
	}
	return tok.Token, nil
}

func (s *RemoteAPI) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

// proxyHost is the API representation of a proxy host. Flag columns come
// back as booleans or 0/1 depending on the proxy manager version.
type proxyHost struct {
	ID            int      `json:"id"`
	DomainNames   []string `json:"domain_names"`
	ForwardHost   string   `json:"forward_host"`
	ForwardPort   any      `json:"forward_port"`
	ForwardScheme string   `json:"forward_scheme"`
	Enabled       any      `json:"enabled"`
	CertificateID any      `json:"certificate_id"`
	SSLForced     any      `json:"ssl_forced"`
}

func (h proxyHost) route() reconcile.Route {
	return reconcile.Route{
		RouteID:       h.ID,
		DomainNames:   h.DomainNames,
		ForwardHost:   h.ForwardHost,
		ForwardPort:   utils.ToInt(h.ForwardPort),
		ForwardScheme: h.ForwardScheme,
		Enabled:       utils.ToBool(h.Enabled),
		CertificateID: utils.ToInt(h.CertificateID),
		SSLForced:     utils.ToBool(h.SSLForced),
	}
}
