package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bolsatrabajo/api/internal/survey/domain"
)

// Poller fetches the pending summary of one company and feeds a Tracker.
type Poller struct {
	client    *http.Client
	endpoint  string
	token     string
	companyID string
	tracker   *Tracker
	logger    *log.Logger
	now       func() time.Time
}

// Config defines dependencies required by Poller.
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	CompanyID  string
	Logger     *log.Logger
	Now        func() time.Time
}

func NewPoller(cfg Config) *Poller {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Poller{
		client:    client,
		endpoint:  strings.TrimRight(cfg.BaseURL, "/") + "/surveys/notifications",
		token:     cfg.Token,
		companyID: cfg.CompanyID,
		tracker:   &Tracker{},
		logger:    cfg.Logger,
		now:       now,
	}
}

// Poll fetches the current summary once and reports a notice if the total grew.
func (p *Poller) Poll(ctx context.Context) (Notice, bool, error) {
	summary, err := p.fetch(ctx)
	if err != nil {
		return Notice{}, false, err
	}
	notice, ok := p.tracker.Observe(summary.TotalPendingSurveys, p.now())
	return notice, ok, nil
}

// Last returns the most recently observed total and when it was seen.
func (p *Poller) Last() (total int, at time.Time, ok bool) {
	return p.tracker.Last()
}

// Run polls once and logs the outcome. It is meant to be scheduled.
func (p *Poller) Run(ctx context.Context) {
	notice, ok, err := p.Poll(ctx)
	if err != nil {
		if p.logger != nil {
			p.logger.Printf("pending survey poll failed: %v", err)
		}
		return
	}
	if ok && p.logger != nil {
		p.logger.Print(notice.Message())
	}
}

func (p *Poller) fetch(ctx context.Context) (*domain.PendingSummary, error) {
	endpoint := p.endpoint
	if p.companyID != "" {
		endpoint += "?companyId=" + url.QueryEscape(p.companyID)
	}

	timeout := p.client.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build notifications request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notifications request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		message, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		return nil, fmt.Errorf("notifications request failed: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(message)))
	}

	var summary domain.PendingSummary
	if err := json.NewDecoder(res.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return &summary, nil
}
