package stats

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"explorewithme/internal/domain"

	"github.com/coocood/freecache"
)

// DateTimeLayout is the timestamp format the statistics service speaks.
const DateTimeLayout = "2006-01-02 15:04:05"

// countFrom is the lower bound of every view-count query.
var countFrom = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type Config struct {
	BaseURL    string
	App        string
	CacheTTL   time.Duration
	CacheBytes int
	Timeout    time.Duration
}

type hitRequest struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type viewStat struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

type httpClient struct {
	client  *http.Client
	baseURL string
	app     string
	ttl     int
	timeout time.Duration
	cache   *freecache.Cache
	logger  *slog.Logger
	now     func() time.Time
}

// NewClient returns a ViewStats backed by the statistics HTTP service. View
// counts are cached per URI for cfg.CacheTTL.
func NewClient(cfg Config, client *http.Client, logger *slog.Logger) domain.ViewStats {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CacheBytes <= 0 {
		cfg.CacheBytes = 1 << 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &httpClient{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		app:     cfg.App,
		ttl:     int(cfg.CacheTTL / time.Second),
		timeout: cfg.Timeout,
		cache:   freecache.NewCache(cfg.CacheBytes),
		logger:  logger,
		now:     time.Now,
	}
}

// RecordHit posts the hit in the background. The caller's cancellation does
// not abort it.
func (c *httpClient) RecordHit(ctx context.Context, uri, ip string) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if err := c.recordHit(ctx, uri, ip); err != nil {
			c.logger.WarnContext(ctx, "failed to record hit", "uri", uri, "err", err)
		}
	}()
}

func (c *httpClient) recordHit(ctx context.Context, uri, ip string) error {
	body, err := json.Marshal(hitRequest{
		App:       c.app,
		URI:       uri,
		IP:        ip,
		Timestamp: c.now().UTC().Format(DateTimeLayout),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post hit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("stats service returned status: %d", resp.StatusCode)
	}
	return nil
}

// CountViews serves cached counts and fetches the rest with a single /stats
// call.
func (c *httpClient) CountViews(ctx context.Context, uris []string) (map[string]int64, error) {
	views := make(map[string]int64, len(uris))
	var missing []string
	for _, uri := range uris {
		if _, ok := views[uri]; ok {
			continue
		}
		if data, err := c.cache.Get([]byte(uri)); err == nil && len(data) == 8 {
			views[uri] = int64(binary.LittleEndian.Uint64(data))
			continue
		}
		views[uri] = 0
		missing = append(missing, uri)
	}
	if len(missing) == 0 {
		return views, nil
	}

	fetched, err := c.fetchViews(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, uri := range missing {
		views[uri] = fetched[uri]
		if c.ttl > 0 {
			var data [8]byte
			binary.LittleEndian.PutUint64(data[:], uint64(fetched[uri]))
			_ = c.cache.Set([]byte(uri), data[:], c.ttl)
		}
	}
	return views, nil
}

func (c *httpClient) fetchViews(ctx context.Context, uris []string) (map[string]int64, error) {
	q := url.Values{}
	q.Set("start", countFrom.Format(DateTimeLayout))
	q.Set("end", c.now().UTC().Add(time.Minute).Format(DateTimeLayout))
	for _, uri := range uris {
		q.Add("uris", uri)
	}
	q.Set("unique", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer resp.Body.Close()

	views := make(map[string]int64, len(uris))
	if resp.StatusCode == http.StatusNotFound {
		return views, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats service returned status: %d", resp.StatusCode)
	}

	var stats []viewStat
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}
	for _, s := range stats {
		views[s.URI] += s.Hits
	}
	return views, nil
}

type noop struct{}

// NewNoop returns a ViewStats that records nothing and reports zero views.
func NewNoop() domain.ViewStats {
	return noop{}
}

func (noop) RecordHit(context.Context, string, string) {}

func (noop) CountViews(_ context.Context, uris []string) (map[string]int64, error) {
	views := make(map[string]int64, len(uris))
	for _, uri := range uris {
		views[uri] = 0
	}
	return views, nil
}
