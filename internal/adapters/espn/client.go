package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

const (
	defaultBase = "https://site.api.espn.com/apis/site/v2/sports/basketball"

	// El feed no publica límites; 5 req/s con burst corto mantiene un día
	// completo de partidos dentro de un ciclo de poll.
	defaultRatePerSec = 5
	defaultTimeout    = 10 * time.Second

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client del feed en vivo con rate limiting y retries.
type Client struct {
	http    *http.Client
	base    string
	league  string
	sport   domain.Sport
	limiter *rate.Limiter
}

// NewClient crea un Client para el deporte dado. Los parámetros en cero se
// sustituyen por los valores por defecto.
func NewClient(baseURL string, sport domain.Sport, requestsPerSec float64, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBase
	}
	if requestsPerSec <= 0 {
		requestsPerSec = defaultRatePerSec
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	league := "mens-college-basketball"
	if sport == domain.SportNBA {
		league = "nba"
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		base:    baseURL,
		league:  league,
		sport:   sport,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 5),
	}
}

// get hace un GET con rate limiting y retries.
func (c *Client) get(ctx context.Context, url string, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la función con backoff exponencial respetando el contexto.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by feed", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
