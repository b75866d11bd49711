package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

const (
	defaultBase = "https://api.the-odds-api.com"

	// El plan gratuito da 500 requests/mes; un ciclo por minuto con burst 1
	// ya es generoso.
	defaultRatePerSec = 1
	defaultTimeout    = 10 * time.Second

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client de The Odds API con rate limiting y retries.
type Client struct {
	http     *http.Client
	base     string
	apiKey   string
	regions  string
	sportKey string
	limiter  *rate.Limiter
}

// NewClient crea un Client para el deporte dado. Los parámetros en cero se
// sustituyen por los valores por defecto; la API key no tiene defecto.
func NewClient(baseURL, apiKey, regions string, sport domain.Sport, requestsPerSec float64, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBase
	}
	if regions == "" {
		regions = "us"
	}
	if requestsPerSec <= 0 {
		requestsPerSec = defaultRatePerSec
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	sportKey := "basketball_ncaab"
	if sport == domain.SportNBA {
		sportKey = "basketball_nba"
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		base:     baseURL,
		apiKey:   apiKey,
		regions:  regions,
		sportKey: sportKey,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSec), 2),
	}
}

// FetchTotals devuelve la línea de total disponible por partido del día.
// Toma la primera casa que publica el mercado de totales; partidos sin el
// mercado se omiten.
func (c *Client) FetchTotals(ctx context.Context) ([]domain.TotalLine, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("regions", c.regions)
	q.Set("markets", "totals")
	q.Set("oddsFormat", "american")
	q.Set("dateFormat", "iso")
	reqURL := fmt.Sprintf("%s/v4/sports/%s/odds/?%s", c.base, c.sportKey, q.Encode())

	var events []oddsEvent
	if err := c.get(ctx, reqURL, &events); err != nil {
		return nil, fmt.Errorf("oddsapi.FetchTotals: %w", err)
	}

	lines := make([]domain.TotalLine, 0, len(events))
	for _, ev := range events {
		if line, ok := mapTotalLine(ev); ok {
			lines = append(lines, line)
		}
	}

	slog.Debug("totals fetched", "sport", c.sportKey, "events", len(events), "with_totals", len(lines))
	return lines, nil
}

// mapTotalLine extrae la línea de total de un evento. Devuelve false si
// ninguna casa publica el mercado.
func mapTotalLine(ev oddsEvent) (domain.TotalLine, bool) {
	for _, bk := range ev.Bookmakers {
		for _, m := range bk.Markets {
			if m.Key != "totals" || len(m.Outcomes) == 0 || m.Outcomes[0].Point <= 0 {
				continue
			}
			line := domain.TotalLine{
				HomeTeam:  ev.HomeTeam,
				AwayTeam:  ev.AwayTeam,
				Line:      m.Outcomes[0].Point,
				Bookmaker: bk.Key,
			}
			if t, err := time.Parse(time.RFC3339, bk.LastUpdate); err == nil {
				line.LastUpdate = t
			}
			return line, true
		}
	}
	return domain.TotalLine{}, false
}

// get hace un GET con rate limiting y retries, registrando la cuota
// restante que la API devuelve en los headers.
func (c *Client) get(ctx context.Context, url string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if remaining := resp.Header.Get("X-Requests-Remaining"); remaining != "" {
			slog.Debug("odds api quota", "remaining", remaining, "used", resp.Header.Get("X-Requests-Used"))
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by odds api", "attempt", attempt+1)
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

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
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
