package stats

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/alejandrodnm/pacebot/internal/domain"
)

const defaultScrapeTimeout = 15 * time.Second

// Scraper downloads a season ratings HTML table and derives per-team
// metrics. Column layout is detected from the header row, so reordered
// or renamed columns keep working as long as the usual labels appear.
// Rate columns are expected on per-game scales (FTA/G, TO/G), not
// per-possession ones.
type Scraper struct {
	http *http.Client
	url  string
}

// NewScraper creates a Scraper for the given ratings page URL.
func NewScraper(url string, timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = defaultScrapeTimeout
	}
	return &Scraper{
		http: &http.Client{Timeout: timeout},
		url:  url,
	}
}

// FetchRatings downloads and parses the ratings table. Keys of the
// returned map are canonical team names (see Canonical).
func (s *Scraper) FetchRatings(ctx context.Context) (map[string]domain.TeamMetrics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("stats.FetchRatings: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; pacebot/1.0)")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stats.FetchRatings: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats.FetchRatings: status %d from %s", resp.StatusCode, s.url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("stats.FetchRatings: parse html: %w", err)
	}

	ratings := parseRatings(doc)
	if len(ratings) == 0 {
		return nil, fmt.Errorf("stats.FetchRatings: no team rows found at %s", s.url)
	}
	slog.Debug("fetched season ratings", "teams", len(ratings), "url", s.url)
	return ratings, nil
}

// Column keys recognised in the ratings table header.
const (
	colTeam = iota
	colGames
	colPace
	colOffEff
	colDefEff
	colThreeRate
	colThreePct
	colFTRate
	colTORate
	colEFG
)

// headerField maps a normalised header label to a column key. Returns
// -1 for labels the scraper does not use.
func headerField(label string) int {
	l := strings.ToLower(strings.TrimSpace(label))
	l = strings.NewReplacer(" ", "", ".", "", "%", "pct", "/", "").Replace(l)
	switch {
	case l == "team" || l == "school":
		return colTeam
	case l == "g" || l == "gp" || l == "games":
		return colGames
	case l == "adjt" || l == "tempo" || l == "pace" || l == "poss":
		return colPace
	case l == "adjo" || l == "ortg" || l == "offeff" || l == "offrtg":
		return colOffEff
	case l == "adjd" || l == "drtg" || l == "defeff" || l == "defrtg":
		return colDefEff
	case l == "3pr" || l == "3prate" || l == "3par" || l == "3papct":
		return colThreeRate
	case l == "3ppct":
		return colThreePct
	case l == "ftag" || l == "ftrate" || l == "ftr":
		return colFTRate
	case l == "tog" || l == "torate" || l == "topct" || l == "tov":
		return colTORate
	case l == "efgpct":
		return colEFG
	default:
		return -1
	}
}

func parseRatings(doc *goquery.Document) map[string]domain.TeamMetrics {
	out := make(map[string]domain.TeamMetrics)
	now := time.Now()

	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		cols := headerColumns(tbl)
		if _, ok := cols[colTeam]; !ok {
			return true // not a ratings table, keep looking
		}

		tbl.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return // header or separator row
			}
			team := strings.TrimSpace(cellText(cells, cols, colTeam))
			if team == "" {
				return
			}
			pace, ok := cellFloat(cells, cols, colPace)
			if !ok {
				slog.Warn("skipping ratings row without pace", "team", team)
				return
			}

			m := domain.TeamMetrics{
				Team:      team,
				Pace:      pace,
				FetchedAt: now,
			}
			if v, ok := cellFloat(cells, cols, colGames); ok {
				m.Games = int(v)
			}
			if v, ok := cellFloat(cells, cols, colOffEff); ok {
				m.OffEfficiency = v
			}
			if v, ok := cellFloat(cells, cols, colDefEff); ok {
				m.DefEfficiency = v
			}
			if v, ok := cellFloat(cells, cols, colThreeRate); ok {
				if v > 1 {
					v /= 100 // percent column, fold to a ratio
				}
				m.ThreePRate = v
			}
			if v, ok := cellFloat(cells, cols, colThreePct); ok {
				if v > 1 {
					v /= 100
				}
				m.ThreePPct = v
			}
			if v, ok := cellFloat(cells, cols, colFTRate); ok {
				m.FTRate = v
			}
			if v, ok := cellFloat(cells, cols, colTORate); ok {
				m.TORate = v
			}
			if v, ok := cellFloat(cells, cols, colEFG); ok {
				m.EFGPct = v
			}
			out[Canonical(team)] = m
		})
		return len(out) == 0 // stop at the first table that yielded rows
	})
	return out
}

// headerColumns reads the header row and maps column keys to cell
// indexes. An empty map means the table carries no recognisable header.
func headerColumns(tbl *goquery.Selection) map[int]int {
	cols := make(map[int]int)
	header := tbl.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		return row.Find("th").Length() > 0
	}).First()
	header.Find("th").Each(func(i int, th *goquery.Selection) {
		if f := headerField(th.Text()); f >= 0 {
			cols[f] = i
		}
	})
	return cols
}

func cellText(cells *goquery.Selection, cols map[int]int, field int) string {
	idx, ok := cols[field]
	if !ok || idx >= cells.Length() {
		return ""
	}
	return cells.Eq(idx).Text()
}

func cellFloat(cells *goquery.Selection, cols map[int]int, field int) (float64, bool) {
	raw := strings.TrimSpace(cellText(cells, cols, field))
	raw = strings.TrimSuffix(raw, "%")
	if raw == "" {
		return 0, false
	}
	// Some sources append a rank like "64.8 (12)"; keep the leading number.
	if i := strings.IndexByte(raw, ' '); i > 0 {
		raw = raw[:i]
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
