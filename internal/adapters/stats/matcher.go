package stats

import (
	"regexp"
	"strings"
)

// matchThreshold is the minimum similarity ratio (0-100) for a fuzzy match.
const matchThreshold = 80

// qualifierWords block a fuzzy match when present on only one side:
// "Ohio" must never fuzzy-match "Ohio State".
var qualifierWords = []string{"state", "tech", "christian", "methodist", "wesleyan"}

// ignoreWords carry no identity and are dropped during normalisation.
var ignoreWords = map[string]bool{
	"university": true, "college": true, "the": true, "of": true, "at": true,
	"men": true, "mens": true,
}

// mascotWords are stripped from the tail of a name, one word at a time,
// so "Butler Bulldogs" and "Duke Blue Devils" reduce to their school
// names. Lakers and Clippers stay out: stripping them would collapse
// both Los Angeles franchises into the same key.
var mascotWords = map[string]bool{
	"76ers": true, "aggies": true, "anteaters": true, "aztecs": true,
	"badgers": true, "bearcats": true, "bears": true, "big": true,
	"bison": true, "blazers": true, "blue": true, "bluejays": true,
	"bobcats": true, "boilermakers": true, "braves": true, "broncos": true,
	"bruins": true, "buckeyes": true, "bucks": true, "buffaloes": true,
	"bulldogs": true, "bulls": true, "cardinals": true, "catamounts": true,
	"cavaliers": true, "celtics": true, "chanticleers": true,
	"colonels": true, "colonials": true, "commodores": true,
	"cougars": true, "cowboys": true, "crimson": true, "crusaders": true,
	"cyclones": true, "deacons": true, "demon": true, "demons": true,
	"devils": true, "dons": true, "ducks": true, "dukes": true,
	"eagles": true, "explorers": true, "fighting": true, "flames": true,
	"flashes": true, "flyers": true, "friars": true, "gaels": true,
	"gamecocks": true, "gators": true, "gauchos": true, "golden": true,
	"gophers": true, "governors": true, "green": true, "grizzlies": true,
	"hawkeyes": true, "hawks": true, "heat": true, "heels": true,
	"highlanders": true, "hilltoppers": true, "hoosiers": true,
	"hornets": true, "hoyas": true, "huskies": true, "illini": true,
	"irish": true, "jackets": true, "jaguars": true, "jayhawks": true,
	"jazz": true, "kings": true, "knicks": true, "knights": true,
	"lancers": true, "lions": true, "lobos": true, "longhorns": true,
	"magic": true, "matadors": true, "mavericks": true, "minutemen": true,
	"monarchs": true, "mountaineers": true, "musketeers": true,
	"mustangs": true, "nets": true, "nuggets": true, "orange": true,
	"owls": true, "pacers": true, "paladins": true, "panthers": true,
	"patriots": true, "pelicans": true, "phoenix": true, "pilots": true,
	"pirates": true, "pistons": true, "quakers": true, "racers": true,
	"raiders": true, "rams": true, "raptors": true, "razorbacks": true,
	"rebels": true, "red": true, "redhawks": true, "retrievers": true,
	"rockets": true, "royals": true, "salukis": true, "seahawks": true,
	"seminoles": true, "shockers": true, "sooners": true, "spartans": true,
	"spurs": true, "storm": true, "suns": true, "sycamores": true,
	"tar": true, "terrapins": true, "terriers": true, "thunder": true,
	"tide": true, "tigers": true, "timberwolves": true, "titans": true,
	"toreros": true, "trail": true, "tritons": true, "trojans": true,
	"vikings": true, "volunteers": true, "warriors": true, "wave": true,
	"waves": true, "wildcats": true, "wizards": true, "wolfpack": true,
	"wolverines": true, "yellow": true, "zips": true,
}

// aliases map a normalised nickname to its normalised canonical form.
// Keys and values are post-normalisation strings.
var aliases = map[string]string{
	"byu":         "brigham young",
	"gs":          "golden state",
	"la clippers": "los angeles clippers",
	"la lakers":   "los angeles lakers",
	"lsu":         "louisiana state",
	"nc state":    "north carolina state",
	"ny":          "new york",
	"okc":         "oklahoma city",
	"ole miss":    "mississippi",
	"penn":        "pennsylvania",
	"pitt":        "pittsburgh",
	"smu":         "southern methodist",
	"tcu":         "texas christian",
	"uconn":       "connecticut",
	"ucf":         "central florida",
	"umass":       "massachusetts",
	"unc":         "north carolina",
	"unlv":        "nevada las vegas",
	"usc":         "southern california",
	"utep":        "texas el paso",
	"uva":         "virginia",
	"vcu":         "virginia commonwealth",
}

var parentheticalRe = regexp.MustCompile(`\([^)]*\)`)

// Matcher joins team names across feeds: the live feed uses display names
// with mascots, odds and ratings sources use short school names.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a Matcher with the default similarity threshold.
func NewMatcher() *Matcher {
	return &Matcher{threshold: matchThreshold}
}

// Match reports whether two names refer to the same team: exact match,
// canonical-form match, or similarity above the threshold. Qualifier
// words must agree on both sides before a fuzzy match counts.
func (m *Matcher) Match(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(a, b) {
		return true
	}

	ca, cb := Canonical(a), Canonical(b)
	if ca == "" || cb == "" {
		return false
	}
	if ca == cb {
		return true
	}

	for _, q := range qualifierWords {
		if containsWord(ca, q) != containsWord(cb, q) {
			return false
		}
	}
	return similarityRatio(ca, cb) >= m.threshold
}

// Canonical normalises a team name and resolves aliases. Normalisation:
// lowercase, punctuation and parentheticals removed, filler words
// dropped, mascots stripped from the tail, "saint" folded to "st" and a
// trailing "st" folded to "state".
func Canonical(name string) string {
	n := normalizeName(name)
	if canon, ok := aliases[n]; ok {
		return canon
	}
	return n
}

func normalizeName(name string) string {
	s := strings.ToLower(name)
	s = parentheticalRe.ReplaceAllString(s, " ")
	s = strings.NewReplacer(".", "", "'", "", "-", " ", "&", " ").Replace(s)

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, w := range fields {
		if ignoreWords[w] {
			continue
		}
		if w == "saint" {
			w = "st"
		}
		kept = append(kept, w)
	}

	// Mascots hang off the tail; never strip the whole name away.
	for len(kept) > 1 && mascotWords[kept[len(kept)-1]] {
		kept = kept[:len(kept)-1]
	}

	// Trailing "st" abbreviates "state" ("Wichita St"), a leading one
	// abbreviates "saint" ("St Johns") and stays as is.
	if n := len(kept); n > 1 && kept[n-1] == "st" {
		kept[n-1] = "state"
	}
	return strings.Join(kept, " ")
}

func containsWord(s, word string) bool {
	for _, w := range strings.Fields(s) {
		if w == word {
			return true
		}
	}
	return false
}

// similarityRatio returns a 0-100 similarity based on edit distance over
// the longer name.
func similarityRatio(a, b string) float64 {
	if a == b {
		return 100
	}
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	longer := la
	if lb > longer {
		longer = lb
	}
	d := levenshtein(a, b)
	return (1 - float64(d)/float64(longer)) * 100
}

// levenshtein computes the edit distance with a two-row table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
