package rules

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	sustainedRe  = regexp.MustCompile(`sustained hits\s*(\d+)?`)
	antiRe       = regexp.MustCompile(`anti-([a-z][a-z ]*?)\s*(\d)\+`)
	rapidFireRe  = regexp.MustCompile(`rapid fire\s*(\d+)?`)
	feelNoPainRe = regexp.MustCompile(`(?:feel no pain|fnp)\s*(\d)\+`)
	invulnRe     = regexp.MustCompile(`(\d)\+\s*invulnerable|invulnerable save(?: of)?\s*(\d)\+`)
	conversionRe = regexp.MustCompile(`conversion\s*(?:(\d)\+)?`)
)

// Parse turns free rule text (weapon special rules or ability descriptions)
// into the modifiers it grants. Results are cached per distinct text, so each
// text is parsed once per process.
func (r *Registry) Parse(text string) ModifierSet {
	if text == "" {
		return ModifierSet{}
	}
	if cached, ok := r.parsed.Load(text); ok {
		return cached.(ModifierSet)
	}
	m := parse(text)
	r.parsed.Store(text, m)
	return m
}

func parse(text string) ModifierSet {
	lower := strings.ToLower(text)
	var m ModifierSet

	m.LethalHits = strings.Contains(lower, "lethal hits")
	m.DevastatingWounds = strings.Contains(lower, "devastating wounds")
	m.Torrent = strings.Contains(lower, "torrent")
	m.TwinLinked = strings.Contains(lower, "twin-linked") || strings.Contains(lower, "twin linked")
	m.IgnoresCover = strings.Contains(lower, "ignores cover")
	m.Blast = strings.Contains(lower, "blast")

	if g := sustainedRe.FindStringSubmatch(lower); g != nil {
		m.SustainedHits = atoiOr(g[1], 1)
	}
	if g := rapidFireRe.FindStringSubmatch(lower); g != nil {
		m.RapidFire = atoiOr(g[1], 1)
	}
	if g := conversionRe.FindStringSubmatch(lower); g != nil {
		m.Conversion = atoiOr(g[1], 4)
	}
	for _, g := range antiRe.FindAllStringSubmatch(lower, -1) {
		m.Anti = mergeAnti(m.Anti, []AntiKeyword{{
			Keyword:   strings.TrimSpace(g[1]),
			Threshold: atoiOr(g[2], 6),
		}})
	}
	for _, g := range feelNoPainRe.FindAllStringSubmatch(lower, -1) {
		m.FeelNoPain = BestThreshold(m.FeelNoPain, atoiOr(g[1], 0))
	}
	for _, g := range invulnRe.FindAllStringSubmatch(lower, -1) {
		v := g[1]
		if v == "" {
			v = g[2]
		}
		m.Invulnerable = BestThreshold(m.Invulnerable, atoiOr(v, 0))
	}
	return m
}

// ParseAll merges the modifiers of several texts.
func (r *Registry) ParseAll(texts ...string) ModifierSet {
	var m ModifierSet
	for _, t := range texts {
		m = m.Merge(r.Parse(t))
	}
	return m
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
