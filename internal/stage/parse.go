package stage

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/uaip-labs/uaip/internal/domain"
)

// listSeparators split free-form enumerations. Users mix commas,
// semicolons, and newlines; all three are treated as delimiters.
//
//nolint:gochecknoglobals // Read-only compiled pattern
var listSeparators = regexp.MustCompile(`[,;\n]+`)

// scoredItem matches "name: 7", "name = 7", or "name 7" entries.
//
//nolint:gochecknoglobals // Read-only compiled pattern
var scoredItem = regexp.MustCompile(`^(.*?)[\s:=]+(\d+(?:\.\d+)?)$`)

// SplitList splits a free-form enumeration into trimmed, non-empty items.
func SplitList(s string) []string {
	var items []string
	for _, part := range listSeparators.Split(s, -1) {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseScores extracts "name: score" pairs from a free-form answer.
// Names are lowercased with spaces collapsed to underscores so they can
// match dimension identifiers. Unscored fragments are skipped.
func ParseScores(s string) map[string]float64 {
	scores := make(map[string]float64)
	for _, item := range SplitList(s) {
		m := scoredItem.FindStringSubmatch(item)
		if m == nil {
			continue
		}
		name := normalizeKey(m[1])
		if name == "" {
			continue
		}
		score, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		scores[name] = score
	}
	return scores
}

// ParseRisks extracts residual risks with severity scores from a
// free-form answer. Fragments without a trailing score are kept with a
// zero score rather than dropped, so a named risk is never lost.
func ParseRisks(s string) []domain.ResidualRisk {
	var risks []domain.ResidualRisk
	for _, item := range SplitList(s) {
		if none(item) {
			continue
		}
		if m := scoredItem.FindStringSubmatch(item); m != nil {
			score, err := strconv.Atoi(strings.SplitN(m[2], ".", 2)[0])
			if err == nil {
				risks = append(risks, domain.ResidualRisk{
					Description: strings.TrimSpace(m[1]),
					Score:       score,
				})
				continue
			}
		}
		risks = append(risks, domain.ResidualRisk{Description: item})
	}
	return risks
}

// none reports whether the answer fragment means "no risks".
func none(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "n/a", "na", "no risks", "nothing":
		return true
	}
	return false
}

// normalizeKey lowercases a label and collapses separators to
// underscores, matching dimension and principle identifiers.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ".-")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '\t'
	})
	return strings.Join(fields, "_")
}

// archetypeRules map answer keywords to ML archetypes, checked in
// order. The first matching rule wins; classification is the fallback
// for anything that sounds like a categorical decision.
//
//nolint:gochecknoglobals // Read-only lookup table
var archetypeRules = []struct {
	archetype string
	pattern   *regexp.Regexp
}{
	{"recommendation", regexp.MustCompile(`(?i)\brecommend|\bsuggest(?:ion)?s?\b|next best`)},
	{"ranking", regexp.MustCompile(`(?i)\brank(?:ing|ed)?\b|\border(?:ing)?\s+by\b|prioriti[sz]e`)},
	{"anomaly_detection", regexp.MustCompile(`(?i)anomal|outlier|unusual|abnormal`)},
	{"clustering", regexp.MustCompile(`(?i)\bcluster|\bsegment|\bgroup(?:ing)?\b`)},
	{"forecasting", regexp.MustCompile(`(?i)forecast|\btrend\b|next (?:month|quarter|year|week)|future demand`)},
	{"generation", regexp.MustCompile(`(?i)\bgenerat|\bdraft\b|\bsummar|\bwrite\b|\bcompose\b`)},
	{"regression", regexp.MustCompile(`(?i)how (?:much|many)|\bamount\b|\bprice\b|\bvalue of\b|numeric|continuous|\bestimate\b`)},
	{"classification", regexp.MustCompile(`(?i)\bwhether\b|yes.?or.?no|\bcategor|\bclass(?:ify|ification)?\b|\blabel\b|probabilit|likelihood|\bchurn\b|\bfraud\b|\bdetect\b|\bflag\b`)},
}

// InferArchetype guesses the ML archetype from the described target
// output (with the business objective as secondary signal).
func InferArchetype(targetOutput, objective string) string {
	for _, rule := range archetypeRules {
		if rule.pattern.MatchString(targetOutput) {
			return rule.archetype
		}
	}
	for _, rule := range archetypeRules {
		if rule.pattern.MatchString(objective) {
			return rule.archetype
		}
	}
	return "classification"
}
