package service

import (
	"regexp"
	"strings"
	"unicode"
)

// Content analysis increments. Signals are additive; the detector fires at
// spamThreshold.
const (
	capsIncrement        = 0.7
	punctuationIncrement = 0.3
	repeatIncrement      = 0.3
	keywordIncrement     = 0.5
	emojiIncrement       = 0.4

	capsRatioThreshold = 0.5
	capsMinLength      = 20
	punctuationMinRuns = 2
	repeatedRunLength  = 4
	maxAllowedEmoji    = 10

	spamThreshold = 0.7
	maxConfidence = 0.99
)

// Pattern matching weights.
const (
	classicSpamWeight   = 0.75
	modernScamWeight    = 0.8
	suspiciousTLDWeight = 0.7
	shortenerWeight     = 0.75

	urlBonusPerExtra   = 0.4
	urlBonusFreeCount  = 2
	urlBonusMaxExtra   = 3
	leetCharRatio      = 0.05
	leetCharMinCount   = 3
	leetCharScore      = 0.3
	leetMultiHitScore  = 0.7
	leetSingleHitScore = 0.4

	mixedScriptMinLatin  = 5
	mixedScriptLowRatio  = 0.1
	mixedScriptHighRatio = 0.9
	mixedScriptScore     = 0.6
	invisibleMinCount    = 2
	invisibleScore       = 0.5
)

var (
	excessivePunctuationRe = regexp.MustCompile(`[!?]{2,}`)

	suspiciousKeywordRe = regexp.MustCompile(`(?i)(bit\.ly|tinyurl|goo\.gl|click\s+here|free\s+download|limited\s+offer)`)

	emojiRe = regexp.MustCompile(`[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}\x{1F900}-\x{1F9FF}\x{1FA70}-\x{1FAFF}\x{2600}-\x{26FF}\x{2700}-\x{27BF}]`)

	urlRe = regexp.MustCompile(`(?i)(https?://[^\s]+|www\.[^\s]+)`)
)

// patternBucket is a named group of regexes that contributes Weight once when any member matches.
type patternBucket struct {
	Name     string
	Weight   float64
	Patterns []*regexp.Regexp
}

func (b patternBucket) matches(s string) bool {
	for _, re := range b.Patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

var patternBuckets = []patternBucket{
	{
		Name:   "classic spam phrases",
		Weight: classicSpamWeight,
		Patterns: mustCompileAll(
			`(?i)\bclick\s+here\b`,
			`(?i)\bbuy\s+now\b`,
			`(?i)\border\s+now\b`,
			`(?i)\bact\s+now\b`,
			`(?i)\blimited\s+time\s+offer\b`,
			`(?i)\b100%\s+free\b`,
			`(?i)\b(?:online\s+)?pharmacy\b`,
			`(?i)\b(?:viagra|cialis)\b`,
			`(?i)\b(?:online\s+)?casino\b`,
			`(?i)\bonline\s+poker\b`,
			`(?i)\bwork\s+from\s+home\b`,
			`(?i)\bmake\s+money\s+(?:fast|online|now)\b`,
			`(?i)\bget\s+rich\s+quick\b`,
			`(?i)\b(?:mlm|multi[-\s]?level\s+marketing)\b`,
		),
	},
	{
		Name:   "scam phrases",
		Weight: modernScamWeight,
		Patterns: mustCompileAll(
			`(?i)\bairdrop\b`,
			`(?i)\bconnect\s+(?:your\s+)?wallet\b`,
			`(?i)\bwallet\s+(?:address|verification|validation)\b`,
			`(?i)\bseed\s+phrase\b`,
			`(?i)\bdm\s+me\b`,
			`(?i)\b(?:message|text|contact)\s+me\s+on\s+(?:telegram|whatsapp|discord)\b`,
			`(?i)\bguaranteed\s+(?:returns?|profits?|income)\b`,
			`(?i)\bdouble\s+your\s+(?:money|crypto|bitcoin|investment)\b`,
			`(?i)\bclaim\s+your\s+(?:tokens?|rewards?|prize)\b`,
			`(?i)\bcrypto\s+giveaway\b`,
		),
	},
	{
		Name:   "suspicious domains",
		Weight: suspiciousTLDWeight,
		Patterns: mustCompileAll(
			`(?i)\b[a-z0-9-]+\.(?:tk|ml|ga|cf|gq|xyz|top|click|loan|work|buzz|icu|cam|rest)\b`,
		),
	},
	{
		Name:   "url shorteners",
		Weight: shortenerWeight,
		Patterns: mustCompileAll(
			`(?i)\b(?:bit\.ly|tinyurl\.com|goo\.gl|t\.co|ow\.ly|is\.gd|buff\.ly|adf\.ly|cutt\.ly|rebrand\.ly|shorturl\.at|tiny\.cc)\b`,
		),
	},
}

// leetWord is an obfuscation-prone word. Unless plain is set, a match only
// counts when it contains at least one substituted character, so "Win 11"
// or "cash" in ordinary text do not score.
type leetWord struct {
	re    *regexp.Regexp
	plain bool
}

func (w leetWord) matches(s string) bool {
	if w.plain {
		return w.re.MatchString(s)
	}
	for _, m := range w.re.FindAllString(s, -1) {
		if strings.ContainsFunc(m, isSubstitution) {
			return true
		}
	}
	return false
}

var leetWords = []leetWord{
	{re: regexp.MustCompile(`(?i)\bfr[e3]{2}\b`), plain: true},
	{re: regexp.MustCompile(`(?i)\bw[i1!]n(?:n[e3]r)?s?\b`)},
	{re: regexp.MustCompile(`(?i)\bc[a4@][s$5]h\b`)},
	{re: regexp.MustCompile(`(?i)\bb[i1!]tc[o0][i1!]n\b`)},
}

const leetSubstitutionChars = "@4$!"

func isSubstitution(r rune) bool {
	return !unicode.IsLetter(r)
}

func mustCompileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// AnalyzeContent scores formatting signals (shouting, punctuation, repeats,
// suspicious keywords, emoji floods) and returns the summed score with the
// names of the triggered signals.
func AnalyzeContent(content string) (float64, []string) {
	var score float64
	var reasons []string

	runes := []rune(content)
	if len(runes) > capsMinLength {
		upper := 0
		for _, r := range runes {
			if unicode.IsUpper(r) {
				upper++
			}
		}
		if float64(upper)/float64(len(runes)) > capsRatioThreshold {
			score += capsIncrement
			reasons = append(reasons, "excessive capitals")
		}
	}

	if len(excessivePunctuationRe.FindAllStringIndex(content, -1)) >= punctuationMinRuns {
		score += punctuationIncrement
		reasons = append(reasons, "excessive punctuation")
	}

	if hasRepeatedRun(runes, repeatedRunLength) {
		score += repeatIncrement
		reasons = append(reasons, "repeated characters")
	}

	if suspiciousKeywordRe.MatchString(content) {
		score += keywordIncrement
		reasons = append(reasons, "suspicious links")
	}

	if len(emojiRe.FindAllStringIndex(content, -1)) > maxAllowedEmoji {
		score += emojiIncrement
		reasons = append(reasons, "excessive emojis")
	}

	return score, reasons
}

// MatchPatterns scores known spam vocabulary, scam phrasing, suspicious links
// and obfuscation, returning the summed score with the triggered bucket names.
func MatchPatterns(content string) (float64, []string) {
	var score float64
	var reasons []string

	for _, bucket := range patternBuckets {
		if bucket.matches(content) {
			score += bucket.Weight
			reasons = append(reasons, bucket.Name)
		}
	}

	if leet := LeetspeakScore(content); leet > 0 {
		score += leet
		reasons = append(reasons, "leetspeak obfuscation")
	}

	if obf := UnicodeObfuscationScore(content); obf > 0 {
		score += obf
		reasons = append(reasons, "unicode obfuscation")
	}

	if urls := len(urlRe.FindAllStringIndex(content, -1)); urls > urlBonusFreeCount {
		score += urlBonusPerExtra * float64(min(urls-urlBonusFreeCount, urlBonusMaxExtra))
		reasons = append(reasons, "excessive urls")
	}

	return score, reasons
}

// LeetspeakScore returns a 0–1 score for character-substitution obfuscation.
func LeetspeakScore(content string) float64 {
	var score float64

	var subs, nonSpace int
	for _, r := range content {
		if unicode.IsSpace(r) {
			continue
		}
		nonSpace++
		if strings.ContainsRune(leetSubstitutionChars, r) {
			subs++
		}
	}
	if nonSpace > 0 && float64(subs)/float64(nonSpace) > leetCharRatio && subs >= leetCharMinCount {
		score += leetCharScore
	}

	hits := 0
	for _, w := range leetWords {
		if w.matches(content) {
			hits++
		}
	}
	switch {
	case hits >= 2:
		score += leetMultiHitScore
	case hits == 1:
		score += leetSingleHitScore
	}

	return min(score, 1.0)
}

// UnicodeObfuscationScore returns a 0–1 score for homoglyph script mixing and
// invisible formatting characters.
func UnicodeObfuscationScore(content string) float64 {
	var score float64

	var latin, foreign, invisible int
	for _, r := range content {
		switch {
		case unicode.Is(unicode.Cf, r):
			invisible++
		case !unicode.IsLetter(r):
		case unicode.Is(unicode.Latin, r):
			latin++
		case unicode.Is(unicode.Cyrillic, r) || unicode.Is(unicode.Greek, r):
			foreign++
		}
	}

	if latin > mixedScriptMinLatin && foreign > 0 {
		ratio := float64(foreign) / float64(latin+foreign)
		if ratio > mixedScriptLowRatio && ratio < mixedScriptHighRatio {
			score += mixedScriptScore
		}
	}

	if invisible > invisibleMinCount {
		score += invisibleScore
	}

	return min(score, 1.0)
}

// hasRepeatedRun reports whether any rune other than a newline occurs n or more times in a row.
func hasRepeatedRun(runes []rune, n int) bool {
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] && runes[i] != '\n' {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}
