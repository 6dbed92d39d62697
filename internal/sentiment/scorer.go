// Package sentiment scores free text on a [-1, 1] polarity scale with a
// fixed financial-news lexicon. Scoring is deterministic and does no I/O.
package sentiment

import (
	"math"
	"strings"
	"unicode"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

// polarity weights, lowercase.
var lexicon = map[string]float64{
	// favourable
	"bullish": 0.7, "rally": 0.6, "rallies": 0.6, "surge": 0.7, "surges": 0.7, "soar": 0.7, "soars": 0.7,
	"upbeat": 0.5, "positive": 0.4, "growth": 0.4, "grow": 0.3, "grows": 0.3, "upgrade": 0.6,
	"outperform": 0.6, "strong": 0.4, "stronger": 0.4, "recovery": 0.5, "breakout": 0.6,
	"record": 0.3, "beat": 0.5, "beats": 0.5, "exceeds": 0.5, "expansion": 0.4, "profit": 0.3,
	"profitable": 0.4, "gain": 0.4, "gains": 0.4, "win": 0.4, "wins": 0.4, "success": 0.5,
	"successful": 0.5, "innovative": 0.5, "innovation": 0.4, "breakthrough": 0.6, "leading": 0.3,
	"best": 0.8, "better": 0.5, "good": 0.7, "great": 0.8, "excellent": 1.0, "impressive": 0.8,
	"boost": 0.5, "boosts": 0.5, "optimistic": 0.6, "robust": 0.5, "powerful": 0.4, "launch": 0.2,
	"launches": 0.2, "partnership": 0.3, "demand": 0.2, "advance": 0.3, "advances": 0.3,
	"new": 0.1, "faster": 0.3, "efficient": 0.4, "love": 0.5, "happy": 0.8, "opportunity": 0.4,
	// unfavourable
	"bearish": -0.7, "crash": -0.8, "plunge": -0.7, "plunges": -0.7, "slump": -0.6, "slumps": -0.6,
	"negative": -0.4, "downgrade": -0.6, "underperform": -0.6, "weak": -0.4, "weaker": -0.4,
	"decline": -0.5, "declines": -0.5, "loss": -0.4, "losses": -0.4, "selloff": -0.7, "fall": -0.4,
	"falls": -0.4, "drop": -0.4, "drops": -0.4, "correction": -0.5, "fraud": -0.8, "scam": -0.8,
	"investigation": -0.5, "probe": -0.4, "cut": -0.3, "cuts": -0.3, "miss": -0.5, "misses": -0.5,
	"warning": -0.5, "warns": -0.5, "concern": -0.3, "concerns": -0.3, "risk": -0.3, "risks": -0.3,
	"fear": -0.6, "fears": -0.6, "bad": -0.7, "worse": -0.6, "worst": -1.0, "poor": -0.4,
	"lawsuit": -0.5, "ban": -0.5, "bans": -0.5, "restriction": -0.4, "restrictions": -0.4,
	"shortage": -0.4, "volatile": -0.3, "volatility": -0.3, "uncertain": -0.4, "uncertainty": -0.4,
	"tumble": -0.6, "tumbles": -0.6, "sink": -0.5, "sinks": -0.5, "layoffs": -0.5, "delay": -0.3,
	"delays": -0.3, "problem": -0.4, "problems": -0.4, "fail": -0.5, "fails": -0.5, "failure": -0.5,
}

var negations = map[string]bool{
	"not": true, "never": true, "no": true, "n't": true, "nor": true, "without": true,
}

var intensifiers = map[string]float64{
	"very": 1.3, "extremely": 1.5, "highly": 1.3, "really": 1.2, "most": 1.2,
	"incredibly": 1.5, "hugely": 1.4, "sharply": 1.3, "significantly": 1.3, "slightly": 0.5,
	"somewhat": 0.7,
}

// negationFactor is applied to the polarity of a word preceded by a negation.
const negationFactor = -0.5

// Scorer computes polarity from word weights. The zero value is not usable;
// call New.
type Scorer struct {
	lexicon map[string]float64
}

// New returns a scorer using the built-in lexicon.
func New() *Scorer {
	return &Scorer{lexicon: lexicon}
}

// NewWithLexicon returns a scorer with a caller-supplied lexicon.
func NewWithLexicon(words map[string]float64) *Scorer {
	lx := make(map[string]float64, len(words))
	for w, p := range words {
		lx[strings.ToLower(w)] = p
	}
	return &Scorer{lexicon: lx}
}

// Score returns the mean polarity of the lexicon words found in text and
// the label derived from it. Text without any known word scores 0.
func (s *Scorer) Score(text string) (float64, contracts.Label) {
	polarity := s.Polarity(text)
	return polarity, contracts.LabelFor(polarity)
}

// Polarity returns the score alone.
func (s *Scorer) Polarity(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var sum float64
	var hits int
	negated := false
	boost := 1.0

	for _, tok := range tokens {
		if negations[tok] {
			negated = true
			continue
		}
		if f, ok := intensifiers[tok]; ok {
			boost *= f
			continue
		}

		p, ok := s.lexicon[tok]
		if !ok {
			// a negation or intensifier only reaches the next word
			negated = false
			boost = 1.0
			continue
		}

		p *= boost
		if negated {
			p *= negationFactor
		}
		sum += clamp(p)
		hits++
		negated = false
		boost = 1.0
	}

	if hits == 0 {
		return 0
	}
	return clamp(sum / float64(hits))
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// tokenize lowercases text and splits it into words. A trailing "n't" is
// split off as its own token so "isn't good" negates "good".
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'-")
		if f == "" {
			continue
		}
		if stem, ok := strings.CutSuffix(f, "n't"); ok {
			if stem != "" {
				tokens = append(tokens, stem)
			}
			tokens = append(tokens, "n't")
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
