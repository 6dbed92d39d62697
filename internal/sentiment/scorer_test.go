package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/newsalpha/backend/internal/contracts"
)

func TestScore_Empty(t *testing.T) {
	s := New()

	for _, text := range []string{"", "   ", "!!! ...", "NVIDIA announces GTC keynote date"} {
		score, label := s.Score(text)
		assert.Zero(t, score, text)
		assert.Equal(t, contracts.LabelNeutral, label, text)
	}
}

func TestScore_Direction(t *testing.T) {
	s := New()

	tests := []struct {
		name string
		text string
		want contracts.Label
	}{
		{"favourable", "Nvidia shares surge after record profit", contracts.LabelPositive},
		{"unfavourable", "Chip stocks plunge on export ban fears", contracts.LabelNegative},
		{"negated good", "Results were not good", contracts.LabelNegative},
		{"contraction", "The quarter isn't bad", contracts.LabelPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, label := s.Score(tt.text)
			assert.Equal(t, tt.want, label)
			assert.Equal(t, contracts.LabelFor(score), label)
		})
	}
}

func TestScore_Intensifier(t *testing.T) {
	s := New()

	plain := s.Polarity("good results")
	boosted := s.Polarity("very good results")
	assert.Greater(t, boosted, plain)

	// intensifier does not carry past an unknown word
	assert.Equal(t, plain, s.Polarity("very quarterly good results"))
}

func TestScore_Bounded(t *testing.T) {
	s := New()

	score := s.Polarity("extremely incredibly excellent excellent best")
	assert.LessOrEqual(t, score, 1.0)
	assert.Greater(t, score, 0.9)

	score = s.Polarity("extremely incredibly worst")
	assert.GreaterOrEqual(t, score, -1.0)
}

func TestNewWithLexicon(t *testing.T) {
	s := NewWithLexicon(map[string]float64{"Moon": 1})

	score, label := s.Score("to the moon")
	assert.Equal(t, 1.0, score)
	assert.Equal(t, contracts.LabelPositive, label)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"it", "n't", "is", "n't", "well-known"}, tokenize("It n't, isn't well-known!"))
}
