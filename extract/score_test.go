package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreText_Empty(t *testing.T) {
	assert.Zero(t, ScoreText(""))
}

func TestScoreText_Range(t *testing.T) {
	samples := []string{
		"a",
		"!!!???",
		"The appellant was convicted under Section 302 of the Penal Code.",
		strings.Repeat("The court considered the submissions of both parties at length. ", 20),
	}
	for _, sample := range samples {
		score := ScoreText(sample)
		assert.GreaterOrEqual(t, score, 0.0, "sample %q", sample)
		assert.LessOrEqual(t, score, 1.0, "sample %q", sample)
	}
}

func TestScoreText_PrefersCleanProse(t *testing.T) {
	prose := strings.Repeat("The petitioner seeks anticipatory bail in connection with the first information report. ", 10)
	garbage := strings.Repeat("~!@# $%^& *()_ |\\<> ", 40)

	assert.Greater(t, ScoreText(prose), ScoreText(garbage))
}

func TestScoreText_LongerReadsHigher(t *testing.T) {
	sentence := "The court held that bail shall be granted subject to conditions. "
	short := sentence
	long := strings.Repeat(sentence, 15)

	assert.Greater(t, ScoreText(long), ScoreText(short))
}
