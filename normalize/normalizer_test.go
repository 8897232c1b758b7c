package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexidex/core"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses spaces",
			input: "the  court   held",
			want:  "the court held",
		},
		{
			name:  "caps newline runs at two",
			input: "facts\n\n\n\n\nissues",
			want:  "facts\n\nissues",
		},
		{
			name:  "drops spaces around newlines",
			input: "facts   \n   issues",
			want:  "facts\nissues",
		},
		{
			name:  "strips zero width and bom",
			input: "peti​tion\ufeff filed",
			want:  "petition filed",
		},
		{
			name:  "section marker with number",
			input: "under §438 of the Code",
			want:  "under section 438 of the Code",
		},
		{
			name:  "paragraph marker",
			input: "see ¶ 12",
			want:  "see paragraph 12",
		},
		{
			name:  "ligatures and quotes",
			input: "the ﬁling was “justiﬁed”",
			want:  `the filing was "justified"`,
		},
		{
			name:  "script boundary spacing",
			input: "bailजमानत",
			want:  "bail जमानत",
		},
		{
			name:  "digits do not break script runs",
			input: "section 438 bail",
			want:  "section 438 bail",
		},
		{
			name:  "carriage returns",
			input: "facts\r\nissues\rheld",
			want:  "facts\nissues\nheld",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"the  court   held\n\n\n\nthat §438 applies",
		"अग्रिम जमानत anticipatory bail",
		"ﬁling ¶3 — “as noted”…",
		"plain text already normalized",
		"مع bail mixed direction",
		string([]byte{0xff, 0xfe, 'o', 'k'}), // malformed bytes stripped
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		require.Equal(t, once, twice, "Normalize must be idempotent for %q", input)
	}
}

func TestNormalize_MalformedBytes(t *testing.T) {
	input := "valid " + string([]byte{0xc3, 0x28}) + " tail"
	got := Normalize(input)
	assert.NotContains(t, got, "�")
	assert.Contains(t, got, "valid")
	assert.Contains(t, got, "tail")
}

func TestIsMixedScript(t *testing.T) {
	assert.False(t, IsMixedScript("anticipatory bail"))
	assert.False(t, IsMixedScript("section 438"))
	assert.True(t, IsMixedScript("bail जमानत"))
	assert.True(t, IsMixedScript("bail وكفالة"))
	assert.False(t, IsMixedScript("अग्रिम जमानत"))
	assert.False(t, IsMixedScript("12345"))
}

func TestSplitByScript(t *testing.T) {
	segments := SplitByScript("anticipatory bail अग्रिम जमानत under section 438")
	require.Len(t, segments, 3)
	assert.Equal(t, "anticipatory bail", segments[0].Text)
	assert.Equal(t, core.ScriptLatin, segments[0].Script)
	assert.Equal(t, "अग्रिम जमानत", segments[1].Text)
	assert.Equal(t, core.ScriptDevanagari, segments[1].Script)
	assert.Equal(t, "under section 438", segments[2].Text)
	assert.Equal(t, core.ScriptLatin, segments[2].Script)
}

func TestSplitByScript_SingleScript(t *testing.T) {
	segments := SplitByScript("plain query")
	require.Len(t, segments, 1)
	assert.Equal(t, "plain query", segments[0].Text)

	assert.Nil(t, SplitByScript("   "))
	assert.Nil(t, SplitByScript(""))
}

func TestScriptFlags(t *testing.T) {
	flags := ScriptFlags("bail 438 जमानत")
	assert.True(t, flags&core.ScriptLatin != 0)
	assert.True(t, flags&core.ScriptDevanagari != 0)
	assert.True(t, flags&core.ScriptDigit != 0)
	assert.True(t, flags.Mixed())
}
