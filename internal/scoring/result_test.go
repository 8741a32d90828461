package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-scorer/internal/prompt"
)

func TestParseResultBasicDropsKeywordMatch(t *testing.T) {
	body := `{"overall":50,"content":50,"keywords":50,"format":50,"atsCompatibility":50,"strengths":[],"improvements":[],"keywordMatch":[{"keyword":"Go","found":true}],"summary":"ok"}`
	res, err := ParseResult([]byte(body), prompt.ModeBasic)
	require.NoError(t, err)
	assert.Nil(t, res.KeywordMatch)
}

func TestParseResultRejections(t *testing.T) {
	cases := map[string]string{
		"missing score":     `{"overall":50,"content":50,"keywords":50,"format":50,"strengths":[],"improvements":[],"summary":"ok"}`,
		"negative score":    `{"overall":-1,"content":50,"keywords":50,"format":50,"atsCompatibility":50,"strengths":[],"improvements":[],"summary":"ok"}`,
		"blank summary":     `{"overall":50,"content":50,"keywords":50,"format":50,"atsCompatibility":50,"strengths":[],"improvements":[],"summary":"  "}`,
		"missing lists":     `{"overall":50,"content":50,"keywords":50,"format":50,"atsCompatibility":50,"summary":"ok"}`,
		"not json":          `the resume is great`,
		"trailing garbage":  `{"overall":50} {"x":1}`,
		"keyword no name":   `{"overall":50,"content":50,"keywords":50,"format":50,"atsCompatibility":50,"strengths":[],"improvements":[],"keywordMatch":[{"found":true}],"summary":"ok"}`,
		"string for number": `{"overall":"50","content":50,"keywords":50,"format":50,"atsCompatibility":50,"strengths":[],"improvements":[],"summary":"ok"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResult([]byte(body), prompt.ModeDetailed)
			assert.ErrorIs(t, err, ErrInvalidResult)
		})
	}
}

func TestParseResultAcceptsFencedOutput(t *testing.T) {
	res, err := ParseResult([]byte("```json\n"+validBasic+"\n```"), prompt.ModeBasic)
	require.NoError(t, err)
	assert.Equal(t, 80.0, res.Format)
}

func TestValidate(t *testing.T) {
	ok := Result{Scores: Scores{Overall: 0, Content: 100, Keywords: 50, Format: 50, ATSCompatibility: 50}, Summary: "x"}
	assert.NoError(t, Validate(ok))

	bad := ok
	bad.ATSCompatibility = 100.5
	assert.ErrorIs(t, Validate(bad), ErrInvalidResult)

	bad = ok
	bad.Summary = ""
	assert.ErrorIs(t, Validate(bad), ErrInvalidResult)
}

func TestParseScores(t *testing.T) {
	s, err := ParseScores([]byte(`{"overall":81,"content":80,"keywords":79,"format":78,"atsCompatibility":77}`))
	require.NoError(t, err)
	assert.Equal(t, Scores{Overall: 81, Content: 80, Keywords: 79, Format: 78, ATSCompatibility: 77}, s)

	_, err = ParseScores([]byte(`{"overall":81}`))
	assert.ErrorIs(t, err, ErrInvalidResult)
}
