package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAllowed = []Name{Field, QueryText, Boost, Fuzziness, MinimumShouldMatch, TieBreaker, TimeZone, Analyzer, Filter, Size, Slop}

func TestNewSet_ThreeStates(t *testing.T) {
	s, err := NewSet("match", testAllowed,
		WithField("title"),
		Null(Boost),
		WithAnalyzer(Standard),
	)
	require.NoError(t, err)

	assert.True(t, s.Has(Field))
	assert.False(t, s.Has(Boost))
	assert.True(t, s.IsNull(Boost))
	assert.False(t, s.Has(Fuzziness))
	assert.False(t, s.IsNull(Fuzziness))

	assert.Equal(t, map[string]any{"field": "title", "analyzer": "standard"}, s.Dict())
	assert.Equal(t, map[string]any{"analyzer": "standard"}, s.Dict(Field))
	assert.Equal(t, []Name{Analyzer, Field}, s.Names())
}

func TestNewSet_LaterOptionWins(t *testing.T) {
	s, err := NewSet("match", testAllowed, WithBoost(2), Null(Boost))
	require.NoError(t, err)
	assert.True(t, s.IsNull(Boost))

	s, err = NewSet("match", testAllowed, Null(Boost), WithBoost(3))
	require.NoError(t, err)
	v, ok := Get[float64](s, Boost)
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
}

func TestNewSet_RejectsUnsupportedOption(t *testing.T) {
	_, err := NewSet("term", []Name{Field, QueryText}, WithBoost(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "term", verr.Variant)
	assert.Equal(t, Boost, verr.Field)
	assert.Equal(t, "term: boost: option is not supported", verr.Error())
}

func TestNewSet_Append(t *testing.T) {
	s, err := NewSet("bool", testAllowed,
		Append(Filter, "a", "b"),
		Append(Filter, "c"),
	)
	require.NoError(t, err)
	v, ok := Get[[]string](s, Filter)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, v)

	_, err = NewSet("bool", testAllowed, Append(Filter, "a"), Append(Filter, 1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRequire(t *testing.T) {
	s, err := NewSet("match", testAllowed, WithField("title"))
	require.NoError(t, err)

	f, err := Require[string](s, "match", Field)
	require.NoError(t, err)
	assert.Equal(t, "title", f)

	_, err = Require[string](s, "match", QueryText)
	assert.EqualError(t, err, "match: query: is required")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConstructorDomains(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		allowed []Name
		wantErr bool
		want    any
	}{
		{name: "negative size", opt: WithSize(-1), wantErr: true},
		{name: "zero size", opt: WithSize(0), want: 0},
		{name: "negative slop", opt: WithSlop(-2), wantErr: true},
		{name: "fuzziness edits", opt: WithFuzziness(2), want: 2},
		{name: "fuzziness auto", opt: WithFuzzinessAuto(), want: "AUTO"},
		{name: "negative fuzziness", opt: WithFuzziness(-1), wantErr: true},
		{name: "tie breaker in range", opt: WithTieBreaker(0.3), want: 0.3},
		{name: "tie breaker above one", opt: WithTieBreaker(1.5), wantErr: true},
		{name: "percentage", opt: WithMinimumShouldMatchPercent("75%"), want: "75%"},
		{name: "negative percentage", opt: WithMinimumShouldMatchPercent("-25%"), want: "-25%"},
		{name: "not a percentage", opt: WithMinimumShouldMatchPercent("75"), wantErr: true},
		{name: "integer minimum should match", opt: WithMinimumShouldMatch(2), want: 2},
		{name: "offset time zone", opt: WithTimeZone("-08:00"), want: "-08:00"},
		{name: "iana time zone", opt: WithTimeZone("UTC"), want: "UTC"},
		{name: "bad time zone", opt: WithTimeZone("Mars/Olympus"), wantErr: true},
		{name: "unknown analyzer", opt: WithAnalyzer("klingon"), wantErr: true},
		{name: "empty field", opt: WithField(""), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSet("test", testAllowed, tt.opt)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			v, ok := s.Lookup(tt.opt.Name())
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestWithFields_CopiesInput(t *testing.T) {
	in := []string{"title^4", "description"}
	s, err := NewSet("multi_match", []Name{Fields}, WithFields(in...))
	require.NoError(t, err)
	in[0] = "mutated"

	v, ok := Get[[]string](s, Fields)
	require.True(t, ok)
	assert.Equal(t, []string{"title^4", "description"}, v)
}

func TestNewSet_ChecksSize(t *testing.T) {
	for _, opt := range []Option{Value(Size, -5), Value(Size, "10"), Value(Size, 2.5)} {
		_, err := NewSet("match", testAllowed, opt)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, Size, verr.Field)
	}

	s, err := NewSet("match", testAllowed, Value(Size, 0))
	require.NoError(t, err)
	n, ok := Get[int](s, Size)
	assert.True(t, ok)
	assert.Equal(t, 0, n)
}

func TestNewFixedSet(t *testing.T) {
	fixed := []Option{WithField("title"), Value(QueryText, "wind")}

	s, err := NewFixedSet("match", testAllowed, fixed, WithBoost(2))
	require.NoError(t, err)
	f, _ := Get[string](s, Field)
	assert.Equal(t, "title", f)

	for _, opt := range []Option{WithField("body"), Null(QueryText)} {
		_, err := NewFixedSet("match", testAllowed, fixed, opt)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, opt.Name(), verr.Field)
	}
	assert.Len(t, fixed, 2)
}

func TestEnums(t *testing.T) {
	assert.True(t, Keyword.IsValid())
	assert.True(t, And.IsValid())
	assert.False(t, OperatorKind("xor").IsValid())
	assert.True(t, ZeroTermsAll.IsValid())
	assert.True(t, TopTermsBoostN.IsValid())
	assert.True(t, PhrasePrefix.IsValid())
	assert.False(t, QueryType("fuzzy").IsValid())
}
