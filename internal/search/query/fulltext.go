package query

import (
	"github.com/ca-srg/osrequests/internal/search/envelope"
	"github.com/ca-srg/osrequests/internal/search/options"
)

// Match analyzes the query text and returns documents matching any of its
// terms.
type Match struct{ fieldKeyed }

var matchOptions = []options.Name{
	options.Analyzer,
	options.AutoGenerateSynonymsPhraseQuery,
	options.Boost,
	options.Fuzziness,
	options.FuzzyTranspositions,
	options.Lenient,
	options.MaxExpansions,
	options.MinimumShouldMatch,
	options.Operator,
	options.PrefixLength,
	options.ZeroTermsQuery,
}

func NewMatch(field, text string, opts ...options.Option) (*Match, error) {
	fk, err := newFieldKeyed("match", matchOptions, field, text, opts)
	if err != nil {
		return nil, err
	}
	return &Match{fk}, nil
}

func (q *Match) Body() (envelope.Body, error) { return envelope.Query(q) }

// MatchBoolPrefix uses every term but the last as a term query and the last
// one as a prefix query. Terms may match in any position: "quick brown f"
// matches "brown fox quick".
type MatchBoolPrefix struct{ fieldKeyed }

var matchBoolPrefixOptions = []options.Name{
	options.Analyzer,
	options.Fuzziness,
	options.FuzzyTranspositions,
	options.MaxExpansions,
	options.MinimumShouldMatch,
	options.Operator,
	options.PrefixLength,
}

func NewMatchBoolPrefix(field, text string, opts ...options.Option) (*MatchBoolPrefix, error) {
	fk, err := newFieldKeyed("match_bool_prefix", matchBoolPrefixOptions, field, text, opts)
	if err != nil {
		return nil, err
	}
	return &MatchBoolPrefix{fk}, nil
}

func (q *MatchBoolPrefix) Body() (envelope.Body, error) { return envelope.Query(q) }

// MatchPhrase matches the query text as a whole phrase. Slop relaxes how far
// apart the terms may be.
type MatchPhrase struct{ fieldKeyed }

var matchPhraseOptions = []options.Name{
	options.Analyzer,
	options.Slop,
	options.ZeroTermsQuery,
}

func NewMatchPhrase(field, text string, opts ...options.Option) (*MatchPhrase, error) {
	fk, err := newFieldKeyed("match_phrase", matchPhraseOptions, field, text, opts)
	if err != nil {
		return nil, err
	}
	return &MatchPhrase{fk}, nil
}

func (q *MatchPhrase) Body() (envelope.Body, error) { return envelope.Query(q) }

// MatchPhrasePrefix matches a phrase whose last term is treated as a prefix:
// "quick brown f" matches "quick brown fox" but not "the fox is quick and brown".
type MatchPhrasePrefix struct{ fieldKeyed }

var matchPhrasePrefixOptions = []options.Name{
	options.Analyzer,
	options.MaxExpansions,
	options.Slop,
}

func NewMatchPhrasePrefix(field, text string, opts ...options.Option) (*MatchPhrasePrefix, error) {
	fk, err := newFieldKeyed("match_phrase_prefix", matchPhrasePrefixOptions, field, text, opts)
	if err != nil {
		return nil, err
	}
	return &MatchPhrasePrefix{fk}, nil
}

func (q *MatchPhrasePrefix) Body() (envelope.Body, error) { return envelope.Query(q) }

// MultiMatch runs a match query across several fields.
type MultiMatch struct{ flat }

var multiMatchOptions = []options.Name{
	options.Analyzer,
	options.AutoGenerateSynonymsPhraseQuery,
	options.Boost,
	options.Fields,
	options.Fuzziness,
	options.FuzzyTranspositions,
	options.Lenient,
	options.MaxExpansions,
	options.MinimumShouldMatch,
	options.Operator,
	options.PrefixLength,
	options.Slop,
	options.TieBreaker,
	options.Type,
	options.ZeroTermsQuery,
}

// NewMultiMatch searches text in fields. Use options.WithFields to name them;
// without fields the engine falls back to the index default.
func NewMultiMatch(text string, opts ...options.Option) (*MultiMatch, error) {
	f, err := newFlat("multi_match", multiMatchOptions, text, opts)
	if err != nil {
		return nil, err
	}
	return &MultiMatch{f}, nil
}

func (q *MultiMatch) Body() (envelope.Body, error) { return envelope.Query(q) }

// QueryString parses the text with operators, e.g. "the wind AND (rises OR rising)".
// It is what the engine builds for _search?q=... requests.
type QueryString struct{ flat }

var queryStringOptions = []options.Name{
	options.AllowLeadingWildcard,
	options.Analyzer,
	options.AnalyzeWildcard,
	options.AutoGenerateSynonymsPhraseQuery,
	options.Boost,
	options.DefaultField,
	options.DefaultOperator,
	options.EnablePositionIncrements,
	options.Fields,
	options.Fuzziness,
	options.FuzzyMaxExpansions,
	options.FuzzyPrefixLength,
	options.FuzzyTranspositions,
	options.Lenient,
	options.MaxDeterminizedStates,
	options.MinimumShouldMatch,
	options.PhraseSlop,
	options.QuoteAnalyzer,
	options.QuoteFieldSuffix,
	options.Rewrite,
	options.TimeZone,
	options.Type,
}

func NewQueryString(text string, opts ...options.Option) (*QueryString, error) {
	f, err := newFlat("query_string", queryStringOptions, text, opts)
	if err != nil {
		return nil, err
	}
	return &QueryString{f}, nil
}

func (q *QueryString) Body() (envelope.Body, error) { return envelope.Query(q) }

// SimpleQueryString is a forgiving QueryString: invalid parts of the text are
// discarded instead of failing the search. Supported syntax is + | * "" () ~n -.
type SimpleQueryString struct{ flat }

var simpleQueryStringOptions = []options.Name{
	options.Analyzer,
	options.AnalyzeWildcard,
	options.AutoGenerateSynonymsPhraseQuery,
	options.DefaultOperator,
	options.Fields,
	options.Flags,
	options.FuzzyMaxExpansions,
	options.FuzzyPrefixLength,
	options.FuzzyTranspositions,
	options.Lenient,
	options.MinimumShouldMatch,
	options.QuoteFieldSuffix,
}

func NewSimpleQueryString(text string, opts ...options.Option) (*SimpleQueryString, error) {
	f, err := newFlat("simple_query_string", simpleQueryStringOptions, text, opts)
	if err != nil {
		return nil, err
	}
	return &SimpleQueryString{f}, nil
}

func (q *SimpleQueryString) Body() (envelope.Body, error) { return envelope.Query(q) }
