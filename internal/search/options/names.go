package options

// Name is the wire key a field is serialized under.
type Name string

// Envelope and structural names. These never appear inside a variant's own
// option dictionary; the envelope places them.
const (
	Size    Name = "size"
	AggName Name = "name"
	Filter  Name = "filter"
	Aggs    Name = "aggs"
	Must    Name = "must"
	Should  Name = "should"
	MustNot Name = "must_not"
)

// Field and value names shared by query and aggregation variants.
const (
	Field     Name = "field"
	Fields    Name = "fields"
	QueryText Name = "query"
	Values    Name = "values"
)

// Option names. Each maps one-to-one to an engine request parameter.
const (
	AllowLeadingWildcard            Name = "allow_leading_wildcard"
	Analyzer                        Name = "analyzer"
	AnalyzeWildcard                 Name = "analyze_wildcard"
	AutoGenerateSynonymsPhraseQuery Name = "auto_generate_synonyms_phrase_query"
	Boost                           Name = "boost"
	DefaultField                    Name = "default_field"
	DefaultOperator                 Name = "default_operator"
	EnablePositionIncrements        Name = "enable_position_increments"
	Flags                           Name = "flags"
	Fuzziness                       Name = "fuzziness"
	FuzzyMaxExpansions              Name = "fuzzy_max_expansions"
	FuzzyPrefixLength               Name = "fuzzy_prefix_length"
	FuzzyTranspositions             Name = "fuzzy_transpositions"
	Lenient                         Name = "lenient"
	LowFreqOperator                 Name = "low_freq_operator"
	MaxDeterminizedStates           Name = "max_determinized_states"
	MaxExpansions                   Name = "max_expansions"
	MinimumShouldMatch              Name = "minimum_should_match"
	Operator                        Name = "operator"
	PhraseSlop                      Name = "phrase_slop"
	PrefixLength                    Name = "prefix_length"
	QuoteAnalyzer                   Name = "quote_analyzer"
	QuoteFieldSuffix                Name = "quote_field_suffix"
	Rewrite                         Name = "rewrite"
	Slop                            Name = "slop"
	TieBreaker                      Name = "tie_breaker"
	TimeZone                        Name = "time_zone"
	Type                            Name = "type"
	ZeroTermsQuery                  Name = "zero_terms_query"

	PrecisionThreshold Name = "precision_threshold"
	Sigma              Name = "sigma"
)
