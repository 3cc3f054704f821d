package options

// AnalyzerKind names a built-in text analyzer.
type AnalyzerKind string

const (
	// Standard parses strings into terms at word boundaries per the Unicode
	// text segmentation algorithm, removes most punctuation and lowercases.
	Standard AnalyzerKind = "standard"
	// Simple splits on any non-letter character and lowercases.
	Simple     AnalyzerKind = "simple"
	Whitespace AnalyzerKind = "whitespace"
	// Stop is Simple plus stop word removal.
	Stop    AnalyzerKind = "stop"
	Keyword AnalyzerKind = "keyword"
	// Pattern splits strings into terms using regular expressions.
	Pattern     AnalyzerKind = "pattern"
	Language    AnalyzerKind = "language"
	Fingerprint AnalyzerKind = "fingerprint"
)

// IsValid reports whether a is one of the known analyzers.
func (a AnalyzerKind) IsValid() bool {
	switch a {
	case Standard, Simple, Whitespace, Stop, Keyword, Pattern, Language, Fingerprint:
		return true
	}
	return false
}

// OperatorKind joins the terms of an analyzed query.
type OperatorKind string

const (
	And OperatorKind = "and"
	Or  OperatorKind = "or"
)

// IsValid reports whether o is AND or OR.
func (o OperatorKind) IsValid() bool { return o == And || o == Or }

// ZeroTermsQueryKind decides what matches when the analyzer removes every term.
type ZeroTermsQueryKind string

const (
	ZeroTermsNone ZeroTermsQueryKind = "none"
	ZeroTermsAll  ZeroTermsQueryKind = "all"
)

// IsValid reports whether z is none or all.
func (z ZeroTermsQueryKind) IsValid() bool { return z == ZeroTermsNone || z == ZeroTermsAll }

// RewriteKind controls how multi-term queries are rewritten and scored.
type RewriteKind string

const (
	ConstantScore         RewriteKind = "constant_score"
	ScoringBoolean        RewriteKind = "scoring_boolean"
	ConstantScoreBoolean  RewriteKind = "constant_score_boolean"
	TopTermsN             RewriteKind = "top_terms_N"
	TopTermsBoostN        RewriteKind = "top_terms_boost_N"
	TopTermsBlendedFreqsN RewriteKind = "top_terms_blended_freqs_N"
)

// IsValid reports whether r is a known rewrite method.
func (r RewriteKind) IsValid() bool {
	switch r {
	case ConstantScore, ScoringBoolean, ConstantScoreBoolean,
		TopTermsN, TopTermsBoostN, TopTermsBlendedFreqsN:
		return true
	}
	return false
}

// QueryType selects how a multi-field query executes and scores.
type QueryType string

const (
	BestFields   QueryType = "best_fields"
	MostFields   QueryType = "most_fields"
	CrossFields  QueryType = "cross_fields"
	Phrase       QueryType = "phrase"
	PhrasePrefix QueryType = "phrase_prefix"
)

// IsValid reports whether t is a known query type.
func (t QueryType) IsValid() bool {
	switch t {
	case BestFields, MostFields, CrossFields, Phrase, PhrasePrefix:
		return true
	}
	return false
}
