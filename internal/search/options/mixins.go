package options

import (
	"regexp"
	"time"
)

var (
	percentPattern  = regexp.MustCompile(`^-?\d+%$`)
	tzOffsetPattern = regexp.MustCompile(`^[+-](0\d|1[0-4]):[0-5]\d$`)
)

// WithSize sets the top-level result size. It is only read from the root node
// of a request.
func WithSize(n int) Option { return nonNegative(Size, n) }

// WithField sets the single document field a node targets.
func WithField(field string) Option {
	if field == "" {
		return invalid(Field, "must not be empty")
	}
	return Value(Field, field)
}

// WithFields sets the fields to search or aggregate, e.g. ["title^4", "description"].
// The ^ suffix boosts a field.
func WithFields(fields ...string) Option {
	if len(fields) == 0 {
		return invalid(Fields, "must list at least one field")
	}
	for _, f := range fields {
		if f == "" {
			return invalid(Fields, "must not contain empty names")
		}
	}
	return Value(Fields, append([]string(nil), fields...))
}

// WithAnalyzer selects the analyzer used to split the query text.
func WithAnalyzer(a AnalyzerKind) Option {
	if !a.IsValid() {
		return invalid(Analyzer, "unknown analyzer %q", a)
	}
	return Value(Analyzer, string(a))
}

// WithAllowLeadingWildcard allows * and ? as the first character of a term.
// Engine default: true.
func WithAllowLeadingWildcard(b bool) Option { return Value(AllowLeadingWildcard, b) }

// WithAnalyzeWildcard asks the engine to analyze wildcard terms. Engine default: false.
func WithAnalyzeWildcard(b bool) Option { return Value(AnalyzeWildcard, b) }

// WithAutoGenerateSynonymsPhraseQuery turns multi-term synonyms into phrase
// queries. Engine default: true.
func WithAutoGenerateSynonymsPhraseQuery(b bool) Option {
	return Value(AutoGenerateSynonymsPhraseQuery, b)
}

// WithBoost weighs the clause by the given multiplier. Engine default: 1.0.
func WithBoost(f float64) Option {
	if f < 0 {
		return invalid(Boost, "must be non-negative, got %g", f)
	}
	return Value(Boost, f)
}

// WithDefaultField sets the field searched when the query string names none.
func WithDefaultField(field string) Option {
	if field == "" {
		return invalid(DefaultField, "must not be empty")
	}
	return Value(DefaultField, field)
}

// WithDefaultOperator sets the operator used between terms of a query string.
func WithDefaultOperator(o OperatorKind) Option {
	if !o.IsValid() {
		return invalid(DefaultOperator, "unknown operator %q", o)
	}
	return Value(DefaultOperator, string(o))
}

// WithEnablePositionIncrements makes queries aware of position gaps left by
// removed stop words. Engine default: true.
func WithEnablePositionIncrements(b bool) Option { return Value(EnablePositionIncrements, b) }

// WithFlags sets the enabled simple_query_string operators, e.g. "AND|OR|PREFIX".
func WithFlags(flags string) Option {
	if flags == "" {
		return invalid(Flags, "must not be empty")
	}
	return Value(Flags, flags)
}

// WithFuzziness sets the number of character edits allowed when matching a term.
func WithFuzziness(edits int) Option { return nonNegative(Fuzziness, edits) }

// WithFuzzinessAuto lets the engine pick the edit distance from term length.
func WithFuzzinessAuto() Option { return Value(Fuzziness, "AUTO") }

// WithFuzzyMaxExpansions caps the number of terms a fuzzy term expands to.
func WithFuzzyMaxExpansions(n int) Option { return positive(FuzzyMaxExpansions, n) }

// WithFuzzyPrefixLength sets how many leading characters fuzziness ignores.
func WithFuzzyPrefixLength(n int) Option { return nonNegative(FuzzyPrefixLength, n) }

// WithFuzzyTranspositions counts a swap of adjacent characters as one edit
// (wind -> wnid is 1). Engine default: true.
func WithFuzzyTranspositions(b bool) Option { return Value(FuzzyTranspositions, b) }

// WithLenient ignores data type mismatches between query and field. Engine default: false.
func WithLenient(b bool) Option { return Value(Lenient, b) }

// WithLowFreqOperator sets the operator for low-frequency terms. Engine default: or.
func WithLowFreqOperator(o OperatorKind) Option {
	if !o.IsValid() {
		return invalid(LowFreqOperator, "unknown operator %q", o)
	}
	return Value(LowFreqOperator, string(o))
}

// WithMaxExpansions caps the number of terms the query can expand to. Engine default: 50.
func WithMaxExpansions(n int) Option { return positive(MaxExpansions, n) }

// WithMaxDeterminizedStates caps regex complexity. Engine default: 10000.
func WithMaxDeterminizedStates(n int) Option { return positive(MaxDeterminizedStates, n) }

// WithMinimumShouldMatch sets how many optional terms or clauses must match.
// Negative values mean "all but n".
func WithMinimumShouldMatch(n int) Option { return Value(MinimumShouldMatch, n) }

// WithMinimumShouldMatchPercent is WithMinimumShouldMatch as a percentage, e.g. "75%" or "-25%".
func WithMinimumShouldMatchPercent(pct string) Option {
	if !percentPattern.MatchString(pct) {
		return invalid(MinimumShouldMatch, "%q is not a percentage", pct)
	}
	return Value(MinimumShouldMatch, pct)
}

// WithOperator decides whether all terms (and) or any term (or) must match.
func WithOperator(o OperatorKind) Option {
	if !o.IsValid() {
		return invalid(Operator, "unknown operator %q", o)
	}
	return Value(Operator, string(o))
}

// WithPhraseSlop sets the slop of phrases inside a query string.
func WithPhraseSlop(n int) Option { return nonNegative(PhraseSlop, n) }

// WithPrefixLength sets how many leading characters fuzziness ignores. Engine default: 0.
func WithPrefixLength(n int) Option { return nonNegative(PrefixLength, n) }

// WithQuoteAnalyzer sets the analyzer for quoted text in a query string.
func WithQuoteAnalyzer(analyzer string) Option {
	if analyzer == "" {
		return invalid(QuoteAnalyzer, "must not be empty")
	}
	return Value(QuoteAnalyzer, analyzer)
}

// WithQuoteFieldSuffix redirects quoted terms to a sub-field, e.g. ".exact"
// searches title.exact for "lightly" in quotes.
func WithQuoteFieldSuffix(suffix string) Option {
	if suffix == "" {
		return invalid(QuoteFieldSuffix, "must not be empty")
	}
	return Value(QuoteFieldSuffix, suffix)
}

// WithRewrite sets how multi-term queries are rewritten. Engine default: constant_score.
func WithRewrite(r RewriteKind) Option {
	if !r.IsValid() {
		return invalid(Rewrite, "unknown rewrite %q", r)
	}
	return Value(Rewrite, string(r))
}

// WithSlop sets how far apart phrase terms may be and still match. Engine default: 0.
func WithSlop(n int) Option { return nonNegative(Slop, n) }

// WithTieBreaker blends the scores of non-best matching fields, between 0 and 1.
func WithTieBreaker(f float64) Option {
	if f < 0 || f > 1 {
		return invalid(TieBreaker, "must be between 0 and 1, got %g", f)
	}
	return Value(TieBreaker, f)
}

// WithTimeZone sets the zone used for date ranges inside a query string, as an
// IANA name ("Europe/Berlin") or an offset ("-08:00").
func WithTimeZone(tz string) Option {
	if tzOffsetPattern.MatchString(tz) {
		return Value(TimeZone, tz)
	}
	if tz == "" {
		return invalid(TimeZone, "must not be empty")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return invalid(TimeZone, "unknown time zone %q", tz)
	}
	return Value(TimeZone, tz)
}

// WithType selects how a multi-field query executes. Engine default: best_fields.
func WithType(t QueryType) Option {
	if !t.IsValid() {
		return invalid(Type, "unknown query type %q", t)
	}
	return Value(Type, string(t))
}

// WithZeroTermsQuery decides what matches when analysis removes every term.
// Engine default: none.
func WithZeroTermsQuery(z ZeroTermsQueryKind) Option {
	if !z.IsValid() {
		return invalid(ZeroTermsQuery, "unknown zero_terms_query %q", z)
	}
	return Value(ZeroTermsQuery, string(z))
}

// WithPrecisionThreshold sets the count below which cardinality is close to exact.
func WithPrecisionThreshold(n int) Option { return nonNegative(PrecisionThreshold, n) }

// WithSigma sets how many standard deviations std_deviation_bounds spans.
func WithSigma(f float64) Option {
	if f < 0 {
		return invalid(Sigma, "must be non-negative, got %g", f)
	}
	return Value(Sigma, f)
}
