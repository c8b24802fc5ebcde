// Package search ranks task titles against a free-text query. Matching is
// tolerant of typos (bounded edit distance per word) and of abbreviated
// words (in-order subsequence).
package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"
)

// Candidate is one searchable title.
type Candidate struct {
	ID    string
	Title string
}

// Match is a candidate that matched the query, with its relevance score.
type Match struct {
	ID    string
	Score int
}

const (
	exactScore       = 100
	perEditPenalty   = 30
	subsequenceFloor = 10
	minSubsequence   = 3
)

// MaxEdits is the edit distance a query term of the given length tolerates.
func MaxEdits(termLen int) int {
	switch {
	case termLen >= 5:
		return 2
	case termLen >= 3:
		return 1
	default:
		return 0
	}
}

// Rank scores every candidate against query and returns the matching ones,
// best first. Candidates with equal scores keep their input order. A blank
// query matches nothing.
func Rank(query string, candidates []Candidate) []Match {
	terms := Terms(query)
	if len(terms) == 0 {
		return nil
	}

	var matches []Match
	for _, c := range candidates {
		words := Terms(c.Title)
		if len(words) == 0 {
			continue
		}
		total := 0
		for _, term := range terms {
			total += scoreTerm(term, words)
		}
		if total > 0 {
			matches = append(matches, Match{ID: c.ID, Score: total})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// IDs returns the ids of matches in rank order.
func IDs(matches []Match) []string {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return ids
}

// Terms lowercases s and splits it into words on anything that is not a
// letter or digit.
func Terms(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// scoreTerm returns the best score term reaches against any word, or 0.
func scoreTerm(term string, words []string) int {
	best := 0
	allowed := MaxEdits(len([]rune(term)))
	for _, w := range words {
		d := levenshtein.ComputeDistance(term, w)
		if d <= allowed {
			if s := exactScore - d*perEditPenalty; s > best {
				best = s
			}
		}
	}
	if best > 0 || len([]rune(term)) < minSubsequence {
		return best
	}

	// Abbreviations such as "impl" for "implementation".
	for _, m := range fuzzy.Find(term, words) {
		s := subsequenceFloor + m.Score
		if s < 1 {
			s = 1
		}
		if s > best {
			best = s
		}
	}
	return best
}
