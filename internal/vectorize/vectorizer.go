// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package vectorize

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/goccy/go-json"
)

// Vectorizer names accepted by New.
const (
	KindCount = "count"
	KindTFIDF = "tfidf"
)

// Vectorizer turns a corpus into a document-term matrix.
type Vectorizer interface {
	Name() string
	FitTransform(corpus []string) (*Matrix, *Vocabulary, error)
}

// New returns the vectorizer registered under kind.
func New(kind string) (Vectorizer, error) {
	switch kind {
	case KindCount, "":
		return CountVectorizer{}, nil
	case KindTFIDF:
		return TFIDFVectorizer{}, nil
	default:
		return nil, fmt.Errorf("unknown vectorizer %q", kind)
	}
}

// Vocabulary is the sorted term list learned at fit time.
type Vocabulary struct {
	terms []string
	index map[string]int32
}

func newVocabulary(terms []string) *Vocabulary {
	slices.Sort(terms)
	index := make(map[string]int32, len(terms))
	for i, t := range terms {
		index[t] = int32(i) //nolint:gosec // vocabulary size is bounded well below MaxInt32
	}
	return &Vocabulary{terms: terms, index: index}
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Term returns the term at column i.
func (v *Vocabulary) Term(i int) string { return v.terms[i] }

// Column returns the column for term.
func (v *Vocabulary) Column(term string) (int, bool) {
	c, ok := v.index[term]
	return int(c), ok
}

// MarshalJSON encodes the ordered term list.
func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.terms)
}

// UnmarshalJSON decodes the term list and rebuilds the column index.
func (v *Vocabulary) UnmarshalJSON(data []byte) error {
	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		return err
	}
	*v = *newVocabulary(terms)
	return nil
}

// CountVectorizer produces raw term frequencies with English stop words
// removed.
type CountVectorizer struct{}

// Name implements Vectorizer.
func (CountVectorizer) Name() string { return KindCount }

// FitTransform implements Vectorizer.
func (c CountVectorizer) FitTransform(corpus []string) (*Matrix, *Vocabulary, error) {
	docs, vocab, err := fit(c.Name(), corpus)
	if err != nil {
		return nil, nil, err
	}
	b := newMatrixBuilder(vocab.Len(), len(docs))
	for _, counts := range docs {
		indices, values := sortedRow(counts, vocab)
		b.addRow(indices, values)
	}
	return b.build(), vocab, nil
}

// TFIDFVectorizer weights term frequencies by smoothed inverse document
// frequency, idf = ln((1+n)/(1+df)) + 1, and L2-normalizes each row.
type TFIDFVectorizer struct{}

// Name implements Vectorizer.
func (TFIDFVectorizer) Name() string { return KindTFIDF }

// FitTransform implements Vectorizer.
func (t TFIDFVectorizer) FitTransform(corpus []string) (*Matrix, *Vocabulary, error) {
	docs, vocab, err := fit(t.Name(), corpus)
	if err != nil {
		return nil, nil, err
	}

	df := make([]int, vocab.Len())
	for _, counts := range docs {
		for term := range counts {
			col, _ := vocab.Column(term)
			df[col]++
		}
	}
	n := float64(len(docs))
	idf := make([]float64, len(df))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	b := newMatrixBuilder(vocab.Len(), len(docs))
	for _, counts := range docs {
		indices, values := sortedRow(counts, vocab)
		var norm float64
		for i, col := range indices {
			values[i] *= idf[col]
			norm += values[i] * values[i]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for i := range values {
				values[i] /= norm
			}
		}
		b.addRow(indices, values)
	}
	return b.build(), vocab, nil
}

// fit tokenizes the corpus and learns the vocabulary.
func fit(name string, corpus []string) ([]map[string]int, *Vocabulary, error) {
	if len(corpus) == 0 {
		return nil, nil, &VectorizeError{Vectorizer: name, Err: ErrEmptyCorpus}
	}

	docs := make([]map[string]int, len(corpus))
	seen := map[string]struct{}{}
	for i, doc := range corpus {
		counts := map[string]int{}
		if strings.TrimSpace(doc) != "" {
			for _, tok := range Tokenize(doc) {
				if IsStopWord(tok) {
					continue
				}
				counts[tok]++
				seen[tok] = struct{}{}
			}
		}
		docs[i] = counts
	}
	if len(seen) == 0 {
		return nil, nil, &VectorizeError{
			Vectorizer: name,
			Documents:  len(corpus),
			Err:        fmt.Errorf("%w: no terms remain after stop word removal", ErrEmptyCorpus),
		}
	}

	terms := make([]string, 0, len(seen))
	for t := range seen {
		terms = append(terms, t)
	}
	return docs, newVocabulary(terms), nil
}

func sortedRow(counts map[string]int, vocab *Vocabulary) ([]int32, []float64) {
	indices := make([]int32, 0, len(counts))
	for term := range counts {
		col, _ := vocab.Column(term)
		indices = append(indices, int32(col)) //nolint:gosec // bounded by vocabulary size
	}
	slices.Sort(indices)
	values := make([]float64, len(indices))
	for i, col := range indices {
		values[i] = float64(counts[vocab.Term(int(col))])
	}
	return indices, values
}
