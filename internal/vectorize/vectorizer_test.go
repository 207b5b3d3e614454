// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package vectorize

import (
	"errors"
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Action Adventure", []string{"action", "adventure"}},
		{"carrie-annemoss a b cd", []string{"carrie", "annemoss", "cd"}},
		{"  ", nil},
		{"sci_fi 3d x", []string{"sci_fi", "3d"}},
		{"amélie été", []string{"amélie", "été"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tokenize(tt.in), "Tokenize(%q)", tt.in)
	}
}

func TestStopWords(t *testing.T) {
	assert.Len(t, englishStopWords, 318)
	assert.True(t, IsStopWord("the"))
	assert.False(t, IsStopWord("action"))
}

func TestCountVectorizer(t *testing.T) {
	m, vocab, err := CountVectorizer{}.FitTransform([]string{
		"action adventure",
		"romance drama",
		"action thriller action",
		"",
	})
	require.NoError(t, err)

	assert.Equal(t, 4, m.Rows())
	require.Equal(t, 5, vocab.Len())
	for i, term := range []string{"action", "adventure", "drama", "romance", "thriller"} {
		assert.Equal(t, term, vocab.Term(i))
	}

	idx, vals := m.Row(2)
	assert.Equal(t, []int32{0, 4}, idx)
	assert.Equal(t, []float64{2, 1}, vals)

	idx, vals = m.Row(3)
	assert.Empty(t, idx)
	assert.Empty(t, vals)
	assert.Equal(t, 0.0, m.Norm(3))
	assert.InDelta(t, math.Sqrt(5), m.Norm(2), 1e-12)
}

func TestCountVectorizerStopWordsRemoved(t *testing.T) {
	_, vocab, err := CountVectorizer{}.FitTransform([]string{"the matrix", "a matrix of doom"})
	require.NoError(t, err)
	_, ok := vocab.Column("the")
	assert.False(t, ok)
	_, ok = vocab.Column("doom")
	assert.True(t, ok)
}

func TestFitTransformEmptyCorpus(t *testing.T) {
	corpora := map[string][]string{
		"nil":        nil,
		"blank":      {"", "   "},
		"stop words": {"the and of", "a"},
	}
	for name, corpus := range corpora {
		t.Run(name, func(t *testing.T) {
			for _, v := range []Vectorizer{CountVectorizer{}, TFIDFVectorizer{}} {
				_, _, err := v.FitTransform(corpus)
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrEmptyCorpus), "err = %v", err)
				var vErr *VectorizeError
				assert.True(t, errors.As(err, &vErr))
			}
		})
	}
}

func TestTFIDFVectorizer(t *testing.T) {
	m, vocab, err := TFIDFVectorizer{}.FitTransform([]string{"action adventure", "action drama"})
	require.NoError(t, err)

	for i := 0; i < m.Rows(); i++ {
		assert.InDelta(t, 1.0, m.Norm(i), 1e-12, "row %d not unit length", i)
	}

	// "action" appears in every document so it carries the minimum idf.
	actionCol, _ := vocab.Column("action")
	idx, vals := m.Row(0)
	var action, adventure float64
	for i, c := range idx {
		if int(c) == actionCol {
			action = vals[i]
		} else {
			adventure = vals[i]
		}
	}
	assert.Less(t, action, adventure)
}

func TestNew(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)
	assert.Equal(t, KindCount, v.Name())

	v, err = New(KindTFIDF)
	require.NoError(t, err)
	assert.Equal(t, KindTFIDF, v.Name())

	_, err = New("word2vec")
	assert.Error(t, err)
}

func TestMatrixJSON(t *testing.T) {
	m, vocab, err := CountVectorizer{}.FitTransform([]string{"alpha beta", "beta gamma gamma"})
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	var decoded Matrix
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m.Rows(), decoded.Rows())
	assert.Equal(t, m.NNZ(), decoded.NNZ())
	idx, vals := decoded.Row(1)
	assert.Equal(t, []int32{1, 2}, idx)
	assert.Equal(t, []float64{1, 2}, vals)

	vdata, err := json.Marshal(vocab)
	require.NoError(t, err)
	var dv Vocabulary
	require.NoError(t, json.Unmarshal(vdata, &dv))
	col, ok := dv.Column("gamma")
	assert.True(t, ok)
	assert.Equal(t, 2, col)

	for _, bad := range []string{
		`{"rows":2,"cols":1,"indptr":[0,1],"indices":[0],"values":[1]}`,
		`{"rows":-1,"cols":0,"indptr":[],"indices":[],"values":[]}`,
		`{"rows":1,"cols":-1,"indptr":[0,0],"indices":[],"values":[]}`,
		`{"rows":1,"cols":1,"indptr":[0,1],"indices":[3],"values":[1]}`,
	} {
		var m Matrix
		assert.NotPanics(t, func() { err = json.Unmarshal([]byte(bad), &m) }, bad)
		assert.Error(t, err, bad)
	}
}
