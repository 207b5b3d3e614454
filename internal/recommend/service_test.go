// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/reelmatch/internal/artifact"
	"github.com/tomtom215/reelmatch/internal/features"
	"github.com/tomtom215/reelmatch/internal/popularity"
)

// Soups (count vectors):
//
//	Movie A    hero johnsmith janedoe action
//	Movie B    romance marymajor bobray drama
//	Movie C    hero johnsmith otherguy action   cos(A) = 0.75
//	Movie C    hero janedoe action              cos(A) = 0.866
//	Toy Story  toy tomhanks johnlasseter animation
const fixtureMetadata = `adult,genres,id,release_date,title,vote_average,vote_count
False,"[{'id': 28, 'name': 'Action'}]",1,2001-01-01,Movie A,8.0,1000
False,"[{'id': 18, 'name': 'Drama'}]",2,2002-02-02,Movie B,9.0,10
False,"[{'id': 28, 'name': 'Action'}]",3,2003-03-03,Movie C,7.0,100
False,"[{'id': 28, 'name': 'Action'}]",5,2005-05-05,Movie C,6.0,50
False,"[{'id': 16, 'name': 'Animation'}]",6,,Toy Story,7.5,2000
`

const fixtureCredits = `cast,crew,id
"[{'name': 'John Smith'}]","[{'job': 'Director', 'name': 'Jane Doe'}]",1
"[{'name': 'Mary Major'}]","[{'job': 'Director', 'name': 'Bob Ray'}]",2
"[{'name': 'John Smith'}]","[{'job': 'Director', 'name': 'Other Guy'}]",3
"[]","[{'job': 'Director', 'name': 'Jane Doe'}]",5
"[{'name': 'Tom Hanks'}]","[{'job': 'Director', 'name': 'John Lasseter'}]",6
`

const fixtureKeywords = `id,keywords
1,"[{'id': 1, 'name': 'hero'}]"
2,"[{'id': 2, 'name': 'romance'}]"
3,"[{'id': 1, 'name': 'hero'}]"
5,"[{'id': 1, 'name': 'hero'}]"
6,"[{'id': 3, 'name': 'toy'}]"
`

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		features.MetadataFile: fixtureMetadata,
		features.CreditsFile:  fixtureCredits,
		features.KeywordsFile: fixtureKeywords,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func newTestService(t *testing.T, mutate func(*Config), store artifact.Store) *Service {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = writeFixture(t)
	if mutate != nil {
		mutate(&cfg)
	}
	svc, err := New(cfg, Deps{Logger: zerolog.Nop(), Artifacts: store})
	require.NoError(t, err)
	return svc
}

func titles(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestRecommendRanksByContent(t *testing.T) {
	for _, mode := range []string{"neighbors", "matrix"} {
		t.Run(mode, func(t *testing.T) {
			svc := newTestService(t, func(c *Config) { c.SimilarityMode = mode }, nil)
			ctx := context.Background()

			recs, err := svc.Recommend(ctx, "Movie A", 3)
			require.NoError(t, err)
			assert.Equal(t, []string{"Movie C", "Movie B"}, titles(recs))
			assert.Equal(t, "2005-05-05", recs[0].ReleaseDate)
			assert.Equal(t, []string{"Action"}, recs[0].Genres)

			for _, r := range recs {
				assert.NotEqual(t, "Movie A", r.Title)
			}
		})
	}
}

func TestRecommendExcludesRowsSharingQueryTitle(t *testing.T) {
	for _, mode := range []string{"neighbors", "matrix"} {
		t.Run(mode, func(t *testing.T) {
			svc := newTestService(t, func(c *Config) { c.SimilarityMode = mode }, nil)
			ctx := context.Background()

			recs, err := svc.Recommend(ctx, "Movie C", 15)
			require.NoError(t, err)
			assert.Equal(t, []string{"Movie A", "Movie B", "Toy Story"}, titles(recs))

			// The second Movie C row ranks second; the window widens past it.
			recs, err = svc.Recommend(ctx, "Movie C", 2)
			require.NoError(t, err)
			assert.Equal(t, []string{"Movie A", "Movie B"}, titles(recs))
		})
	}
}

func TestRecommendUnknownTitle(t *testing.T) {
	svc := newTestService(t, nil, nil)

	recs, err := svc.Recommend(context.Background(), "No Such Movie", 5)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestRecommendDefaultsAndCaps(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	// Four other rows exist; two share a title.
	recs, err := svc.Recommend(ctx, "Toy Story", 0)
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	recs, err = svc.Recommend(ctx, "Movie B", 1)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestSearch(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	results, err := svc.Search(ctx, "toy story")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Toy Story", results[0].Title)
	assert.Equal(t, 100, results[0].Score)
	assert.Equal(t, []string{"Animation"}, results[0].Genres)
	for _, r := range results {
		assert.Greater(t, r.Score, 70)
	}

	results, err = svc.Search(ctx, "qqqqzzzz")
	require.NoError(t, err)
	assert.Empty(t, results)

	// Cached path returns the same answer.
	again, err := svc.Search(ctx, "toy story")
	require.NoError(t, err)
	assert.Equal(t, "Toy Story", again[0].Title)
}

func TestSearchCollapsesDuplicateTitles(t *testing.T) {
	svc := newTestService(t, nil, nil)

	results, err := svc.Search(context.Background(), "movie c")
	require.NoError(t, err)
	count := 0
	for _, r := range results {
		if r.Title == "Movie C" {
			count++
			assert.Equal(t, "2003-03-03", r.ReleaseDate, "first row wins")
		}
	}
	assert.Equal(t, 1, count)
}

func TestRecommendForQuery(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	out, err := svc.RecommendForQuery(ctx, "movie a", 3)
	require.NoError(t, err)
	assert.Equal(t, "Movie A", out.Title)
	assert.Equal(t, 100, out.Score)
	assert.Equal(t, []string{"Movie C", "Movie B"}, titles(out.Recommendations))

	out, err = svc.RecommendForQuery(ctx, "qqqqzzzz", 3)
	require.NoError(t, err)
	assert.Empty(t, out.Title)
	assert.NotNil(t, out.Recommendations)
	assert.Empty(t, out.Recommendations)
}

func TestTopRated(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	// vote_count 90th percentile of [10 50 100 1000 2000] is 1600.
	movies, err := svc.TopRated(ctx, 0, 0.90)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Toy Story", movies[0].Title)
	assert.Equal(t, "Unknown", movies[0].ReleaseDate)
	assert.Equal(t, int64(2000), movies[0].VoteCount)

	first, err := svc.TopRated(ctx, 10, 0)
	require.NoError(t, err)
	second, err := svc.TopRated(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 5)

	_, err = svc.TopRated(ctx, 10, 1.5)
	assert.True(t, errors.Is(err, popularity.ErrInvalidPercentile))
}

func TestStats(t *testing.T) {
	svc := newTestService(t, nil, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Dataset.Rows)
	assert.Equal(t, 4, stats.Dataset.UniqueTitles)
	assert.Equal(t, 1, stats.Dataset.InvalidReleaseDates)
	require.NotEmpty(t, stats.Dataset.TopGenres)
	assert.Equal(t, "Action", stats.Dataset.TopGenres[0].Genre)
	assert.Nil(t, stats.Catalog)
	assert.Equal(t, 5, stats.Build.Rows)
	assert.Positive(t, stats.Build.Vocabulary)
}

func TestInitOnceUnderConcurrency(t *testing.T) {
	svc := newTestService(t, nil, nil)
	assert.Equal(t, StatePending, svc.Status().State)

	var wg sync.WaitGroup
	results := make([][]Recommendation, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Recommend(context.Background(), "Movie A", 3)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
	st := svc.Status()
	assert.True(t, st.Ready())
	require.NotNil(t, st.Build)
	assert.Equal(t, SourceBuild, st.Build.Stages[stageTable])
}

func TestInitMissingData(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "absent")
	svc, err := New(cfg, Deps{Logger: zerolog.Nop()})
	require.NoError(t, err)

	err = svc.Init(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.True(t, errors.Is(err, features.ErrDataUnavailable))

	// No retry: the stored failure comes back.
	_, qerr := svc.Search(context.Background(), "anything")
	assert.Equal(t, err, qerr)
	assert.Equal(t, StateFailed, svc.Status().State)
	assert.NotEmpty(t, svc.Status().Error)
}

func TestArtifactReuse(t *testing.T) {
	store, err := artifact.NewFileStore(t.TempDir())
	require.NoError(t, err)
	dataDir := writeFixture(t)
	ctx := context.Background()

	build := func(force bool) *Service {
		cfg := DefaultConfig()
		cfg.DataDir = dataDir
		cfg.ForceRebuild = force
		svc, err := New(cfg, Deps{Logger: zerolog.Nop(), Artifacts: store})
		require.NoError(t, err)
		require.NoError(t, svc.Init(ctx))
		return svc
	}

	first := build(false)
	for _, stage := range []string{stageTable, stageMatrix, stageIndex} {
		assert.Equal(t, SourceBuild, first.Status().Build.Stages[stage], stage)
	}
	want, err := first.Recommend(ctx, "Movie A", 3)
	require.NoError(t, err)

	// Raw sources are no longer needed once everything is stored.
	require.NoError(t, os.Remove(filepath.Join(dataDir, features.MetadataFile)))

	second := build(false)
	for _, stage := range []string{stageTable, stageMatrix, stageIndex} {
		assert.Equal(t, SourceCache, second.Status().Build.Stages[stage], stage)
	}
	got, err := second.Recommend(ctx, "Movie A", 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Nil(t, second.Status().Build.Report)
}

func TestForceRebuildSkipsArtifacts(t *testing.T) {
	store, err := artifact.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first := newTestService(t, nil, store)
	require.NoError(t, first.Init(ctx))

	second := newTestService(t, func(c *Config) { c.ForceRebuild = true }, store)
	require.NoError(t, second.Init(ctx))
	assert.Equal(t, SourceBuild, second.Status().Build.Stages[stageTable])
	assert.Equal(t, SourceBuild, second.Status().Build.Stages[stageIndex])
}

func TestMatrixRebuiltForOtherVectorizer(t *testing.T) {
	store, err := artifact.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, newTestService(t, nil, store).Init(ctx))

	tfidf := newTestService(t, func(c *Config) { c.Vectorizer = "tfidf" }, store)
	require.NoError(t, tfidf.Init(ctx))
	stages := tfidf.Status().Build.Stages
	assert.Equal(t, SourceCache, stages[stageTable])
	assert.Equal(t, SourceBuild, stages[stageMatrix])
	assert.Equal(t, SourceBuild, stages[stageIndex])
}

func TestCorruptArtifactIsFatal(t *testing.T) {
	store, err := artifact.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), keyTable, []byte("not a zstd frame")))

	svc := newTestService(t, nil, store)
	err = svc.Init(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, artifact.ErrCorrupt))
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestCorruptIndexShapeIsFatal(t *testing.T) {
	store, err := artifact.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, newTestService(t, nil, store).Init(ctx))

	// Swap in the matrix-mode snapshot of a different corpus size.
	require.NoError(t, store.Put(ctx, keyIndex+"neighbors", artifact.Compress([]byte(`{"mode":"matrix","n":1,"sims":[1]}`))))

	err = newTestService(t, nil, store).Init(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, artifact.ErrCorrupt))
}

func TestCorruptIndexArraysAreFatal(t *testing.T) {
	store, err := artifact.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, newTestService(t, nil, store).Init(ctx))

	snap := `{"mode":"neighbors","rows":5,"cols":1,"indptr":[0,2,2,2,2,2],"indices":[5,0],"values":[1,1],"postings":[""]}`
	require.NoError(t, store.Put(ctx, keyIndex+"neighbors", artifact.Compress([]byte(snap))))

	svc := newTestService(t, nil, store)
	require.NotPanics(t, func() { err = svc.Init(ctx) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, artifact.ErrCorrupt))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"vectorizer", func(c *Config) { c.Vectorizer = "word2vec" }},
		{"mode", func(c *Config) { c.SimilarityMode = "annoy" }},
		{"percentile", func(c *Config) { c.DefaultPercentile = 2 }},
		{"top n", func(c *Config) { c.DefaultTopN = 0 }},
		{"cutoff", func(c *Config) { c.ScoreCutoff = 100 }},
		{"zero cutoff", func(c *Config) { c.ScoreCutoff = 0 }},
		{"negative cutoff", func(c *Config) { c.ScoreCutoff = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := New(cfg, Deps{Logger: zerolog.Nop()})
			assert.Error(t, err)
		})
	}
}
