package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/blobsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(ent *core.Entities, err error) Enricher {
	return Func(func(ctx context.Context, text string) (*core.Entities, error) {
		return ent, err
	})
}

func TestMergeFirstNonEmptyWins(t *testing.T) {
	m := Merge(
		fixed(&core.Entities{People: []string{"Ada"}, Language: "en"}, nil),
		fixed(&core.Entities{People: []string{"Grace"}, Keyphrases: []string{"compiler"}, Language: "fr"}, nil),
	)

	ent, err := m.Enrich(context.Background(), "text")
	require.NoError(t, err)

	assert.Equal(t, []string{"Ada"}, ent.People)
	assert.Equal(t, []string{"compiler"}, ent.Keyphrases)
	assert.Equal(t, "en", ent.Language)
	assert.Empty(t, ent.Locations)
}

func TestMergePartialFailure(t *testing.T) {
	boom := errors.New("llm down")
	m := Merge(
		fixed(nil, boom),
		fixed(&core.Entities{Keyphrases: []string{"ledger"}}, nil),
	)

	ent, err := m.Enrich(context.Background(), "text")
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, ent)
	assert.Equal(t, []string{"ledger"}, ent.Keyphrases)
}

func TestMergeSingleUnwraps(t *testing.T) {
	k := NewKeyphrases(1)
	assert.Same(t, k, Merge(nil, k))
}

func TestBuild(t *testing.T) {
	e, err := Build(NewConfig(WithKeyphrases(false)), nil)
	require.NoError(t, err)
	assert.Nil(t, e)

	e, err = Build(NewConfig(), nil)
	require.NoError(t, err)
	assert.IsType(t, &Cache{}, e)

	e, err = Build(NewConfig(WithCacheSize(0)), nil)
	require.NoError(t, err)
	assert.IsType(t, &Keyphrases{}, e)

	_, err = Build(NewConfig(WithLLM("http://localhost:11434", "", "")), nil)
	assert.Error(t, err)
}

func TestConfigNormalize(t *testing.T) {
	cfg := NewConfig(WithLLM("http://localhost:11434/", "m", ""))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLMHost)
	assert.True(t, cfg.LLMEnabled())
}
