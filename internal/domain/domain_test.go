package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsscraper/internal/domain"
)

func TestParseCategory(t *testing.T) {
	t.Parallel()

	category, err := domain.ParseCategory("crime-bangladesh")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCrime, category)
	assert.Equal(t, "Crime Bangladesh", category.Label())

	_, err = domain.ParseCategory("weather")
	assert.Error(t, err)

	_, err = domain.ParseCategory("")
	assert.Error(t, err)
}

func TestCategories_StableOrder(t *testing.T) {
	t.Parallel()

	categories := domain.Categories()
	require.Len(t, categories, 9)
	assert.Equal(t, domain.CategoryPolitics, categories[0])
	assert.Equal(t, domain.CategoryLifestyle, categories[8])
	for _, category := range categories {
		assert.True(t, category.IsValid())
	}
}

func TestCountWords(t *testing.T) {
	t.Parallel()

	assert.Zero(t, domain.CountWords(""))
	assert.Zero(t, domain.CountWords("   \n\t "))
	assert.Equal(t, 3, domain.CountWords("ঢাকা থেকে জানানো"))
	assert.Equal(t, 2, domain.CountWords("  দুই   শব্দ  "))
}

func TestRunStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, domain.RunStatusPending.IsTerminal())
	assert.False(t, domain.RunStatusRunning.IsTerminal())
	assert.True(t, domain.RunStatusSuccess.IsTerminal())
	assert.True(t, domain.RunStatusFailure.IsTerminal())
}

func TestOutcome_Status(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.RunStatusSuccess, domain.Outcome{Success: true}.Status())
	assert.Equal(t, domain.RunStatusFailure, domain.Outcome{}.Status())
}
