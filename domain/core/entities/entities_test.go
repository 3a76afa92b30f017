package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammedfirdouss/serverless-book-tracker/pkg/errors"
)

func TestNewBook(t *testing.T) {
	book, err := NewBook("u1", "  The Left Hand of Darkness ", "Ursula K. Le Guin")
	require.NoError(t, err)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "u1", book.UserID)
	assert.Equal(t, "The Left Hand of Darkness", book.Title)
}

func TestNewBookRequiresTitleAndOwner(t *testing.T) {
	_, err := NewBook("u1", "   ", "someone")
	assert.True(t, errors.IsValidation(err))

	_, err = NewBook("", "A Title", "someone")
	assert.True(t, errors.IsValidation(err))
}

func TestNewTagRequiresLabel(t *testing.T) {
	_, err := NewTag("u1", "")
	assert.True(t, errors.IsValidation(err))

	tag, err := NewTag("u1", "sci-fi")
	require.NoError(t, err)
	assert.Equal(t, "sci-fi", tag.Label)
}

func TestNewCollectionRequiresName(t *testing.T) {
	_, err := NewCollection("u1", "", "desc")
	assert.True(t, errors.IsValidation(err))
}

func TestReadingStatusValues(t *testing.T) {
	assert.True(t, StatusUnstarted.IsValid())
	assert.True(t, StatusInProgress.IsValid())
	assert.True(t, StatusFinished.IsValid())
	assert.False(t, ReadingStatus("abandoned").IsValid())
}

func TestNewProgressDefaultsToUnstarted(t *testing.T) {
	progress, err := NewProgress("u1", "b1", 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, StatusUnstarted, progress.Status)
	assert.Nil(t, progress.StartedAt)
}

func TestNewProgressRejectsBadRanges(t *testing.T) {
	_, err := NewProgress("u1", "b1", -1, 0, StatusInProgress)
	assert.True(t, errors.IsValidation(err))

	_, err = NewProgress("u1", "b1", 10, 120, StatusInProgress)
	assert.True(t, errors.IsValidation(err))
}

func TestProgressMergeLastWriteWins(t *testing.T) {
	current, err := NewProgress("u1", "b1", 50, 25, StatusInProgress)
	require.NoError(t, err)
	startedAt := current.StartedAt

	update, err := NewProgress("u1", "b1", 320, 100, StatusFinished)
	require.NoError(t, err)

	current.Merge(update)
	assert.Equal(t, 320, current.Page)
	assert.Equal(t, StatusFinished, current.Status)
	assert.Equal(t, startedAt, current.StartedAt)
	assert.NotNil(t, current.FinishedAt)
}

func TestProgressMergeAllowsRereading(t *testing.T) {
	current, err := NewProgress("u1", "b1", 320, 100, StatusFinished)
	require.NoError(t, err)

	update, err := NewProgress("u1", "b1", 10, 3, StatusInProgress)
	require.NoError(t, err)

	current.Merge(update)
	assert.Equal(t, StatusInProgress, current.Status)
	assert.Equal(t, 10, current.Page)
}
