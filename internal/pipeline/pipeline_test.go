package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/minicrm/internal/model"
)

func TestPlanAllowsEveryPair(t *testing.T) {
	for _, from := range model.Stages {
		for _, to := range model.Stages {
			tr, err := Plan(from, to)
			require.NoError(t, err, "%s -> %s", from, to)
			assert.Equal(t, from, tr.From)
			assert.Equal(t, to, tr.To)
			assert.Equal(t, from == to, tr.NoOp())
		}
	}
}

func TestPlanRejectsUnknownStage(t *testing.T) {
	_, err := Plan(model.StageProspecting, "CLOSED")
	assert.Error(t, err)
}

func TestGroupByStage(t *testing.T) {
	deals := []model.Deal{
		{Base: model.Base{ID: "1"}, Stage: model.StageWon},
		{Base: model.Base{ID: "2"}, Stage: model.StageProspecting},
		{Base: model.Base{ID: "3"}, Stage: model.StageWon},
		{Base: model.Base{ID: "4"}, Stage: "ARCHIVED"},
	}

	board := GroupByStage(deals)

	require.Len(t, board, len(model.Stages))
	assert.Len(t, board[model.StageWon], 2)
	assert.Equal(t, "1", board[model.StageWon][0].ID)
	assert.Equal(t, "3", board[model.StageWon][1].ID)
	assert.Len(t, board[model.StageProspecting], 1)
	assert.NotNil(t, board[model.StageNegotiation])
	assert.Empty(t, board[model.StageNegotiation])

	for stage, bucket := range board {
		for _, d := range bucket {
			assert.Equal(t, stage, d.Stage)
		}
	}
}

func TestGroupByStageEmpty(t *testing.T) {
	board := GroupByStage(nil)
	for _, stage := range model.Stages {
		assert.NotNil(t, board[stage])
		assert.Empty(t, board[stage])
	}
}
