// Package pipeline holds the deal stage model.
//
// The stage graph is total: a deal may move from any stage to any other,
// including to the stage it is already in. What the model guarantees is not
// transition legality but that every stage write is evaluated against the
// persisted stage at write time and that repeating a write is harmless. There
// is no optimistic-lock token; concurrent writers resolve by write order.
//
// Clients are expected to move the deal in their own view immediately, send
// the write, and roll the view back to the previous stage if the write fails.
// A successful write returns the authoritative record, so no follow-up read
// is needed.
package pipeline

import (
	"github.com/suteetoe/minicrm/internal/model"
)

// Transition is a requested stage change relative to the persisted stage.
type Transition struct {
	From model.Stage
	To   model.Stage
}

// NoOp reports whether the transition leaves the stage unchanged.
func (t Transition) NoOp() bool {
	return t.From == t.To
}

// Plan evaluates a stage write against the current persisted stage. It only
// fails when target is not a pipeline stage; every pair of stages is allowed.
func Plan(current, target model.Stage) (Transition, error) {
	to, err := model.ParseStage(string(target))
	if err != nil {
		return Transition{}, err
	}
	return Transition{From: current, To: to}, nil
}

// Board is a kanban view of deals: one bucket per stage.
type Board map[model.Stage][]model.Deal

// GroupByStage partitions deals by their stage. Every stage has a bucket,
// empty ones included, and bucket order follows the input order. Deals with a
// stage outside the enumeration are dropped.
func GroupByStage(deals []model.Deal) Board {
	board := make(Board, len(model.Stages))
	for _, stage := range model.Stages {
		board[stage] = []model.Deal{}
	}
	for _, deal := range deals {
		if bucket, ok := board[deal.Stage]; ok {
			board[deal.Stage] = append(bucket, deal)
		}
	}
	return board
}
