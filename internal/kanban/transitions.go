package kanban

import (
	"jobmate/hiring-service/internal/model"
	"jobmate/hiring-service/internal/progress"
)

// Move describes one recorded stage change.
//
// Stages are free text, so any name may follow any other. A move into a
// stage whose name contains "hired" or "rejected" is terminal.
type Move struct {
	ApplicationID string
	JobID         string
	From          string
	To            string
	Terminal      bool
	Hired         bool
}

func newMove(a *model.Application, from string) Move {
	return Move{
		ApplicationID: a.ID,
		JobID:         a.JobID,
		From:          from,
		To:            a.CurrentStage,
		Terminal:      progress.IsTerminal(a.CurrentStage),
		Hired:         progress.IsHired(a.CurrentStage),
	}
}

func (m Move) fields() map[string]any {
	return map[string]any{
		"applicationId": m.ApplicationID,
		"jobId":         m.JobID,
		"from":          m.From,
		"to":            m.To,
		"terminal":      m.Terminal,
		"hired":         m.Hired,
	}
}
