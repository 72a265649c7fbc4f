package pipeline

import (
	"fmt"

	"jobmate/hiring-service/internal/model"
)

// Stages are matched by exact, case-sensitive name. Every caller that maps a
// stage string onto a pipeline goes through IndexOf.

// IndexOf returns the position of the first stage called name, or -1.
func IndexOf(stages []model.Stage, name string) int {
	for i, s := range stages {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Lookup finds the stage called name in p.
func Lookup(p *model.Pipeline, name string) (model.Stage, bool) {
	if p == nil {
		return model.Stage{}, false
	}
	i := IndexOf(p.Stages, name)
	if i < 0 {
		return model.Stage{}, false
	}
	return p.Stages[i], true
}

// Initial returns the stage with order 1. A pipeline without one is a broken
// definition and yields a *model.ConfigurationError.
func Initial(p *model.Pipeline) (model.Stage, error) {
	if p == nil {
		return model.Stage{}, &model.ConfigurationError{Msg: "pipeline is missing"}
	}
	if len(p.Stages) == 0 {
		return model.Stage{}, &model.ConfigurationError{Msg: fmt.Sprintf("pipeline %q has no stages", p.ID)}
	}
	for _, s := range p.Stages {
		if s.Order == 1 {
			return s, nil
		}
	}
	return model.Stage{}, &model.ConfigurationError{Msg: fmt.Sprintf("pipeline %q has no stage with order 1", p.ID)}
}

// Next returns the stage that follows name in traversal order.
func Next(p *model.Pipeline, name string) (model.Stage, bool) {
	if p == nil {
		return model.Stage{}, false
	}
	sorted := p.SortedStages()
	i := IndexOf(sorted, name)
	if i < 0 || i+1 >= len(sorted) {
		return model.Stage{}, false
	}
	return sorted[i+1], true
}
