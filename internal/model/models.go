// Package model defines the shared data structures for the hiring service.
package model

import (
	"sort"
	"time"
)

// Stage is one named step of a Pipeline. Order is 1-based and defines the
// traversal sequence.
type Stage struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Order int    `json:"order" yaml:"order"`
}

// Pipeline is a named, ordered list of hiring stages applied to a Job's
// applications.
type Pipeline struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Stages []Stage `json:"stages" yaml:"stages"`
}

// SortedStages returns a copy of the stages ordered by Order.
func (p *Pipeline) SortedStages() []Stage {
	out := make([]Stage, len(p.Stages))
	copy(out, p.Stages)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Clone returns a deep copy.
func (p *Pipeline) Clone() *Pipeline {
	c := *p
	c.Stages = append([]Stage(nil), p.Stages...)
	return &c
}

// JobStatus mirrors the Open/Closed state of a posting.
type JobStatus string

const (
	JobOpen   JobStatus = "Open"
	JobClosed JobStatus = "Closed"
)

// Job is a posting. PipelineID may be reassigned; in-flight applications keep
// their current stage string.
type Job struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Location     string    `json:"location" yaml:"location"`
	Description  string    `json:"description" yaml:"description"`
	Requirements []string  `json:"requirements" yaml:"requirements"`
	Deadline     time.Time `json:"deadline" yaml:"deadline"`
	Status       JobStatus `json:"status" yaml:"status"`
	PipelineID   string    `json:"pipelineId" yaml:"pipelineId"`
	PostedDate   time.Time `json:"postedDate" yaml:"postedDate"`
}

// Clone returns a deep copy.
func (j *Job) Clone() *Job {
	c := *j
	c.Requirements = append([]string(nil), j.Requirements...)
	return &c
}

// Applicant is a person record keyed by email.
type Applicant struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Email      string `json:"email" yaml:"email"`
	Phone      string `json:"phone,omitempty" yaml:"phone,omitempty"`
	ResumeText string `json:"resumeText,omitempty" yaml:"resumeText,omitempty"`
	ResumeURL  string `json:"resumeUrl,omitempty" yaml:"resumeUrl,omitempty"`
	// Credentials holds a bcrypt hash; empty until the applicant registers.
	Credentials string `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	IsAdmin     bool   `json:"isAdmin" yaml:"isAdmin"`
}

// Clone returns a copy.
func (a *Applicant) Clone() *Applicant {
	c := *a
	return &c
}

// Public returns a copy without the credential hash, for responses.
func (a *Applicant) Public() *Applicant {
	c := *a
	c.Credentials = ""
	return &c
}

// ProfileFields are the mutable applicant fields written by a submission or a
// profile edit. Nil pointers leave the stored value untouched.
type ProfileFields struct {
	Name       string
	Phone      *string
	ResumeText *string
	ResumeURL  *string
}

// StatusEntry is one record of an application's stage history.
type StatusEntry struct {
	Stage string    `json:"stage" yaml:"stage"`
	Date  time.Time `json:"date" yaml:"date"`
	Notes string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ScreeningResult is an externally computed match/rationale pair.
type ScreeningResult struct {
	Match  bool   `json:"match" yaml:"match"`
	Reason string `json:"reason" yaml:"reason"`
}

// Application is one applicant's submission against one Job.
//
// StatusHistory is append-only and never empty; its last entry's Stage equals
// CurrentStage.
type Application struct {
	ID              string           `json:"id" yaml:"id"`
	JobID           string           `json:"jobId" yaml:"jobId"`
	ApplicantID     string           `json:"applicantId" yaml:"applicantId"`
	ApplicantName   string           `json:"applicantName" yaml:"applicantName"`
	ApplicantEmail  string           `json:"applicantEmail" yaml:"applicantEmail"`
	SubmissionDate  time.Time        `json:"submissionDate" yaml:"submissionDate"`
	CurrentStage    string           `json:"currentStage" yaml:"currentStage"`
	StatusHistory   []StatusEntry    `json:"statusHistory" yaml:"statusHistory"`
	ScreeningResult *ScreeningResult `json:"screeningResult,omitempty" yaml:"screeningResult,omitempty"`
}

// Clone returns a deep copy.
func (a *Application) Clone() *Application {
	c := *a
	c.StatusHistory = append([]StatusEntry(nil), a.StatusHistory...)
	if a.ScreeningResult != nil {
		r := *a.ScreeningResult
		c.ScreeningResult = &r
	}
	return &c
}

// Advance sets the current stage and appends the matching history entry.
func (a *Application) Advance(e StatusEntry) {
	a.CurrentStage = e.Stage
	a.StatusHistory = append(a.StatusHistory, e)
}

// ApplicationView is an application joined at read time with the applicant's
// current resume URL.
type ApplicationView struct {
	Application
	ResumeURL string `json:"resumeUrl,omitempty"`
}

// SortApplications orders by submission date, then id.
func SortApplications(apps []Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		if !apps[i].SubmissionDate.Equal(apps[j].SubmissionDate) {
			return apps[i].SubmissionDate.Before(apps[j].SubmissionDate)
		}
		return apps[i].ID < apps[j].ID
	})
}
