package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

const screeningTemplate = `You are an AI recruiter tasked with screening applicants for a job.

Job Posting:
Title: {{.JobPosting.Title}}
Description: {{.JobPosting.Description}}
Required Skills: {{join .JobPosting.Skills ", "}}

Applicants:
{{range .Applicants}}
  Name: {{.Name}}
  Resume Text: {{.ResumeText}}
{{end}}
Assess each applicant based on their resume and the job posting, determining if they are a good match.
Explain your reasoning for each applicant.

Respond with a single JSON object with an "assessments" array. Each assessment has the applicant's
name exactly as given above, a boolean "match" and a "reason" string.

Example Output:
{
  "assessments": [
    {"name": "John Doe", "match": true, "reason": "John Doe's resume demonstrates strong proficiency in the required skills."},
    {"name": "Jane Smith", "match": false, "reason": "Jane Smith's resume does not show sufficient experience in the required skills."}
  ]
}

Follow the example output format precisely. Do not return natural language.
`

var screeningTpl = template.Must(template.New("screening").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(screeningTemplate))

// Render fills the screening prompt with req.
func Render(req Request) (string, error) {
	var buf bytes.Buffer
	if err := screeningTpl.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("render screening prompt: %w", err)
	}
	return buf.String(), nil
}
