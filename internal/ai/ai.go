// Package ai talks to the external language model that diagnoses a
// problem statement and drafts the innovation report.
//
// The model's JSON is never trusted as-is: it is extracted, decoded into
// the explicit types below and validated before it reaches callers.
package ai

import (
	"context"

	"github.com/HendryAvila/triz-master/internal/catalog"
)

// Analyst is the external AI collaborator.
type Analyst interface {
	// Diagnose identifies the improving and worsening parameters of a
	// free-text problem.
	Diagnose(ctx context.Context, req DiagnoseRequest) (*Diagnosis, error)
	// Draft writes a structured innovation report for the problem and the
	// resolved principles.
	Draft(ctx context.Context, req DraftRequest) (*Report, error)
}

// DiagnoseRequest is the input for Analyst.Diagnose.
type DiagnoseRequest struct {
	Problem    string
	Locale     catalog.Locale
	Parameters []catalog.Parameter
}

// DraftRequest is the input for Analyst.Draft.
type DraftRequest struct {
	Problem        string
	Locale         catalog.Locale
	PrincipleNames []string
	Guide          []catalog.Principle
}

// Diagnosis is the contradiction identified by the model.
type Diagnosis struct {
	ImprovingID int    `json:"improvingParamId" validate:"gte=1"`
	WorseningID int    `json:"worseningParamId" validate:"gte=1"`
	Explanation string `json:"explanation" validate:"required"`
}

// Solution is one proposed engineering solution in a report.
type Solution struct {
	Title            string `json:"title" validate:"required"`
	Description      string `json:"description" validate:"required"`
	PrincipleApplied string `json:"principleApplied" validate:"required"`
	Feasibility      string `json:"feasibility" validate:"required"`
}

// Report is the drafted innovation report.
type Report struct {
	Introduction string     `json:"introduction" validate:"required"`
	Solutions    []Solution `json:"solutions" validate:"required,min=1,dive"`
	NextSteps    []string   `json:"nextSteps" validate:"required,min=1,dive,required"`
}
