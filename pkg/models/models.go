package models

import "time"

// Run is one batch execution of the pipeline
type Run struct {
	ID        string    `json:"id"`
	InputFile string    `json:"input_file"`
	Records   int       `json:"records"`
	Groups    int       `json:"groups"`
	Dimension int       `json:"dimension"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"created_at"`
}

// GrantPoint is a grant placed on the 2-d chart. Field names follow what the
// chart front end reads.
type GrantPoint struct {
	ID             string   `json:"id"`
	AwardDate      string   `json:"awardDate,omitempty"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Currency       string   `json:"currency"`
	Amount         *float64 `json:"amount"`
	RecipientOrgID string   `json:"recipientOrgId,omitempty"`
	RecipientOrg   string   `json:"recipientOrg"`
	FundingOrgID   string   `json:"fundingOrgId"`
	FundingOrg     string   `json:"fundingOrg"`
	X              float64  `json:"x"`
	Y              float64  `json:"y"`
}

// Funder summarises one funding organisation of a run
type Funder struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Grants int    `json:"grants"`
}

// SimilarGrant is a grant ranked by document-vector similarity to another
type SimilarGrant struct {
	GrantPoint
	Similarity float64 `json:"similarity"`
}
