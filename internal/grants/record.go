// Package grants reads GrantNav (360Giving) CSV exports and writes the
// projected result file.
package grants

import "strings"

// Column names of the GrantNav export
const (
	ColIdentifier       = "Identifier"
	ColAwardDate        = "Award Date"
	ColTitle            = "Title"
	ColDescription      = "Description"
	ColCurrency         = "Currency"
	ColAmountAwarded    = "Amount Awarded"
	ColRecipientOrgID   = "Recipient Org:Identifier"
	ColRecipientOrgName = "Recipient Org:Name"
	ColFundingOrgID     = "Funding Org:Identifier"
	ColFundingOrgName   = "Funding Org:Name"

	ColX = "x"
	ColY = "y"
)

// OutputColumns are the columns of interest kept in the result file, before x and y
var OutputColumns = []string{
	ColIdentifier,
	ColAwardDate,
	ColTitle,
	ColDescription,
	ColCurrency,
	ColAmountAwarded,
	ColRecipientOrgID,
	ColRecipientOrgName,
	ColFundingOrgID,
	ColFundingOrgName,
}

// requiredColumns must be present in the input header
var requiredColumns = []string{
	ColIdentifier,
	ColTitle,
	ColDescription,
	ColRecipientOrgName,
	ColFundingOrgID,
}

// Record is one grant. AmountAwarded is NaN when the export leaves it empty.
type Record struct {
	Identifier             string
	AwardDate              string
	Title                  string
	Description            string
	Currency               string
	AmountAwarded          float64
	RecipientOrgIdentifier string
	RecipientOrgName       string
	FundingOrgIdentifier   string
	FundingOrgName         string
}

// GroupKey returns the funding organisation identifier
func (r Record) GroupKey() string {
	return r.FundingOrgIdentifier
}

// Text joins title, description and recipient name with single spaces
func (r Record) Text() string {
	return strings.Join([]string{r.Title, r.Description, r.RecipientOrgName}, " ")
}
