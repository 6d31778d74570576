package summary

import (
	"regexp"
	"strings"

	"github.com/leaselens/leaselens/internal/models"
)

// Ordered pattern lists for the regex fallback extractor: labeled forms
// first, descriptive sentences after, bare numeric forms last. The first
// matching pattern wins.

var rentPatterns = compileAll([]string{
	`Base\s+Rent:\s*\$?\s*[\d,]+\.?\d*\s*(?:USD)?(?:\s*(?:per\s+)?(?:month|mo|monthly))?`,
	`Monthly\s+Base\s+Rent:\s*[\d,]+\.?\d*\s*(?:USD)?\s*(?:per\s+)?(?:month|mo|monthly)?`,
	`Monthly\s+Rent:\s*\$?\s*[\d,]+\.?\d*\s*(?:per\s+)?(?:month|mo|monthly)?`,
	`Rent:\s*\$?\s*[\d,]+\.?\d*\s*(?:per\s+)?(?:month|mo|monthly)?`,
	`Rent\s+Amount:\s*\$?\s*[\d,]+\.?\d*\s*(?:per\s+)?(?:month|mo|monthly)?`,
	`\$\s*[\d,]+\.?\d*\s*(?:per\s+)?(?:month|mo|monthly)`,
	`[\d,]+\.?\d*\s*(?:per\s+)?(?:month|mo|monthly)`,
	`\$\s*[\d,]+\.?\d*\s*/\s*(?:month|mo)`,
	`(?:The\s+)?(?:monthly|Monthly)\s+rent\s+(?:shall\s+be|is|will\s+be)\s*\$?\s*[\d,]+\.?\d*`,
	`(?:Rent|rent)\s+(?:shall\s+be|is|will\s+be)\s*\$?\s*[\d,]+\.?\d*\s*(?:per\s+)?(?:month|mo)`,
})

var termPatterns = compileAll([]string{
	`Lease\s+Term:\s*(?:a\s+)?(?:term\s+of\s+)?(\d+)\s*(?:-|\s+to\s+-)\s*(\d+)\s*(?:month|months)`,
	`Lease\s+Term:\s*(?:a\s+)?(?:term\s+of\s+)?(\d+)\s*(?:month|months|year|years)`,
	`Term:\s*(?:a\s+)?(?:term\s+of\s+)?(\d+)\s*(?:month|months|year|years)`,
	`Lease\s+Period:\s*(?:a\s+)?(?:period\s+of\s+)?(\d+)\s*(?:month|months|year|years)`,
	`(?:This\s+)?(?:lease|Lease)\s+is\s+(?:for\s+a\s+)?(?:term\s+of\s+)?(?:one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|\d+)\s*\(\s*\d+\s*\)\s*(?:month|months|year|years)`,
	`for\s+(?:a\s+)?(?:period\s+of\s+)?(?:one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|\d+)\s*\(\s*\d+\s*\)\s*(?:month|months)`,
	`for\s+(?:a\s+)?(?:period\s+of\s+)?(\d+)\s*(?:month|months|year|years)`,
	`(?:for|during|during\s+the\s+term\s+of)\s+(\d+)\s*(?:month|months|year|years)`,
	`(\d+)\s*(?:-|\s+to\s+-)\s*(\d+)\s*(?:month|months)`,
	`(\d+)\s*(?:month|months|year|years)\s+(?:term|lease)`,
})

var datePatterns = compileAll([]string{
	`Commencement\s+Date:\s*((?:0[1-9]|1[0-2])/(?:0[1-9]|[12][0-9]|3[01])/\d{4})`,
	`Commencement\s+Date:\s*((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+(?:\d{1,2})(?:st|nd|rd|th)?,?\s+\d{4})`,
	`Start\s+Date:\s*((?:0[1-9]|1[0-2])/(?:0[1-9]|[12][0-9]|3[01])/\d{4})`,
	`Start\s+Date:\s*((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+(?:\d{1,2})(?:st|nd|rd|th)?,?\s+\d{4})`,
	`Effective\s+Date:\s*((?:0[1-9]|1[0-2])/(?:0[1-9]|[12][0-9]|3[01])/\d{4})`,
	`Effective\s+Date:\s*((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+(?:\d{1,2})(?:st|nd|rd|th)?,?\s+\d{4})`,
	`Lease\s+Start\s+(?:Date|):\s*((?:0[1-9]|1[0-2])/(?:0[1-9]|[12][0-9]|3[01])/\d{4})`,
	`(?:This\s+)?(?:lease|Lease)\s+(?:begins|starts?|commences?|is\s+effective)\s+(?:on|:)\s*((?:January|February|March|April|May|June|July|August|September|October|November|December)\s+(?:\d{1,2})(?:st|nd|rd|th)?,?\s+\d{4})`,
	`(?:This\s+)?(?:lease|Lease)\s+(?:begins|starts?|commences?|is\s+effective)\s+(?:on|:)\s*((?:0[1-9]|1[0-2])/(?:0[1-9]|[12][0-9]|3[01])/\d{4})`,
	`\b(0[1-9]|1[0-2])/(0[1-9]|[12][0-9]|3[01])/\d{4}\b`,
	`\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+\d{4}\b`,
	`\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+\d{4}\b`,
	`\b\d{4}-\d{2}-\d{2}\b`,
})

var landlordPatterns = compileAll([]string{
	`(?:Landlord|Owner|Lessor|Property Manager):\s*([A-Z][a-z]+(?:\s+[A-Z](?:\.\s+)?[a-z]+)*(?:\s+[A-Z][a-z]+)*)`,
	`(?:Landlord|Owner|Lessor|Property Manager)\s+([A-Z][a-z]+(?:\s+[A-Z](?:\.\s+)?[a-z]+)*(?:\s+[A-Z][a-z]+)*)`,
	`Landlord\s+Name:?\s*([A-Z][a-z]+(?:\s+[A-Z](?:\.\s+)?[a-z]+)*(?:\s+[A-Z][a-z]+)*)`,
	`(?:Landlord|Owner|Lessor|Property Manager):\s*([A-Z]{2,}(?:\s+[A-Z]{2,})+(?:\s+(?:LLC|INC|LTD|CORP|CO|COMPANY))?)`,
	`(?:Landlord|Owner|Lessor|Property Manager)\s+([A-Z]{2,}(?:\s+[A-Z]{2,})+(?:\s+(?:LLC|INC|LTD|CORP|CO|COMPANY))?)`,
	`LANDLORD,\s*([A-Z\s]+(?:LLC|INC|LTD|CORP|CO|COMPANY)?)`,
	`(?:Landlord|Owner|Lessor):\s*([A-Z][a-zA-Z\s&]+(?:LLC|Inc\.|Ltd\.|Corp\.|Co\.|Company)?)`,
})

var tenantPatterns = compileAll([]string{
	`(?:Tenant|Lessee|Renter):\s*([A-Z][a-z]+(?:\s+[A-Z](?:\.\s+)?[a-z]+)*(?:\s+[A-Z][a-z]+)*)`,
	`(?:Tenant|Lessee|Renter)\s+([A-Z][a-z]+(?:\s+[A-Z](?:\.\s+)?[a-z]+)*(?:\s+[A-Z][a-z]+)*)`,
	`Tenant\s+Name:?\s*([A-Z][a-z]+(?:\s+[A-Z](?:\.\s+)?[a-z]+)*(?:\s+[A-Z][a-z]+)*)`,
	`(?:Tenant|Lessee|Renter):\s*([A-Z]{2,}(?:\s+[A-Z]{2,})+(?:\s+(?:LLC|INC|LTD|CORP|CO|COMPANY))?)`,
	`(?:Tenant|Lessee|Renter)\s+([A-Z]{2,}(?:\s+[A-Z]{2,})+(?:\s+(?:LLC|INC|LTD|CORP|CO|COMPANY))?)`,
	`TENANT,\s*([A-Z\s]+(?:LLC|INC|LTD|CORP|CO|COMPANY)?)`,
	`(?:Tenant|Lessee|Renter):\s*([A-Z][a-zA-Z\s&]+(?:LLC|Inc\.|Ltd\.|Corp\.|Co\.|Company)?)`,
})

func compileAll(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(`(?i)` + p)
	}
	return compiled
}

// firstMatch returns the full matched span of the first pattern that hits.
func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// firstGroup returns the first captured group of the first pattern that hits.
func firstGroup(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ExtractKeyInfo is the regex fallback for documents where the model found
// neither a rent amount nor a start date. Missing fields carry the literal
// "Not found" sentinel.
func ExtractKeyInfo(text string) models.KeyInfo {
	return models.KeyInfo{
		RentAmount: orNotFound(firstMatch(rentPatterns, text)),
		LeaseTerm:  orNotFound(firstMatch(termPatterns, text)),
		StartDate:  orNotFound(firstMatch(datePatterns, text)),
		Landlord:   orNotFound(firstGroup(landlordPatterns, text)),
		Tenant:     orNotFound(firstGroup(tenantPatterns, text)),
	}
}

func orNotFound(v string) string {
	if v == "" {
		return models.NotFound
	}
	return v
}
