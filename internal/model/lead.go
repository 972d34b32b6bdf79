package model

// ScoreResult is the output of the scoring engine.
type ScoreResult struct {
	Score               int      `json:"score"`
	RecommendedProducts []string `json:"recommended_products"`
}

// Lead is an Institution combined with its ScoreResult and any Override.
type Lead struct {
	Institution

	Score               int        `json:"score"`
	ComputedScore       int        `json:"computed_score"`
	RecommendedProducts []string   `json:"recommended_products"`
	Status              LeadStatus `json:"status"`
	ContactName         string     `json:"contact_name,omitempty"`
	ContactEmail        string     `json:"contact_email,omitempty"`
	ContactPhone        string     `json:"contact_phone,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	LastContactDate     string     `json:"last_contact_date,omitempty"`
}

// NewLead builds the computed lead for an institution before any override.
func NewLead(inst Institution, sr ScoreResult) Lead {
	products := make([]string, len(sr.RecommendedProducts))
	copy(products, sr.RecommendedProducts)
	return Lead{
		Institution:         inst,
		Score:               sr.Score,
		ComputedScore:       sr.Score,
		RecommendedProducts: products,
		Status:              StatusNew,
	}
}

// ApplyOverride returns the lead with every present override field taking
// precedence. Applying the same override twice yields the same lead.
func (l Lead) ApplyOverride(o Override) Lead {
	if o.ContactName != nil {
		l.ContactName = *o.ContactName
	}
	if o.ContactEmail != nil {
		l.ContactEmail = *o.ContactEmail
	}
	if o.ContactPhone != nil {
		l.ContactPhone = *o.ContactPhone
	}
	if o.Status != nil {
		l.Status = *o.Status
	}
	if o.Notes != nil {
		l.Notes = *o.Notes
	}
	if o.ScoreOverride != nil {
		l.Score = *o.ScoreOverride
	}
	if o.LastContactDate != nil {
		l.LastContactDate = *o.LastContactDate
	}
	return l
}

// ScoreResult returns the effective score and products of the lead.
func (l Lead) ScoreResult() ScoreResult {
	return ScoreResult{Score: l.Score, RecommendedProducts: l.RecommendedProducts}
}
