package dataset

// PartnerFilter selects records by campaign label.
type PartnerFilter interface {
	MatchLabel(label string) bool
}

// PeriodFilter selects records by their period text.
type PeriodFilter interface {
	MatchPeriod(period string) bool
}

// Apply narrows d to the records both filters accept. A nil filter places
// no constraint; with both nil d itself is returned. Apply never modifies d,
// so the same partner and period can be applied to the activity and the goal
// dataset to get matching numerator and denominator slices.
func Apply(d *Dataset, partner PartnerFilter, period PeriodFilter) *Dataset {
	if partner == nil && period == nil {
		return d
	}
	return d.Filter(func(r Record) bool {
		if partner != nil && !partner.MatchLabel(r.CampaignLabel) {
			return false
		}
		if period != nil && !period.MatchPeriod(r.Period) {
			return false
		}
		return true
	})
}
