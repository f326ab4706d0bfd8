// Package partners maps partner names to the raw campaign labels that roll
// up into them.
package partners

import (
	"strings"

	"aliados/internal/dataset"
	"aliados/internal/textnorm"
)

// Partner is one enumerated partner and its campaign labels. A partner
// with no campaigns is matched by its own name.
type Partner struct {
	Name      string   `yaml:"name" json:"name"`
	Campaigns []string `yaml:"campaigns" json:"campaigns"`
}

// Directory is an immutable, ordered partner table.
type Directory struct {
	partners  []Partner
	campaigns map[string]map[string]struct{}
	tokens    []string
}

// NewDirectory builds a directory from partners in the given order.
// Names are upper-cased; duplicate names keep the first entry.
func NewDirectory(list []Partner) *Directory {
	d := &Directory{campaigns: make(map[string]map[string]struct{}, len(list))}
	for _, p := range list {
		name := Canonical(p.Name)
		if name == "" {
			continue
		}
		if _, dup := d.campaigns[name]; dup {
			continue
		}
		set := make(map[string]struct{}, len(p.Campaigns))
		labels := make([]string, 0, len(p.Campaigns))
		for _, c := range p.Campaigns {
			label := Canonical(c)
			if label == "" {
				continue
			}
			if _, seen := set[label]; !seen {
				set[label] = struct{}{}
				labels = append(labels, label)
			}
		}
		d.campaigns[name] = set
		d.partners = append(d.partners, Partner{Name: name, Campaigns: labels})
		d.tokens = append(d.tokens, textnorm.Tokens(name))
	}
	return d
}

// Default returns the built-in partner table.
func Default() *Directory {
	return NewDirectory(defaultPartners)
}

// Canonical upper-cases s, removes accents and collapses whitespace, so
// "Atento  Swat Bogotá" and "ATENTO SWAT BOGOTA" compare equal.
func Canonical(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(textnorm.Fold(s)), " "))
}

// Partners returns the table in order.
func (d *Directory) Partners() []Partner {
	out := make([]Partner, len(d.partners))
	for i, p := range d.partners {
		out[i] = Partner{Name: p.Name, Campaigns: append([]string(nil), p.Campaigns...)}
	}
	return out
}

// Names returns the partner names in table order.
func (d *Directory) Names() []string {
	out := make([]string, len(d.partners))
	for i, p := range d.partners {
		out[i] = p.Name
	}
	return out
}

// Known reports whether name is an enumerated partner.
func (d *Directory) Known(name string) bool {
	_, ok := d.campaigns[Canonical(name)]
	return ok
}

// CampaignsFor returns the campaign labels of partner. An empty result
// means "match the upper-cased partner name exactly", never "no filter".
func (d *Directory) CampaignsFor(partner string) []string {
	for _, p := range d.partners {
		if p.Name == Canonical(partner) {
			return append([]string(nil), p.Campaigns...)
		}
	}
	return nil
}

// Selector returns the label filter for partner, or nil when partner is
// empty.
func (d *Directory) Selector(partner string) dataset.PartnerFilter {
	if strings.TrimSpace(partner) == "" {
		return nil
	}
	if set := d.campaigns[Canonical(partner)]; len(set) > 0 {
		return campaignSet(set)
	}
	return exactLabel(strings.ToUpper(strings.TrimSpace(partner)))
}

// FilterByPartner narrows ds to partner's rows. An empty partner returns
// ds unchanged.
func (d *Directory) FilterByPartner(ds *dataset.Dataset, partner string) *dataset.Dataset {
	return dataset.Apply(ds, d.Selector(partner), nil)
}

// Detect returns the first partner, in table order, whose name appears as
// whole words in question, or "" when none does.
func (d *Directory) Detect(question string) string {
	tokens := textnorm.Tokens(question)
	for i, p := range d.partners {
		if strings.Contains(tokens, d.tokens[i]) {
			return p.Name
		}
	}
	return ""
}

type campaignSet map[string]struct{}

func (s campaignSet) MatchLabel(label string) bool {
	_, ok := s[Canonical(label)]
	return ok
}

type exactLabel string

func (e exactLabel) MatchLabel(label string) bool {
	return label == string(e)
}
