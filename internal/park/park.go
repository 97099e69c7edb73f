// internal/park/park.go
//
// Park records as loaded from the catalog.
// A Park is immutable once loaded; game state keeps a pointer into the
// catalog slice rather than a copy.

package park

import (
	"strings"

	"github.com/robalobadob/npsguess/internal/geo"
)

// Park is one National Park Service site.
type Park struct {
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	City         string     `json:"city"`
	State        string     `json:"state"`     // two-letter code
	StateName    string     `json:"stateName"` // full name, derived from State when absent
	Location     *geo.Point `json:"location,omitempty"`
	ImageURL     string     `json:"imageUrl"`
	ImageAlt     string     `json:"imageAlt,omitempty"`
	ImageCaption string     `json:"imageCaption,omitempty"`
	Description  string     `json:"description,omitempty"`
	URL          string     `json:"url,omitempty"`
}

// HasImage reports whether the park can be shown as a puzzle.
func (p *Park) HasImage() bool {
	return strings.TrimSpace(p.ImageURL) != ""
}

// SameAs reports whether p and o are the same catalog entry.
func (p *Park) SameAs(o *Park) bool {
	if p == nil || o == nil {
		return false
	}
	if p == o {
		return true
	}
	if p.Code != "" && o.Code != "" {
		return strings.EqualFold(p.Code, o.Code)
	}
	return p.Name == o.Name
}

// Place renders "City, ST" for display, omitting empty parts.
func (p *Park) Place() string {
	switch {
	case p.City != "" && p.State != "":
		return p.City + ", " + p.State
	case p.City != "":
		return p.City
	default:
		return p.State
	}
}

// Playable returns pointers to the parks that have an image, preserving catalog order.
func Playable(parks []Park) []*Park {
	out := make([]*Park, 0, len(parks))
	for i := range parks {
		if parks[i].HasImage() {
			out = append(out, &parks[i])
		}
	}
	return out
}

// Normalize fills derived fields (StateName) and trims text fields.
func Normalize(p Park) Park {
	p.Code = strings.TrimSpace(p.Code)
	p.Name = strings.TrimSpace(p.Name)
	p.City = strings.TrimSpace(p.City)
	p.State = strings.ToUpper(strings.TrimSpace(p.State))
	p.StateName = strings.TrimSpace(p.StateName)
	if p.StateName == "" {
		p.StateName = StateName(p.State)
	}
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	return p
}
