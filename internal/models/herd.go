package models

import "time"

type Herd struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	CowCount      int       `json:"cow_count"`
	LocationLine1 *string   `json:"location_line1"`
	LocationLine2 *string   `json:"location_line2"`
	CreatedAt     time.Time `json:"created_at"`
	UserID        int64     `json:"user_id"`
}

// HerdInput is the body of herd create and update requests.
type HerdInput struct {
	Name          string  `json:"name"`
	CowCount      int     `json:"cow_count"`
	LocationLine1 *string `json:"location_line1"`
	LocationLine2 *string `json:"location_line2"`
}

// Input returns the mutable part of h, used by read-modify-write edits.
func (h Herd) Input() HerdInput {
	return HerdInput{
		Name:          h.Name,
		CowCount:      h.CowCount,
		LocationLine1: h.LocationLine1,
		LocationLine2: h.LocationLine2,
	}
}

// Location joins the non-empty location lines with ", ".
func (h Herd) Location() string {
	s := ""
	for _, l := range []*string{h.LocationLine1, h.LocationLine2} {
		if l == nil || *l == "" {
			continue
		}
		if s != "" {
			s += ", "
		}
		s += *l
	}
	return s
}
