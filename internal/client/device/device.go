// Package device picks the layout variant for switched screens from the
// user agent and the viewport width.
package device

import "regexp"

type Variant int

const (
	Classic Variant = iota
	Compact
)

func (v Variant) String() string {
	if v == Compact {
		return "compact"
	}
	return "classic"
}

// CompactMaxWidth is the widest viewport still treated as compact.
const CompactMaxWidth = 768

var mobileAgent = regexp.MustCompile(`(?i)Android|BlackBerry|iPhone|iPad|iPod|Opera Mini|IEMobile|WPDesktop`)

type Input struct {
	UserAgent string
	// Width is the viewport width; 0 means unknown.
	Width int
}

// Classify returns Compact for mobile user agents or narrow viewports.
func Classify(in Input) Variant {
	if mobileAgent.MatchString(in.UserAgent) {
		return Compact
	}
	if in.Width > 0 && in.Width <= CompactMaxWidth {
		return Compact
	}
	return Classic
}
