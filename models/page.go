package models

// Page enumerates the screens a presentation layer offers.
type Page string

const (
	PageSignup      Page = "Signup"
	PageLogin       Page = "Login"
	PageHome        Page = "Home"
	PageMovieFinder Page = "MovieFinder"
)

// Pages lists every page in navigation order.
var Pages = []Page{PageSignup, PageLogin, PageHome, PageMovieFinder}

// RequiresAuth reports whether the page is only reachable after login.
func (p Page) RequiresAuth() bool {
	return p == PageHome || p == PageMovieFinder
}

// ChartPoint is one bar of an aggregate chart.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
