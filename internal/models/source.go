package models

// CountryInternational marks sources without a single national focus.
// Articles from such sources fall back to the default country set when
// no country keyword matches.
const CountryInternational = "international"

// Source describes one configured feed endpoint. The registry is loaded
// once at startup and is read-only for the lifetime of the process.
type Source struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	FeedURL     string  `yaml:"feed_url" json:"feed_url"`
	Website     string  `yaml:"website" json:"website,omitempty"`
	Country     string  `yaml:"country" json:"country"`
	Language    string  `yaml:"language" json:"language"`
	Category    string  `yaml:"category" json:"category"`
	Credibility float64 `yaml:"credibility" json:"credibility"`
}

// International reports whether the source has no single national focus.
func (s Source) International() bool {
	return s.Country == CountryInternational
}
