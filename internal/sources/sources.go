// Package sources holds the static registry of configured feed
// endpoints. The built-in registry mirrors the curated pan-African
// source list; an optional YAML file replaces it entirely.
package sources

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"nairobell/aggregator/internal/enrich"
	"nairobell/aggregator/internal/models"
)

const (
	defaultLanguage    = "en"
	defaultCredibility = 5.0
)

// registryFile is the YAML document shape for a source registry file.
type registryFile struct {
	Sources []models.Source `yaml:"sources"`
}

// Load returns the source registry. When path is empty or the file does
// not exist, the built-in registry is used.
func Load(path string) ([]models.Source, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", path).Msg("Sources file not found, using built-in registry")
			return Defaults(), nil
		}
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s contains no sources", path)
	}

	seen := make(map[string]bool, len(file.Sources))
	out := make([]models.Source, 0, len(file.Sources))
	for i, src := range file.Sources {
		if err := validate(src); err != nil {
			return nil, fmt.Errorf("invalid source at index %d: %w", i, err)
		}
		if seen[src.ID] {
			return nil, fmt.Errorf("duplicate source id %q", src.ID)
		}
		seen[src.ID] = true
		out = append(out, applyDefaults(src))
	}

	log.Info().Int("count", len(out)).Str("path", path).Msg("Loaded source registry")
	return out, nil
}

func validate(src models.Source) error {
	if src.ID == "" {
		return fmt.Errorf("missing id")
	}
	if src.Name == "" {
		return fmt.Errorf("missing name")
	}
	if src.FeedURL == "" {
		return fmt.Errorf("missing feed_url")
	}
	if src.Credibility < 0 || src.Credibility > 10 {
		return fmt.Errorf("credibility %.1f out of range [0, 10]", src.Credibility)
	}
	if src.Category != "" && !containsString(models.Categories, src.Category) {
		return fmt.Errorf("unknown category %q", src.Category)
	}
	if src.Country != "" && !src.International() && !containsString(enrich.Countries(), src.Country) {
		return fmt.Errorf("unknown country %q", src.Country)
	}
	return nil
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func applyDefaults(src models.Source) models.Source {
	if src.Language == "" {
		src.Language = defaultLanguage
	}
	if src.Category == "" {
		src.Category = models.CategoryGeneral
	}
	if src.Country == "" {
		src.Country = models.CountryInternational
	}
	if src.Credibility == 0 {
		src.Credibility = defaultCredibility
	}
	return src
}

// Defaults returns the built-in source registry.
func Defaults() []models.Source {
	return []models.Source{
		{
			ID:          "bbc_africa",
			Name:        "BBC Africa",
			FeedURL:     "https://feeds.bbci.co.uk/news/world/africa/rss.xml",
			Website:     "https://www.bbc.com/news/world/africa",
			Country:     models.CountryInternational,
			Language:    "en",
			Category:    models.CategoryGeneral,
			Credibility: 9.0,
		},
		{
			ID:          "aljazeera_africa",
			Name:        "Al Jazeera Africa",
			FeedURL:     "https://www.aljazeera.com/xml/rss/all.xml",
			Website:     "https://www.aljazeera.com/africa/",
			Country:     models.CountryInternational,
			Language:    "en",
			Category:    models.CategoryGeneral,
			Credibility: 8.5,
		},
		{
			ID:          "cnn_africa",
			Name:        "CNN Africa",
			FeedURL:     "http://rss.cnn.com/rss/edition.rss",
			Website:     "https://edition.cnn.com/africa",
			Country:     models.CountryInternational,
			Language:    "en",
			Category:    models.CategoryGeneral,
			Credibility: 8.0,
		},
		{
			ID:          "daily_nation_kenya",
			Name:        "Daily Nation Kenya",
			FeedURL:     "https://nation.africa/kenya/rss",
			Website:     "https://nation.africa/kenya",
			Country:     "kenya",
			Language:    "en",
			Category:    models.CategoryGeneral,
			Credibility: 7.5,
		},
		{
			ID:          "the_star_kenya",
			Name:        "The Star Kenya",
			FeedURL:     "https://www.the-star.co.ke/feed/",
			Website:     "https://www.the-star.co.ke/",
			Country:     "kenya",
			Language:    "en",
			Category:    models.CategoryGeneral,
			Credibility: 7.0,
		},
		{
			ID:          "punch_nigeria",
			Name:        "The Punch Nigeria",
			FeedURL:     "https://punchng.com/feed/",
			Website:     "https://punchng.com/",
			Country:     "nigeria",
			Language:    "en",
			Category:    models.CategoryGeneral,
			Credibility: 7.5,
		},
		{
			ID:          "vanguard_nigeria",
			Name:        "Vanguard Nigeria",
			FeedURL:     "https://www.vanguardngr.com/feed/",
			Website:     "https://www.vanguardngr.com/",
			Country:     "nigeria",
			Language:    "en",
			Category:    models.CategoryGeneral,
			Credibility: 7.0,
		},
		{
			ID:          "premium_times_nigeria",
			Name:        "Premium Times Nigeria",
			FeedURL:     "https://www.premiumtimesng.com/feed",
			Website:     "https://www.premiumtimesng.com/",
			Country:     "nigeria",
			Language:    "en",
			Category:    models.CategoryGeneral,
			Credibility: 8.0,
		},
		{
			ID:          "news24_sa",
			Name:        "News24 South Africa",
			FeedURL:     "https://feeds.24.com/articles/news24/rss",
			Website:     "https://www.news24.com/",
			Country:     "south-africa",
			Language:    "en",
			Category:    models.CategoryGeneral,
			Credibility: 7.5,
		},
		{
			ID:          "iol_sa",
			Name:        "IOL South Africa",
			FeedURL:     "https://www.iol.co.za/cmlink/1.730.rss",
			Website:     "https://www.iol.co.za/",
			Country:     "south-africa",
			Language:    "en",
			Category:    models.CategoryGeneral,
			Credibility: 7.0,
		},
		{
			ID:          "graphic_ghana",
			Name:        "Graphic Online Ghana",
			FeedURL:     "https://www.graphic.com.gh/rss/news.xml",
			Website:     "https://www.graphic.com.gh/",
			Country:     "ghana",
			Language:    "en",
			Category:    models.CategoryGeneral,
			Credibility: 7.5,
		},
		{
			ID:          "myjoyonline_ghana",
			Name:        "MyJoyOnline Ghana",
			FeedURL:     "https://www.myjoyonline.com/feed/",
			Website:     "https://www.myjoyonline.com/",
			Country:     "ghana",
			Language:    "en",
			Category:    models.CategoryGeneral,
			Credibility: 7.0,
		},
		{
			ID:          "african_business",
			Name:        "African Business",
			FeedURL:     "https://african.business/feed",
			Website:     "https://african.business/",
			Country:     models.CountryInternational,
			Language:    "en",
			Category:    models.CategoryBusiness,
			Credibility: 8.0,
		},
		{
			ID:          "techcabal",
			Name:        "TechCabal",
			FeedURL:     "https://techcabal.com/feed/",
			Website:     "https://techcabal.com/",
			Country:     models.CountryInternational,
			Language:    "en",
			Category:    models.CategoryTechnology,
			Credibility: 8.5,
		},
		{
			ID:          "disrupt_africa",
			Name:        "Disrupt Africa",
			FeedURL:     "https://disrupt-africa.com/feed/",
			Website:     "https://disrupt-africa.com/",
			Country:     models.CountryInternational,
			Language:    "en",
			Category:    models.CategoryTechnology,
			Credibility: 7.5,
		},
	}
}
