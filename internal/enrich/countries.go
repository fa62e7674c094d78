package enrich

import (
	"strings"

	"nairobell/aggregator/internal/models"
)

// countryEntry maps a country code to the keywords (country name,
// demonym, major cities) that mark an article as focused on it. The
// table is ordered so CountryFocus output is deterministic.
type countryEntry struct {
	code     string
	keywords []string
}

var countryTable = []countryEntry{
	{"nigeria", []string{"nigeria", "nigerian", "lagos", "abuja", "kano"}},
	{"kenya", []string{"kenya", "kenyan", "nairobi", "mombasa", "kisumu"}},
	{"south-africa", []string{"south africa", "south african", "johannesburg", "cape town", "durban", "pretoria"}},
	{"ghana", []string{"ghana", "ghanaian", "accra", "kumasi", "tamale"}},
	{"ethiopia", []string{"ethiopia", "ethiopian", "addis ababa", "dire dawa"}},
	{"uganda", []string{"uganda", "ugandan", "kampala", "entebbe"}},
	{"tanzania", []string{"tanzania", "tanzanian", "dar es salaam", "dodoma"}},
	{"egypt", []string{"egypt", "egyptian", "cairo", "alexandria"}},
	{"morocco", []string{"morocco", "moroccan", "casablanca", "rabat", "marrakech"}},
	{"tunisia", []string{"tunisia", "tunisian", "tunis"}},
	{"algeria", []string{"algeria", "algerian", "algiers"}},
	{"zimbabwe", []string{"zimbabwe", "zimbabwean", "harare", "bulawayo"}},
	{"zambia", []string{"zambia", "zambian", "lusaka"}},
	{"botswana", []string{"botswana", "gaborone"}},
	{"rwanda", []string{"rwanda", "rwandan", "kigali"}},
	{"senegal", []string{"senegal", "senegalese", "dakar"}},
	{"ivory-coast", []string{"ivory coast", "cote d'ivoire", "abidjan", "yamoussoukro"}},
	{"cameroon", []string{"cameroon", "cameroonian", "yaounde", "douala"}},
	{"mali", []string{"mali", "malian", "bamako"}},
	{"burkina-faso", []string{"burkina faso", "ouagadougou"}},
	{"niger", []string{"niger", "niamey"}},
	{"chad", []string{"chad", "chadian", "n'djamena"}},
	{"sudan", []string{"sudan", "sudanese", "khartoum"}},
	{"south-sudan", []string{"south sudan", "juba"}},
	{"somalia", []string{"somalia", "somali", "mogadishu"}},
	{"djibouti", []string{"djibouti"}},
	{"eritrea", []string{"eritrea", "eritrean", "asmara"}},
	{"libya", []string{"libya", "libyan", "tripoli", "benghazi"}},
	{"madagascar", []string{"madagascar", "antananarivo"}},
	{"mauritius", []string{"mauritius", "port louis"}},
	{"seychelles", []string{"seychelles", "victoria"}},
	{"comoros", []string{"comoros", "moroni"}},
	{"cape-verde", []string{"cape verde", "praia"}},
	{"sao-tome", []string{"sao tome", "principe"}},
	{"equatorial-guinea", []string{"equatorial guinea", "malabo"}},
	{"gabon", []string{"gabon", "libreville"}},
	{"republic-congo", []string{"republic of congo", "brazzaville"}},
	{"drc", []string{"democratic republic", "drc", "congo", "kinshasa"}},
	{"car", []string{"central african republic", "bangui"}},
	{"angola", []string{"angola", "angolan", "luanda"}},
	{"namibia", []string{"namibia", "namibian", "windhoek"}},
	{"lesotho", []string{"lesotho", "maseru"}},
	{"swaziland", []string{"swaziland", "eswatini", "mbabane"}},
	{"malawi", []string{"malawi", "malawian", "lilongwe", "blantyre"}},
	{"mozambique", []string{"mozambique", "mozambican", "maputo"}},
	{"liberia", []string{"liberia", "liberian", "monrovia"}},
	{"sierra-leone", []string{"sierra leone", "freetown"}},
	{"guinea", []string{"guinea", "conakry"}},
	{"guinea-bissau", []string{"guinea-bissau", "bissau"}},
	{"gambia", []string{"gambia", "banjul"}},
	{"benin", []string{"benin", "porto-novo", "cotonou"}},
	{"togo", []string{"togo", "lome"}},
}

// defaultCountryFocus is assigned to articles from international
// sources when no country keyword matches.
var defaultCountryFocus = []string{"nigeria", "kenya", "south-africa", "ghana", "ethiopia"}

// CountryFocus determines which countries an article focuses on by
// scanning the text for country keywords. Multi-country articles keep
// every match, in table order. An article with no match falls back to
// the source country, or to the default high-traffic set when the
// source is international. The result is never empty.
func CountryFocus(title, description, sourceCountry string) []string {
	text := strings.ToLower(title + " " + description)

	var countries []string
	for _, entry := range countryTable {
		if containsAny(text, entry.keywords) {
			countries = append(countries, entry.code)
		}
	}

	if len(countries) > 0 {
		return countries
	}
	if sourceCountry != "" && sourceCountry != models.CountryInternational {
		return []string{sourceCountry}
	}

	out := make([]string, len(defaultCountryFocus))
	copy(out, defaultCountryFocus)
	return out
}

// Countries returns the full list of country codes the enricher knows
// about, in table order.
func Countries() []string {
	codes := make([]string, len(countryTable))
	for i, entry := range countryTable {
		codes[i] = entry.code
	}
	return codes
}
