package ui

// Countries is the country wheel cycled with [ and ], named as the station
// directory spells them.
var Countries = []string{
	"Algeria", "Angola", "Benin", "Botswana", "Burkina Faso", "Burundi",
	"Cameroon", "Cape Verde", "Central African Republic", "Chad", "Comoros",
	"Congo", "Côte D'ivoire", "Djibouti", "Egypt", "Equatorial Guinea",
	"Eritrea", "Eswatini", "Ethiopia", "Gabon", "Gambia", "Ghana", "Guinea",
	"Guinea-Bissau", "Kenya", "Lesotho", "Liberia", "Libya", "Madagascar",
	"Malawi", "Mali", "Mauritania", "Mauritius", "Morocco", "Mozambique",
	"Namibia", "Niger", "Nigeria", "Rwanda", "Sao Tome And Principe",
	"Senegal", "Seychelles", "Sierra Leone", "Somalia", "South Africa",
	"South Sudan", "Sudan", "Tanzania", "The Democratic Republic Of The Congo",
	"Togo", "Tunisia", "Uganda", "Zambia", "Zimbabwe",
}

// countryIndex finds country in list, appending it when missing.
func countryIndex(list []string, country string) ([]string, int) {
	for i, c := range list {
		if c == country {
			return list, i
		}
	}
	out := append(append([]string(nil), list...), country)
	return out, len(out) - 1
}
