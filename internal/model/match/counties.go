package match

// DefaultCounty is preselected during onboarding.
const DefaultCounty = "Nairobi City"

// Counties returns the 47 Kenyan counties in their official order.
func Counties() []string {
	return append([]string(nil), counties...)
}

// IsCounty reports whether name is one of the known counties.
func IsCounty(name string) bool {
	for _, c := range counties {
		if c == name {
			return true
		}
	}
	return false
}

var counties = []string{
	"Mombasa", "Kwale", "Kilifi", "Tana River", "Lamu", "Taita/Taveta",
	"Garissa", "Wajir", "Mandera", "Marsabit", "Isiolo", "Meru",
	"Tharaka-Nithi", "Embu", "Kitui", "Machakos", "Makueni", "Nyandarua",
	"Nyeri", "Kirinyaga", "Murang'a", "Kiambu", "Turkana", "West Pokot",
	"Samburu", "Trans Nzoia", "Uasin Gishu", "Elgeyo/Marakwet", "Nandi",
	"Baringo", "Laikipia", "Nakuru", "Narok", "Kajiado", "Kericho",
	"Bomet", "Kakamega", "Vihiga", "Bungoma", "Busia", "Siaya", "Kisumu",
	"Homa Bay", "Migori", "Kisii", "Nyamira", "Nairobi City",
}
