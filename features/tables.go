package features

// Option is a form choice: the label shown to the user and the value the
// transform produces for it.
type Option struct {
	Label string
	Code  string
}

var categoryOptions = []Option{
	{"Entertainment", "entertainment"},
	{"Food & Dining", "food_dining"},
	{"Gas & Transport", "gas_transport"},
	{"Grocery (online)", "grocery_net"},
	{"Grocery (in store)", "grocery_pos"},
	{"Health & Fitness", "health_fitness"},
	{"Home", "home"},
	{"Kids & Pets", "kids_pets"},
	{"Miscellaneous (online)", "misc_net"},
	{"Miscellaneous (in store)", "misc_pos"},
	{"Personal Care", "personal_care"},
	{"Shopping (online)", "shopping_net"},
	{"Shopping (in store)", "shopping_pos"},
	{"Travel", "travel"},
}

// Sector labels are fed to the model verbatim.
var sectorOptions = []string{
	"Servicios Sociales y Comunitarios",
	"Educación e Investigación",
	"Legal y Regulador",
	"other",
	"Ciencias Ambientales y Naturales",
	"Medios y Comunicación",
	"Ingeniería y Construcción",
}

var weekdayOptions = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

var genderOptions = []Option{
	{"Male", "1"},
	{"Female", "0"},
}

var (
	categoryCodes = map[string]string{}
	sectorSet     = map[string]bool{}
	weekdayIndex  = map[string]int{}
	genderFlags   = map[string]int{
		"Male":   1,
		"Female": 0,
		"Hombre": 1,
		"Mujer":  0,
	}
)

func init() {
	for _, opt := range categoryOptions {
		categoryCodes[opt.Label] = opt.Code
		// the raw code is a label of itself
		categoryCodes[opt.Code] = opt.Code
	}
	for _, s := range sectorOptions {
		sectorSet[s] = true
	}
	for i, d := range weekdayOptions {
		weekdayIndex[d] = i
	}
}

// CategoryCode maps a category display label to the model's category code.
func CategoryCode(label string) (string, bool) {
	code, ok := categoryCodes[normalizeLabel(label)]
	return code, ok
}

// WeekdayIndex maps a day name to 0 (Monday) .. 6 (Sunday).
func WeekdayIndex(name string) (int, bool) {
	idx, ok := weekdayIndex[normalizeLabel(name)]
	return idx, ok
}

// GenderFlag maps a gender label to 1 (male) or 0 (female).
func GenderFlag(label string) (int, bool) {
	flag, ok := genderFlags[normalizeLabel(label)]
	return flag, ok
}

// IsSector reports whether label is a known employment sector.
func IsSector(label string) bool {
	return sectorSet[normalizeLabel(label)]
}

// CategoryOptions returns the category labels offered by the form, in
// display order, with their model codes.
func CategoryOptions() []Option { return append([]Option(nil), categoryOptions...) }

// SectorOptions returns the employment sectors offered by the form.
func SectorOptions() []string { return append([]string(nil), sectorOptions...) }

// WeekdayOptions returns the weekday names from Monday to Sunday.
func WeekdayOptions() []string { return append([]string(nil), weekdayOptions...) }

// GenderOptions returns the gender labels offered by the form.
func GenderOptions() []Option { return append([]Option(nil), genderOptions...) }
