package config

// Department tags.
const (
	DepartmentCDP         = "cdp"         // Commission des Données Personnelles
	DepartmentDSC         = "dsc"         // Division Spéciale de la Cybercriminalité
	DepartmentPolice      = "police"      // Police Nationale
	DepartmentGendarmerie = "gendarmerie" // Gendarmerie Nationale
	DepartmentHealth      = "health"      // Ministère de la Santé
	DepartmentCustoms     = "customs"     // Direction Générale des Douanes

	DefaultDepartment = DepartmentPolice
	DefaultPriority   = "medium"
)

const (
	// Thread
	MaxMessageLength = 5000

	// Case intake
	MaxTitleLength       = 255
	MaxDescriptionLength = 10000
	MaxCommentLength     = 2000

	// Case listing
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Route is the routing outcome attached to a category.
type Route struct {
	Department string
	Priority   string
	Reason     string
}

// CategoryRouting maps a normalized category name to its department.
// Keys are lower-case; both the slug and the display name of a category are listed.
var CategoryRouting = map[string]Route{
	// CDP
	"usurpation_identité":                             {DepartmentCDP, "high", "Usurpation d'identité - compétence CDP"},
	"usurpation d'identité":                           {DepartmentCDP, "high", "Usurpation d'identité - compétence CDP"},
	"piratage_compte":                                 {DepartmentCDP, "high", "Piratage de compte - compétence CDP"},
	"piratage de compte":                              {DepartmentCDP, "high", "Piratage de compte - compétence CDP"},
	"diffusion_donnees":                               {DepartmentCDP, "urgent", "Diffusion non autorisée de données personnelles - compétence CDP"},
	"diffusion non autorisée de données personnelles": {DepartmentCDP, "urgent", "Diffusion non autorisée de données personnelles - compétence CDP"},

	// DSC
	"phishing":               {DepartmentDSC, "high", "Phishing/Hameçonnage - compétence DSC"},
	"hameçonnage":            {DepartmentDSC, "high", "Phishing/Hameçonnage - compétence DSC"},
	"phishing / hameçonnage": {DepartmentDSC, "high", "Phishing/Hameçonnage - compétence DSC"},
	"escroquerie_ligne":      {DepartmentDSC, "high", "Escroquerie en ligne - compétence DSC"},
	"escroquerie en ligne":   {DepartmentDSC, "high", "Escroquerie en ligne - compétence DSC"},
	"cyberharcèlement":       {DepartmentDSC, "urgent", "Cyberharcèlement - compétence DSC"},

	// Police, urban slugs
	"vol_urbain":                  {DepartmentPolice, "medium", "Vol et Cambriolage (zone urbaine) - compétence Police"},
	"violence_urbaine":            {DepartmentPolice, "urgent", "Violence et Agression (zone urbaine) - compétence Police"},
	"harcèlement_physique_urbain": {DepartmentPolice, "high", "Harcèlement physique/moral (zone urbaine) - compétence Police"},

	// Gendarmerie, rural slugs
	"vol_rural":                  {DepartmentGendarmerie, "medium", "Vol et Cambriolage (zone rurale) - compétence Gendarmerie"},
	"violence_rurale":            {DepartmentGendarmerie, "urgent", "Violence et Agression (zone rurale) - compétence Gendarmerie"},
	"harcèlement_physique_rural": {DepartmentGendarmerie, "high", "Harcèlement physique/moral (zone rurale) - compétence Gendarmerie"},

	// Health
	"fraude pharmaceutique": {DepartmentHealth, "high", "Fraude pharmaceutique - compétence Ministère de la Santé"},
	"trafic de médicaments": {DepartmentHealth, "high", "Trafic de médicaments - compétence Ministère de la Santé"},
	"maladie infectieuse":   {DepartmentHealth, "urgent", "Maladie infectieuse - compétence Ministère de la Santé"},

	// Customs
	"trafic de drogue": {DepartmentCustoms, "urgent", "Trafic de drogue - compétence Douanes"},
	"contrefaçon":      {DepartmentCustoms, "high", "Contrefaçon - compétence Douanes"},
}

// Description keyword sets, scanned in this order.
var (
	DataProtectionKeywords = []string{"identité", "données personnelles", "piratage", "compte"}
	CybercrimeKeywords     = []string{"phishing", "hameçonnage", "escroquerie", "internet", "en ligne", "cyber"}
)

// Region lists. Saint-Louis appears in both; urban is checked first.
var (
	UrbanRegions = []string{
		"Dakar", "Guédiawaye", "Pikine", "Rufisque", "Thiès", "Saint-Louis", "Kaolack",
	}
	RuralRegions = []string{
		"Tambacounda", "Kédougou", "Sédhiou", "Kolda", "Ziguinchor", "Fatick", "Diourbel",
		"Louga", "Matam", "Saint-Louis", "Bakel", "Ouro Sogui", "Vélingara",
	}
)

// GeographicCrime is a family of category keywords routed by geography.
type GeographicCrime struct {
	Keywords []string
	Priority string
	Label    string
}

// GeographicCrimes are checked in order against the category name.
var GeographicCrimes = []GeographicCrime{
	{Keywords: []string{"vol", "cambriol"}, Priority: "medium", Label: "Vol/Cambriolage"},
	{Keywords: []string{"violence", "agression"}, Priority: "urgent", Label: "Violence/Agression"},
	{Keywords: []string{"harcèlement", "harcelement"}, Priority: "high", Label: "Harcèlement"},
}

// DepartmentNames holds the display names of every department tag.
var DepartmentNames = map[string]string{
	DepartmentCDP:         "Commission des Données Personnelles",
	DepartmentDSC:         "Division Spéciale de la Cybercriminalité",
	DepartmentPolice:      "Police Nationale",
	DepartmentGendarmerie: "Gendarmerie Nationale",
	DepartmentHealth:      "Ministère de la Santé et de l'Hygiène Publique",
	DepartmentCustoms:     "Direction Générale des Douanes",
}
