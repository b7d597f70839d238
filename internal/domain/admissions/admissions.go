// Package admissions generates the bilingual admissions guidance attached to
// every school. Output depends only on the school name, its website and its
// levels, so it can be regenerated at any time.
package admissions

import (
	"regexp"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
)

// Locale is the guidance for one language.
type Locale struct {
	Summary        string   `json:"summary"`
	Timeline       []string `json:"timeline"`
	SchoolSpecific []string `json:"schoolSpecific"`
	Notes          []string `json:"notes"`
}

// Source is a citation shown under the guidance.
type Source struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Info is the generated admissions document.
type Info struct {
	NL      Locale   `json:"nl"`
	EN      Locale   `json:"en"`
	Sources []Source `json:"sources"`
}

// Special-education schools often run outside central matching.
var specialRoute = regexp.MustCompile(`(?i)vso|orion|signis|visio|kentalis`)

var baseSources = []Source{
	{Label: "Schoolkeuze020 - De overstap", URL: "https://schoolkeuze020.nl/de-overstap/"},
	{Label: "Schoolkeuze020 - Centrale aanmeldweek", URL: "https://schoolkeuze020.nl/centrale-aanmeldweek/"},
	{Label: "Schoolkeuze020 - Praktijkonderwijs/KOVO", URL: "https://schoolkeuze020.nl/aanmelding-voor-praktijkonderwijs-of-kovo/"},
	{Label: "OSVO", URL: "https://www.osvo.nl"},
}

// Build returns the admissions guidance for a school. websiteURL may be empty.
func Build(name, websiteURL string, levels []level.Level) Info {
	var (
		praktijk   bool
		offersVWO  bool
		offersHAVO bool
		offersVMBO bool
	)
	for _, l := range levels {
		switch {
		case l == level.Praktijkonderwijs:
			praktijk = true
		case l == level.VWO:
			offersVWO = true
		case l == level.HAVO:
			offersHAVO = true
		case l.IsVMBO():
			offersVMBO = true
		}
	}

	var nl, en []string

	switch {
	case praktijk:
		nl = append(nl, name+": praktijkonderwijs werkt met een oriëntatie/intake vóór de centrale aanmeldweek; alleen als de school je plaatsbaar vindt kun je daar aanmelden.")
		en = append(en, name+": practical education uses an orientation/intake phase before the central application week; you can only apply if the school confirms you are placeable.")
	case specialRoute.MatchString(name):
		nl = append(nl, name+": deze route valt vaak (deels) buiten de standaard centrale loting & matching. Controleer de aparte toelatingsroute van de school en het samenwerkingsverband.")
		en = append(en, name+": this route is often (partly) outside the standard central lottery & matching process. Check the school's separate admission route and regional support process.")
	default:
		nl = append(nl, name+": aanmelding loopt via de Amsterdamse centrale loting & matching in het ELK-ouderportaal.")
		en = append(en, name+": application runs through Amsterdam's central lottery & matching process in the ELK parent portal.")
	}

	if offersVWO && !offersHAVO && !offersVMBO && !praktijk {
		nl = append(nl, "Deze school biedt alleen vwo-routes; je hebt dus een passend (vwo-)advies nodig.")
		en = append(en, "This school only offers vwo tracks, so a matching vwo-level recommendation is required.")
	}

	if (offersHAVO || offersVMBO) && !praktijk {
		nl = append(nl, "Bij overaanmelding op een niveau/profielklas bepaalt loting & matching de plaatsing op basis van voorrang en lotnummer.")
		en = append(en, "If a level/profile class is oversubscribed, placement is determined by lottery & matching using priority rules and lottery number.")
	}

	nl = append(nl, "Controleer altijd de groep-8/aanmeldpagina van de school voor exacte voorrangsregels, profielklassen en beschikbare capaciteit van dit jaar.")
	en = append(en, "Always verify the school's group-8/admissions page for exact priority rules, profile classes, and this year's capacity.")

	sources := make([]Source, 0, len(baseSources)+1)
	if websiteURL != "" {
		sources = append(sources, Source{Label: name + " - school website", URL: websiteURL})
	}
	sources = append(sources, baseSources...)

	return Info{
		NL: Locale{
			Summary: "Amsterdam gebruikt een centrale loting & matching voor de overstap naar het voortgezet onderwijs, met uitzonderingen voor sommige routes (zoals praktijkonderwijs/kovo en delen van vso).",
			Timeline: []string{
				"Uiterlijk 24 maart 2026: definitief basisschooladvies.",
				"25 t/m 31 maart 2026: centrale aanmeldweek (1e ronde).",
				"9 april 2026: uitslag centrale loting & matching (1e ronde).",
			},
			SchoolSpecific: nl,
			Notes: []string{
				"Na de uitslag volgt een 2e ronde voor leerlingen zonder plaatsing of bij terugtrekking.",
				"Hardheidsclausule loopt via het centrale OSVO-loket.",
			},
		},
		EN: Locale{
			Summary: "Amsterdam uses a central lottery & matching process for secondary-school admissions, with exceptions for some routes (such as practical education/kovo and parts of special education).",
			Timeline: []string{
				"By March 24, 2026: final primary-school recommendation.",
				"March 25-31, 2026: central application week (round 1).",
				"April 9, 2026: round-1 lottery & matching results.",
			},
			SchoolSpecific: en,
			Notes: []string{
				"After round 1, a second round is available for students without placement or after withdrawal.",
				"Hardship requests go through the central OSVO desk.",
			},
		},
		Sources: sources,
	}
}
