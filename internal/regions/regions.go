package regions

import (
	"strings"

	"github.com/yourorg/transitfr/internal/models"
)

// Directory holds the known regions and resolves loose user-supplied region
// values (ids, names, common abbreviations) against them.
type Directory struct {
	regions []models.Region
	byID    map[string]models.Region
}

// Defaults returns the built-in region list. Each region maps to one OTP
// deployment; the /graphiql suffix is rewritten by the API client.
func Defaults() []models.Region {
	return []models.Region{
		{ID: "ara", Name: "Auvergne-Rhône-Alpes", APIURL: "https://otp-ara.maasify.io/graphiql", IsActive: true},
		{ID: "bfc", Name: "Bourgogne-Franche-Comté", APIURL: "https://otp-bfc.maasify.io/graphiql", IsActive: true},
		{ID: "bre", Name: "Bretagne", APIURL: "https://otp-bre.maasify.io/graphiql", IsActive: true},
		{ID: "caraibe", Name: "Guyane", APIURL: "https://otp-caraibe.maasify.io/graphiql", IsActive: true},
		{ID: "cor", Name: "Corse", APIURL: "https://otp-cor.maasify.io/graphiql", IsActive: true},
		{ID: "cvl", Name: "Centre-Val de Loire", APIURL: "https://otp-cvl.maasify.io/graphiql", IsActive: true},
		{ID: "ges", Name: "Grand Est", APIURL: "https://otp-ges.maasify.io/graphiql", IsActive: true},
		{ID: "gf", Name: "Guadeloupe", APIURL: "https://otp-gf.maasify.io/graphiql", IsActive: true},
		{ID: "hdf", Name: "Hauts-de-France", APIURL: "https://otp-hdf.maasify.io/graphiql", IsActive: true},
		{ID: "idf", Name: "Ile-de-France", APIURL: "https://otp-idf.maasify.io/graphiql", IsActive: true},
		{ID: "mar", Name: "Martinique", APIURL: "https://otp-mar.maasify.io/graphiql", IsActive: true},
		{ID: "naq", Name: "Nouvelle-Aquitaine", APIURL: "https://otp-naq.maasify.io/graphiql", IsActive: true},
		{ID: "nor", Name: "Normandie", APIURL: "https://otp-nor.maasify.io/graphiql", IsActive: true},
		{ID: "occ", Name: "Occitanie", APIURL: "https://otp-occ.maasify.io/graphiql", IsActive: true},
		{ID: "paca", Name: "Provence Alpes Côte d'Azur", APIURL: "https://otp-paca.maasify.io/graphiql", IsActive: true},
		{ID: "pdl", Name: "Pays de la Loire", APIURL: "https://otp-pdl.maasify.io/graphiql", IsActive: true},
		{ID: "re", Name: "Réunion", APIURL: "https://otp-re.maasify.io/graphiql", IsActive: true},
	}
}

// aliases maps normalized shorthand forms seen in import files to normalized
// region names. Both sides must already be in Normalize form.
var aliases = map[string]string{
	"paca":        "provence alpes cote dazur",
	"region sud":  "provence alpes cote dazur",
	"sud":         "provence alpes cote dazur",
	"iledefrance": "ile de france",
	"idfm":        "ile de france",
	"centre":      "centre val de loire",
}

// NewDirectory builds a Directory from the given regions, or from Defaults()
// when the slice is empty.
func NewDirectory(regions []models.Region) *Directory {
	if len(regions) == 0 {
		regions = Defaults()
	}
	byID := make(map[string]models.Region, len(regions))
	for _, r := range regions {
		byID[r.ID] = r
	}
	return &Directory{regions: regions, byID: byID}
}

// All returns every region in directory order.
func (d *Directory) All() []models.Region {
	return d.regions
}

// Active returns the regions flagged active, in directory order.
func (d *Directory) Active() []models.Region {
	out := make([]models.Region, 0, len(d.regions))
	for _, r := range d.regions {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out
}

// Lookup resolves a region by exact id.
func (d *Directory) Lookup(id string) (models.Region, bool) {
	r, ok := d.byID[id]
	return r, ok
}

// Match resolves a loose region value: exact id first, then normalized name
// equality, then the alias table, then bidirectional substring containment
// on normalized names. Used by the CSV importer where region columns carry
// anything from "paca" to "Provence-Alpes-Côte d'Azur".
func (d *Directory) Match(value string) (models.Region, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.Region{}, false
	}
	if r, ok := d.byID[strings.ToLower(value)]; ok {
		return r, true
	}

	norm := Normalize(value)
	if norm == "" {
		return models.Region{}, false
	}
	if target, ok := aliases[norm]; ok {
		norm = Normalize(target)
	}

	for _, r := range d.regions {
		name := Normalize(r.Name)
		if name == norm {
			return r, true
		}
	}
	// Containment check runs in a second pass so an exact name always wins.
	for _, r := range d.regions {
		name := Normalize(r.Name)
		if strings.Contains(name, norm) || strings.Contains(norm, name) {
			return r, true
		}
	}
	return models.Region{}, false
}

// accentFold covers the accented characters that appear in French region
// names. Anything outside the table and [a-z0-9 ] is dropped by Normalize.
var accentFold = map[rune]rune{
	'à': 'a', 'â': 'a', 'ä': 'a',
	'ç': 'c',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'î': 'i', 'ï': 'i',
	'ô': 'o', 'ö': 'o',
	'ù': 'u', 'û': 'u', 'ü': 'u',
}

// Normalize lowercases, strips diacritics and drops punctuation. Hyphens and
// whitespace collapse to single spaces so "Provence-Alpes-Côte d'Azur"
// becomes "provence alpes cote dazur".
func Normalize(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range strings.ToLower(s) {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case r == '-' || r == ' ' || r == '\t':
			if !lastSpace && b.Len() > 0 {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
		// Anything else (apostrophes, dots, slashes) is dropped.
	}
	return strings.TrimSpace(b.String())
}
