package regions

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Provence-Alpes-Côte d'Azur": "provence alpes cote dazur",
		"Île-de-France":              "ile de france",
		"  Grand   Est  ":            "grand est",
		"Bourgogne-Franche-Comté":    "bourgogne franche comte",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatchExactID(t *testing.T) {
	d := NewDirectory(nil)
	r, ok := d.Match("IDF")
	if !ok || r.ID != "idf" {
		t.Errorf("Match(IDF) = %v %v, want idf", r, ok)
	}
}

func TestMatchAliases(t *testing.T) {
	d := NewDirectory(nil)
	cases := map[string]string{
		"PACA":       "paca",
		"Région Sud": "paca",
		"IDFM":       "idf",
		"Centre":     "cvl",
	}
	for value, wantID := range cases {
		r, ok := d.Match(value)
		if !ok || r.ID != wantID {
			t.Errorf("Match(%q) = %v %v, want %s", value, r, ok, wantID)
		}
	}
}

func TestMatchFullNames(t *testing.T) {
	d := NewDirectory(nil)
	cases := map[string]string{
		"Provence-Alpes-Côte d'Azur": "paca",
		"Nouvelle-Aquitaine":         "naq",
		"Centre-Val de Loire":        "cvl",
		"Hauts de France":            "hdf",
	}
	for value, wantID := range cases {
		r, ok := d.Match(value)
		if !ok || r.ID != wantID {
			t.Errorf("Match(%q) = %v %v, want %s", value, r, ok, wantID)
		}
	}
}

func TestMatchContainment(t *testing.T) {
	d := NewDirectory(nil)
	// Partial names resolve through substring containment.
	r, ok := d.Match("Bretagne Sud")
	if !ok || r.ID != "bre" {
		t.Errorf("Match(Bretagne Sud) = %v %v, want bre", r, ok)
	}
}

func TestMatchUnknown(t *testing.T) {
	d := NewDirectory(nil)
	for _, value := range []string{"", "   ", "Atlantide", "???"} {
		if _, ok := d.Match(value); ok {
			t.Errorf("Match(%q) matched, want no match", value)
		}
	}
}

func TestLookupAndActive(t *testing.T) {
	d := NewDirectory(nil)
	if _, ok := d.Lookup("idf"); !ok {
		t.Error("Lookup(idf) failed")
	}
	if _, ok := d.Lookup("IDF"); ok {
		t.Error("Lookup is case sensitive by contract")
	}
	if len(d.Active()) != 17 {
		t.Errorf("Active() = %d regions, want 17", len(d.Active()))
	}
}
