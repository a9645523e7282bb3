package form

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"
)

type Country struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	DialCode string `json:"dial_code"`
	Emoji    string `json:"emoji"`
}

// Suggestion is one domicile autocomplete entry.
type Suggestion struct {
	City     string `json:"kota"`
	Province string `json:"provinsi"`
}

func (s Suggestion) String() string {
	return s.City + " - " + s.Province
}

// DefaultCountryCode preselects the phone country selector.
const DefaultCountryCode = "ID"

var (
	//go:embed data/countries.json
	countriesJSON []byte
	//go:embed data/cities.json
	citiesJSON []byte

	loadOnce    sync.Once
	countries   []Country
	suggestions []Suggestion
)

func load() {
	loadOnce.Do(func() {
		if err := json.Unmarshal(countriesJSON, &countries); err != nil {
			panic("form: bad embedded countries: " + err.Error())
		}
		var provinces []struct {
			Province string   `json:"provinsi"`
			Cities   []string `json:"kota"`
		}
		if err := json.Unmarshal(citiesJSON, &provinces); err != nil {
			panic("form: bad embedded cities: " + err.Error())
		}
		for _, p := range provinces {
			for _, c := range p.Cities {
				suggestions = append(suggestions, Suggestion{City: c, Province: p.Province})
			}
		}
	})
}

func Countries() []Country {
	load()
	return append([]Country(nil), countries...)
}

func FindCountry(code string) (Country, bool) {
	load()
	for _, c := range countries {
		if strings.EqualFold(c.Code, code) {
			return c, true
		}
	}
	return Country{}, false
}

func DefaultCountry() Country {
	c, _ := FindCountry(DefaultCountryCode)
	return c
}

// SearchCountries filters by case-insensitive substring of the name.
func SearchCountries(query string) []Country {
	load()
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Country
	for _, c := range countries {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

// Suggest matches query against city or province, case-insensitively. An
// empty query lists everything.
func Suggest(query string) []Suggestion {
	load()
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Suggestion
	for _, s := range suggestions {
		if strings.Contains(strings.ToLower(s.City), q) || strings.Contains(strings.ToLower(s.Province), q) {
			out = append(out, s)
		}
	}
	return out
}
