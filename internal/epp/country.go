package epp

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
)

var ErrUnknownCountry = errors.New("epp: unknown country code")

// CountryTable resolves a two-letter country code to its canonical form.
type CountryTable interface {
	Lookup(code string) (string, bool)
}

// ISO3166 is the default table, backed by the CLDR region data in x/text.
var ISO3166 CountryTable = regionTable{}

type regionTable struct{}

func (regionTable) Lookup(code string) (string, bool) {
	if len(code) != 2 {
		return "", false
	}
	r, err := language.ParseRegion(strings.ToUpper(code))
	if err != nil || !r.IsCountry() {
		return "", false
	}
	return r.String(), true
}

// CountryList is a fixed table, for registries that accept a narrower set.
type CountryList map[string]struct{}

func NewCountryList(codes ...string) CountryList {
	l := make(CountryList, len(codes))
	for _, c := range codes {
		l[strings.ToUpper(c)] = struct{}{}
	}
	return l
}

func (l CountryList) Lookup(code string) (string, bool) {
	code = strings.ToUpper(code)
	_, ok := l[code]
	return code, ok
}
