// Package orgnames shortens common institutional name patterns for
// display in narrow report columns.
package orgnames

import "strings"

type rule struct {
	long, short string
}

// Rules are ordered longest-pattern first so "Community College
// District" matches before "Community College".
var rules = []rule{
	{"Community College District", "CCD"},
	{"Unified School District", "USD"},
	{"County Office of Education", "COE"},
	{"Community College", "CC"},
	{"School District", "SD"},
	{"University of", "U. of"},
}

// Abbreviate replaces the first matching pattern in name with its
// abbreviation. Only one rule fires, and only its first occurrence is
// replaced. Names without a matching pattern come back unchanged.
func Abbreviate(name string) string {
	for _, r := range rules {
		if strings.Contains(name, r.long) {
			return strings.Replace(name, r.long, r.short, 1)
		}
	}
	return name
}
