// Package demodata rewrites organization names for demo-sandbox
// enterprises so sandbox data is visually distinct from production
// data everywhere it surfaces.
package demodata

import (
	"strings"

	"github.com/dalemusser/enrollhub/internal/app/system/recordschema"
	"github.com/dalemusser/enrollhub/internal/domain/models"
)

// Suffix is appended to every organization name in sandbox data.
const Suffix = " Demo"

// OrgName appends the demo suffix to a name. Idempotent: a name that
// already carries the suffix is returned unchanged, so re-running the
// transform over cached data never stacks suffixes.
func OrgName(name string) string {
	if name == "" || strings.HasSuffix(name, Suffix) {
		return name
	}
	return name + Suffix
}

// Apply returns a copy of records with every organization field run
// through OrgName. The input slice is not mutated.
func Apply(records []models.Record) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		org := r.Field(recordschema.Organization)
		if renamed := OrgName(org); renamed != org {
			out[i] = r.WithField(recordschema.Organization, renamed)
		} else {
			out[i] = r
		}
	}
	return out
}
