package syllabus

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/ovaphlow/pitchfork/service-opofit/internal/user/entity"
)

//go:embed casestudies.json
var rawCaseStudies []byte

var caseStudies []entity.CaseStudy

func init() {
	if err := json.Unmarshal(rawCaseStudies, &caseStudies); err != nil {
		panic(fmt.Sprintf("syllabus: decode case studies: %v", err))
	}
	seen := make(map[string]struct{}, len(caseStudies))
	for _, c := range caseStudies {
		if _, dup := seen[c.ID]; dup || c.ID == "" {
			panic(fmt.Sprintf("syllabus: bad case study id %q", c.ID))
		}
		seen[c.ID] = struct{}{}
	}
}

// CaseStudies returns the catalogue in its published order.
func CaseStudies() []entity.CaseStudy {
	out := make([]entity.CaseStudy, len(caseStudies))
	for i, c := range caseStudies {
		out[i] = c.Clone()
	}
	return out
}

// CaseStudy looks up one case study by id.
func CaseStudy(id string) (entity.CaseStudy, bool) {
	for _, c := range caseStudies {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return entity.CaseStudy{}, false
}
