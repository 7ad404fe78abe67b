package directory

import (
	"fmt"
	"strings"

	"github.com/carefind/carefind/internal/platform/apperr"
)

// Sentinel filter values meaning "no constraint". Clients send these as the
// default option of a filter dropdown; the engine treats them the same as an
// absent parameter.
const (
	AnySpecialty = "All Specialties"
	AnyLocation  = "All Locations"
	AnyGender    = "All"
)

// SortKey selects the search result ordering. Every ordering carries a
// secondary ascending id sort so that pages are stable across requests.
type SortKey string

const (
	SortRating     SortKey = "rating"
	SortPriceLow   SortKey = "price-low"
	SortPriceHigh  SortKey = "price-high"
	SortExperience SortKey = "experience"
	SortReviews    SortKey = "reviews"
)

var sortColumns = map[SortKey]string{
	SortRating:     "rating DESC",
	SortPriceLow:   "price ASC",
	SortPriceHigh:  "price DESC",
	SortExperience: "experience DESC",
	SortReviews:    "review_count DESC",
}

// SearchCriteria is the full set of provider search predicates. All active
// predicates are combined with AND; zero values and sentinel values are
// inactive. An empty criteria matches every provider.
type SearchCriteria struct {
	Specialty        string
	Location         string
	MinPrice         *int
	MaxPrice         *int
	MinRating        *float64
	Languages        []string
	AvailableToday   bool
	AcceptsInsurance bool
	Gender           string
	Search           string
	SortBy           SortKey
}

// Validate rejects unknown sort keys. An empty SortBy falls back to rating.
func (sc SearchCriteria) Validate() error {
	if sc.SortBy == "" {
		return nil
	}
	if _, ok := sortColumns[sc.SortBy]; !ok {
		return apperr.Validation("unknown sort key %q", sc.SortBy)
	}
	return nil
}

// whereClause renders the active predicates as a SQL WHERE clause plus its
// positional arguments. It returns an empty string when no predicate is
// active.
func (sc SearchCriteria) whereClause() (string, []interface{}) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if sc.Specialty != "" && sc.Specialty != AnySpecialty {
		conds = append(conds, "specialty = "+arg(sc.Specialty))
	}
	if sc.Location != "" && sc.Location != AnyLocation {
		conds = append(conds, "location = "+arg(sc.Location))
	}
	if sc.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*sc.MinPrice))
	}
	if sc.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*sc.MaxPrice))
	}
	if sc.MinRating != nil {
		conds = append(conds, "rating >= "+arg(*sc.MinRating))
	}
	if len(sc.Languages) > 0 {
		conds = append(conds, "languages && "+arg(sc.Languages))
	}
	if sc.AvailableToday {
		conds = append(conds, "availability ILIKE '%available today%'")
	}
	if sc.AcceptsInsurance {
		conds = append(conds, "accepts_insurance = TRUE")
	}
	if sc.Gender != "" && sc.Gender != AnyGender {
		conds = append(conds, "gender = "+arg(sc.Gender))
	}
	if sc.Search != "" {
		p := arg("%" + sc.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR specialty ILIKE %s OR location ILIKE %s)", p, p, p))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause renders the ORDER BY clause for the selected sort key with the
// stable id tie-break.
func (sc SearchCriteria) orderClause() string {
	col, ok := sortColumns[sc.SortBy]
	if !ok {
		col = sortColumns[SortRating]
	}
	return " ORDER BY " + col + ", id ASC"
}
