// Package dashboard narrows, groups and paginates feedback collections
// for the admin dashboard. All operations are pure: they never mutate
// the input slice.
package dashboard

import (
	"time"

	"github.com/zafarani/feedback-server/models"
)

// PageSize is the fixed number of records per dashboard page.
const PageSize = 10

// Criteria are the dashboard filters. Unset fields always match.
// Start and End only take effect when both are set; the range is
// inclusive at both ends, at calendar-day granularity.
type Criteria struct {
	FormType        string
	RideType        string
	Date            *time.Time
	Start           *time.Time
	End             *time.Time
	GroupByFormType bool
}

// Matches reports whether a record satisfies every supplied criterion.
func (c Criteria) Matches(f models.Feedback) bool {
	if c.FormType != "" && f.FormType != c.FormType {
		return false
	}
	if c.RideType != "" && f.RideType != c.RideType {
		return false
	}
	if c.Date != nil && !sameDay(f.CreatedAt, *c.Date) {
		return false
	}
	if c.Start != nil && c.End != nil {
		created := dayOf(f.CreatedAt)
		if created.Before(dayOf(*c.Start)) || created.After(dayOf(*c.End)) {
			return false
		}
	}
	return true
}

// Filter returns the records matching the criteria, preserving order.
func Filter(records []models.Feedback, c Criteria) []models.Feedback {
	out := make([]models.Feedback, 0, len(records))
	for _, f := range records {
		if c.Matches(f) {
			out = append(out, f)
		}
	}
	return out
}

// GroupOrder is the bucket order used when grouped results are
// flattened back into a single sequence.
var GroupOrder = []string{
	models.FormDhow,
	models.FormVillage,
	models.FormRestaurant,
	models.FormGeneric,
}

// Group partitions records by form type. Every bucket in GroupOrder is
// present even when empty, matching the grouped response shape.
func Group(records []models.Feedback) map[string][]models.Feedback {
	groups := make(map[string][]models.Feedback, len(GroupOrder))
	for _, ft := range GroupOrder {
		groups[ft] = []models.Feedback{}
	}
	for _, f := range records {
		groups[f.FormType] = append(groups[f.FormType], f)
	}
	return groups
}

// Flatten rebuilds a single ordered sequence from grouped records.
// Grouping never changes the record set, only makes same-group records
// contiguous.
func Flatten(groups map[string][]models.Feedback) []models.Feedback {
	var out []models.Feedback
	for _, ft := range GroupOrder {
		out = append(out, groups[ft]...)
	}
	return out
}

// Page is one dashboard page of results.
type Page struct {
	Items      []models.Feedback `json:"items"`
	Number     int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	TotalItems int               `json:"total_items"`
}

// Paginate slices out the 1-based page of the given records. Page
// numbers outside [1, TotalPages] yield an empty page; disabling
// navigation is the caller's concern, not a reason to panic here.
func Paginate(records []models.Feedback, page int) Page {
	total := len(records)
	p := Page{
		Number:     page,
		TotalPages: (total + PageSize - 1) / PageSize,
		TotalItems: total,
		Items:      []models.Feedback{},
	}
	if page < 1 || total == 0 {
		return p
	}
	start := (page - 1) * PageSize
	if start >= total {
		return p
	}
	end := start + PageSize
	if end > total {
		end = total
	}
	p.Items = append(p.Items, records[start:end]...)
	return p
}

// FormStats aggregates one form type's records.
type FormStats struct {
	Count         int     `json:"count"`
	RatingCount   int     `json:"rating_count"`
	AverageRating float64 `json:"average_rating"`
}

// Summary is the analytics rollup over a (filtered) record set.
type Summary struct {
	Total int                  `json:"total"`
	Forms map[string]FormStats `json:"forms"`
}

// Summarize computes per-form record counts and the mean of every
// rating answer. Forms with no rating answers report an average of 0.
func Summarize(records []models.Feedback) Summary {
	out := Summary{
		Total: len(records),
		Forms: make(map[string]FormStats, len(GroupOrder)),
	}
	for _, ft := range GroupOrder {
		out.Forms[ft] = FormStats{}
	}
	sums := make(map[string]int, len(GroupOrder))
	for _, f := range records {
		st := out.Forms[f.FormType]
		st.Count++
		for _, r := range f.Responses {
			if r.Rating != nil {
				st.RatingCount++
				sums[f.FormType] += *r.Rating
			}
		}
		out.Forms[f.FormType] = st
	}
	for ft, st := range out.Forms {
		if st.RatingCount > 0 {
			st.AverageRating = float64(sums[ft]) / float64(st.RatingCount)
			out.Forms[ft] = st
		}
	}
	return out
}

// Run applies the full pipeline: filter, optional grouping, then
// pagination of the flattened sequence.
func Run(records []models.Feedback, c Criteria, page int) Page {
	matched := Filter(records, c)
	if c.GroupByFormType {
		matched = Flatten(Group(matched))
	}
	return Paginate(matched, page)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return dayOf(a).Equal(dayOf(b))
}
