package types

// FilterAll is the sentinel meaning "no constraint" for every feed filter.
const FilterAll = "All"

// PostFilter holds the optional feed predicates. Empty strings and
// FilterAll disable the corresponding predicate. All active predicates are
// combined with AND.
type PostFilter struct {
	// Query matches posts whose title or description contains it,
	// ignoring case.
	Query string `json:"query,omitempty"`

	// Difficulty restricts results to one difficulty level.
	Difficulty string `json:"difficulty,omitempty"`

	// Time restricts results by total preparation plus cooking time.
	Time TimeFilter `json:"time,omitempty"`

	// Dietary restricts results to one dietary label. "Vegetarian" also
	// matches "Vegan" posts.
	Dietary string `json:"dietary,omitempty"`
}

// TimeFilter buckets posts by total preparation plus cooking time.
type TimeFilter string

// Supported time buckets.
const (
	// TimeQuick matches a total time below 30 minutes.
	TimeQuick TimeFilter = "Quick"

	// TimeMedium matches a total time from 30 to 60 minutes inclusive.
	TimeMedium TimeFilter = "Medium"

	// TimeLong matches a total time above 60 minutes.
	TimeLong TimeFilter = "Long"

	// TimeAll disables the time filter.
	TimeAll TimeFilter = FilterAll
)

// Total-time boundaries in minutes.
const (
	QuickLimit = 30
	LongLimit  = 60
)

// Matches reports whether a post with the given total time falls into the
// bucket. Unknown buckets match everything.
func (f TimeFilter) Matches(totalMinutes int) bool {
	switch f {
	case TimeQuick:
		return totalMinutes < QuickLimit
	case TimeMedium:
		return totalMinutes >= QuickLimit && totalMinutes <= LongLimit
	case TimeLong:
		return totalMinutes > LongLimit
	default:
		return true
	}
}

// SortMode selects the feed ordering.
type SortMode string

// Supported sort modes. Anything else sorts by date.
const (
	SortDate            SortMode = "Date"
	SortReputation      SortMode = "Reputation"
	SortPreparationTime SortMode = "Preparation Time"
	SortCookingTime     SortMode = "Cooking Time"
)
