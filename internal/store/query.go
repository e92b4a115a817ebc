package store

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/ptyxes/recipebook/types"
)

// PostQuery is the ordered list of feed predicates derived from a filter.
// The same list drives the page query and the count query, so both always
// agree on which rows match.
type PostQuery struct {
	predicates []sq.Sqlizer
}

// NewPostQuery translates filter into predicates for the given dialect.
// Inactive filters add nothing.
func NewPostQuery(d Dialect, filter types.PostFilter) PostQuery {
	var q PostQuery

	if text := strings.TrimSpace(filter.Query); text != "" {
		pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
		q.add(sq.Or{
			sq.Expr(d.lower("p.title")+` LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(d.lower("p.description")+` LIKE ? ESCAPE '\'`, pattern),
		})
	}

	if active(filter.Difficulty) {
		q.add(sq.Eq{"p.difficulty": filter.Difficulty})
	}

	switch filter.Time {
	case types.TimeQuick:
		q.add(sq.Expr("(p.preparation_time + p.cooking_time) < ?", types.QuickLimit))
	case types.TimeMedium:
		q.add(sq.Expr("(p.preparation_time + p.cooking_time) BETWEEN ? AND ?", types.QuickLimit, types.LongLimit))
	case types.TimeLong:
		q.add(sq.Expr("(p.preparation_time + p.cooking_time) > ?", types.LongLimit))
	}

	if active(filter.Dietary) {
		if filter.Dietary == types.DietaryVegetarian {
			// Vegan dishes are vegetarian too. The OR stays grouped so it
			// cannot widen the other predicates.
			q.add(sq.Or{
				sq.Eq{"p.dietary_type": types.DietaryVegetarian},
				sq.Eq{"p.dietary_type": types.DietaryVegan},
			})
		} else {
			q.add(sq.Eq{"p.dietary_type": filter.Dietary})
		}
	}

	return q
}

func (q *PostQuery) add(predicate sq.Sqlizer) {
	q.predicates = append(q.predicates, predicate)
}

// Len returns the number of active predicates.
func (q PostQuery) Len() int {
	return len(q.predicates)
}

// apply attaches the predicates to a select on meal_posts p.
func (q PostQuery) apply(b sq.SelectBuilder) sq.SelectBuilder {
	if len(q.predicates) == 0 {
		return b
	}
	return b.Where(sq.And(q.predicates))
}

// orderBy returns the ORDER BY terms for mode. Every ordering ends with the
// post id so pages never overlap when the sort keys tie.
func orderBy(mode types.SortMode) []string {
	switch mode {
	case types.SortReputation:
		return []string{"author_reputation DESC", "p.created_at DESC", "p.id DESC"}
	case types.SortPreparationTime:
		return []string{"p.preparation_time ASC", "p.created_at DESC", "p.id DESC"}
	case types.SortCookingTime:
		return []string{"p.cooking_time ASC", "p.created_at DESC", "p.id DESC"}
	default:
		return []string{"p.created_at DESC", "p.id DESC"}
	}
}

func active(value string) bool {
	value = strings.TrimSpace(value)
	return value != "" && value != types.FilterAll
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
