package roll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func names(students []Student, key SortKey) []string {
	out := make([]string, 0, len(students))
	for i := range students {
		out = append(out, key.field(&students[i]))
	}
	return out
}

func ids(students []Student) []int {
	out := make([]int, 0, len(students))
	for _, s := range students {
		out = append(out, s.ID)
	}
	return out
}

func sampleRoster() []Student {
	return []Student{
		{ID: 1, FirstName: "John", LastName: "Lee", State: StatePresent},
		{ID: 2, FirstName: "Alan", LastName: "Key", State: StateLate},
		{ID: 3, FirstName: "Brandon", LastName: "Johnson", State: StateUnmarked},
		{ID: 4, FirstName: "Branda", LastName: "Morris", State: StateAbsent},
		{ID: 5, FirstName: "Carlos", LastName: "Brandon", State: StatePresent},
	}
}

func TestView_SortByLastName(t *testing.T) {
	roster := []Student{
		{ID: 1, FirstName: "A", LastName: "Lee"},
		{ID: 2, FirstName: "B", LastName: "Key"},
	}

	asc := View(roster, Query{SortKey: SortByLastName, Ascending: true})
	assert.Equal(t, []string{"Key", "Lee"}, names(asc, SortByLastName))

	desc := View(roster, Query{SortKey: SortByLastName, Ascending: false})
	assert.Equal(t, []string{"Lee", "Key"}, names(desc, SortByLastName))
}

func TestView_SortComparesFullString(t *testing.T) {
	roster := []Student{
		{ID: 1, FirstName: "Brandon"},
		{ID: 2, FirstName: "Branda"},
		{ID: 3, FirstName: "Bra"},
	}

	got := View(roster, Query{SortKey: SortByFirstName, Ascending: true})
	assert.Equal(t, []string{"Bra", "Branda", "Brandon"}, names(got, SortByFirstName))
}

func TestView_SortIsCaseSensitive(t *testing.T) {
	roster := []Student{
		{ID: 1, FirstName: "alan"},
		{ID: 2, FirstName: "Zed"},
	}

	got := View(roster, Query{SortKey: SortByFirstName, Ascending: true})
	assert.Equal(t, []string{"Zed", "alan"}, names(got, SortByFirstName))
}

func TestView_DoesNotMutateInput(t *testing.T) {
	roster := sampleRoster()
	before := ids(roster)

	_ = View(roster, Query{SortKey: SortByLastName, Ascending: false, Search: "bran"})
	assert.Equal(t, before, ids(roster))
}

func TestView_SearchCaseInsensitive(t *testing.T) {
	roster := sampleRoster()
	q := DefaultQuery()

	q.Search = "john"
	lower := View(roster, q)
	q.Search = "JOHN"
	upper := View(roster, q)

	assert.ElementsMatch(t, ids(lower), ids(upper))
	// 名 John 与姓 Johnson 都命中
	assert.ElementsMatch(t, []int{1, 3}, ids(lower))
}

func TestView_EmptySearchKeepsFilteredSet(t *testing.T) {
	roster := sampleRoster()

	q := Query{SortKey: SortByFirstName, Ascending: true, Filter: CategoryPresent}
	got := View(roster, q)
	assert.ElementsMatch(t, []int{1, 5}, ids(got))

	q.Filter = CategoryAll
	assert.Len(t, View(roster, q), len(roster))

	q.Filter = ""
	assert.Len(t, View(roster, q), len(roster))
}

func TestView_SearchAndFilterCompose(t *testing.T) {
	roster := sampleRoster()

	q := Query{SortKey: SortByFirstName, Ascending: true, Search: "bran", Filter: CategoryAbsent}
	got := View(roster, q)
	assert.Equal(t, []int{4}, ids(got))

	q.Filter = CategoryAll
	got = View(roster, q)
	// Branda, Brandon, Carlos(Brandon)
	assert.Equal(t, []int{4, 3, 5}, ids(got))
}

func TestView_EmptyRoster(t *testing.T) {
	assert.Empty(t, View(nil, DefaultQuery()))
}
