package roll

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Student 名单中的一名学生
type Student struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	State     State  `json:"roll_state"`
}

// SortKey 排序字段
type SortKey string

const (
	SortByFirstName SortKey = "first_name"
	SortByLastName  SortKey = "last_name"
)

// ParseSortKey 解析排序字段，空串默认按名排序
func ParseSortKey(v string) (SortKey, error) {
	switch k := SortKey(v); k {
	case "":
		return SortByFirstName, nil
	case SortByFirstName, SortByLastName:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, v)
}

func (k SortKey) field(s *Student) string {
	if k == SortByLastName {
		return s.LastName
	}
	return s.FirstName
}

// Query 名单视图条件
type Query struct {
	SortKey   SortKey  `json:"sort_key"`
	Ascending bool     `json:"ascending"`
	Search    string   `json:"search"`
	Filter    Category `json:"filter"`
}

// DefaultQuery 初始视图：按名升序、无搜索、不过滤
func DefaultQuery() Query {
	return Query{SortKey: SortByFirstName, Ascending: true, Filter: CategoryAll}
}

// View 由完整名单与视图条件推导出待展示的有序名单
//
// 先排序，再按搜索词与分类做合取过滤。不修改入参。
// 比较的是完整字符串（区分大小写），相等元素的相对顺序不作保证。
func View(students []Student, q Query) []Student {
	sorted := make([]Student, len(students))
	copy(sorted, students)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := q.SortKey.field(&sorted[i]), q.SortKey.field(&sorted[j])
		if q.Ascending {
			return a < b
		}
		return a > b
	})

	fold := cases.Fold()
	term := fold.String(q.Search)

	out := make([]Student, 0, len(sorted))
	for i := range sorted {
		s := sorted[i]
		if !matchesSearch(fold, &s, term) {
			continue
		}
		if !q.Filter.Matches(s.State) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func matchesSearch(fold cases.Caser, s *Student, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(fold.String(s.FirstName), term) ||
		strings.Contains(fold.String(s.LastName), term)
}
