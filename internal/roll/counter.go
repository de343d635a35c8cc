package roll

import "fmt"

// Category 汇总分类（同时用作名单筛选条件）
type Category string

const (
	CategoryAll     Category = "all"
	CategoryPresent Category = "present"
	CategoryLate    Category = "late"
	CategoryAbsent  Category = "absent"
)

// Categories 全部汇总分类
var Categories = []Category{CategoryAll, CategoryPresent, CategoryLate, CategoryAbsent}

// ParseCategory 解析筛选分类，空串等价于 all
func ParseCategory(v string) (Category, error) {
	switch c := Category(v); c {
	case "":
		return CategoryAll, nil
	case CategoryAll, CategoryPresent, CategoryLate, CategoryAbsent:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, v)
}

// categoryOf 状态对应的汇总桶；unmark 无对应桶
func categoryOf(s State) (Category, bool) {
	switch s {
	case StatePresent:
		return CategoryPresent, true
	case StateLate:
		return CategoryLate, true
	case StateAbsent:
		return CategoryAbsent, true
	}
	return "", false
}

// Matches 判断某状态的学生是否落入该筛选分类
func (c Category) Matches(s State) bool {
	if c == "" || c == CategoryAll {
		return true
	}
	return string(c) == string(s)
}

// Counts 各分类计数
//
// All 在名单加载时一次性设定，之后不受状态转移影响；
// 其余三个桶只通过 Apply 增量维护。
type Counts struct {
	All     int `json:"all"`
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
}

// NewCounts 名单加载时的初始计数
func NewCounts(total int) Counts {
	return Counts{All: total}
}

// Apply 将一次转移折叠进计数：旧桶减一（若可计数），新桶加一
func (c *Counts) Apply(from, to State) {
	if cat, ok := categoryOf(from); ok {
		c.bucket(cat, -1)
	}
	if cat, ok := categoryOf(to); ok {
		c.bucket(cat, +1)
	}
}

func (c *Counts) bucket(cat Category, delta int) {
	switch cat {
	case CategoryPresent:
		c.Present += delta
	case CategoryLate:
		c.Late += delta
	case CategoryAbsent:
		c.Absent += delta
	}
}

// Get 按分类取计数
func (c Counts) Get(cat Category) int {
	switch cat {
	case CategoryAll:
		return c.All
	case CategoryPresent:
		return c.Present
	case CategoryLate:
		return c.Late
	case CategoryAbsent:
		return c.Absent
	}
	return 0
}

// Marked 已标记（非 unmark）的学生数
func (c Counts) Marked() int {
	return c.Present + c.Late + c.Absent
}

// Tally 对名单全量重算计数，仅用于校验增量结果
func Tally(students []Student) Counts {
	c := NewCounts(len(students))
	for _, s := range students {
		if cat, ok := categoryOf(s.State); ok {
			c.bucket(cat, +1)
		}
	}
	return c
}
