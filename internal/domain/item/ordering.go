package item

import (
	"sort"
	"strings"
)

// unlabeledRank sorts items without a size label after every labeled one
const unlabeledRank = 999

var sizeLabels = []struct {
	label string
	rank  int
}{
	{"(XS)", 1},
	{"(S)", 2},
	{"(M)", 3},
	{"(L)", 4},
	{"(XL)", 5},
	{"(2XL)", 6},
	{"(3XL)", 7},
	{"(5XL)", 8},
}

// SizeRank returns the ordering rank of the apparel size label embedded in an item
// name, e.g. "Hoodie (XL)". Matching is case-insensitive.
func SizeRank(name string) int {
	upper := strings.ToUpper(name)
	for _, s := range sizeLabels {
		if strings.Contains(upper, s.label) {
			return s.rank
		}
	}
	return unlabeledRank
}

// SortBySize orders items by size label, falling back to id for equal ranks
func SortBySize(items []*Item) {
	sort.SliceStable(items, func(a, b int) bool {
		ra, rb := SizeRank(items[a].Name), SizeRank(items[b].Name)
		if ra != rb {
			return ra < rb
		}
		return items[a].ID < items[b].ID
	})
}
