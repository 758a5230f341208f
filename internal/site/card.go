package site

import "strings"

// Card class sets
const (
	CardBaseClasses  = "bg-white rounded-2xl shadow-xl p-6 border border-gray-100"
	CardHoverClasses = "transform hover:scale-105 transition-all hover:shadow-2xl"
)

// CardClasses composes the class list of a card. Extra classes come last
// and replace base classes of the same utility group, so "p-4" overrides
// the default padding.
func CardClasses(hover bool, extra string) string {
	parts := []string{CardBaseClasses}
	if hover {
		parts = append(parts, CardHoverClasses)
	}
	if extra != "" {
		parts = append(parts, extra)
	}
	return MergeClasses(parts...)
}

// MergeClasses joins class lists left to right. A later class drops an
// earlier one with the same variant and utility group; exact duplicates
// keep their first position.
func MergeClasses(lists ...string) string {
	var out []string
	for _, list := range lists {
		for _, class := range strings.Fields(list) {
			key := classGroup(class)
			kept := out[:0]
			for _, existing := range out {
				if existing == class || (key != "" && classGroup(existing) == key) {
					continue
				}
				kept = append(kept, existing)
			}
			out = append(kept, class)
		}
	}
	return strings.Join(out, " ")
}

// utility prefixes that conflict with each other inside a group. Groups are
// matched in order, so the exact shadow sizes and bg variants come before
// the catch-all colour prefixes.
var utilityGroups = []struct {
	group    string
	prefixes []string
}{
	{"padding", []string{"p-"}},
	{"padding-x", []string{"px-"}},
	{"padding-y", []string{"py-"}},
	{"margin", []string{"m-"}},
	{"rounded", []string{"rounded-", "rounded"}},
	{"shadow", []string{"shadow", "shadow-sm", "shadow-md", "shadow-lg", "shadow-xl", "shadow-2xl", "shadow-inner", "shadow-none"}},
	{"shadow-color", []string{"shadow-"}},
	{"bg-image", []string{"bg-gradient-", "bg-none"}},
	{"bg-size", []string{"bg-auto", "bg-cover", "bg-contain"}},
	{"bg-position", []string{"bg-center", "bg-top", "bg-bottom", "bg-left", "bg-right"}},
	{"bg-repeat", []string{"bg-repeat", "bg-no-repeat"}},
	{"bg-color", []string{"bg-"}},
	{"border-color", []string{"border-gray-", "border-white", "border-transparent", "border-["}},
	{"scale", []string{"scale-"}},
	{"text-color", []string{"text-white", "text-black", "text-gray-", "text-["}},
}

func classGroup(class string) string {
	variant, utility := "", class
	if i := strings.LastIndex(class, ":"); i >= 0 {
		variant, utility = class[:i+1], class[i+1:]
	}
	for _, g := range utilityGroups {
		for _, p := range g.prefixes {
			if utility == p || (strings.HasSuffix(p, "-") || strings.HasSuffix(p, "[")) && strings.HasPrefix(utility, p) {
				return variant + g.group
			}
		}
	}
	return ""
}
