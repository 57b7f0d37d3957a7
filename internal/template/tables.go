package template

// TypeTemplate pairs a report-type tag with the template set it uses.
type TypeTemplate struct {
	Type     string
	Template string
}

// reportTypesByTerm lists the report types valid for a (term, group)
// combination. The group is "class" or "class.stream". The first entry
// of each list is the default.
var reportTypesByTerm = map[string]map[string][]TypeTemplate{
	"1": {
		"11": {
			{Orientierung, "Orientierungsnoten"},
			{Abgang, "Notenzeugnis-SI"},
		},
		"12.Gym": {
			{Zeugnis, "Notenzeugnis-SII"},
			{Abgang, "Notenzeugnis-SII"},
		},
		"12.RS": {
			{Zeugnis, "Notenzeugnis-SI"},
			{Abgang, "Notenzeugnis-SI"},
		},
		"12.HS": {
			{Zeugnis, "Notenzeugnis-SI"},
			{Abgang, "Notenzeugnis-SI"},
		},
	},
	"2": {
		"10": {
			{Orientierung, "Orientierungsnoten"},
			{Abgang, "Notenzeugnis-SI"},
		},
		"11": {
			{Zeugnis, "Notenzeugnis-SI"},
			{Abgang, "Notenzeugnis-SI"},
		},
		"12.Gym": {
			{Zeugnis, "Notenzeugnis-SII"},
			{Abgang, "Notenzeugnis-SII"},
		},
		"12.RS": {
			{Abschluss, "Notenzeugnis-SI"},
			{Zeugnis, "Notenzeugnis-SI"},
			{Abgang, "Notenzeugnis-SI"},
		},
		"12.HS": {
			{Abschluss, "Notenzeugnis-SI"},
			{Zeugnis, "Notenzeugnis-SI"},
			{Abgang, "Notenzeugnis-SI"},
		},
	},
}

// reportTypesAnytime lists the report types valid for a group in any
// term; "*" matches every group.
var reportTypesAnytime = map[string][]TypeTemplate{
	"12.Gym": {
		{Abgang, "Notenzeugnis-SII"},
		{Zwischen, "Notenzeugnis-SII"},
	},
	"*": {
		{Abgang, "Notenzeugnis-SI"},
		{Zwischen, "Notenzeugnis-SI"},
	},
}

// TermTypes returns the report types valid for a group in a term: the
// term-specific list if one exists, then the anytime list.
func TermTypes(term, group string) []TypeTemplate {
	if byGroup, ok := reportTypesByTerm[term]; ok {
		if list, ok := byGroup[group]; ok {
			return list
		}
	}
	if list, ok := reportTypesAnytime[group]; ok {
		return list
	}
	return reportTypesAnytime["*"]
}

// DefaultType returns the default report type for a group in a term.
func DefaultType(term, group string) (TypeTemplate, bool) {
	list := TermTypes(term, group)
	if len(list) == 0 {
		return TypeTemplate{}, false
	}
	return list[0], true
}
