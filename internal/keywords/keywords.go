package keywords

import (
	"sort"
	"strings"
)

// Category groups built-in function names (e.g., "logical", "text")
type Category struct {
	Name      string              // Category name as shown in completions and hovers
	Functions map[string]struct{} // Uppercase function names
	Formatted bool                // Whether the pretty-printer uppercases these names
}

const (
	Logical    = "logical"
	Text       = "text"
	Math       = "math"
	DateTime   = "datetime"
	Conversion = "conversion"
	Advanced   = "advanced"
)

func newCategory(name string, formatted bool, names ...string) *Category {
	c := &Category{Name: name, Functions: make(map[string]struct{}, len(names)), Formatted: formatted}
	for _, n := range names {
		c.Functions[n] = struct{}{}
	}
	return c
}

// categories is declared in lookup order; CategoryOf reports the first hit.
var categories = []*Category{
	newCategory(Logical, true,
		"AND", "OR", "NOT", "IF", "CASE", "ISBLANK", "ISNULL", "ISNUMBER",
		"BLANKVALUE", "NULLVALUE", "ISCHANGED", "ISNEW", "ISCLONE",
		"PRIORVALUE", "ISPICKVAL",
	),
	newCategory(Text, true,
		"BEGINS", "BR", "CASESAFEID", "CONTAINS", "FIND", "GETSESSIONID",
		"HTMLENCODE", "HYPERLINK", "IMAGE", "INCLUDES", "INITCAP", "JSENCODE",
		"JSINHTMLENCODE", "LEFT", "LEN", "LOWER", "LPAD", "MID", "REVERSE",
		"RIGHT", "RPAD", "SUBSTITUTE", "TRIM", "UPPER", "URLENCODE",
	),
	newCategory(Math, true,
		"ABS", "CEILING", "DISTANCE", "EXP", "FLOOR", "GEOLOCATION", "LN",
		"LOG", "MAX", "MCEILING", "MFLOOR", "MIN", "MOD", "ROUND", "SQRT",
	),
	newCategory(DateTime, true,
		"ADDMONTHS", "DATE", "DAY", "DAYOFYEAR", "FROMUNIXTIME", "HOUR",
		"ISOWEEK", "ISOYEAR", "MILLISECOND", "MINUTE", "MONTH", "NOW",
		"SECOND", "TIMENOW", "TODAY", "UNIXTIMESTAMP", "WEEKDAY", "YEAR",
	),
	newCategory(Conversion, true,
		"CURRENCYRATE", "DATETIMEVALUE", "DATEVALUE", "TEXT", "TIMEVALUE",
		"VALUE",
	),
	newCategory(Advanced, false,
		"GETRECORDIDS", "INCLUDE", "LINKTO", "PARENTGROUPVAL",
		"PREVGROUPVAL", "REGEX", "REQUIRESCRIPT", "URLFOR", "VLOOKUP",
	),
}

var constants = map[string]struct{}{
	"TRUE":  {},
	"FALSE": {},
	"NULL":  {},
}

// Operators must list every multi-character lexeme before any
// single-character lexeme that is its prefix: matching takes the first
// entry that fits.
var Operators = []string{
	"<=", ">=", "<>", "!=", "==", "&&", "||",
	"=", "<", ">", "+", "-", "*", "/", "^", "&",
}

var functionIndex = buildFunctionIndex()

func buildFunctionIndex() map[string]*Category {
	index := make(map[string]*Category)
	for _, c := range categories {
		for name := range c.Functions {
			if _, seen := index[name]; !seen {
				index[name] = c
			}
		}
	}
	return index
}

// Categories returns the function categories in lookup order.
func Categories() []*Category {
	out := make([]*Category, len(categories))
	copy(out, categories)
	return out
}

// IsFunction reports whether name is a built-in function in any category.
func IsFunction(name string) bool {
	_, ok := functionIndex[strings.ToUpper(name)]
	return ok
}

// IsFormattedFunction reports whether the pretty-printer uppercases name.
func IsFormattedFunction(name string) bool {
	upper := strings.ToUpper(name)
	for _, c := range categories {
		if _, ok := c.Functions[upper]; ok && c.Formatted {
			return true
		}
	}
	return false
}

func IsConstant(name string) bool {
	_, ok := constants[strings.ToUpper(name)]
	return ok
}

// CategoryOf returns the first category declaring name, or "" when name is
// not a built-in function.
func CategoryOf(name string) string {
	if c, ok := functionIndex[strings.ToUpper(name)]; ok {
		return c.Name
	}
	return ""
}

// Functions returns every built-in function name, sorted.
func Functions() []string {
	out := make([]string, 0, len(functionIndex))
	for name := range functionIndex {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func Constants() []string {
	out := make([]string, 0, len(constants))
	for name := range constants {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// MatchOperator returns the operator lexeme starting at src[i], or "".
func MatchOperator(src string, i int) string {
	rest := src[i:]
	for _, op := range Operators {
		if strings.HasPrefix(rest, op) {
			return op
		}
	}
	return ""
}
