package keywords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFunctionLookupIsCaseInsensitive(t *testing.T) {
	assert.True(t, IsFunction("IF"))
	assert.True(t, IsFunction("if"))
	assert.True(t, IsFunction("IsBlank"))
	assert.True(t, IsFunction("regex"), "advanced functions are still functions")
	assert.False(t, IsFunction("FOO"))
	assert.False(t, IsFunction("TRUE"))
}

func TestConstants(t *testing.T) {
	assert.True(t, IsConstant("true"))
	assert.True(t, IsConstant("Null"))
	assert.False(t, IsConstant("IF"))
	assert.Equal(t, []string{"FALSE", "NULL", "TRUE"}, Constants())
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, Logical, CategoryOf("if"))
	assert.Equal(t, Text, CategoryOf("substitute"))
	assert.Equal(t, Math, CategoryOf("ROUND"))
	assert.Equal(t, DateTime, CategoryOf("today"))
	assert.Equal(t, Conversion, CategoryOf("DATEVALUE"))
	assert.Equal(t, Advanced, CategoryOf("VLOOKUP"))
	assert.Equal(t, "", CategoryOf("nothing"))
}

func TestAdvancedFunctionsAreNotFormatted(t *testing.T) {
	assert.True(t, IsFormattedFunction("if"))
	assert.False(t, IsFormattedFunction("regex"))
	assert.False(t, IsFormattedFunction("unknown"))
}

func TestFunctionsSortedAndUppercase(t *testing.T) {
	names := Functions()
	assert.NotEmpty(t, names)
	for i, n := range names {
		assert.Equal(t, strings.ToUpper(n), n)
		if i > 0 {
			assert.Less(t, names[i-1], n)
		}
	}
}

func TestOperatorTableOrdersPrefixesLast(t *testing.T) {
	for i, op := range Operators {
		for _, later := range Operators[i+1:] {
			assert.False(t, len(later) > len(op) && strings.HasPrefix(later, op),
				"%q must be declared before %q", later, op)
		}
	}
}

func TestMatchOperator(t *testing.T) {
	tests := []struct {
		src  string
		at   int
		want string
	}{
		{"<=", 0, "<="},
		{"<>1", 0, "<>"},
		{"a<b", 1, "<"},
		{"&&", 0, "&&"},
		{"& b", 0, "&"},
		{"abc", 0, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchOperator(tt.src, tt.at), "src %q", tt.src)
	}
}
