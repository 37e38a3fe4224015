package genutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Name", Capitalize("name"))
	assert.Equal(t, "Name", Capitalize("Name"))
	assert.Equal(t, "AByte", Capitalize("aByte"))
	assert.Equal(t, "X", Capitalize("x"))
}

func TestDecapitalize(t *testing.T) {
	assert.Equal(t, "name", Decapitalize("Name"))
	assert.Equal(t, "name", Decapitalize("name"))
	assert.Equal(t, "aBC", Decapitalize("ABC"))
}

func TestLowercase(t *testing.T) {
	assert.Equal(t, "mixedcase", Lowercase("MixedCase"))
	assert.Equal(t, "lower", Lowercase("lower"))
}

func TestUnderscore(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"aMultiWord", "a_multi_word"},
		{"someName", "some_name"},
		{"CamelCase", "camel_case"},
		{"name", "name"},
		{"Name", "name"},
		// consecutive capitals each get their own separator
		{"myAB", "my_a_b"},
		{"HTTPStatus", "h_t_t_p_status"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, Underscore(test.in), "underscore %q", test.in)
	}
}

func TestCamelcase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a_multi_word", "aMultiWord"},
		{"some_name", "someName"},
		{"name", "name"},
		// trailing separator is dropped
		{"name_", "name"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, Camelcase(test.in), "camelcase %q", test.in)
	}
}

func TestRoundTrip(t *testing.T) {
	// camel -> snake -> camel reproduces the identifier apart from leading
	// character case
	for _, s := range []string{"aMultiWord", "someName", "CamelCase", "name", "Name", "myAB"} {
		assert.Equal(t, Decapitalize(s), Camelcase(Underscore(s)), "round trip %q", s)
	}
}

func TestWrap(t *testing.T) {
	got := Wrap("one two three four", 10, "// ")
	assert.Equal(t, "// one two\n// three four", got)
	assert.Equal(t, "", Wrap("", 10, "// "))
}

func TestCleanDesc(t *testing.T) {
	assert.Equal(t, "spans two lines", CleanDesc("spans\ntwo  lines"))
	// common misspellings are fixed
	assert.Equal(t, "the value", CleanDesc("teh value"))
}

func TestFormatComment(t *testing.T) {
	assert.Equal(t, "// User holds account state.", FormatComment("Holds account state.", "User "))
	assert.Equal(t, "// User [no description].", FormatComment("", "User "))
	// initialisms keep their casing
	assert.Equal(t, "// Fetch URL to retrieve.", FormatComment("URL to retrieve.", "Fetch "))
}
