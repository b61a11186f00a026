package campo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullName(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		name    string
		surname string
		full    string
	}{
		{"Ann", "Lee", "Ann Lee"},
		{"Ann", "", "Ann"},
		{"", "Lee", "Lee"},
		{"", "", ""},
		{"  Ann ", "Lee", "Ann  Lee"},
	}
	for i, tc := range cases {
		assert.Equal(tc.full, FullName(tc.name, tc.surname), "index: %d", i)
	}
}

func TestUserAttribute(t *testing.T) {
	assert := assert.New(t)

	user := User{Attributes: []Attribute{
		{Key: AttrGivenName, Value: "Ann"},
		{Key: "locale", Value: "it"},
	}}

	value, ok := user.Attribute(AttrGivenName)
	assert.True(ok)
	assert.Equal("Ann", value)

	_, ok = user.Attribute(AttrSurname)
	assert.False(ok)
}
