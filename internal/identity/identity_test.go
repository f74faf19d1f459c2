package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGroups(t *testing.T) {
	r := Parse("lucia:lucia.old:lucia.tmp;marcos:marcos2")

	assert.Equal(t, "lucia", r.Canonical("lucia.old"))
	assert.Equal(t, "lucia", r.Canonical("lucia.tmp"))
	assert.Equal(t, "lucia", r.Canonical("lucia"))
	assert.Equal(t, "marcos", r.Canonical("marcos2"))

	assert.Equal(t, []string{"lucia", "lucia.old", "lucia.tmp"}, r.Group("lucia.tmp"))
	assert.Equal(t, []string{"marcos", "marcos2"}, r.Group("marcos"))
}

func TestParseTrimsWhitespace(t *testing.T) {
	r := Parse(" lucia : lucia.old ; ")
	assert.Equal(t, "lucia", r.Canonical("lucia.old"))
	assert.Equal(t, []string{"lucia", "lucia.old"}, r.Group("lucia"))
}

func TestParseSkipsDegenerateGroups(t *testing.T) {
	// A group needs at least one alias besides the canonical name.
	r := Parse("solo;;lucia:lucia.old")
	assert.Equal(t, "solo", r.Canonical("solo"))
	assert.Equal(t, []string{"solo"}, r.Group("solo"))
	assert.Equal(t, "lucia", r.Canonical("lucia.old"))
}

func TestUnknownUsernameIsItsOwnIdentity(t *testing.T) {
	r := Parse("lucia:lucia.old")
	assert.Equal(t, "pedro", r.Canonical("pedro"))
	assert.Equal(t, []string{"pedro"}, r.Group("pedro"))
}

func TestSameIdentity(t *testing.T) {
	r := Parse("lucia:lucia.old")
	assert.True(t, r.SameIdentity("lucia", "lucia.old"))
	assert.False(t, r.SameIdentity("lucia", "pedro"))
	assert.True(t, r.SameIdentity("pedro", "pedro"))
}

func TestNilAndEmptyResolver(t *testing.T) {
	var r *Resolver
	assert.Equal(t, "lucia", r.Canonical("lucia"))
	assert.Equal(t, []string{"lucia"}, r.Group("lucia"))

	empty := Parse("")
	assert.Equal(t, "lucia", empty.Canonical("lucia"))
	assert.Equal(t, []string{"lucia"}, empty.Group("lucia"))
}
