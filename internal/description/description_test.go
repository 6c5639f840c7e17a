package description

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescription_RelatedTo(t *testing.T) {
	testCases := []struct {
		name    string
		a, b    Description
		related bool
	}{
		{
			name:    "runs of the same unit",
			a:       NewRun("Test Name", Unit, 1, 2),
			b:       NewRun("Test Name", Unit, 2, 2),
			related: true,
		},
		{
			name:    "different unit names",
			a:       New("Test Foo", Unit),
			b:       New("Test Bar", Unit),
			related: false,
		},
		{
			name:    "group is root of unit",
			a:       New("Test", Group),
			b:       New("Test.foo", Unit),
			related: true,
		},
		{
			name:    "multiple dot notation",
			a:       New("org.Test", Group),
			b:       New("org.Test.foo", Unit),
			related: true,
		},
		{
			name:    "units never nest",
			a:       New("org.Test", Unit),
			b:       New("org.Test.foo", Unit),
			related: false,
		},
		{
			name:    "sibling units",
			a:       New("org.Test.bar", Unit),
			b:       New("org.Test.foo", Unit),
			related: false,
		},
		{
			name:    "prefix must end on a segment boundary",
			a:       New("org.Test", Group),
			b:       New("org.Testing.foo", Unit),
			related: false,
		},
		{
			name:    "system is related to a group",
			a:       Root("run"),
			b:       New("com.mycom.TestCase", Group),
			related: true,
		},
		{
			name:    "system is related to a unit",
			a:       Root("run"),
			b:       New("org.yourorg.Test", Unit),
			related: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.related, tc.a.RelatedTo(tc.b))
			assert.Equal(t, tc.related, tc.b.RelatedTo(tc.a), "relation must be symmetric")
		})
	}
}

func TestDescription_Equal(t *testing.T) {
	one := NewRun("Test Name", Unit, 1, 2)
	two := NewRun("Test Name", Unit, 2, 2)
	three := New("Test Name", Unit)

	assert.False(t, one.Equal(two))
	assert.True(t, one.Equal(three), "run 1 of 2 and run 1 of 1 share an identity")
	assert.Equal(t, one.Key(), three.Key())
}

func TestCompare(t *testing.T) {
	in := []Description{
		New("b", Unit),
		NewRun("a", Unit, 2, 2),
		New("z", Group),
		Root("run"),
		NewRun("a", Unit, 1, 2),
		New("a", Group),
	}
	slices.SortFunc(in, Compare)

	var got []string
	for _, d := range in {
		got = append(got, d.Kind.String()+":"+d.String())
	}
	assert.Equal(t, []string{
		"system:run",
		"group:a",
		"group:z",
		"unit:a:1-2",
		"unit:a:2-2",
		"unit:b",
	}, got)
}

func TestDescription_String(t *testing.T) {
	assert.Equal(t, "a.b", New("a.b", Unit).String())
	assert.Equal(t, "a.b:2-3", NewRun("a.b", Unit, 2, 3).String())
	assert.Equal(t, "a.b:1-2(1,x)", NewRun("a.b", Unit, 1, 2, 1, "x").String())
	assert.Equal(t, "a.b(true)", NewRun("a.b", Unit, 1, 1, true).String())
}

func TestDescription_Valid(t *testing.T) {
	assert.True(t, New("a", Unit).Valid())
	assert.False(t, New("", Unit).Valid())
	assert.False(t, Description{Name: "a"}.Valid())
	assert.True(t, Description{}.IsZero())
}

func TestParseName(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expectErr bool
		segments  []string
	}{
		{name: "single segment", raw: "Arith", segments: []string{"Arith"}},
		{name: "dotted path", raw: "org.math.Arith", segments: []string{"org", "math", "Arith"}},
		{name: "dashes and underscores", raw: "http-probe.get_ok", segments: []string{"http-probe", "get_ok"}},
		{name: "error - empty", raw: "", expectErr: true},
		{name: "error - empty segment", raw: "a..b", expectErr: true},
		{name: "error - trailing dot", raw: "a.", expectErr: true},
		{name: "error - just hyphen", raw: "-", expectErr: true},
		{name: "error - illegal character", raw: "a.b[0]", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			segments, err := ParseName(tc.raw)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.segments, segments)
		})
	}
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, HasPrefix("a.b", "a.b"))
	assert.True(t, HasPrefix("a.b.c", "a.b"))
	assert.False(t, HasPrefix("a.bc", "a.b"))
	assert.False(t, HasPrefix("a", "a.b"))
	assert.False(t, HasPrefix("a", ""))
	assert.Equal(t, "a.b.c", Join("a", "", "b.c"))
}
