package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadString(t *testing.T, content string) *Config {
	t.Helper()
	c, err := LoadString(content)
	require.NoError(t, err)
	return c
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.cfg")
	require.NoError(t, os.WriteFile(path, []byte("[general]\noption = value\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	v, err := c.Get("general", "option")
	require.NoError(t, err)
	assert.Equal(t, "value", v)
}

func TestGetMissingOption(t *testing.T) {
	c := loadString(t, "[section]\noption = x\n")

	_, err := c.Get("section", "other")
	assert.ErrorIs(t, err, ErrNoOption)

	_, err = c.Get("other_section", "option")
	assert.ErrorIs(t, err, ErrNoOption)
}

func TestGetList(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"plain", "a, b , c  ", []string{"a", "b", "c"}},
		{"numbers", "1, 2 , 3", []string{"1", "2", "3"}},
		{"empty", "", []string{}},
		{"single", "a", []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loadString(t, "[section]\noption = "+tt.value+"\n")
			got, err := c.GetList("section", "option", false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("missing option", func(t *testing.T) {
		c := loadString(t, "[section]\noption = x\n")

		_, err := c.GetList("section", "other", false)
		assert.ErrorIs(t, err, ErrNoOption)

		got, err := c.GetList("section", "other", true)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestTypedLists(t *testing.T) {
	c := loadString(t, `[section]
ints = 3500, 4500, 5500
floats = 1, 2 , 3
bools_true = 1, yes, true, on
bools_false = 0, no, false, off
words = a, b, c
badbool = nobool, no
`)

	t.Run("ints", func(t *testing.T) {
		got, err := c.GetIntList("section", "ints", false)
		require.NoError(t, err)
		assert.Equal(t, []int{3500, 4500, 5500}, got)
	})

	t.Run("floats", func(t *testing.T) {
		got, err := c.GetFloatList("section", "floats", false)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3}, got)
	})

	t.Run("bools true", func(t *testing.T) {
		got, err := c.GetBoolList("section", "bools_true", false)
		require.NoError(t, err)
		assert.Equal(t, []bool{true, true, true, true}, got)
	})

	t.Run("bools false", func(t *testing.T) {
		got, err := c.GetBoolList("section", "bools_false", false)
		require.NoError(t, err)
		assert.Equal(t, []bool{false, false, false, false}, got)
	})

	t.Run("words as ints fail", func(t *testing.T) {
		_, err := c.GetIntList("section", "words", false)
		assert.Error(t, err)
	})

	t.Run("bad bool", func(t *testing.T) {
		_, err := c.GetBoolList("section", "badbool", false)
		assert.ErrorIs(t, err, ErrBadBool)
	})
}

func TestGetListOfList(t *testing.T) {
	c := loadString(t, `[section]
wranges = 3500-4500,4500-5500
spaced = a-b , c-d
empty =
`)

	t.Run("ranges", func(t *testing.T) {
		got, err := c.GetListOfList("section", "wranges", false)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"3500", "4500"}, {"4500", "5500"}}, got)
	})

	t.Run("spaces trimmed", func(t *testing.T) {
		got, err := c.GetListOfList("section", "spaced", false)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, got)
	})

	t.Run("empty value", func(t *testing.T) {
		got, err := c.GetListOfList("section", "empty", false)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("missing option", func(t *testing.T) {
		_, err := c.GetListOfList("section", "nope", false)
		assert.ErrorIs(t, err, ErrNoOption)

		got, err := c.GetListOfList("section", "nope", true)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("float ranges", func(t *testing.T) {
		got, err := c.GetFloatRanges("section", "wranges", false)
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{3500, 4500}, {4500, 5500}}, got)
	})
}

func TestOverride(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		modified bool
	}{
		{"no prefix", "other", "test", false},
		{"too few parts", "setting__sec1", "test", false},
		{"empty value skipped", "setting__sec1__opt1", "", false},
		{"override applied", "setting__sec1__opt1", "test", true},
		{"unknown option", "setting__sec1__opt2", "test", false},
		{"unknown section", "setting__sec2__opt1", "test", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loadString(t, "[sec1]\nopt1 = val1\n")
			c.Override(map[string]string{tt.key: tt.value})

			got, err := c.Get("sec1", "opt1")
			require.NoError(t, err)
			if tt.modified {
				assert.Equal(t, tt.value, got)
			} else {
				assert.Equal(t, "val1", got)
			}
		})
	}
}

func TestDeployDirs(t *testing.T) {
	t.Run("placeholders expanded", func(t *testing.T) {
		c := loadString(t, `[deploy]
doc_dir = /srv/www/{name}/{type}
cover_dir = /srv/cover/{name}
`)
		d := c.DeployDirs("gohetdex", "docs")
		assert.Equal(t, "/srv/www/gohetdex/docs", d.DocDir)
		assert.Equal(t, "/srv/cover/gohetdex", d.CoverDir)
	})

	t.Run("missing keys are empty", func(t *testing.T) {
		c := loadString(t, "[deploy]\ndoc_dir = /srv/docs\n")
		d := c.DeployDirs("gohetdex", "docs")
		assert.Equal(t, "/srv/docs", d.DocDir)
		assert.Empty(t, d.CoverDir)
	})

	t.Run("missing section is empty", func(t *testing.T) {
		c := loadString(t, "[other]\nkey = v\n")
		d := c.DeployDirs("gohetdex", "docs")
		assert.Empty(t, d.DocDir)
		assert.Empty(t, d.CoverDir)
	})
}
