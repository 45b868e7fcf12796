package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	assert.Len(t, p.CityAllowlist, 21)
	assert.Equal(t, "ps", p.PageSizeParam)
	assert.Equal(t, "100", p.PageSize)
	assert.Equal(t, "公司名稱", p.Company.Name)
}

func TestProfile_Allowed(t *testing.T) {
	p := DefaultProfile()

	tests := []struct {
		location string
		want     bool
	}{
		{"台北市中山區", true},
		{"連江縣南竿鄉", true},
		{"台北市", true},
		{"日本東京都", false},
		{"台北", false},
		{"", false},
		{"臺北市大安區", false},
		{"台\uF963市大安區", true},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Allowed(tt.location))
		})
	}
}

func TestLoadProfile_MergesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := `
selectors:
  entry: "li.job"
company:
  address: "地址"
city_allowlist:
  - 臺北市
page_size: "50"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, "li.job", p.Selectors.Entry)
	assert.Equal(t, DefaultProfile().Selectors.Salary, p.Selectors.Salary)
	assert.Equal(t, "地址", p.Company.Address)
	assert.Equal(t, "公司名稱", p.Company.Name)
	assert.Equal(t, "50", p.PageSize)
	assert.Equal(t, "ps", p.PageSizeParam)

	assert.True(t, p.Allowed("臺北市大安區"))
	assert.False(t, p.Allowed("台北市大安區"))
}

func TestLoadProfile_Errors(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract: read profile")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("selectors: [not, a, map"), 0o644))
	_, err = LoadProfile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract: parse profile")
}
