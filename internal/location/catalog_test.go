package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantLen int
		wantErr bool
	}{
		{
			name: "valid",
			data: `
cities:
  - slug: Lisbon
    code: LIS
    name: Lisbon
    country: Portugal
  - slug: porto
    code: OPO
    name: Porto
`,
			wantLen: 2,
		},
		{
			name:    "empty document",
			data:    ``,
			wantLen: 0,
		},
		{
			name: "missing code",
			data: `
cities:
  - slug: lisbon
    name: Lisbon
`,
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			data:    "cities: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCatalog([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, c.Len())
		})
	}
}

func TestCatalog_Match(t *testing.T) {
	c, err := ParseCatalog([]byte(`
cities:
  - slug: Lisbon
    code: LIS
    name: Lisbon
  - slug: london
    code: LON
    name: London
`))
	require.NoError(t, err)

	tests := []struct {
		keyword  string
		wantCode string
		wantOK   bool
	}{
		{keyword: "lis", wantCode: "LIS", wantOK: true},
		{keyword: "LISBON", wantCode: "LIS", wantOK: true},
		{keyword: "on", wantCode: "LIS", wantOK: true}, // first match in table order
		{keyword: "lond", wantCode: "LON", wantOK: true},
		{keyword: "madrid", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			city, ok := c.Match(tt.keyword)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCode, city.Code)
		})
	}
}

func TestCatalog_NilIsEmpty(t *testing.T) {
	var c *Catalog
	_, ok := c.Match("amsterdam")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}
