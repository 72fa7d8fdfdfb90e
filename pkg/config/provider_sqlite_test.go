package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteProvider(t *testing.T) *SQLiteProvider {
	t.Helper()
	p, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	require.NoError(t, MigrateSQLite(p.DB(), t.Logf))
	return p
}

func TestSQLiteProviderEmptyDatabase(t *testing.T) {
	p := newTestSQLiteProvider(t)

	c, err := p.LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, c.Sites)
	assert.Equal(t, "0.0.0.0:8080", c.Server.Address())
	assert.Nil(t, c.Analysis.CellSize)
	assert.False(t, p.IsReadOnly())
}

func TestSQLiteProviderRoundTrip(t *testing.T) {
	want, err := ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	p := newTestSQLiteProvider(t)
	require.NoError(t, p.SaveConfig(want))

	got, err := p.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, want.Server, got.Server)
	assert.Equal(t, want.Analysis, got.Analysis)
	require.Len(t, got.Sites, 2)

	// Sites come back ordered by name
	wantVilla, _ := FindSite(want.Sites, "copenhagen-villa")
	assert.Equal(t, wantVilla, got.Sites[0])
	wantFarm, _ := FindSite(want.Sites, "farmhouse")
	assert.Equal(t, wantFarm, got.Sites[1])

	site, err := p.GetSite("farmhouse")
	require.NoError(t, err)
	assert.Equal(t, "rural", site.Classification)

	_, err = p.GetSite("nowhere")
	assert.ErrorIs(t, err, ErrSiteNotFound)
}

func TestSQLiteProviderSaveReplaces(t *testing.T) {
	p := newTestSQLiteProvider(t)

	first, err := ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)
	require.NoError(t, p.SaveConfig(first))

	second := &ConfigData{Sites: first.Sites[1:]}
	require.NoError(t, p.SaveConfig(second))

	sites, err := p.GetSites()
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "farmhouse", sites[0].Name)

	server, err := p.GetServer()
	require.NoError(t, err)
	assert.Equal(t, ServerData{}, *server)
}

func TestMigrateSQLiteIsIdempotent(t *testing.T) {
	p := newTestSQLiteProvider(t)
	assert.NoError(t, MigrateSQLite(p.DB(), nil))
}
