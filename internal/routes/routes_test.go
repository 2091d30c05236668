package routes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyops/tafboard/pkg/logger"
)

func writeTable(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadFixture(t *testing.T) *Tables {
	t.Helper()
	dir := t.TempDir()
	regions := writeTable(t, dir, "Region.txt",
		"Region,Airports\nNAM,KJFK|KORD\nEUR,EGLL\n")
	alternates := writeTable(t, dir, "Airport_list.txt",
		"Destination,Alternates\nKJFK,KEWR|KPHL\nKORD,KMKE\nEGLL,EGKK\n")
	enroute := writeTable(t, dir, "Enroute_Alternates.txt",
		"Region,Airports\nNAT,BIKF|CYQX\nNAM,KDEN\n")

	tables, err := Load(regions, alternates, enroute, logger.NewNop())
	require.NoError(t, err)
	return tables
}

func TestLoadSkipsHeaderLine(t *testing.T) {
	tables := loadFixture(t)
	assert.Equal(t, []string{"EUR", "NAM"}, tables.Regions())
}

func TestLoadRejectsInvalidCode(t *testing.T) {
	dir := t.TempDir()
	regions := writeTable(t, dir, "Region.txt", "Region,Airports\nNAM,KJFK|BAD1\n")
	alternates := writeTable(t, dir, "Airport_list.txt", "Destination,Alternates\nKJFK,KEWR\n")
	enroute := writeTable(t, dir, "Enroute_Alternates.txt", "Region,Airports\nNAT,BIKF\n")

	_, err := Load(regions, alternates, enroute, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":2:", "error points at the offending line")
	assert.Contains(t, err.Error(), "BAD1")
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	alternates := writeTable(t, dir, "Airport_list.txt", "KJFK,KEWR\n")
	enroute := writeTable(t, dir, "Enroute_Alternates.txt", "NAT,BIKF\n")

	_, err := Load(filepath.Join(dir, "absent.txt"), alternates, enroute, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region table")
}

func TestDestinationsForRegion(t *testing.T) {
	tables := loadFixture(t)

	assert.Equal(t, []string{"KJFK", "KORD"}, tables.DestinationsForRegion("NAM"))
	assert.Equal(t, []string{"EGLL", "KJFK", "KORD"}, tables.DestinationsForRegion(RegionAll),
		"ALL spans every configured region")
	assert.Empty(t, tables.DestinationsForRegion("PAC"))
}

func TestHasRegion(t *testing.T) {
	tables := loadFixture(t)

	assert.True(t, tables.HasRegion("NAM"))
	assert.True(t, tables.HasRegion(RegionAll))
	assert.True(t, tables.HasRegion("NAT"), "enroute-only regions count")
	assert.False(t, tables.HasRegion("PAC"))
}

func TestAlternatesFor(t *testing.T) {
	tables := loadFixture(t)

	assert.Equal(t, []string{"KEWR", "KPHL"}, tables.AlternatesFor("KJFK"))
	assert.Empty(t, tables.AlternatesFor("KLAX"))
}

func TestDestinationSet(t *testing.T) {
	tables := loadFixture(t)

	// Union of destinations and alternates, deduplicated and sorted.
	assert.Equal(t,
		[]string{"EGKK", "EGLL", "KEWR", "KJFK", "KMKE", "KORD", "KPHL"},
		tables.DestinationSet())
}

func TestEnrouteLookups(t *testing.T) {
	tables := loadFixture(t)

	assert.Equal(t, []string{"NAM", "NAT"}, tables.EnrouteRegions())
	assert.Equal(t, []string{"BIKF", "CYQX"}, tables.EnrouteForRegion("NAT"))
	assert.Equal(t, []string{"BIKF", "CYQX", "KDEN"}, tables.EnrouteSet())
}

func TestLoadNormalizesCase(t *testing.T) {
	dir := t.TempDir()
	regions := writeTable(t, dir, "Region.txt", "NAM,kjfk| kord \n")
	alternates := writeTable(t, dir, "Airport_list.txt", "KJFK,kewr\n")
	enroute := writeTable(t, dir, "Enroute_Alternates.txt", "NAT,bikf\n")

	tables, err := Load(regions, alternates, enroute, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"KJFK", "KORD"}, tables.DestinationsForRegion("NAM"))
}
