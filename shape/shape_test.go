package shape_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statecraft/nswire/sax"
	"github.com/statecraft/nswire/shape"
)

const nationDoc = `<NATION id="testlandia">
  <NAME>Testlandia</NAME>
  <FULLNAME>The Hive Mind of Testlandia</FULLNAME>
  <MOTTO>Grr. Arg.</MOTTO>
  <REGION>Testregionia</REGION>
  <POPULATION>40127</POPULATION>
  <FREEDOM>
    <CIVILRIGHTS>Excellent</CIVILRIGHTS>
    <ECONOMY>Powerhouse</ECONOMY>
    <POLITICALFREEDOM>Superb</POLITICALFREEDOM>
  </FREEDOM>
  <ENDORSEMENTS>maxtopia,brancaland</ENDORSEMENTS>
  <FIRSTLOGIN>1097500000</FIRSTLOGIN>
  <LASTLOGIN>1756200000</LASTLOGIN>
  <LASTACTIVITY>2 hours ago</LASTACTIVITY>
  <CENSUS>
    <SCALE id="0">
      <SCORE>61.5</SCORE>
    </SCALE>
    <SCALE id="46">
      <SCORE>88.25</SCORE>
    </SCALE>
  </CENSUS>
  <UNKNOWNSHARD>ignored</UNKNOWNSHARD>
</NATION>`

func TestNationAssembler(t *testing.T) {
	root := shape.NationAssembler()
	require.NoError(t, sax.Stream(strings.NewReader(nationDoc), root))

	v, err := root.Deliver()
	require.NoError(t, err)
	n, err := shape.BindNation(v)
	require.NoError(t, err)

	assert.Equal(t, "Testlandia", n.Name)
	assert.Equal(t, "The Hive Mind of Testlandia", n.FullName)
	assert.Equal(t, "Grr. Arg.", n.Motto)
	assert.Equal(t, "Testregionia", n.Region)
	assert.Equal(t, 40127, n.Population)
	assert.Equal(t, shape.Freedom{Civil: "Excellent", Economy: "Powerhouse", Political: "Superb"}, n.Freedom)
	assert.Equal(t, []string{"maxtopia", "brancaland"}, n.Endorsements)
	assert.Equal(t, 1097500000, n.Activity.FirstLogin)
	assert.Equal(t, 1756200000, n.Activity.LastLogin)
	assert.Equal(t, "2 hours ago", n.Activity.LastSeen)
	require.Len(t, n.Census, 2)
	assert.Equal(t, shape.CensusScale{ID: 0, Score: 61.5}, n.Census[0])
	assert.Equal(t, shape.CensusScale{ID: 46, Score: 88.25}, n.Census[1])
}

const regionDoc = `<REGION id="testregionia">
  <NAME>Testregionia</NAME>
  <NUMNATIONS>3</NUMNATIONS>
  <NATIONS>testlandia:maxtopia:brancaland</NATIONS>
  <DELEGATE>testlandia</DELEGATE>
  <POWER>High</POWER>
  <FOUNDED>12 years ago</FOUNDED>
  <FOUNDEDTIME>1380000000</FOUNDEDTIME>
  <OFFICERS>
    <OFFICER>
      <NATION>maxtopia</NATION>
      <OFFICE>Minister of Fun</OFFICE>
      <AUTHORITY>AC</AUTHORITY>
      <ORDER>1</ORDER>
    </OFFICER>
  </OFFICERS>
</REGION>`

func TestRegionAssembler(t *testing.T) {
	root := shape.RegionAssembler()
	require.NoError(t, sax.Stream(strings.NewReader(regionDoc), root))

	v, err := root.Deliver()
	require.NoError(t, err)
	r, err := shape.BindRegion(v)
	require.NoError(t, err)

	assert.Equal(t, "Testregionia", r.Name)
	assert.Equal(t, 3, r.NumNations)
	assert.Equal(t, []string{"testlandia", "maxtopia", "brancaland"}, r.Nations)
	assert.Equal(t, "testlandia", r.Delegate)
	assert.Equal(t, "High", r.Power)
	assert.Equal(t, shape.Founded{Text: "12 years ago", Timestamp: 1380000000}, r.Founded)
	require.Len(t, r.Officers, 1)
	assert.Equal(t, shape.Officer{
		Nation: "maxtopia", Office: "Minister of Fun", Authority: "AC", Order: 1,
	}, r.Officers[0])
}

const worldDoc = `<WORLD>
  <NUMNATIONS>287000</NUMNATIONS>
  <NATIONS>testlandia,maxtopia</NATIONS>
  <HAPPENINGS>
    <EVENT id="101">
      <TIMESTAMP>1756250000</TIMESTAMP>
      <TEXT>@@testlandia@@ was endorsed by @@maxtopia@@.</TEXT>
    </EVENT>
    <EVENT id="102">
      <TIMESTAMP>1756250100</TIMESTAMP>
      <TEXT>@@brancaland@@ relocated from %%the_north%% to %%the_south%%.</TEXT>
    </EVENT>
  </HAPPENINGS>
</WORLD>`

func TestWorldAssembler(t *testing.T) {
	root := shape.WorldAssembler()
	require.NoError(t, sax.Stream(strings.NewReader(worldDoc), root))

	v, err := root.Deliver()
	require.NoError(t, err)
	w, err := shape.BindWorld(v)
	require.NoError(t, err)

	assert.Equal(t, 287000, w.NumNations)
	assert.Equal(t, []string{"testlandia", "maxtopia"}, w.Nations)
	require.Len(t, w.Happenings, 2)
	assert.Equal(t, 101, w.Happenings[0].ID)
	assert.Equal(t, 1756250000, w.Happenings[0].Timestamp)
	assert.Contains(t, w.Happenings[0].Text, "endorsed")
}

func TestHappeningsAssembler_FiltersWhileStreaming(t *testing.T) {
	root := shape.HappeningsAssembler(func(ev map[string]any) bool {
		text, _ := ev["text"].(string)
		return strings.Contains(text, "relocated")
	})
	require.NoError(t, sax.Stream(strings.NewReader(worldDoc), root))

	v, err := root.Deliver()
	require.NoError(t, err)
	events, err := shape.BindHappenings(v)
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, 102, events[0].ID)
}

func TestHappeningsAssembler_NilFilterPanics(t *testing.T) {
	assert.Panics(t, func() { shape.HappeningsAssembler(nil) })
}
