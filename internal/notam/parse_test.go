package notam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatID(t *testing.T) {
	tests := []struct {
		name   string
		series string
		number string
		year   string
		want   string
	}{
		{"plain number", "A", "0041", "2026", "A0041/26"},
		{"number carries series prefix", "A", "A0041", "2026", "A0041/26"},
		{"number carries year suffix", "A", "A0041/26", "2026", "A0041/26"},
		{"two digit year kept", "B", "0102", "26", "B0102/26"},
		{"missing series", "", "0041", "2026", "0041/26"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatID(tt.series, tt.number, tt.year))
		})
	}
}

func TestICAODate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-01-01T08:00:00Z", "2601010800"},
		{"2026-03-01T17:30:00", "2603011730"},
		{"", "PERM"},
		{"PERM", "PERM"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ICAODate(tt.in), tt.in)
	}
}

func TestStructureBuildsICAOLayout(t *testing.T) {
	p := notamPayload{
		Series:         "A",
		Number:         "A0041/26",
		Year:           "2026",
		Type:           "N",
		Location:       "KJFK",
		EffectiveStart: "2026-01-01T08:00:00Z",
		EffectiveEnd:   "2026-03-01T17:00:00Z",
		Text:           "RWY 04L/22R CLSD DUE TO CONSTRUCTION",
		QCode:          "ZNY/QMRLC/IV/NBO/A/000/999/4038N07346W005",
		Schedule:       "DLY 0800-1700",
		Status:         "Active",
	}
	n := structure(p, "A0041/26 NOTAMN ...")

	assert.Equal(t, "A0041/26", n.ID)
	assert.Equal(t, "NOTAMN", n.Type)
	assert.Equal(t, "KJFK", n.Location)
	assert.Equal(t, "2601010800", n.EffectiveStart)
	assert.Equal(t, "2603011700", n.EffectiveEnd)
	assert.True(t, n.Runway)

	layout := n.ICAOFormat()
	assert.Contains(t, layout, "A0041/26 NOTAMN")
	assert.Contains(t, layout, "Q) ZNY/QMRLC")
	assert.Contains(t, layout, "A) KJFK B) 2601010800 C) 2603011700")
	assert.Contains(t, layout, "D) DLY 0800-1700")
	assert.Contains(t, layout, "E) RWY 04L/22R CLSD")
}

func TestStructureBestEffortOnMissingFields(t *testing.T) {
	n := structure(notamPayload{Location: "KJFK", Text: "TWY B CLSD"}, "")

	assert.Equal(t, "/", n.ID)
	assert.Equal(t, "KJFK", n.Location)
	assert.Equal(t, "PERM", n.EffectiveStart)
	assert.Equal(t, "PERM", n.EffectiveEnd)
	assert.Empty(t, n.QLine)
	assert.False(t, n.Runway)
}

func TestRunwayDetection(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"RWY09L CLSD", true},
		{"RWY 27 AVBL AS TWY", true},
		{"RUNWAY 04 LIGHTING U/S", true},
		{"RWY CONSTRUCTION ONGOING", false}, // keyword without a designator
		{"TWY A CLSD BTN TWY B AND APRON", false},
		{"OBST CRANE ERECTED 1NM NORTH", false},
	}
	for _, tt := range tests {
		n := structure(notamPayload{Location: "KJFK", Text: tt.text}, "")
		assert.Equal(t, tt.want, n.Runway, tt.text)
	}
}

func TestSortRunwayFirst(t *testing.T) {
	notams := []StructuredNotam{
		{ID: "A0001/26", Text: "TWY A CLSD"},
		{ID: "A0002/26", Text: "RWY09L CLSD", Runway: true},
		{ID: "A0003/26", Text: "OBST CRANE"},
		{ID: "A0004/26", Text: "RWY 27 WIP", Runway: true},
	}
	SortRunwayFirst(notams)

	require.Len(t, notams, 4)
	assert.Equal(t, "A0002/26", notams[0].ID)
	assert.Equal(t, "A0004/26", notams[1].ID)
	// Non-runway notices keep their upstream order.
	assert.Equal(t, "A0001/26", notams[2].ID)
	assert.Equal(t, "A0003/26", notams[3].ID)
}
