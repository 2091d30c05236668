package taf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCategories(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Category
	}{
		{
			name: "clear forecast",
			text: "TAF KJFK 251130Z 2512/2618 28012KT 9999 FEW040",
			want: nil,
		},
		{
			name: "low visibility",
			text: "TAF KJFK 251130Z 2512/2618 28012KT 2500 BR SCT020",
			want: []Category{CategoryLowVisibility},
		},
		{
			name: "visibility exactly at threshold is not flagged",
			text: "TAF KJFK 251130Z 2512/2618 28012KT 3000 BR SCT020",
			want: nil,
		},
		{
			name: "unlimited visibility never flagged",
			text: "TAF EGLL 251100Z 2512/2618 27010KT 9999 BKN030",
			want: nil,
		},
		{
			name: "low ceiling broken",
			text: "TAF KORD 251130Z 2512/2618 30008KT 8000 BKN008",
			want: []Category{CategoryLowCeiling},
		},
		{
			name: "low ceiling overcast with convective suffix",
			text: "TAF KORD 251130Z 2512/2618 30008KT 8000 OVC005CB",
			want: []Category{CategoryLowCeiling},
		},
		{
			name: "ceiling exactly at threshold is not flagged",
			text: "TAF KORD 251130Z 2512/2618 30008KT 8000 BKN010",
			want: nil,
		},
		{
			name: "unmeasured vertical visibility",
			text: "TAF LFPG 251100Z 2512/2618 VRB02KT 0200 FG VV///",
			want: []Category{CategoryLowVisibility, CategoryUnmeasuredVisibility},
		},
		{
			name: "measured vertical visibility",
			text: "TAF LFPG 251100Z 2512/2618 VRB02KT 4000 BR VV002",
			want: []Category{CategoryUnmeasuredVisibility},
		},
		{
			name: "freezing rain",
			text: "TAF CYQX 251130Z 2512/2618 09015KT 6000 FZRA OVC015",
			want: []Category{CategoryFreezing},
		},
		{
			name: "light freezing drizzle",
			text: "TAF CYQX 251130Z 2512/2618 09015KT 6000 -FZDZ OVC015",
			want: []Category{CategoryFreezing},
		},
		{
			name: "snow",
			text: "TAF BIKF 251130Z 2512/2618 36020KT 4000 SN OVC020",
			want: []Category{CategorySnow},
		},
		{
			name: "snow derivatives",
			text: "TAF BIKF 251130Z 2512/2618 36020KT 4000 +SHSN BLSN OVC020",
			want: []Category{CategorySnow},
		},
		{
			name: "worked example",
			text: "FM1200 28015G25KT 2000 -SN BKN008",
			want: []Category{CategoryLowVisibility, CategoryLowCeiling, CategorySnow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := Classify(tt.text)
			var got []Category
			for _, cat := range []Category{
				CategoryLowVisibility, CategoryLowCeiling,
				CategoryUnmeasuredVisibility, CategoryFreezing, CategorySnow,
			} {
				if _, ok := record.Categories[cat]; ok {
					got = append(got, cat)
				}
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, record.Raw)
		})
	}
}

func TestClassifySegments(t *testing.T) {
	text := "TAF KJFK 251130Z 2512/2618 28012KT 9999 FEW040 FM251800 30015KT 2000 -SN BKN008 BECMG 2600/2602 6000 NSW PROB30 TEMPO 2604/2608 0800 FZFG VV002"
	record := Classify(text)

	require.Len(t, record.Segments, 4)
	assert.Equal(t, "HEADER", record.Segments[0].Kind)
	assert.Equal(t, "FM", record.Segments[1].Kind)
	assert.Equal(t, "BECMG", record.Segments[2].Kind)
	assert.Equal(t, "PROB", record.Segments[3].Kind)

	// Hazards stay attached to their own time window.
	assert.Empty(t, record.Segments[0].Categories)
	assert.Contains(t, record.Segments[1].Categories, CategoryLowVisibility)
	assert.Contains(t, record.Segments[1].Categories, CategoryLowCeiling)
	assert.Contains(t, record.Segments[1].Categories, CategorySnow)
	assert.Empty(t, record.Segments[2].Categories)
	assert.Contains(t, record.Segments[3].Categories, CategoryLowVisibility)
	assert.Contains(t, record.Segments[3].Categories, CategoryUnmeasuredVisibility)

	// PROB30 absorbs the following TEMPO into one segment.
	assert.Contains(t, record.Segments[3].Text, "TEMPO")

	// Record-level categories are the union across segments.
	assert.Contains(t, record.Categories, CategorySnow)
	assert.Contains(t, record.Categories, CategoryUnmeasuredVisibility)
}

func TestClassifyMatchedTokens(t *testing.T) {
	record := Classify("FM1200 28015G25KT 2000 -SN BKN008")

	assert.Equal(t, "2000", record.Categories[CategoryLowVisibility])
	assert.Equal(t, "BKN008", record.Categories[CategoryLowCeiling])
	assert.Equal(t, "-SN", record.Categories[CategorySnow])
}

func TestClassifyIsPure(t *testing.T) {
	text := "TAF LFPG 251100Z 2512/2618 VRB02KT 0200 FG VV/// TEMPO 2518/2522 2000 SN BKN005"
	first := Classify(text)
	second := Classify(text)
	assert.Equal(t, first, second)
}

func TestClassifyEmptyInput(t *testing.T) {
	record := Classify("")
	assert.Empty(t, record.Segments)
	assert.Empty(t, record.Categories)
	assert.False(t, record.Significant())
}

func TestClassifyDoesNotOvermatch(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"wind group is not visibility", "TAF KJFK 251130Z 28012KT"},
		{"scattered clouds are not a ceiling", "TAF KJFK 251130Z SCT005"},
		{"time group is not visibility", "TAF KJFK 251130Z 2512/2618 9999"},
		{"NOSIG is not a snow code", "TAF KJFK 251130Z 9999 NOSIG"},
		{"runway state group is not flagged", "TAF KJFK 251130Z 9999 R04/0800"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := Classify(tt.text)
			assert.Empty(t, record.Categories)
		})
	}
}
