package csvdata

import (
	"os"
	"path/filepath"
	"testing"

	"adlift/domain/core"
	"adlift/domain/creative"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadMetricRows(t *testing.T) {
	path := writeFile(t, "results.csv", `metric,segment,breakdown,delta,margin_of_error,ci_95_interval,baseline_mean,test_group_mean,baseline_sample_size,test_group_sample_size,total_weight
favorability,age_18_24,Age,-0.12,0.05,"[-0.17, -0.07]",0.62,0.50,480,495,1200
purchase_intent,overall,,0.04,0.06,,0.31,0.35,1000,1010,
`)

	r := NewReader()
	rows, err := r.ReadMetricRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "favorability", rows[0].Metric)
	assert.Equal(t, "age_18_24", rows[0].Segment)
	assert.Equal(t, "Age", rows[0].Breakdown)
	assert.Equal(t, "-0.12", rows[0].Delta)
	assert.Equal(t, "[-0.17, -0.07]", rows[0].CI95Interval)
	assert.Equal(t, "1200", rows[0].TotalWeight)

	assert.Equal(t, "purchase_intent", rows[1].Metric)
	assert.Empty(t, rows[1].CI95Interval)
	assert.Empty(t, rows[1].TotalWeight)
}

func TestReadMetricRows_ColumnAliases(t *testing.T) {
	path := writeFile(t, "results.csv", `Metric_Name,Segment_Name,Lift,MOE
favorability,overall,0.08,0.03
`)

	rows, err := NewReader().ReadMetricRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "favorability", rows[0].Metric)
	assert.Equal(t, "overall", rows[0].Segment)
	assert.Equal(t, "0.08", rows[0].Delta)
	assert.Equal(t, "0.03", rows[0].MarginOfError)
}

func TestReadMetricRows_MissingRequiredColumn(t *testing.T) {
	path := writeFile(t, "results.csv", `metric,delta
favorability,0.08
`)

	_, err := NewReader().ReadMetricRows(path)
	require.Error(t, err)
	assert.True(t, core.IsInvalidInputError(err))
}

func TestReadCommentRows_DetectsSegmentFlags(t *testing.T) {
	path := writeFile(t, "comments.csv", `response_id,treatment_group,age_18_24,age_25_34,region,sentiment,theme_label,keywords,text
r1,test,TRUE,FALSE,west,negative,authenticity,corporate;scripted,Felt too corporate
r2,test,1,0,east,positive,humor,funny,Loved the jokes
r3,test,false,true,west,,,,
`)

	rows, err := NewReader().ReadCommentRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// region has non-boolean values so it never becomes a flag column.
	assert.Equal(t, map[string]bool{"age_18_24": true}, rows[0].SegmentFlags)
	assert.Equal(t, map[string]bool{"age_18_24": true}, rows[1].SegmentFlags)
	assert.Equal(t, map[string]bool{"age_25_34": true}, rows[2].SegmentFlags)

	assert.Equal(t, "authenticity", rows[0].ThemeLabel)
	assert.Equal(t, []string{"corporate", "scripted"}, rows[0].Keywords)

	// Blank sentiment coerces to neutral.
	assert.Equal(t, "neutral", string(rows[2].Sentiment))
	assert.Empty(t, rows[2].Keywords)
}

func TestReadCommentRows_CommaKeywords(t *testing.T) {
	path := writeFile(t, "comments.csv", `response_id,age_18_24,sentiment,theme_label,keywords,text
r1,1,negative,pacing,"slow, dragging",Too slow in the middle
`)

	rows, err := NewReader().ReadCommentRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"slow", "dragging"}, rows[0].Keywords)
}

func TestReadCommentRows_UnknownSentiment(t *testing.T) {
	path := writeFile(t, "comments.csv", `response_id,age_18_24,sentiment,theme_label,keywords,text
r1,1,meh,pacing,slow,Too slow
`)

	_, err := NewReader().ReadCommentRows(path)
	require.Error(t, err)
	assert.True(t, core.IsInvalidInputError(err))
}

func TestReadCommentRows_MissingTextColumn(t *testing.T) {
	path := writeFile(t, "comments.csv", `response_id,age_18_24,sentiment
r1,1,negative
`)

	_, err := NewReader().ReadCommentRows(path)
	require.Error(t, err)
	assert.True(t, core.IsInvalidInputError(err))
}

func TestReadCreativeElements(t *testing.T) {
	path := writeFile(t, "elements.json", `{
		"scenes": [
			{"scene_id": "scene_2", "start_time": 5.2, "end_time": 11.0, "visual_tags": ["product", "close_up"]},
			{"scene_id": "scene_1", "start_time": 0, "end_time": 5.2, "visual_tags": ["office", "corporate"], "transcript": "Our brand has always been about people."}
		],
		"attributes": [
			{"kind": "audio_tone", "value": "formal_voiceover", "tags": ["corporate", "scripted"]},
			{"kind": "pacing", "value": "slow_open", "tags": ["slow"]}
		]
	}`)

	elements, err := NewReader().ReadCreativeElements(path)
	require.NoError(t, err)
	require.Len(t, elements, 4)

	// Scenes first, ordered by start time, then attributes in declaration order.
	assert.Equal(t, "scene:scene_1", elements[0].Key())
	assert.Equal(t, "scene:scene_2", elements[1].Key())
	assert.Equal(t, "audio_tone:formal_voiceover", elements[2].Key())
	assert.Equal(t, "pacing:slow_open", elements[3].Key())

	assert.Equal(t, creative.KindScene, elements[0].Kind())
	assert.Contains(t, elements[0].MatchTokens(), "corporate")
}

func TestReadCreativeElements_UnknownKind(t *testing.T) {
	path := writeFile(t, "elements.json", `{"attributes": [{"kind": "color_grade", "value": "warm"}]}`)

	_, err := NewReader().ReadCreativeElements(path)
	require.Error(t, err)
	assert.True(t, core.IsInvalidInputError(err))
}

func TestReadTable_EmptyFile(t *testing.T) {
	path := writeFile(t, "results.csv", "metric,segment,delta\n")

	_, err := NewReader().ReadMetricRows(path)
	require.Error(t, err)
}
