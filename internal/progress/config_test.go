package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseBlockConfigDefaults(t *testing.T) {
	cfg := ParseBlockConfig(nil)

	require.Equal(t, OrderByTime, cfg.OrderBy)
	require.True(t, cfg.DisplayNow)
	require.False(t, cfg.ShowIcons)
	require.False(t, cfg.ShowPercentage)
	require.Empty(t, cfg.Instances)
}

func TestParseBlockConfigReadsMixedScalars(t *testing.T) {
	cfg := ParseBlockConfig(map[string]interface{}{
		"progressTitle":        " Week plan ",
		"progressBarIcons":     "1",
		"orderby":              "orderbycourse",
		"displayNow":           float64(0),
		"showpercentage":       true,
		"longbars":             "wrap",
		"group":                "4",
		"monitor_quiz12":       1,
		"locked_quiz12":        "0",
		"date_time_quiz12":     float64(1700000000),
		"action_quiz12":        "passed",
		"monitor_page3":        false,
		"date_time_page3":      "2024-03-01T10:00:00Z",
		"monitor_assign":       true,
		"unrelated_setting_99": "x",
	})

	require.Equal(t, "Week plan", cfg.Title)
	require.True(t, cfg.ShowIcons)
	require.Equal(t, OrderByCoursePosition, cfg.OrderBy)
	require.False(t, cfg.DisplayNow)
	require.True(t, cfg.ShowPercentage)
	require.Equal(t, LongBarsWrap, cfg.LongBars)
	require.Equal(t, uint(4), cfg.GroupID)

	quiz, ok := cfg.Settings("quiz", 12)
	require.True(t, ok)
	require.True(t, quiz.Monitored())
	require.False(t, quiz.Locked)
	require.Equal(t, time.Unix(1700000000, 0).UTC(), quiz.Expected)
	require.Equal(t, "passed", quiz.Action)

	page, ok := cfg.Settings("page", 3)
	require.True(t, ok)
	require.NotNil(t, page.Monitor)
	require.False(t, page.Monitored())
	require.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), page.Expected)

	require.Len(t, cfg.Instances, 2)
}

func TestParseOrderModeAliases(t *testing.T) {
	require.Equal(t, OrderByCoursePosition, ParseOrderMode("by_course_position"))
	require.Equal(t, OrderByTime, ParseOrderMode("by_time"))
	require.Equal(t, OrderByTime, ParseOrderMode(""))
}

func TestParseLongBarsFallback(t *testing.T) {
	require.Equal(t, LongBarsScroll, ParseLongBars("SCROLL", LongBarsSqueeze))
	require.Equal(t, LongBarsSqueeze, ParseLongBars("zigzag", LongBarsSqueeze))
}

func TestConfigKey(t *testing.T) {
	require.Equal(t, "date_time_quiz12", ConfigKey("date_time", "quiz", 12))
}
