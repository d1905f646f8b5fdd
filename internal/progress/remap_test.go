package progress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemapInstancesMovesFourKeys(t *testing.T) {
	raw := map[string]interface{}{
		"orderby":          "orderbytime",
		"monitor_quiz12":   "1",
		"locked_quiz12":    "1",
		"date_time_quiz12": float64(1700000000),
		"action_quiz12":    "passed",
		"monitor_page3":    "0",
		"action_page3":     "viewed",
	}

	remapped, moved := RemapInstances(raw, InstanceMapping{"quiz12": 40, "page3": 8})
	require.Equal(t, 1, moved)
	require.Equal(t, map[string]interface{}{
		"orderby":          "orderbytime",
		"monitor_quiz40":   "1",
		"locked_quiz40":    "1",
		"date_time_quiz40": float64(1700000000),
		"action_quiz40":    "passed",
		"monitor_page3":    "0",
		"action_page3":     "viewed",
	}, remapped)

	require.Contains(t, raw, "monitor_quiz12")
}

func TestRemapInstancesHandlesSwappedIDs(t *testing.T) {
	raw := map[string]interface{}{
		"monitor_quiz1": true,
		"action_quiz1":  "passed",
		"monitor_quiz2": true,
		"action_quiz2":  "finished",
	}

	remapped, moved := RemapInstances(raw, InstanceMapping{"quiz1": 2, "quiz2": 1})
	require.Equal(t, 2, moved)
	require.Equal(t, "finished", remapped["action_quiz1"])
	require.Equal(t, "passed", remapped["action_quiz2"])
	require.Len(t, remapped, 4)
}

func TestRemapInstancesIgnoresUnmappedInstances(t *testing.T) {
	raw := map[string]interface{}{"monitor_forum5": 1}
	remapped, moved := RemapInstances(raw, InstanceMapping{"quiz5": 9})
	require.Zero(t, moved)
	require.Equal(t, raw, remapped)
}
