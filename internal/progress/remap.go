package progress

import "strconv"

// InstanceMapping maps an old instance key (type + old id, e.g. quiz12) to the
// instance id it now has.
type InstanceMapping map[string]uint

type instanceMove struct {
	typeName string
	from     uint
	to       uint
}

var instanceKeyPrefixes = []string{keyMonitor, keyLocked, keyDateTime, keyAction}

// RemapInstances rewrites the per-instance keys of monitored instances after
// their ids changed. The four keys of every remapped instance move to the new
// id and the old keys are removed. The input is left untouched; the result
// and the number of moved instances are returned.
func RemapInstances(raw map[string]interface{}, mapping InstanceMapping) (map[string]interface{}, int) {
	var moves []instanceMove
	for key, value := range raw {
		match := instanceKeyPattern.FindStringSubmatch(key)
		if match == nil || match[1] != keyMonitor || !asBool(value) {
			continue
		}
		oldID, err := strconv.ParseUint(match[3], 10, 64)
		if err != nil {
			continue
		}
		newID, ok := mapping[InstanceKey(match[2], uint(oldID))]
		if !ok || uint64(newID) == oldID {
			continue
		}
		moves = append(moves, instanceMove{typeName: match[2], from: uint(oldID), to: newID})
	}

	result := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		result[key] = value
	}

	// Old keys go first so swapped ids do not overwrite each other.
	for _, move := range moves {
		for _, prefix := range instanceKeyPrefixes {
			delete(result, ConfigKey(prefix, move.typeName, move.from))
		}
	}
	for _, move := range moves {
		for _, prefix := range instanceKeyPrefixes {
			if value, ok := raw[ConfigKey(prefix, move.typeName, move.from)]; ok {
				result[ConfigKey(prefix, move.typeName, move.to)] = value
			}
		}
	}
	return result, len(moves)
}
