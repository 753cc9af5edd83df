package models

import "time"

// Snapshot is the full remote tree of one room as delivered to subscribers:
// rooms/{code}/cycles, units, users, consumptionLog, categoryCollapsed and
// treatmentTimerEnd, plus the room version the snapshot was taken at.
type Snapshot struct {
	Version int64   `json:"version"`
	Cycles  []Cycle `json:"cycles"`
	Units   []Unit  `json:"units"`
	Users   []User  `json:"users"`
	// Log carries consumption entries in their wire form, "RFC3339|userID".
	Log               map[string]map[string][]string `json:"log"`
	CategoryCollapsed map[string]bool                `json:"category_collapsed"`
	// TreatmentTimerEnd is RFC3339, or empty when no timer is set.
	TreatmentTimerEnd string `json:"treatment_timer_end"`
}

// DecodedLog converts the wire-form log into a ConsumptionLog, skipping
// entries that fail to parse.
func (snapshot Snapshot) DecodedLog() ConsumptionLog {
	decoded := make(ConsumptionLog, len(snapshot.Log))
	for cycleID, byItem := range snapshot.Log {
		for itemID, rawEntries := range byItem {
			entries := make([]LogEntry, 0, len(rawEntries))
			for _, raw := range rawEntries {
				entry, err := DecodeLogEntry(raw)
				if err != nil {
					continue
				}
				entries = append(entries, entry)
			}
			decoded.Set(cycleID, itemID, entries)
		}
	}
	return decoded
}

// EncodeLog converts a ConsumptionLog into the wire form carried by Snapshot.
func EncodeLog(log ConsumptionLog) map[string]map[string][]string {
	encoded := make(map[string]map[string][]string, len(log))
	for cycleID, byItem := range log {
		encodedByItem := make(map[string][]string, len(byItem))
		for itemID, entries := range byItem {
			rawEntries := make([]string, 0, len(entries))
			for _, entry := range entries {
				rawEntries = append(rawEntries, entry.Encode())
			}
			encodedByItem[itemID] = rawEntries
		}
		encoded[cycleID] = encodedByItem
	}
	return encoded
}

// TimerEnd parses TreatmentTimerEnd, returning the zero time when absent or
// malformed.
func (snapshot Snapshot) TimerEnd() time.Time {
	if snapshot.TreatmentTimerEnd == "" {
		return time.Time{}
	}
	end, err := time.Parse(time.RFC3339, snapshot.TreatmentTimerEnd)
	if err != nil {
		return time.Time{}
	}
	return end
}
