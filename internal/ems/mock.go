package ems

import "github.com/oldtora/ppshiftsbot/internal/domain"

// MockRoster returns a fixed development roster, served when no real EMS API
// is configured. Dates deliberately lack a year so the default-year rule is
// exercised end to end.
func MockRoster() []domain.RosterRow {
	return []domain.RosterRow{
		{Date: "11-02", Person: "Yevhenii Shut", ShiftType: "D", Location: "SK"},
		{Date: "12-02", Person: "Yevhenii Shut", ShiftType: "N", Location: "FD"},
		{Date: "13-02", Person: "Yevhenii Shut", ShiftType: "M", Location: "MT"},
		{Date: "14-02", Person: "Yevhenii Shut", ShiftType: "8", Location: "SK"},
		{Date: "15-02", Person: "Yevhenii Shut", ShiftType: "9", Location: "FD"},
		{Date: "16-02", Person: "Yevhenii Shut", ShiftType: "10", Location: "MT"},
		{Date: "11-02", Person: "John Smith", ShiftType: "N", Location: "SK"},
		{Date: "12-02", Person: "John Smith", ShiftType: "D", Location: "FD"},
		{Date: "13-02", Person: "Anna Brown", ShiftType: "M", Location: "MT"},
	}
}
