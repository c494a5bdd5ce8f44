package domain

import agendadomain "countdown/internal/modules/agenda/domain"

// NewLedger creates zeroed records for every agenda item.
func NewLedger(agenda agendadomain.Definition) []ItemRecord {
	records := make([]ItemRecord, len(agenda))
	for i, item := range agenda {
		records[i] = ItemRecord{PlannedSeconds: item.PlannedSeconds()}
	}
	return records
}

// ReconcileLedger aligns records with an edited agenda. Surviving positions
// keep their actual time against the new plan; new positions start at zero.
func ReconcileLedger(records []ItemRecord, agenda agendadomain.Definition) []ItemRecord {
	out := NewLedger(agenda)
	for i := range out {
		if i >= len(records) {
			break
		}
		out[i].ActualSeconds = records[i].ActualSeconds
		out[i].Completed = records[i].Completed
		out[i].settle()
	}
	return out
}

func (r *ItemRecord) settle() {
	if r.ActualSeconds < 0 {
		r.ActualSeconds = 0
	}
	r.OvertimeSeconds = max(0, r.ActualSeconds-r.PlannedSeconds)
}

func (r *ItemRecord) reset() {
	r.ActualSeconds = 0
	r.OvertimeSeconds = 0
	r.Completed = false
}

func TotalPlanned(records []ItemRecord) int {
	total := 0
	for _, rec := range records {
		total += rec.PlannedSeconds
	}
	return total
}

func TotalOvertime(records []ItemRecord) int {
	total := 0
	for _, rec := range records {
		total += rec.OvertimeSeconds
	}
	return total
}
