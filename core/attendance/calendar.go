package attendance

import "time"

// SchoolDays lists the weekdays (Monday to Friday) of a month, in UTC.
func SchoolDays(year int, month time.Month) []time.Time {
	days := make([]time.Time, 0, 23)
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
	}
	return days
}

// Sheet is the attendance calendar of a month: the status of each student on each school day.
type Sheet struct {
	Days     []time.Time               `json:"days"`
	Statuses map[int]map[string]string `json:"statuses"` // {studentID: {YYYY-MM-DD: status}}
}

// NewSheet lays records out on the school days of a month. Records outside of those days are ignored.
func NewSheet(year int, month time.Month, records []Record) Sheet {
	days := SchoolDays(year, month)
	inMonth := make(map[time.Time]struct{}, len(days))
	for _, d := range days {
		inMonth[d] = struct{}{}
	}

	statuses := make(map[int]map[string]string)
	for _, r := range records {
		day := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, time.UTC)
		if _, ok := inMonth[day]; !ok {
			continue
		}
		if statuses[r.StudentID] == nil {
			statuses[r.StudentID] = make(map[string]string)
		}
		statuses[r.StudentID][day.Format("2006-01-02")] = r.Status
	}
	return Sheet{Days: days, Statuses: statuses}
}
