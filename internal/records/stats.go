package records

import (
	"sort"
	"time"
)

var weekdayLabels = [7]string{"M", "T", "W", "T", "F", "S", "S"}

// DayIncome is one bar of the weekly income chart.
type DayIncome struct {
	Label  string    `json:"label"`
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// Productivity is the 30-day income attributed to one animal type.
type Productivity struct {
	AnimalType AnimalType `json:"animal_type"`
	Income     float64    `json:"income"`
	Units      int        `json:"units"`
}

// Statistics is the dashboard summary of the farm.
type Statistics struct {
	TotalAnimals int            `json:"total_animals"`
	TodayIncome  float64        `json:"today_income"`
	WeekIncome   float64        `json:"week_income"`
	MonthIncome  float64        `json:"month_income"`
	Weekly       []DayIncome    `json:"weekly"`
	Top          []Productivity `json:"top"`
}

const topProductivity = 2

// Compute summarizes animals and sales as seen at now. Calendar days are
// taken in now's location.
func Compute(now time.Time, animals []Animal, sales []Sale) Statistics {
	st := Statistics{Weekly: make([]DayIncome, 0, 7), Top: []Productivity{}}

	for _, a := range animals {
		st.TotalAnimals += a.Quantity
	}

	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)
	for _, s := range sales {
		if sameDay(s.Date, now) {
			st.TodayIncome += s.Amount
		}
		if !s.Date.Before(weekAgo) {
			st.WeekIncome += s.Amount
		}
		if !s.Date.Before(monthAgo) {
			st.MonthIncome += s.Amount
		}
	}

	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		bar := DayIncome{Label: weekdayLabel(day.Weekday()), Date: startOfDay(day)}
		for _, s := range sales {
			if sameDay(s.Date, day) {
				bar.Amount += s.Amount
			}
		}
		st.Weekly = append(st.Weekly, bar)
	}

	byType := map[AnimalType]*Productivity{}
	for _, s := range sales {
		if s.Date.Before(monthAgo) {
			continue
		}
		p, ok := byType[s.AnimalType]
		if !ok {
			p = &Productivity{AnimalType: s.AnimalType}
			byType[s.AnimalType] = p
		}
		p.Income += s.Amount
		p.Units += int(s.Quantity)
	}
	for _, p := range byType {
		st.Top = append(st.Top, *p)
	}
	sort.Slice(st.Top, func(i, j int) bool {
		if st.Top[i].Income != st.Top[j].Income {
			return st.Top[i].Income > st.Top[j].Income
		}
		return st.Top[i].AnimalType < st.Top[j].AnimalType
	})
	if len(st.Top) > topProductivity {
		st.Top = st.Top[:topProductivity]
	}

	return st
}

// weekdayLabel maps Monday..Sunday onto M T W T F S S.
func weekdayLabel(d time.Weekday) string {
	return weekdayLabels[(int(d)+6)%7]
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
