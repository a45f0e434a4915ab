package progress

// UpdateStreak advances the streak for activity on today. A streak only
// breaks when the next activity arrives: if the last active day was neither
// today nor yesterday the streak restarts at 1, because today counts.
func UpdateStreak(rec *Record, today, yesterday DayKey) {
	s := &rec.StreakData

	switch {
	case s.LastActiveDate != nil && *s.LastActiveDate == yesterday:
		s.Current++
	case s.LastActiveDate == nil || *s.LastActiveDate != today:
		s.Current = 1
	}

	if s.Current > s.Longest {
		s.Longest = s.Current
	}

	day := today
	s.LastActiveDate = &day
}
