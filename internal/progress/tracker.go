package progress

// Completion describes a solved challenge
type Completion struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Difficulty string   `json:"difficulty" validate:"required,max=50"`
	Category   Category `json:"category" validate:"max=50"`
	// Minutes spent on the challenge; zero when unknown.
	Minutes int `json:"minutes,omitempty" validate:"min=0,max=1440"`
}

// ChallengeID is the deduplication key for a completion.
func (c Completion) ChallengeID() string {
	return ChallengeID(c.Title, c.Difficulty)
}

// ChallengeID joins title and difficulty the way stored records expect.
func ChallengeID(title, difficulty string) string {
	return title + "_" + difficulty
}

// Outcome reports what RecordCompletion did
type Outcome struct {
	ChallengeID string        `json:"challengeId"`
	Recorded    bool          `json:"recorded"`
	Duplicate   bool          `json:"duplicate"`
	Unlocked    []Achievement `json:"unlocked"`
}

// RecordCompletion applies a completion to rec on day today. Completing a
// challenge id that is already recorded is a no-op. Otherwise the day bucket,
// skill tally, streak and achievements are all updated together.
func RecordCompletion(rec *Record, c Completion, today, yesterday DayKey) Outcome {
	id := c.ChallengeID()
	if rec.HasCompleted(id) {
		return Outcome{ChallengeID: id, Duplicate: true, Unlocked: []Achievement{}}
	}

	rec.CompletedChallenges = append(rec.CompletedChallenges, id)
	rec.TotalChallenges++

	if rec.DailyActivity == nil {
		rec.DailyActivity = make(map[DayKey]ActivityBucket)
	}
	bucket, ok := rec.DailyActivity[today]
	if !ok {
		bucket = ActivityBucket{Difficulties: Labels{}, Categories: Labels{}}
	}
	bucket.Challenges++
	bucket.Difficulties.Add(c.Difficulty)
	if c.Category != "" {
		bucket.Categories.Add(string(c.Category))
	}
	if c.Minutes > 0 {
		bucket.TimeSpent += c.Minutes
		rec.TimeSpent += c.Minutes
	}
	rec.DailyActivity[today] = bucket

	if c.Category.Known() {
		if rec.SkillProgress == nil {
			rec.SkillProgress = make(map[Category]int)
		}
		rec.SkillProgress[c.Category]++
	}

	UpdateStreak(rec, today, yesterday)
	unlocked := Evaluate(rec)

	return Outcome{ChallengeID: id, Recorded: true, Unlocked: unlocked}
}
