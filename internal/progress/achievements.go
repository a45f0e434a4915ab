package progress

// Rarity groups achievements by how hard they are to unlock
type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityEpic     Rarity = "epic"
)

// Achievement is an unlockable milestone. It unlocks once its measure over
// the record reaches Target and is never revoked afterwards.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Hint        string `json:"hint"`
	Rarity      Rarity `json:"rarity"`
	Points      int    `json:"points"`
	Target      int    `json:"target"`

	measure func(*Record) int
}

// Progress returns the current value of the achievement's measure.
func (a Achievement) Progress(rec *Record) int {
	if a.measure == nil {
		return 0
	}
	return a.measure(rec)
}

// Met reports whether the record currently satisfies the achievement.
func (a Achievement) Met(rec *Record) bool {
	return a.Progress(rec) >= a.Target
}

func totalChallenges(r *Record) int { return r.TotalChallenges }
func currentStreak(r *Record) int   { return r.StreakData.Current }

func skill(c Category) func(*Record) int {
	return func(r *Record) int { return r.SkillProgress[c] }
}

// catalog order is the unlock evaluation order.
var catalog = []Achievement{
	{
		ID: "first_challenge", Name: "First Steps", Icon: "🎯",
		Description: "Complete your first challenge",
		Hint:        "Complete any coding challenge to get started!",
		Rarity:      RarityCommon, Points: 50, Target: 1, measure: totalChallenges,
	},
	{
		ID: "streak_3", Name: "Getting Started", Icon: "🔥",
		Description: "Maintain a 3-day coding streak",
		Hint:        "Code for 3 consecutive days",
		Rarity:      RarityCommon, Points: 100, Target: 3, measure: currentStreak,
	},
	{
		ID: "streak_7", Name: "Week Warrior", Icon: "📅",
		Description: "Maintain a 7-day coding streak",
		Hint:        "Maintain your coding streak for a full week",
		Rarity:      RarityUncommon, Points: 250, Target: 7, measure: currentStreak,
	},
	{
		ID: "challenge_10", Name: "Problem Solver", Icon: "🧩",
		Description: "Complete 10 challenges",
		Hint:        "Solve more coding challenges",
		Rarity:      RarityUncommon, Points: 300, Target: 10, measure: totalChallenges,
	},
	{
		ID: "challenge_25", Name: "Code Master", Icon: "👑",
		Description: "Complete 25 challenges",
		Hint:        "Keep solving challenges to reach this milestone",
		Rarity:      RarityRare, Points: 750, Target: 25, measure: totalChallenges,
	},
	{
		ID: "array_expert", Name: "Array Expert", Icon: "📊",
		Description: "Complete 5 array challenges",
		Hint:        "Focus on array-based coding problems",
		Rarity:      RarityRare, Points: 500, Target: 5, measure: skill(CategoryArrays),
	},
	{
		ID: "algorithm_wizard", Name: "Algorithm Wizard", Icon: "🧙‍♂️",
		Description: "Complete 5 algorithm challenges",
		Hint:        "Master algorithmic problem solving",
		Rarity:      RarityEpic, Points: 1000, Target: 5, measure: skill(CategoryAlgorithms),
	},
}

// Catalog returns the achievement definitions in evaluation order.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds an achievement by id.
func Lookup(id string) (Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Evaluate unlocks every catalog achievement the record now qualifies for
// and returns only the ones unlocked by this call.
func Evaluate(rec *Record) []Achievement {
	unlocked := []Achievement{}
	for _, a := range catalog {
		if rec.HasAchievement(a.ID) || !a.Met(rec) {
			continue
		}
		rec.Achievements = append(rec.Achievements, a.ID)
		unlocked = append(unlocked, a)
	}
	return unlocked
}

// TotalXP sums the points of unlocked achievements. Ids missing from the
// catalog are worth nothing.
func TotalXP(rec *Record) int {
	total := 0
	for _, id := range rec.Achievements {
		if a, ok := Lookup(id); ok {
			total += a.Points
		}
	}
	return total
}

// AchievementStatus pairs a catalog entry with the record's standing on it
type AchievementStatus struct {
	Achievement
	Unlocked bool `json:"unlocked"`
	Current  int  `json:"current"`
	Percent  int  `json:"percent"`
}

// Statuses lists every catalog achievement with unlock state and progress.
func Statuses(rec *Record) []AchievementStatus {
	out := make([]AchievementStatus, 0, len(catalog))
	for _, a := range catalog {
		st := AchievementStatus{
			Achievement: a,
			Unlocked:    rec.HasAchievement(a.ID),
			Current:     a.Progress(rec),
		}
		if st.Unlocked {
			st.Percent = 100
		} else if a.Target > 0 {
			st.Percent = min(st.Current*100/a.Target, 100)
		}
		out = append(out, st)
	}
	return out
}
