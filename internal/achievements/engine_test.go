package achievements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideaforge/idea-engine/internal/models"
)

func completion(id string, level models.Level, at time.Time, opts ...func(*models.CompletedProject)) *models.CompletedProject {
	cp := &models.CompletedProject{
		ID:          id,
		UserID:      "u1",
		ProjectID:   id,
		Title:       "Proyecto " + id,
		Level:       level,
		CompletedAt: at,
	}
	for _, opt := range opts {
		opt(cp)
	}
	return cp
}

func withTags(techs, fws, dbs []string) func(*models.CompletedProject) {
	return func(cp *models.CompletedProject) {
		cp.Technologies = techs
		cp.Frameworks = fws
		cp.Databases = dbs
	}
}

func withAppType(at string) func(*models.CompletedProject) {
	return func(cp *models.CompletedProject) {
		cp.AppType = at
	}
}

func newTestEngine(t *testing.T, defs []*Achievement) *Engine {
	t.Helper()
	engine, err := NewEngine(defs, time.UTC)
	require.NoError(t, err)
	return engine
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 12, 0, 0, 0, time.UTC)
}

func TestEvaluateMinProjectsBoundary(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "three", Title: "Tres", Level: models.LevelStudent, Condition: MinProjects{Count: 3}},
	})

	ledger := []*models.CompletedProject{
		completion("a", models.LevelStudent, day(1)),
		completion("b", models.LevelStudent, day(2)),
	}

	assert.Empty(t, engine.Evaluate(ledger, nil), "two completions must not unlock a three-project rule")

	ledger = append(ledger, completion("c", models.LevelStudent, day(3)))
	newly := engine.Evaluate(ledger, nil)
	require.Len(t, newly, 1)
	assert.Equal(t, "three", newly[0].ID)
}

func TestEvaluateSkipsAlreadyUnlocked(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "first", Title: "Primero", Level: models.LevelStudent, Condition: MinProjects{Count: 1}},
	})

	ledger := []*models.CompletedProject{completion("a", models.LevelStudent, day(1))}

	require.Len(t, engine.Evaluate(ledger, nil), 1)
	assert.Empty(t, engine.Evaluate(ledger, map[string]bool{"first": true}))
}

func TestEvaluateIsDeterministicAndOrdered(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "z-last", Title: "Z", Level: models.LevelStudent, Condition: MinProjects{Count: 1}},
		{ID: "a-first", Title: "A", Level: models.LevelStudent, Condition: MinProjects{Count: 1}},
	})

	ledger := []*models.CompletedProject{completion("a", models.LevelStudent, day(1))}

	for i := 0; i < 5; i++ {
		newly := engine.Evaluate(ledger, nil)
		require.Len(t, newly, 2)
		// Definition order, not alphabetical order
		assert.Equal(t, "z-last", newly[0].ID)
		assert.Equal(t, "a-first", newly[1].ID)
	}
}

func TestRequiredLanguagesUnionAcrossCompletions(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "poly", Title: "Políglota", Level: models.LevelJunior,
			Condition: RequiredLanguages{Values: []string{"Go", "Python", "Rust"}}},
	})

	ledger := []*models.CompletedProject{
		completion("a", models.LevelJunior, day(1), withTags([]string{"Go", "Python"}, nil, nil)),
		completion("b", models.LevelJunior, day(2), withTags([]string{"Rust"}, nil, nil)),
	}

	require.Len(t, engine.Evaluate(ledger, nil), 1, "the union across completions satisfies the rule")

	partial := ledger[:1]
	assert.Empty(t, engine.Evaluate(partial, nil))
}

func TestLevelCountOnlyCountsMatchingLevel(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "two-senior", Title: "Dos Senior", Level: models.LevelSenior,
			Condition: LevelCount{Level: models.LevelSenior, Count: 2}},
	})

	ledger := []*models.CompletedProject{
		completion("a", models.LevelSenior, day(1)),
		completion("b", models.LevelJunior, day(2)),
		completion("c", models.LevelJunior, day(3)),
	}
	assert.Empty(t, engine.Evaluate(ledger, nil))

	ledger = append(ledger, completion("d", models.LevelSenior, day(4)))
	assert.Len(t, engine.Evaluate(ledger, nil), 1)
}

func TestRequiredStackNeedsSingleCompletion(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "full-stack", Title: "Full Stack", Level: models.LevelSenior,
			Condition: RequiredStack{Values: []string{"React", "Node.js", "PostgreSQL"}}},
	})

	// Tags spread over two completions do not count
	split := []*models.CompletedProject{
		completion("a", models.LevelSenior, day(1), withTags([]string{"Node.js"}, []string{"React"}, nil)),
		completion("b", models.LevelSenior, day(2), withTags(nil, nil, []string{"PostgreSQL"})),
	}
	assert.Empty(t, engine.Evaluate(split, nil))

	single := []*models.CompletedProject{
		completion("c", models.LevelSenior, day(3),
			withTags([]string{"Node.js"}, []string{"React"}, []string{"PostgreSQL"})),
	}
	assert.Len(t, engine.Evaluate(single, nil), 1)
}

func TestCombinationCountsDistinctCompletions(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "django-duo", Title: "Dúo Django", Level: models.LevelJunior,
			Condition: Combination{Languages: []string{"Python"}, Frameworks: []string{"Django"}, Count: 2}},
	})

	one := []*models.CompletedProject{
		completion("a", models.LevelJunior, day(1), withTags([]string{"Python"}, []string{"Django"}, nil)),
	}
	assert.Empty(t, engine.Evaluate(one, nil), "one matching completion never counts twice")

	two := append(one,
		completion("b", models.LevelJunior, day(2), withTags([]string{"Python"}, []string{"Django"}, nil)))
	assert.Len(t, engine.Evaluate(two, nil), 1)

	// A completion missing one sub-list does not match
	mixed := append(one,
		completion("c", models.LevelJunior, day(3), withTags([]string{"Python"}, []string{"Flask"}, nil)))
	assert.Empty(t, engine.Evaluate(mixed, nil))
}

func TestRequiredAppTypes(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "versatile", Title: "Versátil", Level: models.LevelJunior,
			Condition: RequiredAppTypes{Values: []string{"Aplicación Web", "Juego"}}},
	})

	ledger := []*models.CompletedProject{
		completion("a", models.LevelJunior, day(1), withAppType("Aplicación Web")),
	}
	assert.Empty(t, engine.Evaluate(ledger, nil))

	ledger = append(ledger, completion("b", models.LevelJunior, day(2), withAppType("Juego")))
	assert.Len(t, engine.Evaluate(ledger, nil), 1)
}

func TestStreakRequiresConsecutiveDays(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "streak-3", Title: "Racha", Level: models.LevelTrainee,
			Condition: Consistency{Type: ConsistencyStreak, Count: 3}},
	})

	// Days 1, 2, 4: the gap resets the run
	gapped := []*models.CompletedProject{
		completion("a", models.LevelTrainee, day(1)),
		completion("b", models.LevelTrainee, day(2)),
		completion("c", models.LevelTrainee, day(4)),
	}
	assert.Empty(t, engine.Evaluate(gapped, nil))

	consecutive := append(gapped, completion("d", models.LevelTrainee, day(3)))
	assert.Len(t, engine.Evaluate(consecutive, nil), 1)
}

func TestStreakMultipleCompletionsSameDayCountOnce(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "streak-2", Title: "Racha", Level: models.LevelTrainee,
			Condition: Consistency{Type: ConsistencyStreak, Count: 2}},
	})

	sameDay := []*models.CompletedProject{
		completion("a", models.LevelTrainee, day(1).Add(1*time.Hour)),
		completion("b", models.LevelTrainee, day(1).Add(5*time.Hour)),
	}
	assert.Empty(t, engine.Evaluate(sameDay, nil), "two completions on one day are a streak of one")
}

func TestWeeklyRunUsesConsecutiveWeeks(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "weekly-3", Title: "Semanal", Level: models.LevelJunior,
			Condition: Consistency{Type: ConsistencyWeekly, Count: 1, Period: 3}},
	})

	// 2026-03-02, -09, -16 are Mondays of three consecutive weeks
	ledger := []*models.CompletedProject{
		completion("a", models.LevelJunior, day(2)),
		completion("b", models.LevelJunior, day(9)),
	}
	assert.Empty(t, engine.Evaluate(ledger, nil))

	ledger = append(ledger, completion("c", models.LevelJunior, day(16)))
	assert.Len(t, engine.Evaluate(ledger, nil), 1)
}

func TestMonthlyRunAcrossYearBoundary(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "monthly-3", Title: "Mensual", Level: models.LevelSenior,
			Condition: Consistency{Type: ConsistencyMonthly, Count: 1, Period: 3}},
	})

	ledger := []*models.CompletedProject{
		completion("a", models.LevelSenior, time.Date(2025, time.November, 10, 0, 0, 0, 0, time.UTC)),
		completion("b", models.LevelSenior, time.Date(2025, time.December, 10, 0, 0, 0, 0, time.UTC)),
		completion("c", models.LevelSenior, time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)),
	}

	assert.Len(t, engine.Evaluate(ledger, nil), 1, "december to january is a consecutive month step")
}

func TestSameDayCount(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "burst", Title: "Ráfaga", Level: models.LevelJunior,
			Condition: Consistency{Type: ConsistencySameDay, Count: 3}},
	})

	ledger := []*models.CompletedProject{
		completion("a", models.LevelJunior, day(1).Add(1*time.Hour)),
		completion("b", models.LevelJunior, day(1).Add(2*time.Hour)),
		completion("c", models.LevelJunior, day(2)),
	}
	assert.Empty(t, engine.Evaluate(ledger, nil))

	ledger = append(ledger, completion("d", models.LevelJunior, day(1).Add(3*time.Hour)))
	assert.Len(t, engine.Evaluate(ledger, nil), 1)
}

func TestDayOfWeekWeekend(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "weekend-2", Title: "Finde", Level: models.LevelTrainee,
			Condition: Consistency{Type: ConsistencyDayOfWeek, Count: 2, DayType: DayTypeWeekend}},
	})

	// 2026-03-07 and -08 are Saturday and Sunday; -09 is Monday
	ledger := []*models.CompletedProject{
		completion("a", models.LevelTrainee, day(7)),
		completion("b", models.LevelTrainee, day(9)),
	}
	assert.Empty(t, engine.Evaluate(ledger, nil))

	ledger = append(ledger, completion("c", models.LevelTrainee, day(8)))
	assert.Len(t, engine.Evaluate(ledger, nil), 1)
}

func TestTimeOfDayBands(t *testing.T) {
	engine := newTestEngine(t, []*Achievement{
		{ID: "night-owl", Title: "Búho", Level: models.LevelJunior,
			Condition: Consistency{Type: ConsistencyTimeOfDay, Count: 2, TimeRange: BandNight}},
	})

	at := func(hour int) time.Time {
		return time.Date(2026, time.March, 1, hour, 30, 0, 0, time.UTC)
	}

	ledger := []*models.CompletedProject{
		completion("a", models.LevelJunior, at(2)),
		completion("b", models.LevelJunior, at(14)),
	}
	assert.Empty(t, engine.Evaluate(ledger, nil))

	ledger = append(ledger, completion("c", models.LevelJunior, at(5)))
	assert.Len(t, engine.Evaluate(ledger, nil), 1)
}

func TestCalendarBoundariesFollowLocation(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	engine, err := NewEngine([]*Achievement{
		{ID: "streak-2", Title: "Racha", Level: models.LevelTrainee,
			Condition: Consistency{Type: ConsistencyStreak, Count: 2}},
	}, madrid)
	require.NoError(t, err)

	// 23:30 UTC on March 1 is already March 2 in Madrid (UTC+1), so
	// together with a March 1 afternoon completion this is a two-day
	// streak there but a single day in UTC
	ledger := []*models.CompletedProject{
		completion("a", models.LevelTrainee, time.Date(2026, time.March, 1, 15, 0, 0, 0, time.UTC)),
		completion("b", models.LevelTrainee, time.Date(2026, time.March, 1, 23, 30, 0, 0, time.UTC)),
	}

	assert.Len(t, engine.Evaluate(ledger, nil), 1)

	utcEngine := newTestEngine(t, []*Achievement{
		{ID: "streak-2", Title: "Racha", Level: models.LevelTrainee,
			Condition: Consistency{Type: ConsistencyStreak, Count: 2}},
	})
	assert.Empty(t, utcEngine.Evaluate(ledger, nil))
}

func TestValidateDefinitions(t *testing.T) {
	tests := []struct {
		name string
		defs []*Achievement
	}{
		{"empty id", []*Achievement{{Title: "X", Level: models.LevelStudent, Condition: MinProjects{Count: 1}}}},
		{"duplicate id", []*Achievement{
			{ID: "dup", Title: "A", Level: models.LevelStudent, Condition: MinProjects{Count: 1}},
			{ID: "dup", Title: "B", Level: models.LevelStudent, Condition: MinProjects{Count: 1}},
		}},
		{"missing condition", []*Achievement{{ID: "x", Title: "X", Level: models.LevelStudent}}},
		{"zero count", []*Achievement{{ID: "x", Title: "X", Level: models.LevelStudent, Condition: MinProjects{}}}},
		{"unknown level", []*Achievement{{ID: "x", Title: "X", Level: "Wizard", Condition: MinProjects{Count: 1}}}},
		{"empty value list", []*Achievement{{ID: "x", Title: "X", Level: models.LevelStudent, Condition: RequiredLanguages{}}}},
		{"bad consistency type", []*Achievement{{ID: "x", Title: "X", Level: models.LevelStudent,
			Condition: Consistency{Type: "lunar", Count: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateDefinitions(tt.defs))
		})
	}
}

func TestBuiltinDefinitionsAreValid(t *testing.T) {
	require.NoError(t, ValidateDefinitions(All))

	// Every badge referenced by a definition must exist
	badgeIDs := make(map[string]bool, len(Badges))
	for _, b := range Badges {
		badgeIDs[b.ID] = true
	}
	for _, def := range All {
		if def.BadgeID != "" {
			assert.Truef(t, badgeIDs[def.BadgeID], "achievement %s references unknown badge %s", def.ID, def.BadgeID)
		}
	}
}
