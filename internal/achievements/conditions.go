package achievements

import (
	"fmt"

	"github.com/ideaforge/idea-engine/internal/models"
)

// Condition is the closed set of unlock-rule shapes. Exactly one
// condition is attached to each achievement; the unexported method
// keeps the union closed to this package.
type Condition interface {
	met(ev *evaluation) bool
	validate() error
}

// MinProjects unlocks once the ledger holds at least Count completions
type MinProjects struct {
	Count int
}

func (c MinProjects) met(ev *evaluation) bool {
	return len(ev.completed) >= c.Count
}

func (c MinProjects) validate() error {
	if c.Count < 1 {
		return fmt.Errorf("min projects count must be >= 1, got %d", c.Count)
	}
	return nil
}

// RequiredLanguages unlocks when every listed language appears in the
// union of technologies across all completions
type RequiredLanguages struct {
	Values []string
}

func (c RequiredLanguages) met(ev *evaluation) bool {
	return containsAll(ev.technologies(), c.Values)
}

func (c RequiredLanguages) validate() error {
	return requireValues("languages", c.Values)
}

// RequiredFrameworks unlocks when every listed framework appears in the
// union of frameworks across all completions
type RequiredFrameworks struct {
	Values []string
}

func (c RequiredFrameworks) met(ev *evaluation) bool {
	return containsAll(ev.frameworks(), c.Values)
}

func (c RequiredFrameworks) validate() error {
	return requireValues("frameworks", c.Values)
}

// RequiredDatabases unlocks when every listed database appears in the
// union of databases across all completions
type RequiredDatabases struct {
	Values []string
}

func (c RequiredDatabases) met(ev *evaluation) bool {
	return containsAll(ev.databases(), c.Values)
}

func (c RequiredDatabases) validate() error {
	return requireValues("databases", c.Values)
}

// RequiredAppTypes unlocks when every listed app type appears among the
// completions' app-type snapshots
type RequiredAppTypes struct {
	Values []string
}

func (c RequiredAppTypes) met(ev *evaluation) bool {
	return containsAll(ev.appTypes(), c.Values)
}

func (c RequiredAppTypes) validate() error {
	return requireValues("app types", c.Values)
}

// LevelCount unlocks once at least Count completions are at Level
type LevelCount struct {
	Level models.Level
	Count int
}

func (c LevelCount) met(ev *evaluation) bool {
	n := 0
	for _, cp := range ev.completed {
		if cp.Level == c.Level {
			n++
		}
	}
	return n >= c.Count
}

func (c LevelCount) validate() error {
	if !c.Level.Valid() {
		return fmt.Errorf("level count has unknown level %q", c.Level)
	}
	if c.Count < 1 {
		return fmt.Errorf("level count must be >= 1, got %d", c.Count)
	}
	return nil
}

// RequiredStack unlocks when a single completion's combined tag set
// (technologies, frameworks and databases together) covers every value
type RequiredStack struct {
	Values []string
}

func (c RequiredStack) met(ev *evaluation) bool {
	for _, cp := range ev.completed {
		if containsAll(cp.CombinedTags(), c.Values) {
			return true
		}
	}
	return false
}

func (c RequiredStack) validate() error {
	return requireValues("stack", c.Values)
}

// Combination unlocks once at least Count distinct completions each
// satisfy every provided sub-list simultaneously. One project carrying
// all the tags counts once, never twice.
type Combination struct {
	Languages   []string
	Frameworks  []string
	Frameworks2 []string
	Databases   []string
	Count       int
}

func (c Combination) met(ev *evaluation) bool {
	matching := 0
	for _, cp := range ev.completed {
		if c.matches(cp) {
			matching++
		}
	}
	return matching >= c.Count
}

func (c Combination) matches(cp *models.CompletedProject) bool {
	for _, lang := range c.Languages {
		if !containsStr(cp.Technologies, lang) {
			return false
		}
	}
	for _, fw := range c.Frameworks {
		if !containsStr(cp.Frameworks, fw) {
			return false
		}
	}
	for _, fw := range c.Frameworks2 {
		if !containsStr(cp.Frameworks, fw) {
			return false
		}
	}
	for _, db := range c.Databases {
		if !containsStr(cp.Databases, db) {
			return false
		}
	}
	return true
}

func (c Combination) validate() error {
	if c.Count < 1 {
		return fmt.Errorf("combination count must be >= 1, got %d", c.Count)
	}
	if len(c.Languages)+len(c.Frameworks)+len(c.Frameworks2)+len(c.Databases) == 0 {
		return fmt.Errorf("combination has no sub-conditions")
	}
	return nil
}

// ConsistencyType selects the temporal pattern a Consistency rule tests
type ConsistencyType string

const (
	ConsistencyStreak    ConsistencyType = "streak"
	ConsistencyDaily     ConsistencyType = "daily"
	ConsistencyWeekly    ConsistencyType = "weekly"
	ConsistencyMonthly   ConsistencyType = "monthly"
	ConsistencySameDay   ConsistencyType = "sameDay"
	ConsistencyDayOfWeek ConsistencyType = "dayOfWeek"
	ConsistencyTimeOfDay ConsistencyType = "timeOfDay"
)

// DayType distinguishes weekdays from weekend days
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeWeekend DayType = "weekend"
)

// TimeBand names a local-hour range within a day
type TimeBand string

const (
	BandMorning   TimeBand = "morning"   // 06:00-11:59
	BandAfternoon TimeBand = "afternoon" // 12:00-17:59
	BandEvening   TimeBand = "evening"   // 18:00-23:59
	BandNight     TimeBand = "night"     // 00:00-05:59
)

// Consistency is a temporal-pattern rule over completion timestamps.
// Calendar boundaries are evaluated in the engine's configured location.
type Consistency struct {
	Type      ConsistencyType
	Count     int
	Period    int      // periods the daily/weekly/monthly run must span; Count when zero
	DayType   DayType  // dayOfWeek only
	TimeRange TimeBand // timeOfDay only
}

func (c Consistency) met(ev *evaluation) bool {
	switch c.Type {
	case ConsistencyStreak:
		return ev.longestDayStreak() >= c.Count
	case ConsistencyDaily:
		return ev.longestPeriodRun(periodDay) >= c.runLength()
	case ConsistencyWeekly:
		return ev.longestPeriodRun(periodWeek) >= c.runLength()
	case ConsistencyMonthly:
		return ev.longestPeriodRun(periodMonth) >= c.runLength()
	case ConsistencySameDay:
		return ev.maxSameDay() >= c.Count
	case ConsistencyDayOfWeek:
		return ev.countDayType(c.DayType) >= c.Count
	case ConsistencyTimeOfDay:
		return ev.countTimeBand(c.TimeRange) >= c.Count
	default:
		return false
	}
}

// runLength returns the required number of consecutive periods
func (c Consistency) runLength() int {
	if c.Period > 0 {
		return c.Period
	}
	return c.Count
}

func (c Consistency) validate() error {
	if c.Count < 1 {
		return fmt.Errorf("consistency count must be >= 1, got %d", c.Count)
	}
	switch c.Type {
	case ConsistencyStreak, ConsistencyDaily, ConsistencyWeekly, ConsistencyMonthly, ConsistencySameDay:
	case ConsistencyDayOfWeek:
		if c.DayType != DayTypeWeekday && c.DayType != DayTypeWeekend {
			return fmt.Errorf("dayOfWeek rule has unknown day type %q", c.DayType)
		}
	case ConsistencyTimeOfDay:
		switch c.TimeRange {
		case BandMorning, BandAfternoon, BandEvening, BandNight:
		default:
			return fmt.Errorf("timeOfDay rule has unknown band %q", c.TimeRange)
		}
	default:
		return fmt.Errorf("unknown consistency type %q", c.Type)
	}
	return nil
}

// Helpers

func requireValues(what string, values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("required %s list is empty", what)
	}
	return nil
}

func containsAll(set map[string]bool, values []string) bool {
	for _, v := range values {
		if !set[v] {
			return false
		}
	}
	return true
}

func containsStr(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
