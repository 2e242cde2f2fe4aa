package achievements

import (
	"fmt"
	"sort"
	"time"

	"github.com/ideaforge/idea-engine/internal/models"
)

// Achievement is a static unlock-rule definition. Per-user unlock state
// is a separate derived fact kept in storage.
type Achievement struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Icon        string       `json:"icon,omitempty"`
	Level       models.Level `json:"level"`
	BadgeID     string       `json:"badge_id,omitempty"`
	Condition   Condition    `json:"-"`
}

// Engine evaluates achievement definitions against completion ledgers.
// It holds only static configuration and is safe for concurrent use.
type Engine struct {
	defs []*Achievement
	loc  *time.Location
}

// NewEngine creates an engine over the given definitions. Calendar
// boundaries for consistency rules are computed in loc (UTC if nil).
func NewEngine(defs []*Achievement, loc *time.Location) (*Engine, error) {
	if err := ValidateDefinitions(defs); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{defs: defs, loc: loc}, nil
}

// Definitions returns the achievement catalog in definition order
func (e *Engine) Definitions() []*Achievement {
	return e.defs
}

// Get returns a definition by id
func (e *Engine) Get(id string) *Achievement {
	for _, def := range e.defs {
		if def.ID == id {
			return def
		}
	}
	return nil
}

// Evaluate tests every definition not already unlocked against the
// ledger and returns those that newly pass, in definition order.
// The function is pure: identical inputs always yield identical output.
func (e *Engine) Evaluate(completed []*models.CompletedProject, unlocked map[string]bool) []*Achievement {
	ev := &evaluation{completed: completed, loc: e.loc}

	var newly []*Achievement
	for _, def := range e.defs {
		if unlocked[def.ID] {
			continue
		}
		if def.Condition.met(ev) {
			newly = append(newly, def)
		}
	}
	return newly
}

// ValidateDefinitions rejects malformed definitions: missing fields,
// duplicate ids, absent conditions, or degenerate zero thresholds.
func ValidateDefinitions(defs []*Achievement) error {
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			return fmt.Errorf("achievement with empty id (title %q)", def.Title)
		}
		if seen[def.ID] {
			return fmt.Errorf("duplicate achievement id %q", def.ID)
		}
		seen[def.ID] = true

		if def.Title == "" {
			return fmt.Errorf("achievement %s has no title", def.ID)
		}
		if !def.Level.Valid() {
			return fmt.Errorf("achievement %s has unknown level %q", def.ID, def.Level)
		}
		if def.Condition == nil {
			return fmt.Errorf("achievement %s has no condition", def.ID)
		}
		if err := def.Condition.validate(); err != nil {
			return fmt.Errorf("achievement %s: %w", def.ID, err)
		}
	}
	return nil
}

// evaluation carries one ledger through a single Evaluate pass,
// memoizing the tag unions so each is computed at most once.
type evaluation struct {
	completed []*models.CompletedProject
	loc       *time.Location

	techSet    map[string]bool
	fwSet      map[string]bool
	dbSet      map[string]bool
	appTypeSet map[string]bool
}

func (ev *evaluation) technologies() map[string]bool {
	if ev.techSet == nil {
		ev.techSet = make(map[string]bool)
		for _, cp := range ev.completed {
			for _, t := range cp.Technologies {
				ev.techSet[t] = true
			}
		}
	}
	return ev.techSet
}

func (ev *evaluation) frameworks() map[string]bool {
	if ev.fwSet == nil {
		ev.fwSet = make(map[string]bool)
		for _, cp := range ev.completed {
			for _, f := range cp.Frameworks {
				ev.fwSet[f] = true
			}
		}
	}
	return ev.fwSet
}

func (ev *evaluation) databases() map[string]bool {
	if ev.dbSet == nil {
		ev.dbSet = make(map[string]bool)
		for _, cp := range ev.completed {
			for _, d := range cp.Databases {
				ev.dbSet[d] = true
			}
		}
	}
	return ev.dbSet
}

func (ev *evaluation) appTypes() map[string]bool {
	if ev.appTypeSet == nil {
		ev.appTypeSet = make(map[string]bool)
		for _, cp := range ev.completed {
			if cp.AppType != "" {
				ev.appTypeSet[cp.AppType] = true
			}
		}
	}
	return ev.appTypeSet
}

// Calendar helpers. Days, weeks and months are mapped to integer
// indexes so consecutive runs reduce to +1 steps; this sidesteps DST
// arithmetic on durations.

type periodKind int

const (
	periodDay periodKind = iota
	periodWeek
	periodMonth
)

// civilDay returns the number of calendar days since the Unix epoch
// for t in the evaluation's location
func (ev *evaluation) civilDay(t time.Time) int {
	local := t.In(ev.loc)
	utcMidnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return int(utcMidnight.Unix() / 86400)
}

func (ev *evaluation) periodIndex(t time.Time, kind periodKind) int {
	switch kind {
	case periodWeek:
		// epoch day 0 was a Thursday; +3 aligns weeks to Monday
		return (ev.civilDay(t) + 3) / 7
	case periodMonth:
		local := t.In(ev.loc)
		return local.Year()*12 + int(local.Month()) - 1
	default:
		return ev.civilDay(t)
	}
}

// longestDayStreak returns the longest run of consecutive calendar
// days that each contain at least one completion. A one-day gap resets
// the run.
func (ev *evaluation) longestDayStreak() int {
	return ev.longestPeriodRun(periodDay)
}

// longestPeriodRun returns the longest run of consecutive periods of
// the given kind that each contain at least one completion
func (ev *evaluation) longestPeriodRun(kind periodKind) int {
	if len(ev.completed) == 0 {
		return 0
	}

	seen := make(map[int]bool)
	for _, cp := range ev.completed {
		seen[ev.periodIndex(cp.CompletedAt, kind)] = true
	}

	indexes := make([]int, 0, len(seen))
	for idx := range seen {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	longest, run := 1, 1
	for i := 1; i < len(indexes); i++ {
		if indexes[i] == indexes[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// maxSameDay returns the highest number of completions sharing one
// calendar day
func (ev *evaluation) maxSameDay() int {
	counts := make(map[int]int)
	best := 0
	for _, cp := range ev.completed {
		day := ev.civilDay(cp.CompletedAt)
		counts[day]++
		if counts[day] > best {
			best = counts[day]
		}
	}
	return best
}

// countDayType returns completions falling on the given day type
func (ev *evaluation) countDayType(dt DayType) int {
	n := 0
	for _, cp := range ev.completed {
		wd := cp.CompletedAt.In(ev.loc).Weekday()
		weekend := wd == time.Saturday || wd == time.Sunday
		if (dt == DayTypeWeekend) == weekend {
			n++
		}
	}
	return n
}

// countTimeBand returns completions whose local hour falls in the band
func (ev *evaluation) countTimeBand(band TimeBand) int {
	n := 0
	for _, cp := range ev.completed {
		hour := cp.CompletedAt.In(ev.loc).Hour()
		if hourInBand(hour, band) {
			n++
		}
	}
	return n
}

func hourInBand(hour int, band TimeBand) bool {
	switch band {
	case BandMorning:
		return hour >= 6 && hour < 12
	case BandAfternoon:
		return hour >= 12 && hour < 18
	case BandEvening:
		return hour >= 18
	case BandNight:
		return hour < 6
	default:
		return false
	}
}
