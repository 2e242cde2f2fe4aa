package models

// Level represents one of the five ordered difficulty/rank tiers
type Level string

const (
	LevelStudent Level = "Student"
	LevelTrainee Level = "Trainee"
	LevelJunior  Level = "Junior"
	LevelSenior  Level = "Senior"
	LevelMaster  Level = "Master"
)

// Levels lists all tiers in ascending order
var Levels = []Level{LevelStudent, LevelTrainee, LevelJunior, LevelSenior, LevelMaster}

// Ordinal returns the position of the level in the tier order (0-4).
// Unknown levels sort before Student.
func (l Level) Ordinal() int {
	for i, lvl := range Levels {
		if l == lvl {
			return i
		}
	}
	return -1
}

// Valid returns true if the level is one of the five known tiers
func (l Level) Valid() bool {
	return l.Ordinal() >= 0
}

// ParseLevel converts a string to a Level, reporting whether it is known
func ParseLevel(s string) (Level, bool) {
	l := Level(s)
	return l, l.Valid()
}
