package models

// ProjectIdea represents a single entry in the static idea catalog.
// Ideas are loaded once at startup and never mutated.
type ProjectIdea struct {
	ID           string   `yaml:"id" json:"id"`
	Title        string   `yaml:"title" json:"title"`
	Description  string   `yaml:"description" json:"description,omitempty"`
	Level        Level    `yaml:"level" json:"level"`
	AppType      string   `yaml:"app_type" json:"app_type"`
	Category     string   `yaml:"category" json:"category"`
	Technologies []string `yaml:"technologies" json:"technologies"`
	Frameworks   []string `yaml:"frameworks" json:"frameworks,omitempty"`
	Databases    []string `yaml:"databases" json:"databases,omitempty"`
}

// HasTechnology reports whether the idea's technology tags include the value
func (p *ProjectIdea) HasTechnology(value string) bool {
	return contains(p.Technologies, value)
}

// HasFramework reports whether the idea's framework tags include the value
func (p *ProjectIdea) HasFramework(value string) bool {
	return contains(p.Frameworks, value)
}

// HasDatabase reports whether the idea's database tags include the value
func (p *ProjectIdea) HasDatabase(value string) bool {
	return contains(p.Databases, value)
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
