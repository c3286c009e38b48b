package scholarship

// Profile is the student profile used as scoring input. Never persisted.
type Profile struct {
	Name           string
	Level          string   // secundaria, preparatoria, universidad, posgrado
	Average        *float64 // nil = not provided
	EconomicStatus string   // baja, media-baja, media, media-alta, alta
	Location       string   // free text, e.g. "Quechultenango, Guerrero"
	FieldOfStudy   string
	Description    string
}

// Record is a static catalog entry.
type Record struct {
	ID                 string   `json:"id" yaml:"id"`
	Title              string   `json:"title" yaml:"title"`
	Institution        string   `json:"institution" yaml:"institution"`
	Levels             []string `json:"level" yaml:"level"`
	Description        string   `json:"description" yaml:"description"`
	Amount             string   `json:"amount" yaml:"amount"`
	Requirements       []string `json:"requirements" yaml:"requirements"`
	Deadline           string   `json:"deadline" yaml:"deadline"`
	URL                string   `json:"url" yaml:"url"`
	Tags               []string `json:"tags" yaml:"tags"`
	EconomicBrackets   []string `json:"economic_requirement,omitempty" yaml:"economic_requirement,omitempty"`
	MinAverage         *float64 `json:"academic_requirement,omitempty" yaml:"academic_requirement,omitempty"`
	Fields             []string `json:"area,omitempty" yaml:"area,omitempty"`
	GeographicPriority []string `json:"geographic_priority,omitempty" yaml:"geographic_priority,omitempty"`
	Demographic        []string `json:"demographic,omitempty" yaml:"demographic,omitempty"`
}

// Match is a scored record for a profile.
type Match struct {
	Record  Record
	Score   int
	Reasons []string
}
