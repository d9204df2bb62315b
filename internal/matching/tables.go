package matching

// EducationField maps a field of study to the words that indicate a posting
// in that field.
type EducationField struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// SkillVariation lists alternative spellings that count as a match for any
// user skill containing Skill.
type SkillVariation struct {
	Skill    string   `json:"skill"`
	Variants []string `json:"variants"`
}

// DefaultTechTerms switch skill matching to the all-must-match policy.
func DefaultTechTerms() []string {
	return []string{"python", "sql", "developer", "software"}
}

func DefaultSkillVariations() []SkillVariation {
	return []SkillVariation{
		{Skill: "python", Variants: []string{"python programming", "python developer", "python script"}},
		{Skill: "sql", Variants: []string{"database", "sql server", "mysql", "postgresql"}},
		{Skill: "javascript", Variants: []string{"js", "node.js", "nodejs", "react", "angular"}},
		{Skill: "java", Variants: []string{"java developer", "java programming", "j2ee"}},
		{Skill: "c#", Variants: []string{"c sharp", "dotnet", ".net", "asp.net"}},
		{Skill: "cloud", Variants: []string{"aws", "azure", "gcp", "cloud computing"}},
		{Skill: "devops", Variants: []string{"ci/cd", "jenkins", "docker", "kubernetes"}},
		{Skill: "data science", Variants: []string{"machine learning", "ai", "deep learning", "analytics"}},
	}
}

func DefaultEducationFields() []EducationField {
	return []EducationField{
		{Name: "data analytics", Keywords: []string{
			"data", "analyst", "analytics", "statistics", "data science",
			"data engineering", "business intelligence", "quantitative",
			"machine learning", "forecasting", "modeling", "python", "sql",
		}},
		{Name: "computer science", Keywords: []string{
			"software", "developer", "engineer", "programmer", "analyst",
			"it", "information technology", "systems", "data", "database",
			"computer", "tech", "application", "devops", "cloud", "security",
		}},
		{Name: "information technology", Keywords: []string{
			"it", "information technology", "systems", "network", "support",
			"security", "administrator", "cloud", "infrastructure",
		}},
		{Name: "data science", Keywords: []string{
			"data", "analyst", "scientist", "analytics", "machine learning",
			"statistics", "research", "python", "sql", "database",
		}},
		{Name: "software engineering", Keywords: []string{
			"software", "developer", "engineer", "programmer", "web",
			"full stack", "backend", "frontend", "mobile", "devops",
		}},
		{Name: "cybersecurity", Keywords: []string{
			"security", "cyber", "information assurance", "network",
			"analyst", "engineer", "administrator", "compliance",
		}},
		{Name: "nursing", Keywords: []string{"nurse", "rn", "lpn", "clinical", "healthcare"}},
		{Name: "medical", Keywords: []string{"health", "medical", "clinical", "healthcare"}},
		{Name: "criminal justice", Keywords: []string{"police", "security", "law enforcement", "criminal"}},
		{Name: "business", Keywords: []string{"manager", "analyst", "administrator", "coordinator"}},
		{Name: "engineering", Keywords: []string{"engineer", "technical", "systems", "mechanical", "electrical"}},
	}
}

// degreeLevels is checked in order; the first level with a marker present in
// the education text wins.
var degreeLevels = []struct {
	level   string
	markers []string
}{
	{level: "phd", markers: []string{"phd", "doctorate"}},
	{level: "master", markers: []string{"master", "ms", "ma"}},
	{level: "bachelor", markers: []string{"bachelor", "bs", "ba"}},
}

// genericEducationTerms are used when the education text names no known field.
var genericEducationTerms = []string{"degree", "bachelor", "master", "phd", "diploma"}
