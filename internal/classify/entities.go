package classify

import (
	"regexp"
	"strings"
)

// Entity is one clinical term found in the text, with its character span.
// Negated marks terms preceded by a negation cue ("denies chest pain").
type Entity struct {
	Text    string `json:"text"`
	Label   string `json:"label"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Negated bool   `json:"negated"`
}

// EntitySet groups extracted entities by category. Clinical is the flattened
// union of every categorized match.
type EntitySet struct {
	Clinical    []Entity `json:"clinical_entities"`
	Medications []Entity `json:"medications"`
	Conditions  []Entity `json:"conditions"`
	Procedures  []Entity `json:"procedures"`
	Anatomy     []Entity `json:"anatomy"`
	General     []Entity `json:"general_entities"`
}

// Count is the number of categorized matches, the flattened union excluded.
func (s EntitySet) Count() int {
	return len(s.Medications) + len(s.Conditions) + len(s.Procedures) +
		len(s.Anatomy) + len(s.General)
}

var medicationTerms = []string{
	"metformin", "lisinopril", "atorvastatin", "amoxicillin", "ibuprofen",
	"aspirin", "insulin", "prednisone", "omeprazole", "warfarin",
	"levothyroxine", "amlodipine", "gabapentin", "hydrochlorothiazide",
}

var conditionTerms = []string{
	"diabetes", "hypertension", "chest pain", "asthma", "copd", "pneumonia",
	"infection", "anemia", "depression", "anxiety", "arthritis", "fracture",
	"shortness of breath", "atrial fibrillation", "hyperlipidemia",
}

var procedureTerms = []string{
	"x-ray", "xray", "mri", "ct scan", "ultrasound", "biopsy", "colonoscopy",
	"ekg", "ecg", "cbc", "metabolic panel", "lipid panel", "surgery",
	"echocardiogram", "physical therapy",
}

var anatomyTerms = []string{
	"heart", "lung", "knee", "shoulder", "abdomen", "chest", "head", "liver",
	"kidney", "spine", "hip", "ankle", "wrist", "neck",
}

// negationCues mark a following entity as negated when found within the
// preceding context window.
var negationCues = []string{"no ", "denies ", "without ", "negative for ", "not ", "absent "}

const negationWindow = 40

var (
	medicationRe = categoryRegexp(medicationTerms)
	conditionRe  = categoryRegexp(conditionTerms)
	procedureRe  = categoryRegexp(procedureTerms)
	anatomyRe    = categoryRegexp(anatomyTerms)

	// general matchers: clinician names and calendar dates
	personRe = regexp.MustCompile(`\bDr\.?\s+[A-Z][a-z]+\b`)
	dateRe   = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b|\b\d{4}-\d{2}-\d{2}\b`)
)

func categoryRegexp(terms []string) *regexp.Regexp {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// ExtractEntities finds clinical terms in text by dictionary and pattern
// matching. It never fails; unmatched text simply yields empty categories.
func ExtractEntities(text string) EntitySet {
	var set EntitySet
	set.Medications = match(text, medicationRe, "MEDICATION")
	set.Conditions = match(text, conditionRe, "CONDITION")
	set.Procedures = match(text, procedureRe, "PROCEDURE")
	set.Anatomy = match(text, anatomyRe, "ANATOMY")
	set.General = append(match(text, personRe, "PERSON"), match(text, dateRe, "DATE")...)

	set.Clinical = append(set.Clinical, set.Medications...)
	set.Clinical = append(set.Clinical, set.Conditions...)
	set.Clinical = append(set.Clinical, set.Procedures...)
	set.Clinical = append(set.Clinical, set.Anatomy...)
	set.Clinical = append(set.Clinical, set.General...)
	return set
}

func match(text string, re *regexp.Regexp, label string) []Entity {
	var out []Entity
	for _, loc := range re.FindAllStringIndex(text, -1) {
		out = append(out, Entity{
			Text:    text[loc[0]:loc[1]],
			Label:   label,
			Start:   loc[0],
			End:     loc[1],
			Negated: isNegated(text, loc[0]),
		})
	}
	return out
}

// isNegated looks for a cue in the preceding window, stopping at a sentence
// boundary so a cue never scopes past its own sentence.
func isNegated(text string, start int) bool {
	from := start - negationWindow
	if from < 0 {
		from = 0
	}
	window := strings.ToLower(text[from:start])
	if i := strings.LastIndexAny(window, ".;:?!"); i >= 0 {
		window = window[i+1:]
	}
	for _, cue := range negationCues {
		if strings.Contains(window, cue) {
			return true
		}
	}
	return false
}
