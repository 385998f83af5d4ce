package assessment

import (
	"fmt"
	"strconv"
)

// FactorRule is one independent threshold check over an Input Record.
type FactorRule struct {
	ID       string
	Match    func(r InputRecord) bool
	Describe func(r InputRecord) string
}

// factorRules is evaluated in order; reports list findings in this order.
var factorRules = []FactorRule{
	{
		ID:       "age",
		Match:    func(r InputRecord) bool { return r.Age > 55 },
		Describe: func(r InputRecord) string { return fmt.Sprintf("Age (%d years)", r.Age) },
	},
	{
		ID:       "cholesterol",
		Match:    func(r InputRecord) bool { return r.Cholesterol > 240 },
		Describe: func(r InputRecord) string { return fmt.Sprintf("High cholesterol (%d mg/dL)", r.Cholesterol) },
	},
	{
		ID:       "resting_bp",
		Match:    func(r InputRecord) bool { return r.RestingBP > 140 },
		Describe: func(r InputRecord) string { return fmt.Sprintf("Elevated blood pressure (%d mm Hg)", r.RestingBP) },
	},
	{
		ID:       "fasting_sugar",
		Match:    func(r InputRecord) bool { return r.FastingSugarHigh },
		Describe: func(InputRecord) string { return "Fasting blood sugar > 120 mg/dL" },
	},
	{
		ID:       "exercise_angina",
		Match:    func(r InputRecord) bool { return r.ExerciseAngina },
		Describe: func(InputRecord) string { return "Exercise-induced angina present" },
	},
	{
		ID:       "st_depression",
		Match:    func(r InputRecord) bool { return r.STDepression > 2 },
		Describe: func(r InputRecord) string { return "Significant ST depression (" + strconv.FormatFloat(r.STDepression, 'f', -1, 64) + ")" },
	},
	{
		ID:       "major_vessels",
		Match:    func(r InputRecord) bool { return r.MajorVessels > 0 },
		Describe: func(r InputRecord) string { return fmt.Sprintf("Coronary artery blockage (%d vessel(s))", r.MajorVessels) },
	},
	{
		ID:       "thalassemia",
		Match:    func(r InputRecord) bool { return r.Thalassemia == ThalassemiaReversible },
		Describe: func(InputRecord) string { return "Reversible perfusion defect (thalassemia)" },
	},
	{
		ID:       "chest_pain",
		Match:    func(r InputRecord) bool { return r.ChestPainType == ChestPainTypical },
		Describe: func(InputRecord) string { return "Typical angina presentation" },
	},
}

// FactorRules returns a copy of the rule battery in evaluation order.
func FactorRules() []FactorRule {
	out := make([]FactorRule, len(factorRules))
	copy(out, factorRules)
	return out
}

// ExtractFactors runs the default rule battery. It never returns nil.
func ExtractFactors(r InputRecord) []string {
	return ExtractFactorsWith(factorRules, r)
}

// ExtractFactorsWith runs an explicit rule list, so callers can pin a
// rule-set version.
func ExtractFactorsWith(rules []FactorRule, r InputRecord) []string {
	findings := []string{}
	for _, rule := range rules {
		if rule.Match(r) {
			findings = append(findings, rule.Describe(r))
		}
	}
	return findings
}
