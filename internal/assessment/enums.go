package assessment

import "fmt"

// Sex is the patient's recorded sex as encoded by the model (0 female, 1 male).
type Sex int

const (
	SexFemale Sex = iota
	SexMale
)

func (s Sex) String() string {
	switch s {
	case SexFemale:
		return "Female"
	case SexMale:
		return "Male"
	default:
		return fmt.Sprintf("Sex(%d)", int(s))
	}
}

func (s Sex) valid() bool { return s == SexFemale || s == SexMale }

// ChestPainType follows the Cleveland encoding.
type ChestPainType int

const (
	ChestPainTypical ChestPainType = iota
	ChestPainAtypical
	ChestPainNonAnginal
	ChestPainAsymptomatic
)

func (c ChestPainType) String() string {
	switch c {
	case ChestPainTypical:
		return "Typical Angina"
	case ChestPainAtypical:
		return "Atypical Angina"
	case ChestPainNonAnginal:
		return "Non-anginal"
	case ChestPainAsymptomatic:
		return "Asymptomatic"
	default:
		return fmt.Sprintf("ChestPainType(%d)", int(c))
	}
}

func (c ChestPainType) valid() bool { return c >= ChestPainTypical && c <= ChestPainAsymptomatic }

type RestingECG int

const (
	RestingECGNormal RestingECG = iota
	RestingECGSTTAbnormal
	RestingECGLVH
)

func (e RestingECG) String() string {
	switch e {
	case RestingECGNormal:
		return "Normal"
	case RestingECGSTTAbnormal:
		return "ST-T Abnormality"
	case RestingECGLVH:
		return "LVH"
	default:
		return fmt.Sprintf("RestingECG(%d)", int(e))
	}
}

func (e RestingECG) valid() bool { return e >= RestingECGNormal && e <= RestingECGLVH }

// STSlope is the slope of the peak exercise ST segment.
type STSlope int

const (
	STSlopeUp STSlope = iota
	STSlopeFlat
	STSlopeDown
)

func (s STSlope) String() string {
	switch s {
	case STSlopeUp:
		return "Upsloping"
	case STSlopeFlat:
		return "Flat"
	case STSlopeDown:
		return "Downsloping"
	default:
		return fmt.Sprintf("STSlope(%d)", int(s))
	}
}

func (s STSlope) valid() bool { return s >= STSlopeUp && s <= STSlopeDown }

type Thalassemia int

const (
	ThalassemiaNormal Thalassemia = iota
	ThalassemiaFixed
	ThalassemiaReversible
	ThalassemiaUnknown
)

func (t Thalassemia) String() string {
	switch t {
	case ThalassemiaNormal:
		return "Normal"
	case ThalassemiaFixed:
		return "Fixed Defect"
	case ThalassemiaReversible:
		return "Reversible Defect"
	case ThalassemiaUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Thalassemia(%d)", int(t))
	}
}

func (t Thalassemia) valid() bool { return t >= ThalassemiaNormal && t <= ThalassemiaUnknown }

// ParseSex converts a raw model code, failing on anything outside the enum.
func ParseSex(code int) (Sex, error) {
	s := Sex(code)
	if !s.valid() {
		return 0, NewValidationError("sex", "must be 0 (female) or 1 (male)", code)
	}
	return s, nil
}

func ParseChestPainType(code int) (ChestPainType, error) {
	c := ChestPainType(code)
	if !c.valid() {
		return 0, NewValidationError("chest_pain_type", "must be between 0 and 3", code)
	}
	return c, nil
}

func ParseRestingECG(code int) (RestingECG, error) {
	e := RestingECG(code)
	if !e.valid() {
		return 0, NewValidationError("resting_ecg", "must be between 0 and 2", code)
	}
	return e, nil
}

func ParseSTSlope(code int) (STSlope, error) {
	s := STSlope(code)
	if !s.valid() {
		return 0, NewValidationError("st_slope", "must be between 0 and 2", code)
	}
	return s, nil
}

func ParseThalassemia(code int) (Thalassemia, error) {
	t := Thalassemia(code)
	if !t.valid() {
		return 0, NewValidationError("thalassemia", "must be between 0 and 3", code)
	}
	return t, nil
}
