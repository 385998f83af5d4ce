package assessment

import (
	"errors"
	"math"
)

// FeatureOrder is the column order the exported model was trained on.
// Feeding features in any other order gives a wrong prediction, not an error.
var FeatureOrder = []string{
	"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
	"thalach", "exang", "oldpeak", "slope", "ca", "thal",
}

// RawRecord carries the thirteen fields as submitted, before range and enum
// checks. Build an InputRecord from it with NewInputRecord.
type RawRecord struct {
	Age              int     `json:"age"`
	Sex              int     `json:"sex"`
	ChestPainType    int     `json:"chestPainType"`
	RestingBP        int     `json:"restingBp"`
	Cholesterol      int     `json:"cholesterol"`
	FastingSugarHigh bool    `json:"fastingSugarHigh"`
	RestingECG       int     `json:"restingEcg"`
	MaxHeartRate     int     `json:"maxHeartRate"`
	ExerciseAngina   bool    `json:"exerciseAngina"`
	STDepression     float64 `json:"stDepression"`
	STSlope          int     `json:"stSlope"`
	MajorVessels     int     `json:"majorVessels"`
	Thalassemia      int     `json:"thalassemia"`
}

// InputRecord is one patient's validated clinical snapshot. It is passed by
// value; no stage of the pipeline holds a pointer to it.
type InputRecord struct {
	Age              int           `json:"age"`
	Sex              Sex           `json:"sex"`
	ChestPainType    ChestPainType `json:"chestPainType"`
	RestingBP        int           `json:"restingBp"`
	Cholesterol      int           `json:"cholesterol"`
	FastingSugarHigh bool          `json:"fastingSugarHigh"`
	RestingECG       RestingECG    `json:"restingEcg"`
	MaxHeartRate     int           `json:"maxHeartRate"`
	ExerciseAngina   bool          `json:"exerciseAngina"`
	STDepression     float64       `json:"stDepression"`
	STSlope          STSlope       `json:"stSlope"`
	MajorVessels     int           `json:"majorVessels"`
	Thalassemia      Thalassemia   `json:"thalassemia"`
}

type intRange struct {
	field    string
	value    int
	min, max int
	message  string
}

// NewInputRecord checks every range and enum constraint and returns all
// violations joined. Values are never clamped.
func NewInputRecord(raw RawRecord) (InputRecord, error) {
	var errs []error

	for _, r := range []intRange{
		{"age", raw.Age, 1, 120, "must be between 1 and 120 years"},
		{"resting_bp", raw.RestingBP, 50, 250, "must be between 50 and 250 mmHg"},
		{"cholesterol", raw.Cholesterol, 50, 600, "must be between 50 and 600 mg/dL"},
		{"max_heart_rate", raw.MaxHeartRate, 50, 250, "must be between 50 and 250 bpm"},
		{"major_vessels", raw.MajorVessels, 0, 4, "must be between 0 and 4"},
	} {
		if r.value < r.min || r.value > r.max {
			errs = append(errs, NewValidationError(r.field, r.message, r.value))
		}
	}
	if math.IsNaN(raw.STDepression) || raw.STDepression < 0 || raw.STDepression > 10 {
		errs = append(errs, NewValidationError("st_depression", "must be between 0.0 and 10.0", raw.STDepression))
	}

	sex, err := ParseSex(raw.Sex)
	errs = appendErr(errs, err)
	cp, err := ParseChestPainType(raw.ChestPainType)
	errs = appendErr(errs, err)
	ecg, err := ParseRestingECG(raw.RestingECG)
	errs = appendErr(errs, err)
	slope, err := ParseSTSlope(raw.STSlope)
	errs = appendErr(errs, err)
	thal, err := ParseThalassemia(raw.Thalassemia)
	errs = appendErr(errs, err)

	if len(errs) > 0 {
		return InputRecord{}, errors.Join(errs...)
	}

	return InputRecord{
		Age:              raw.Age,
		Sex:              sex,
		ChestPainType:    cp,
		RestingBP:        raw.RestingBP,
		Cholesterol:      raw.Cholesterol,
		FastingSugarHigh: raw.FastingSugarHigh,
		RestingECG:       ecg,
		MaxHeartRate:     raw.MaxHeartRate,
		ExerciseAngina:   raw.ExerciseAngina,
		STDepression:     raw.STDepression,
		STSlope:          slope,
		MajorVessels:     raw.MajorVessels,
		Thalassemia:      thal,
	}, nil
}

func appendErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}

// Features flattens the record in FeatureOrder.
func (r InputRecord) Features() []float64 {
	return []float64{
		float64(r.Age),
		float64(r.Sex),
		float64(r.ChestPainType),
		float64(r.RestingBP),
		float64(r.Cholesterol),
		boolFeature(r.FastingSugarHigh),
		float64(r.RestingECG),
		float64(r.MaxHeartRate),
		boolFeature(r.ExerciseAngina),
		r.STDepression,
		float64(r.STSlope),
		float64(r.MajorVessels),
		float64(r.Thalassemia),
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
