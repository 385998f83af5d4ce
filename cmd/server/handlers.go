package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Skufu/heartrisk/internal/assessment"
	"github.com/Skufu/heartrisk/internal/report"
	"github.com/Skufu/heartrisk/internal/store"
)

// assessmentRequest is the form payload. Pointers distinguish a missing
// field from a legitimate zero code.
type assessmentRequest struct {
	Age              *int     `json:"age" binding:"required,min=1,max=120"`
	Sex              *int     `json:"sex" binding:"required,min=0,max=1"`
	ChestPainType    *int     `json:"chestPainType" binding:"required,min=0,max=3"`
	RestingBP        *int     `json:"restingBp" binding:"required,min=50,max=250"`
	Cholesterol      *int     `json:"cholesterol" binding:"required,min=50,max=600"`
	FastingSugarHigh *bool    `json:"fastingSugarHigh" binding:"required"`
	RestingECG       *int     `json:"restingEcg" binding:"required,min=0,max=2"`
	MaxHeartRate     *int     `json:"maxHeartRate" binding:"required,min=50,max=250"`
	ExerciseAngina   *bool    `json:"exerciseAngina" binding:"required"`
	STDepression     *float64 `json:"stDepression" binding:"required,min=0,max=10"`
	STSlope          *int     `json:"stSlope" binding:"required,min=0,max=2"`
	MajorVessels     *int     `json:"majorVessels" binding:"required,min=0,max=4"`
	Thalassemia      *int     `json:"thalassemia" binding:"required,min=0,max=3"`

	Notes              string `json:"notes" binding:"max=4000"`
	PatientLabel       string `json:"patientLabel" binding:"max=200"`
	PatientDOB         string `json:"patientDob" binding:"max=40"`
	ReferringClinician string `json:"referringClinician" binding:"max=200"`
}

func (r assessmentRequest) raw() assessment.RawRecord {
	return assessment.RawRecord{
		Age:              *r.Age,
		Sex:              *r.Sex,
		ChestPainType:    *r.ChestPainType,
		RestingBP:        *r.RestingBP,
		Cholesterol:      *r.Cholesterol,
		FastingSugarHigh: *r.FastingSugarHigh,
		RestingECG:       *r.RestingECG,
		MaxHeartRate:     *r.MaxHeartRate,
		ExerciseAngina:   *r.ExerciseAngina,
		STDepression:     *r.STDepression,
		STSlope:          *r.STSlope,
		MajorVessels:     *r.MajorVessels,
		Thalassemia:      *r.Thalassemia,
	}
}

func (r assessmentRequest) metadata() assessment.Metadata {
	return assessment.Metadata{
		Notes:              r.Notes,
		PatientLabel:       r.PatientLabel,
		PatientDOB:         r.PatientDOB,
		ReferringClinician: r.ReferringClinician,
	}
}

// fieldRules is the message shown for a field that fails a range check.
var fieldRules = map[string]string{
	"age":                "age must be between 1 and 120 years",
	"sex":                "sex must be 0 (female) or 1 (male)",
	"chestPainType":      "chest pain type must be between 0 and 3",
	"restingBp":          "resting blood pressure must be between 50 and 250 mm Hg",
	"cholesterol":        "cholesterol must be between 50 and 600 mg/dL",
	"restingEcg":         "resting ECG must be between 0 and 2",
	"maxHeartRate":       "max heart rate must be between 50 and 250 bpm",
	"stDepression":       "ST depression must be between 0.0 and 10.0",
	"stSlope":            "ST slope must be between 0 and 2",
	"majorVessels":       "major vessels must be between 0 and 4",
	"thalassemia":        "thalassemia must be between 0 and 3",
	"notes":              "notes are too long",
	"patientLabel":       "patient label is too long",
	"patientDob":         "patient date of birth is too long",
	"referringClinician": "referring clinician is too long",
}

var coreFieldNames = map[string]string{
	"age":             "age",
	"sex":             "sex",
	"chest_pain_type": "chestPainType",
	"resting_bp":      "restingBp",
	"cholesterol":     "cholesterol",
	"resting_ecg":     "restingEcg",
	"max_heart_rate":  "maxHeartRate",
	"st_depression":   "stDepression",
	"st_slope":        "stSlope",
	"major_vessels":   "majorVessels",
	"thalassemia":     "thalassemia",
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return fe.Field() + " is required"
	}
	if msg, ok := fieldRules[fe.Field()]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// recordFieldErrors lists one entry per Input Record violation, named the
// way the request names the field.
func recordFieldErrors(err error) []fieldError {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	fields := make([]fieldError, 0, len(errs))
	for _, e := range errs {
		var ve *assessment.ValidationError
		if !errors.As(e, &ve) {
			fields = append(fields, fieldError{Message: e.Error()})
			continue
		}
		name, ok := coreFieldNames[ve.Field]
		if !ok {
			name = ve.Field
		}
		fields = append(fields, fieldError{Field: name, Message: name + " " + ve.Message})
	}
	return fields
}

// bindRecord parses and validates the request body. It writes the error
// response itself and reports false when the request was rejected.
func bindRecord(c *gin.Context) (assessment.InputRecord, assessment.Metadata, bool) {
	var req assessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]fieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fieldError{Field: fe.Field(), Message: fieldMessage(fe)})
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_failed", "fields": fields})
			return assessment.InputRecord{}, assessment.Metadata{}, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return assessment.InputRecord{}, assessment.Metadata{}, false
	}

	record, err := assessment.NewInputRecord(req.raw())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation_failed",
			"fields": recordFieldErrors(err),
		})
		return assessment.InputRecord{}, assessment.Metadata{}, false
	}

	return record, req.metadata(), true
}

// assess runs the pipeline and stores the result when history is enabled.
// Failures are written to the response and reported as nil.
func (a *app) assess(c *gin.Context) *assessment.Assessment {
	record, meta, ok := bindRecord(c)
	if !ok {
		return nil
	}

	result, err := a.assembler.Assess(c.Request.Context(), record, meta)
	if err != nil {
		a.writeAssessError(c, err)
		return nil
	}

	a.log.Info("assessment completed",
		zap.String("id", result.ID),
		zap.String("risk_tier", string(result.RiskTier)),
		zap.String("source", result.Source),
		zap.Int("risk_factors", len(result.RiskFactors)),
	)

	if a.store != nil {
		if err := a.store.Save(c.Request.Context(), result); err != nil {
			a.log.Error("failed to save assessment", zap.String("id", result.ID), zap.Error(err))
		}
	}
	return result
}

func (a *app) writeAssessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, assessment.ErrModelUnavailable):
		a.log.Warn("assessment rejected: model unavailable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model_unavailable", "message": err.Error()})
	case errors.Is(err, assessment.ErrInvalidProbability):
		a.log.Error("model returned invalid probability", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid_probability", "message": err.Error()})
	case errors.Is(err, assessment.ErrPrediction):
		a.log.Error("prediction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction_error", "message": err.Error()})
	default:
		a.log.Error("assessment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}

func (a *app) createAssessment(c *gin.Context) {
	result := a.assess(c)
	if result == nil {
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (a *app) createReport(c *gin.Context) {
	renderer, err := report.ForFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_format", "message": err.Error()})
		return
	}
	result := a.assess(c)
	if result == nil {
		return
	}
	a.writeReport(c, renderer, result)
}

func (a *app) listAssessments(c *gin.Context) {
	if !a.historyEnabled(c) {
		return
	}
	limit := store.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit"})
			return
		}
		limit = n
	}

	items, err := a.store.List(c.Request.Context(), limit)
	if err != nil {
		a.log.Error("failed to list assessments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": items})
}

func (a *app) getAssessment(c *gin.Context) {
	result, ok := a.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *app) getAssessmentReport(c *gin.Context) {
	renderer, err := report.ForFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_format", "message": err.Error()})
		return
	}
	result, ok := a.lookup(c)
	if !ok {
		return
	}
	a.writeReport(c, renderer, result)
}

func (a *app) historyEnabled(c *gin.Context) bool {
	if a.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history_disabled"})
		return false
	}
	return true
}

func (a *app) lookup(c *gin.Context) (*assessment.Assessment, bool) {
	if !a.historyEnabled(c) {
		return nil, false
	}
	result, err := a.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return nil, false
	}
	if err != nil {
		a.log.Error("failed to load assessment", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return nil, false
	}
	return result, true
}

// writeReport renders into memory first so a failed render never sends a
// truncated attachment.
func (a *app) writeReport(c *gin.Context, r report.Renderer, result *assessment.Assessment) {
	var buf bytes.Buffer
	if err := r.Render(&buf, result); err != nil {
		a.log.Error("failed to render report", zap.String("id", result.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render_failed"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename(result, r)))
	c.Header("X-Assessment-Id", result.ID)
	c.Data(http.StatusOK, r.ContentType(), buf.Bytes())
}
