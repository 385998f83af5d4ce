package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Skufu/heartrisk/internal/assessment"
	"github.com/Skufu/heartrisk/internal/model"
	"github.com/Skufu/heartrisk/internal/report"
)

// assessInput is the record file: the thirteen clinical fields plus the
// optional metadata, all at the top level. Pointers tell a missing field
// apart from a zero code.
type assessInput struct {
	Age              *int     `json:"age"`
	Sex              *int     `json:"sex"`
	ChestPainType    *int     `json:"chestPainType"`
	RestingBP        *int     `json:"restingBp"`
	Cholesterol      *int     `json:"cholesterol"`
	FastingSugarHigh *bool    `json:"fastingSugarHigh"`
	RestingECG       *int     `json:"restingEcg"`
	MaxHeartRate     *int     `json:"maxHeartRate"`
	ExerciseAngina   *bool    `json:"exerciseAngina"`
	STDepression     *float64 `json:"stDepression"`
	STSlope          *int     `json:"stSlope"`
	MajorVessels     *int     `json:"majorVessels"`
	Thalassemia      *int     `json:"thalassemia"`
	assessment.Metadata
}

// raw reports every absent clinical field as a ValidationError. No field
// is defaulted.
func (in assessInput) raw() (assessment.RawRecord, error) {
	var (
		raw  assessment.RawRecord
		errs []error
	)
	requireInt := func(field string, v *int, dst *int) {
		if v == nil {
			errs = append(errs, assessment.NewValidationError(field, "is required", nil))
			return
		}
		*dst = *v
	}
	requireBool := func(field string, v *bool, dst *bool) {
		if v == nil {
			errs = append(errs, assessment.NewValidationError(field, "is required", nil))
			return
		}
		*dst = *v
	}

	requireInt("age", in.Age, &raw.Age)
	requireInt("sex", in.Sex, &raw.Sex)
	requireInt("chest_pain_type", in.ChestPainType, &raw.ChestPainType)
	requireInt("resting_bp", in.RestingBP, &raw.RestingBP)
	requireInt("cholesterol", in.Cholesterol, &raw.Cholesterol)
	requireBool("fasting_sugar_high", in.FastingSugarHigh, &raw.FastingSugarHigh)
	requireInt("resting_ecg", in.RestingECG, &raw.RestingECG)
	requireInt("max_heart_rate", in.MaxHeartRate, &raw.MaxHeartRate)
	requireBool("exercise_angina", in.ExerciseAngina, &raw.ExerciseAngina)
	if in.STDepression == nil {
		errs = append(errs, assessment.NewValidationError("st_depression", "is required", nil))
	} else {
		raw.STDepression = *in.STDepression
	}
	requireInt("st_slope", in.STSlope, &raw.STSlope)
	requireInt("major_vessels", in.MajorVessels, &raw.MajorVessels)
	requireInt("thalassemia", in.Thalassemia, &raw.Thalassemia)

	if len(errs) > 0 {
		return assessment.RawRecord{}, errors.Join(errs...)
	}
	return raw, nil
}

type assessOptions struct {
	input        string
	modelPath    string
	modelURL     string
	modelTimeout time.Duration
	format       string
	out          string
	demo         bool
}

func newAssessCmd() *cobra.Command {
	opts := &assessOptions{}
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score a record file and write a report",
		Example: `  heartrisk assess --input record.json
  heartrisk assess --input record.json --format pdf --out report.pdf
  cat record.json | heartrisk assess --input - --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssess(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "Record JSON file, or - for stdin")
	f.StringVar(&opts.modelPath, "model", filepath.Join("models", "heart_disease_model.json"), "Model artifact path")
	f.StringVar(&opts.modelURL, "model-url", "", "Model sidecar base URL (overrides --model)")
	f.DurationVar(&opts.modelTimeout, "model-timeout", 5*time.Second, "Model sidecar timeout")
	f.StringVarP(&opts.format, "format", "f", "text", "Output format: "+strings.Join(append(report.Formats(), "json"), ", "))
	f.StringVarP(&opts.out, "out", "o", "", "Output file (default stdout for text and json, generated name otherwise)")
	f.BoolVar(&opts.demo, "demo", false, "Score with the demo heuristic when the model cannot be loaded")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runAssess(cmd *cobra.Command, opts *assessOptions) error {
	zlog := newLogger(cmd)
	defer zlog.Sync()

	var renderer report.Renderer
	format := strings.ToLower(strings.TrimSpace(opts.format))
	if format != "json" {
		r, err := report.ForFormat(format)
		if err != nil {
			return err
		}
		renderer = r
	}

	in, err := readInput(cmd.InOrStdin(), opts.input)
	if err != nil {
		return err
	}
	raw, err := in.raw()
	if err != nil {
		return fmt.Errorf("invalid record:\n%w", err)
	}
	record, err := assessment.NewInputRecord(raw)
	if err != nil {
		return fmt.Errorf("invalid record:\n%w", err)
	}

	classifier, err := buildClassifier(cmd, opts, zlog)
	if err != nil {
		return err
	}

	result, err := assessment.NewAssembler(classifier).Assess(cmd.Context(), record, in.Metadata)
	if err != nil {
		return fmt.Errorf("assessment failed: %w", err)
	}
	zlog.Info("assessment completed",
		zap.String("id", result.ID),
		zap.String("risk_tier", string(result.RiskTier)),
		zap.String("source", result.Source),
	)

	var buf bytes.Buffer
	if renderer == nil {
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode assessment: %w", err)
		}
	} else if err := renderer.Render(&buf, result); err != nil {
		return fmt.Errorf("render %s report: %w", renderer.Extension(), err)
	}

	out := opts.out
	if out == "" && renderer != nil && renderer.Extension() != "txt" {
		out = report.Filename(result, renderer)
	}
	if out == "" || out == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s risk (%.1f%%) written to %s\n", result.RiskTier, result.Probability*100, out)
	return nil
}

func readInput(stdin io.Reader, path string) (assessInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return assessInput{}, fmt.Errorf("read input: %w", err)
	}

	var in assessInput
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return assessInput{}, fmt.Errorf("parse input: %w", err)
	}
	return in, nil
}

func buildClassifier(cmd *cobra.Command, opts *assessOptions, zlog *zap.Logger) (assessment.Classifier, error) {
	var (
		m   assessment.Model
		err error
	)
	if opts.modelURL != "" {
		m, err = model.NewRemote(cmd.Context(), opts.modelURL, opts.modelTimeout, zlog)
	} else {
		m, err = model.Load(opts.modelPath)
	}
	if err == nil {
		return assessment.NewModelClassifier(m), nil
	}
	if opts.demo && errors.Is(err, assessment.ErrModelUnavailable) {
		zlog.Warn("model unavailable, using demo heuristic", zap.Error(err))
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: model unavailable, results are a non-authoritative demo score")
		return assessment.DemoClassifier{}, nil
	}
	return nil, err
}
