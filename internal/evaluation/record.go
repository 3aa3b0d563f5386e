// Package evaluation scores classifier predictions and holds the results
// table produced by a benchmark run.
package evaluation

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// NotAvailable marks a metric that could not be computed.
var NotAvailable = math.NaN()

// Record is the outcome of evaluating one model.
type Record struct {
	Name       string
	Accuracy   float64
	F1Macro    float64
	F1Micro    float64
	F1Weighted float64
	Precision  float64 // macro
	Recall     float64 // macro

	// DurationSeconds covers training only.
	DurationSeconds  float64
	InferenceSeconds float64

	NTrain int
	NTest  int
	Folds  int

	// Spread across folds; zero outside cross-validation.
	AccuracyStd float64
	F1MacroStd  float64

	Error string
}

// FailedRecord returns a record whose metrics are all not available.
func FailedRecord(name string, err error) Record {
	r := Record{
		Name:             name,
		Accuracy:         NotAvailable,
		F1Macro:          NotAvailable,
		F1Micro:          NotAvailable,
		F1Weighted:       NotAvailable,
		Precision:        NotAvailable,
		Recall:           NotAvailable,
		DurationSeconds:  NotAvailable,
		InferenceSeconds: NotAvailable,
		AccuracyStd:      NotAvailable,
		F1MacroStd:       NotAvailable,
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Failed reports whether the record carries the not-available sentinel.
func (r Record) Failed() bool {
	return math.IsNaN(r.Accuracy)
}

type recordJSON struct {
	Name             string   `json:"name"`
	Accuracy         *float64 `json:"accuracy"`
	F1Macro          *float64 `json:"f1_macro"`
	F1Micro          *float64 `json:"f1_micro"`
	F1Weighted       *float64 `json:"f1_weighted"`
	Precision        *float64 `json:"precision"`
	Recall           *float64 `json:"recall"`
	DurationSeconds  *float64 `json:"duration_seconds"`
	InferenceSeconds *float64 `json:"inference_seconds"`
	NTrain           int      `json:"n_train"`
	NTest            int      `json:"n_test"`
	Folds            int      `json:"folds,omitempty"`
	AccuracyStd      *float64 `json:"accuracy_std,omitempty"`
	F1MacroStd       *float64 `json:"f1_macro_std,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// nullable maps NaN to JSON null.
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func fromNullable(p *float64) float64 {
	if p == nil {
		return NotAvailable
	}
	return *p
}

// MarshalJSON encodes not-available metrics as null.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Name:             r.Name,
		Accuracy:         nullable(r.Accuracy),
		F1Macro:          nullable(r.F1Macro),
		F1Micro:          nullable(r.F1Micro),
		F1Weighted:       nullable(r.F1Weighted),
		Precision:        nullable(r.Precision),
		Recall:           nullable(r.Recall),
		DurationSeconds:  nullable(r.DurationSeconds),
		InferenceSeconds: nullable(r.InferenceSeconds),
		NTrain:           r.NTrain,
		NTest:            r.NTest,
		Folds:            r.Folds,
		AccuracyStd:      nullable(r.AccuracyStd),
		F1MacroStd:       nullable(r.F1MacroStd),
		Error:            r.Error,
	})
}

// UnmarshalJSON decodes null metrics back to NaN.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		Name:             raw.Name,
		Accuracy:         fromNullable(raw.Accuracy),
		F1Macro:          fromNullable(raw.F1Macro),
		F1Micro:          fromNullable(raw.F1Micro),
		F1Weighted:       fromNullable(raw.F1Weighted),
		Precision:        fromNullable(raw.Precision),
		Recall:           fromNullable(raw.Recall),
		DurationSeconds:  fromNullable(raw.DurationSeconds),
		InferenceSeconds: fromNullable(raw.InferenceSeconds),
		NTrain:           raw.NTrain,
		NTest:            raw.NTest,
		Folds:            raw.Folds,
		AccuracyStd:      fromNullable(raw.AccuracyStd),
		F1MacroStd:       fromNullable(raw.F1MacroStd),
		Error:            raw.Error,
	}
	return nil
}

// Table is an ordered list of records, one per evaluated model.
type Table []Record

// Successful returns the records that have metrics.
func (t Table) Successful() Table {
	return lo.Filter(t, func(r Record, _ int) bool { return !r.Failed() })
}

// Names returns the model names in table order.
func (t Table) Names() []string {
	return lo.Map(t, func(r Record, _ int) string { return r.Name })
}

// Best returns the successful record with the highest F1 macro.
// The first one wins on ties.
func (t Table) Best() (Record, bool) {
	ok := t.Successful()
	if len(ok) == 0 {
		return Record{}, false
	}
	return lo.MaxBy(ok, func(a, b Record) bool { return a.F1Macro > b.F1Macro }), true
}

// Aggregate combines per-fold records into one: metrics are averaged,
// durations summed, test sizes summed, train sizes averaged.
func Aggregate(name string, folds []Record) (Record, error) {
	if len(folds) == 0 {
		return Record{}, errors.New("no folds to aggregate")
	}
	if failed, found := lo.Find(folds, Record.Failed); found {
		return FailedRecord(name, errors.New(failed.Error)), nil
	}

	metric := func(f func(Record) float64) []float64 {
		return lo.Map(folds, func(r Record, _ int) float64 { return f(r) })
	}
	acc := metric(func(r Record) float64 { return r.Accuracy })
	f1 := metric(func(r Record) float64 { return r.F1Macro })
	accMean, accStd := stat.PopMeanStdDev(acc, nil)
	f1Mean, f1Std := stat.PopMeanStdDev(f1, nil)

	return Record{
		Name:             name,
		Accuracy:         accMean,
		F1Macro:          f1Mean,
		F1Micro:          stat.Mean(metric(func(r Record) float64 { return r.F1Micro }), nil),
		F1Weighted:       stat.Mean(metric(func(r Record) float64 { return r.F1Weighted }), nil),
		Precision:        stat.Mean(metric(func(r Record) float64 { return r.Precision }), nil),
		Recall:           stat.Mean(metric(func(r Record) float64 { return r.Recall }), nil),
		DurationSeconds:  lo.SumBy(folds, func(r Record) float64 { return r.DurationSeconds }),
		InferenceSeconds: lo.SumBy(folds, func(r Record) float64 { return r.InferenceSeconds }),
		NTrain:           lo.SumBy(folds, func(r Record) int { return r.NTrain }) / len(folds),
		NTest:            lo.SumBy(folds, func(r Record) int { return r.NTest }),
		Folds:            len(folds),
		AccuracyStd:      accStd,
		F1MacroStd:       f1Std,
	}, nil
}
