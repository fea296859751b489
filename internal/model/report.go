package model

import (
	"fmt"
	"strings"
)

// ClassMetrics holds precision, recall, F1 and support for one label or average.
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is a per-class evaluation of predictions against true labels.
type Report struct {
	Classes     []ClassMetrics
	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	Total       int
}

// Accuracy returns the fraction of positions where yPred equals yTrue.
func Accuracy(yTrue, yPred []string) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

// Evaluate builds a Report over the labels of classes that occur in yTrue or
// yPred, in class order. Ratios with a zero denominator are 0.
func Evaluate(yTrue, yPred, classes []string) Report {
	present := make(map[string]bool, len(classes))
	for i := range yTrue {
		present[yTrue[i]] = true
		present[yPred[i]] = true
	}

	report := Report{Accuracy: Accuracy(yTrue, yPred), Total: len(yTrue)}
	report.MacroAvg.Label = "macro avg"
	report.WeightedAvg.Label = "weighted avg"

	for _, class := range classes {
		if !present[class] {
			continue
		}
		var tp, predicted, actual int
		for i := range yTrue {
			if yPred[i] == class {
				predicted++
			}
			if yTrue[i] == class {
				actual++
				if yPred[i] == class {
					tp++
				}
			}
		}

		precision := ratio(tp, predicted)
		recall := ratio(tp, actual)
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		report.Classes = append(report.Classes, ClassMetrics{
			Label:     class,
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   actual,
		})
	}

	if k := len(report.Classes); k > 0 {
		for _, c := range report.Classes {
			report.MacroAvg.Precision += c.Precision / float64(k)
			report.MacroAvg.Recall += c.Recall / float64(k)
			report.MacroAvg.F1 += c.F1 / float64(k)
			if report.Total > 0 {
				weight := float64(c.Support) / float64(report.Total)
				report.WeightedAvg.Precision += c.Precision * weight
				report.WeightedAvg.Recall += c.Recall * weight
				report.WeightedAvg.F1 += c.F1 * weight
			}
		}
	}
	report.MacroAvg.Support = report.Total
	report.WeightedAvg.Support = report.Total
	return report
}

// String renders the report as a fixed-width table with two decimals:
//
//	              precision    recall  f1-score   support
//
//	           0       1.00      0.50      0.67         2
//	...
//	    accuracy                           0.75         4
//	   macro avg       0.83      0.75      0.73         4
//	weighted avg       0.83      0.75      0.73         4
func (r Report) String() string {
	width := len(r.WeightedAvg.Label)
	for _, c := range r.Classes {
		width = max(width, len(c.Label))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s  %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		writeRow(&b, width, c)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s  %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.Total)
	writeRow(&b, width, r.MacroAvg)
	writeRow(&b, width, r.WeightedAvg)
	return b.String()
}

func writeRow(b *strings.Builder, width int, c ClassMetrics) {
	fmt.Fprintf(b, "%*s  %9.2f %9.2f %9.2f %9d\n", width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
