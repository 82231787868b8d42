package service

import (
	"github.com/pmezard/go-difflib/difflib"
)

// lineDiff renders a unified diff between the old and new field values.
func lineDiff(before, after string) string {
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "stored",
		ToFile:   "sorted",
		Context:  1,
	})
	if err != nil {
		return ""
	}
	return out
}
