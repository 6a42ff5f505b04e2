package assess

import (
	"fmt"
	"strings"

	"github.com/edulens/screening/internal/domain/model"
)

const notesMetricsPerGroup = 3

// clinicalNotes renders the predictions as a plain-text report block for the
// reviewing specialist: tier and confidence per domain, then the leading
// metrics of each analysis group.
func clinicalNotes(predictions map[model.Domain]model.Prediction) string {
	var b strings.Builder
	for _, d := range model.Domains() {
		pred, ok := predictions[d]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n%s ASSESSMENT:\n", strings.ToUpper(string(d)))
		fmt.Fprintf(&b, "  Risk Level: %s\n", pred.RiskLevel)
		fmt.Fprintf(&b, "  Confidence: %.1f%%\n", pred.Confidence*100)
		for _, group := range pred.Analysis {
			if len(group.Metrics) == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %s:\n", titleCase(group.Name))
			for i, m := range group.Metrics {
				if i == notesMetricsPerGroup {
					break
				}
				fmt.Fprintf(&b, "    - %s: %.2f\n", m.Name, m.Value)
			}
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func titleCase(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
