package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"soclisten/internal/models"
)

func renderAggregate(w io.Writer, agg models.AggregatedResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Posts analyzed", strconv.Itoa(agg.TotalAnalyzed)})
	table.Append([]string{"Hesitancy rate", rateString(agg.HesitancyRate)})
	table.Append([]string{"Exemption rate", rateString(agg.ExemptionRate)})
	for reason, count := range agg.ReasonsDistribution {
		table.Append([]string{fmt.Sprintf("Reason: %s", reason), strconv.Itoa(count)})
	}
	table.Render()
}

func renderResults(w io.Writer, results []models.AnalysisResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Post", "Title", "Hesitancy", "Exemption", "Reason", "Sentiment"})
	table.SetColWidth(48)
	for _, r := range results {
		reason := ""
		if r.ExemptionReason != nil {
			reason = *r.ExemptionReason
		}
		table.Append([]string{
			r.PostID,
			r.Post.Title,
			strconv.FormatBool(r.Hesitancy),
			strconv.FormatBool(r.PhilosophicalExemption),
			reason,
			r.Sentiment,
		})
	}
	table.Render()
}
