// Package report renders the outcome of a volume fraction analysis as text,
// JSON, PNG plots and an interactive HTML page.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/sldvol/internal/sld"
)

// WriteText writes the human-readable summary of res.
func WriteText(w io.Writer, res *sld.Result) error {
	if res == nil {
		return fmt.Errorf("no result to report")
	}
	est := res.Estimate
	_, err := fmt.Fprintf(w, "\nVolume fractions:\n\n"+
		"\tSolvent: %0.1f +/- %0.1f [%%]\n"+
		"\tProtein: %0.1f +/- %0.1f [%%]\n"+
		"\tLipid: %0.1f +/- %0.1f [%%]\n\n"+
		"run=%s iterations=%d workers=%d seed=%d\n",
		est.Solvent.Mean, est.Solvent.Std,
		est.Protein.Mean, est.Protein.Std,
		est.Lipid.Mean, est.Lipid.Std,
		res.RunID, res.Iterations, res.Workers, res.Seed)
	return err
}

// jsonResult adds the per-iteration fractions to the encoded result when
// they were kept.
type jsonResult struct {
	*sld.Result
	Distribution *sld.Distribution `json:"distribution,omitempty"`
}

// WriteJSON writes res as indented JSON. A kept distribution is written
// under "distribution".
func WriteJSON(w io.Writer, res *sld.Result) error {
	if res == nil {
		return fmt.Errorf("no result to report")
	}
	out := jsonResult{Result: res}
	if res.Estimate.Distribution.Len() > 0 {
		out.Distribution = res.Estimate.Distribution
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
