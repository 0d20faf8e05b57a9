package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/rackctl/rackctl/internal/fleet"
)

// render prints per-node results: a summary table by default, raw JSON with
// --json. Every node appears with its identity and, on failure, the reason.
func render(results []fleet.Result) error {
	if flagJSON {
		return renderJSON(results)
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("NODE", "BMC", "STATUS", "DETAIL")
	for _, r := range results {
		status := "ok"
		detail := payloadSummary(r.Payload)
		if !r.OK() {
			status = "FAILED"
			detail = r.ErrorText()
		}
		table.Append([]string{r.Node.Name, r.Node.BMCIP, status, detail})
	}
	return table.Render()
}

type jsonResult struct {
	Node    any    `json:"node"`
	OK      bool   `json:"ok"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

func renderJSON(results []fleet.Result) error {
	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		out = append(out, jsonResult{
			Node:    r.Node,
			OK:      r.OK(),
			Payload: r.Payload,
			Error:   r.ErrorText(),
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// payloadSummary renders a payload into one table cell.
func payloadSummary(payload any) string {
	switch p := payload.(type) {
	case nil:
		return ""
	case string:
		return p
	case fmt.Stringer:
		return p.String()
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Sprintf("%v", p)
		}
		s := string(data)
		if len(s) > 120 {
			s = s[:120] + "..."
		}
		return s
	}
}
