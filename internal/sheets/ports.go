package sheets

import (
	"context"
	"time"

	"streamtally/internal/core"
)

// Ports for outbound adapters.
type (
	// ActivityMirror copies logged activities into an external sheet.
	// Implementations must be idempotent on the activity id.
	ActivityMirror interface {
		AppendActivity(ctx context.Context, h core.Header, a core.Activity) (rowRef string, err error)
	}
)

// Columns is the header row of the mirror sheet, in write order.
var Columns = []string{
	"Date", "Streamer", "Title", "Timestamp", "Type",
	"Username", "Tier", "Count", "Amount (USD)", "Activity ID",
}

// IDColumn is the zero-based index of the activity id in a row.
const IDColumn = 9

// Row renders one activity as a mirror row. Cells that do not apply to
// the activity kind are left empty.
func Row(h core.Header, a core.Activity) []any {
	var tier, count, amount any = "", "", ""
	switch a.Kind {
	case core.KindSub, core.KindGiftSub:
		tier = string(a.Tier)
		count = a.Count
	case core.KindPrimeSub:
		count = 1
	case core.KindDonation:
		amount = a.Amount.Dollars()
	}
	return []any{
		h.Date.String(),
		h.StreamerName,
		h.StreamTitle,
		a.Timestamp.UTC().Format(time.RFC3339),
		a.Kind.Label(),
		a.Username,
		tier,
		count,
		amount,
		a.ID,
	}
}
