// Package report renders stream logs and summaries as PDF documents.
package report

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"streamtally/internal/core"
)

// Document is a rendered report ready to be served or saved.
type Document struct {
	Filename string
	Content  []byte
}

const (
	marginLeft = 14.0
	rowHeight  = 8.0
	timeLayout = "15:04:05"
)

var (
	headFill   = [3]int{62, 28, 108}
	stripeFill = [3]int{243, 240, 249}
	whitespace = regexp.MustCompile(`\s+`)
)

// FormatUSD formats m as US dollars with digit grouping, e.g. "$1,234.50".
func FormatUSD(m core.Money) string {
	return message.NewPrinter(language.AmericanEnglish).Sprintf("$%.2f", m.Dollars())
}

func filename(s string) string {
	return whitespace.ReplaceAllString(s, "_")
}

// DailyReport renders one stream log with its activities in time order.
func DailyReport(l core.StreamLog) (Document, error) {
	d := newDoc()
	d.title(fmt.Sprintf("Daily Stream Report - %s", l.Date))
	d.line("Streamer: " + l.StreamerName)
	d.line("Title: " + l.StreamTitle)
	d.line("Last Updated: " + l.LastUpdated.UTC().Format("2006-01-02 15:04:05 UTC"))
	d.pdf.Ln(4)

	acts := append([]core.Activity(nil), l.Activities...)
	sort.SliceStable(acts, func(i, j int) bool { return acts[i].Timestamp.Before(acts[j].Timestamp) })

	rows := make([][]string, 0, len(acts))
	for _, a := range acts {
		details, amount := activityCells(a)
		rows = append(rows, []string{a.Timestamp.UTC().Format(timeLayout), a.Kind.Label(), a.Username, details, amount})
	}
	d.table([]string{"Time", "Type", "User", "Details", "Amount/Count"},
		[]float64{25, 32, 50, 40, 35}, rows, true)

	content, err := d.bytes()
	if err != nil {
		return Document{}, err
	}
	return Document{
		Filename: filename(fmt.Sprintf("daily_report_%s_%s.pdf", l.StreamerName, l.Date)),
		Content:  content,
	}, nil
}

func activityCells(a core.Activity) (details, amount string) {
	switch a.Kind {
	case core.KindSub, core.KindGiftSub:
		return "Tier: " + string(a.Tier), "Count: " + strconv.Itoa(a.Count)
	case core.KindDonation:
		return "Amount (USD)", FormatUSD(a.Amount)
	case core.KindPrimeSub:
		return "Amazon Prime", "Count: 1"
	}
	return "", ""
}

// SummaryReport renders a monthly or yearly summary. The chart table is
// added on a second page when the summary carries a breakdown or trend.
func SummaryReport(s core.Summary, title string) (Document, error) {
	d := newDoc()
	d.title(title)
	d.line("Period: " + s.Period)
	d.pdf.Ln(4)

	subs, gifts := s.Subs, s.GiftSubs
	itoa := strconv.Itoa
	rows := [][]string{
		{"Subscriptions", itoa(subs[core.Tier1]), itoa(subs[core.Tier2]), itoa(subs[core.Tier3]), itoa(subs.Total())},
		{"Gifted Subs", itoa(gifts[core.Tier1]), itoa(gifts[core.Tier2]), itoa(gifts[core.Tier3]), itoa(gifts.Total())},
		{"Prime Subs", "-", "-", "-", itoa(s.PrimeSubs)},
		{"Donations (USD)", "-", "-", "-", FormatUSD(s.Donations)},
	}
	d.table([]string{"Category", string(core.Tier1), string(core.Tier2), string(core.Tier3), "Total"},
		[]float64{50, 30, 30, 30, 40}, rows, false)

	switch {
	case len(s.Trend) > 0:
		d.chartPage()
		rows := make([][]string, 0, len(s.Trend))
		for _, t := range s.Trend {
			rows = append(rows, []string{t.Name, itoa(t.TotalSubs), itoa(t.TotalGiftSubs), FormatUSD(t.TotalDonations)})
		}
		d.table([]string{"Month", "Total Subs", "Total Gift Subs", "Total Donations (USD)"},
			[]float64{45, 40, 45, 52}, rows, true)
	case len(s.Breakdown) > 0:
		d.chartPage()
		rows := make([][]string, 0, len(s.Breakdown))
		for _, c := range s.Breakdown {
			if c.Amount != nil {
				rows = append(rows, []string{c.Name, FormatUSD(*c.Amount), "-"})
				continue
			}
			rows = append(rows, []string{c.Name, itoa(c.Subs), itoa(c.GiftSubs)})
		}
		d.table([]string{"Category", "Subscriptions", "Gifted Subs"},
			[]float64{60, 50, 50}, rows, true)
	}

	content, err := d.bytes()
	if err != nil {
		return Document{}, err
	}
	return Document{
		Filename: filename(fmt.Sprintf("%s_%s.pdf", strings.ToLower(title), s.Period)),
		Content:  content,
	}, nil
}

type doc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDoc() *doc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, 16, marginLeft)
	pdf.SetAutoPageBreak(true, 16)
	pdf.AddPage()
	return &doc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *doc) title(s string) {
	d.pdf.SetFont("Helvetica", "B", 18)
	d.pdf.CellFormat(0, 10, d.tr(s), "", 1, "L", false, 0, "")
	d.pdf.Ln(2)
}

func (d *doc) line(s string) {
	d.pdf.SetFont("Helvetica", "", 12)
	d.pdf.CellFormat(0, 6, d.tr(s), "", 1, "L", false, 0, "")
}

func (d *doc) chartPage() {
	d.pdf.AddPage()
	d.pdf.SetFont("Helvetica", "B", 16)
	d.pdf.CellFormat(0, 10, "Chart Data Table", "", 1, "L", false, 0, "")
	d.pdf.Ln(2)
}

func (d *doc) table(head []string, widths []float64, rows [][]string, striped bool) {
	pdf := d.pdf
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(headFill[0], headFill[1], headFill[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(200, 200, 200)
	for i, h := range head {
		pdf.CellFormat(widths[i], rowHeight, d.tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(stripeFill[0], stripeFill[1], stripeFill[2])
	for n, row := range rows {
		fill := striped && n%2 == 1
		for i, cell := range row {
			align := "L"
			if i > 0 && !striped {
				align = "R"
			}
			pdf.CellFormat(widths[i], rowHeight, d.tr(cell), "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (d *doc) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
