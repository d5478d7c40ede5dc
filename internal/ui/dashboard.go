package ui

import (
	"fmt"
	"time"

	termui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/genc-murat/relaymon/internal/core/models"
	"github.com/genc-murat/relaymon/internal/metrics"
)

const (
	accountingHeight = 4

	// Below this height the accounting block collapses so the graphs keep a
	// usable number of rows.
	minHeightForAccounting = 14
)

// Dashboard draws the bandwidth view: a header with the relay metadata,
// one sparkline group per direction and, when the relay meters its
// traffic, a quota block underneath. All state comes in through Render;
// the dashboard itself never touches the monitor.
type Dashboard struct {
	header       *widgets.Paragraph
	downloadLine *widgets.Sparkline
	download     *widgets.SparklineGroup
	uploadLine   *widgets.Sparkline
	upload       *widgets.SparklineGroup
	accounting   *widgets.Paragraph
	footer       *widgets.Paragraph

	width  int
	height int
}

func NewDashboard() *Dashboard {
	header := widgets.NewParagraph()
	header.Border = false

	downloadLine := widgets.NewSparkline()
	downloadLine.LineColor = termui.ColorGreen
	download := widgets.NewSparklineGroup(downloadLine)

	uploadLine := widgets.NewSparkline()
	uploadLine.LineColor = termui.ColorCyan
	upload := widgets.NewSparklineGroup(uploadLine)

	accounting := widgets.NewParagraph()

	footer := widgets.NewParagraph()
	footer.Border = false

	d := &Dashboard{
		header:       header,
		downloadLine: downloadLine,
		download:     download,
		uploadLine:   uploadLine,
		upload:       upload,
		accounting:   accounting,
		footer:       footer,
	}
	d.Resize(termui.TerminalDimensions())
	return d
}

// Resize records the new terminal geometry. The next Render lays the
// widgets out against it.
func (d *Dashboard) Resize(width, height int) {
	d.width = width
	d.height = height
}

// Render lays out and draws the current snapshot at the given resolution
// tier; interval is that tier's bucket width.
func (d *Dashboard) Render(snap *models.TelemetrySnapshot, tier int, interval time.Duration, counters metrics.Snapshot) {
	showAccounting := snap.Accounting != nil && d.height >= minHeightForAccounting

	graphBottom := d.height - 1 // footer row
	if showAccounting {
		graphBottom -= accountingHeight
	}
	if graphBottom < 5 {
		graphBottom = 5
	}
	half := d.width / 2

	d.header.Text = headerText(snap, interval)
	d.header.SetRect(0, 0, d.width, 2)

	elapsed := snap.Taken.Sub(snap.StartTime)

	down := snap.Download.Tier(tier)
	d.download.Title = directionTitle("Download", snap.Download, elapsed)
	d.downloadLine.Data = graphSeries(down.History, half-2)
	d.downloadLine.MaxVal = down.Max
	d.download.SetRect(0, 2, half, graphBottom)

	up := snap.Upload.Tier(tier)
	d.upload.Title = directionTitle("Upload", snap.Upload, elapsed)
	d.uploadLine.Data = graphSeries(up.History, d.width-half-2)
	d.uploadLine.MaxVal = up.Max
	d.upload.SetRect(half, 2, d.width, graphBottom)

	d.footer.Text = footerText(counters)
	d.footer.SetRect(0, d.height-1, d.width, d.height)

	items := []termui.Drawable{d.header, d.download, d.upload, d.footer}
	if showAccounting {
		lines := accountingLines(snap.Accounting, snap.DaemonUp)
		d.accounting.Title = lines[0]
		d.accounting.Text = ""
		if len(lines) > 1 {
			d.accounting.Text = lines[1]
		}
		d.accounting.SetRect(0, graphBottom, d.width, graphBottom+accountingHeight)
		items = append(items, d.accounting)
	}

	termui.Render(items...)
}

func headerText(snap *models.TelemetrySnapshot, interval time.Duration) string {
	text := fmt.Sprintf("%s, %s intervals", titleLabel(snap.Metadata), interval)
	if !snap.DaemonUp {
		text += "  [daemon unreachable]"
	}
	return text
}

func footerText(counters metrics.Snapshot) string {
	text := fmt.Sprintf("samples: %d", counters.SamplesIngested)
	if counters.QuotaPollErrors > 0 {
		text += fmt.Sprintf("  poll errors: %d", counters.QuotaPollErrors)
	}
	if counters.EventsDropped > 0 {
		text += fmt.Sprintf("  dropped: %d", counters.EventsDropped)
	}
	if !counters.LastEventAt.IsZero() {
		text += "  last event: " + counters.LastEventAt.Format("15:04:05")
	}
	return text + "  |  q: quit  1-9: interval"
}
