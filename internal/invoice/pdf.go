package invoice

import (
	"fmt"

	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
)

// RenderPDF writes the report as an A4 invoice document. Amounts are
// rounded half-up to two places here, at presentation time only.
func RenderPDF(r Report, currency, path string) error {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(12, func() {
			m.Col(12, func() {
				m.Text("Invoice — "+r.ClientName, props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		m.Row(8, func() {
			m.Col(12, func() {
				m.Text(fmt.Sprintf("No. %s · %s", r.Number, r.GeneratedAt.Format("2006-01-02")), props.Text{
					Top:   2,
					Align: consts.Center,
					Size:  9,
				})
			})
		})
	})

	headers, contents := tableData(r, currency)
	m.Row(6, func() {})
	m.TableList(headers, contents, props.TableList{
		HeaderProp:  props.TableListContent{Size: 10, Style: consts.Bold},
		ContentProp: props.TableListContent{Size: 9},
		Align:       consts.Center,
		Line:        true,
	})

	m.Row(10, func() {
		m.Col(12, func() {
			m.Text("Total: "+FormatMoney(currency, r.Total()), props.Text{
				Top:   4,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  11,
			})
		})
	})

	if err := m.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write invoice pdf: %w", err)
	}
	return nil
}

// tableData flattens the report into the two-column (grouped) or
// three-column (itemized) invoice table. An empty report still yields the
// header row.
func tableData(r Report, currency string) (headers []string, contents [][]string) {
	if r.Mode == ModeGrouped {
		headers = []string{"Service", "Earned Income"}
		for _, row := range r.Grouped {
			contents = append(contents, []string{
				row.Service,
				FormatMoney(currency, row.EarnedIncome),
			})
		}
		return headers, contents
	}

	headers = []string{"Service", "Description", "Earned Income"}
	for _, row := range r.Items {
		contents = append(contents, []string{
			row.Service,
			row.Description,
			FormatMoney(currency, row.EarnedIncome),
		})
	}
	return headers, contents
}
