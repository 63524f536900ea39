package receipt

import (
	"bytes"
	"fmt"
	"html/template"
)

const receiptHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Receipt #{{.Number}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 10pt; margin: 20mm; color: #111; }
  .center { text-align: center; }
  .store { font-size: 16pt; font-weight: bold; margin: 4mm 0; }
  .title { font-size: 12pt; font-weight: bold; margin: 8mm 0 4mm; }
  .meta { display: flex; justify-content: space-between; margin: 1mm 0; }
  table { width: 100%; border-collapse: collapse; margin-top: 6mm; }
  th { text-align: left; border-bottom: 1px solid #000; padding-bottom: 2mm; }
  td { padding: 1mm 0; }
  .totals { margin-top: 4mm; border-top: 1px solid #000; padding-top: 3mm; }
  .totals div { display: flex; justify-content: flex-end; gap: 10mm; font-weight: bold; }
  .grand { font-size: 12pt; }
  .footer { font-size: 8pt; margin-top: 8mm; }
  img.logo { width: 30mm; height: 20mm; object-fit: contain; }
</style>
</head>
<body>
{{if .Logo}}<img class="logo" src="{{.Logo}}" alt="">{{end}}
<div class="center store">{{.StoreName}}</div>
{{if .Address}}<div class="center">{{.Address}}</div>{{end}}
{{if .Phone}}<div class="center">Phone: {{.Phone}}</div>{{end}}
{{if .Email}}<div class="center">Email: {{.Email}}</div>{{end}}
{{if .Website}}<div class="center">Website: {{.Website}}</div>{{end}}
{{if .TaxNumber}}<div class="center">Tax Number: {{.TaxNumber}}</div>{{end}}

<div class="center title">RECEIPT</div>
<div class="meta"><span>Receipt #: {{.Number}}</span><span>Date: {{.Date}}</span></div>
<div class="meta"><span>Time: {{.Time}}</span><span>Staff: {{.Staff}}</span></div>

<table>
  <thead><tr><th>Item</th><th>Qty</th><th>Price</th><th>Total</th></tr></thead>
  <tbody>
  {{range .Lines}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Price}}</td><td>{{.Total}}</td></tr>
  {{end}}
  </tbody>
</table>

<div class="totals">
  <div><span>Subtotal:</span><span>{{.Subtotal}}</span></div>
  {{if .Tax}}<div><span>Tax:</span><span>{{.Tax}}</span></div>{{end}}
  {{if .Discount}}<div><span>Discount:</span><span>{{.Discount}}</span></div>{{end}}
  <div class="grand"><span>TOTAL:</span><span>{{.Total}}</span></div>
</div>

<p>Payment Method: {{.PaymentMethod}}</p>

<div class="center footer">
  {{if .Footer}}<p>{{.Footer}}</p>{{end}}
  <p>This is a computer generated receipt</p>
  <p>No signature required</p>
</div>
</body>
</html>
`

var receiptTemplate = template.Must(template.New("receipt").Parse(receiptHTML))

// RenderHTML executes the receipt layout
func RenderHTML(r Receipt) (string, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("execute receipt template: %w", err)
	}
	return buf.String(), nil
}
