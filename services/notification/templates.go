package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"decorbook/models"
)

const layoutHead = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<div style="background: #1E3A8A; color: white; padding: 20px;"><h1 style="margin: 0; font-size: 22px;">{{.Heading}}</h1></div>
<div style="padding: 24px; background: #f9f9f9;">`

const layoutFoot = `</div>
<div style="background: #1E3A8A; color: white; padding: 12px; text-align: center; font-size: 12px;">&copy; {{.Year}} {{.Brand}}</div>
</div>`

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"rupees": formatRupees,
}).Parse(`
{{define "head"}}` + layoutHead + `{{end}}
{{define "foot"}}` + layoutFoot + `{{end}}

{{define "customer_confirmation"}}{{template "head" .}}
<p>Dear {{.Booking.Name}},</p>
<p>Thank you for choosing {{.Brand}}. We have received your booking request and will contact you within 24 hours to confirm the details.</p>
<table style="width: 100%; background: white;">
<tr><td><strong>Booking ID</strong></td><td>{{.Booking.ID}}</td></tr>
<tr><td><strong>Package</strong></td><td>{{.Booking.Package}}</td></tr>
<tr><td><strong>Event Date</strong></td><td>{{.EventDate}}</td></tr>
<tr><td><strong>Total Amount</strong></td><td>{{rupees .Booking.TotalPrice}}</td></tr>
<tr><td><strong>Status</strong></td><td>{{.Status}}</td></tr>
</table>
<p>Best regards,<br><strong>{{.Brand}} Team</strong></p>
{{template "foot" .}}{{end}}

{{define "admin_alert"}}{{template "head" .}}
<table style="width: 100%; background: white;">
<tr><td><strong>Customer Name</strong></td><td>{{.Booking.Name}}</td></tr>
<tr><td><strong>Email</strong></td><td>{{.Booking.Email}}</td></tr>
<tr><td><strong>Phone</strong></td><td>{{.Booking.Phone}}</td></tr>
<tr><td><strong>Package</strong></td><td>{{.Booking.Package}}</td></tr>
<tr><td><strong>Event Date</strong></td><td>{{.EventDate}}</td></tr>
<tr><td><strong>Total Amount</strong></td><td>{{rupees .Booking.TotalPrice}}</td></tr>
</table>
{{with .Booking.Message}}<h3>Customer Message</h3><p>{{.}}</p>{{end}}
<p style="background: #FFD700; padding: 12px;"><strong>Action required:</strong> contact the customer within 24 hours to confirm the booking.</p>
{{template "foot" .}}{{end}}

{{define "status_update"}}{{template "head" .}}
<p>Dear {{.Booking.Name}},</p>
<p>Your booking {{.Booking.ID}} for {{.EventDate}} is now <strong>{{.Status}}</strong>.</p>
<p>Best regards,<br><strong>{{.Brand}} Team</strong></p>
{{template "foot" .}}{{end}}

{{define "contact_alert"}}{{template "head" .}}
<table style="width: 100%; background: white;">
<tr><td><strong>Name</strong></td><td>{{.Contact.Name}}</td></tr>
<tr><td><strong>Email</strong></td><td>{{.Contact.Email}}</td></tr>
{{with .Contact.Phone}}<tr><td><strong>Phone</strong></td><td>{{.}}</td></tr>{{end}}
<tr><td><strong>Submitted</strong></td><td>{{.Submitted}}</td></tr>
</table>
<h3>Message</h3><p>{{.Contact.Message}}</p>
{{template "foot" .}}{{end}}
`))

type templateData struct {
	Brand     string
	Heading   string
	Year      int
	Booking   *models.Booking
	Contact   *models.ContactMessage
	EventDate string
	Status    string
	Submitted string
}

func render(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// formatRupees groups digits the Indian way: 1,23,456.
func formatRupees(amount float64) string {
	whole := int64(amount)
	paise := int64((amount-float64(whole))*100 + 0.5)
	if paise == 100 {
		whole++
		paise = 0
	}

	digits := fmt.Sprintf("%d", whole)
	if len(digits) > 3 {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var grouped []byte
		for i, c := range []byte(head) {
			if i > 0 && (len(head)-i)%2 == 0 {
				grouped = append(grouped, ',')
			}
			grouped = append(grouped, c)
		}
		digits = string(grouped) + "," + tail
	}
	if paise > 0 {
		return fmt.Sprintf("₹%s.%02d", digits, paise)
	}
	return "₹" + digits
}

func formatDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("Monday, 2 January 2006")
}
