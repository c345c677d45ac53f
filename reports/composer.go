package reports

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/Kaptaan1992/honeybees-daycare/store"
)

// Subject builds the report mail subject for one child and day.
func Subject(child store.Child, date string) string {
	return fmt.Sprintf("Daily Report – %s – %s", child.FirstName, date)
}

// TextBody renders the plaintext report. Pure: no side effects, no store
// access. The narrative slot prefers the generated summary, then the raw
// teacher notes, then a friendly default.
func TextBody(log store.DailyLog, child store.Child, settings store.Settings, aiSummary string, holidays []store.Holiday) string {
	sections := []string{}
	push := func(s string) { sections = append(sections, s) }

	push(fmt.Sprintf("DAILY REPORT: %s %s", child.FirstName, child.LastName))
	push(fmt.Sprintf("Date: %s", log.Date))
	push(fmt.Sprintf("Arrived: %s | Departed: %s", log.ArrivalTime, log.DepartureTime))
	push(fmt.Sprintf("Overall Mood: %s", log.OverallMood))

	if len(holidays) > 0 {
		push("")
		push("UPCOMING CLOSURES:")
		for _, h := range holidays {
			push(fmt.Sprintf("- [%s] %s (%s)", h.Date, h.Name, h.Type))
		}
	}

	push("\n------------------------------------------\n")
	push("SPECIAL MOMENTS:")
	push(narrative(log, aiSummary))
	push("\n------------------------------------------\n")

	if len(log.Activities) > 0 {
		push("ACTIVITIES & LEARNING:")
		for _, a := range log.Activities {
			push(fmt.Sprintf("- [%s] %s: %s", a.Time, a.Category, a.Description))
		}
		push("")
	}
	if len(log.Meals) > 0 || len(log.Bottles) > 0 {
		push("NUTRITION:")
		for _, m := range log.Meals {
			push(fmt.Sprintf("- [%s] %s: %s (%s eaten)", m.Time, m.Type, m.Items, m.Amount))
		}
		for _, b := range log.Bottles {
			push(fmt.Sprintf("- [%s] Bottle: %s (%s)", b.Time, b.Type, b.Amount))
		}
		push("")
	}
	if len(log.Naps) > 0 {
		push("REST:")
		for _, n := range log.Naps {
			push(fmt.Sprintf("- [%s] Nap started (%s quality)", n.StartTime, n.Quality))
		}
		push("")
	}
	if len(log.Medications) > 0 {
		push("MEDICATIONS:")
		for _, m := range log.Medications {
			push(fmt.Sprintf("- [%s] %s (%s)", m.Time, m.Name, m.Dosage))
		}
		push("")
	}
	if log.SuppliesNeeded != "" {
		push("SUPPLIES NEEDED:")
		push(fmt.Sprintf("* %s", log.SuppliesNeeded))
		push("")
	}

	push(fmt.Sprintf("\n%s", settings.EmailSignature))
	return strings.Join(sections, "\n")
}

func narrative(log store.DailyLog, aiSummary string) string {
	if aiSummary != "" {
		return aiSummary
	}
	if log.TeacherNotes != "" {
		return log.TeacherNotes
	}
	return "A wonderful day of learning and play!"
}

type htmlItem struct {
	Time   string
	Title  string
	Detail string
}

type htmlSection struct {
	Title string
	Items []htmlItem
}

type htmlReport struct {
	DaycareName    string
	ChildFirstName string
	Date           string
	ArrivalTime    string
	DepartureTime  string
	Mood           store.Mood
	Narrative      string
	Holidays       []store.Holiday
	Sections       []htmlSection
	Diapers        []store.DiaperPottyEntry
	SuppliesNeeded string
	Signature      template.HTML
}

var htmlReportTemplate = template.Must(template.New("report").Parse(`
<div style="font-family: 'Inter', Helvetica, Arial, sans-serif; background-color: #fffbeb; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 24px; overflow: hidden; border: 1px solid #fde68a;">
    <div style="background-color: #FBBF24; padding: 40px 20px; text-align: center;">
      <h1 style="margin: 0; color: #78350F; font-size: 24px; font-weight: 900; text-transform: uppercase; letter-spacing: 2px;">{{.DaycareName}}</h1>
      <p style="margin: 8px 0 0 0; color: #78350F; font-weight: bold; opacity: 0.8;">Daily Report for {{.ChildFirstName}}</p>
      <div style="display: inline-block; margin-top: 12px; background-color: rgba(255,255,255,0.3); padding: 4px 16px; border-radius: 20px; font-size: 12px; font-weight: bold; color: #78350F;">{{.Date}}</div>
    </div>
    <div style="padding: 32px;">
{{- if .Holidays}}
      <div style="background-color: #eff6ff; border: 1px solid #dbeafe; padding: 16px; border-radius: 16px; margin-bottom: 24px;">
        <span style="color: #2563eb; font-size: 10px; font-weight: bold; text-transform: uppercase; display: block; margin-bottom: 4px;">Upcoming Closures</span>
{{- range .Holidays}}
        <p style="margin: 2px 0; color: #1e40af; font-size: 13px;"><strong>{{.Date}}</strong> — {{.Name}} ({{.Type}})</p>
{{- end}}
      </div>
{{- end}}
      <table width="100%" cellpadding="0" cellspacing="0" style="margin-bottom: 32px;">
        <tr>
          <td align="center" style="background-color: #f8fafc; padding: 12px; border-radius: 16px; width: 33%;">
            <div style="font-size: 10px; font-weight: bold; color: #64748b; text-transform: uppercase;">Arrived</div>
            <div style="font-size: 16px; font-weight: bold; color: #1e293b;">{{.ArrivalTime}}</div>
          </td>
          <td width="10"></td>
          <td align="center" style="background-color: #f8fafc; padding: 12px; border-radius: 16px; width: 33%;">
            <div style="font-size: 10px; font-weight: bold; color: #64748b; text-transform: uppercase;">Mood</div>
            <div style="font-size: 16px; font-weight: bold; color: #1e293b;">{{.Mood}}</div>
          </td>
          <td width="10"></td>
          <td align="center" style="background-color: #f8fafc; padding: 12px; border-radius: 16px; width: 33%;">
            <div style="font-size: 10px; font-weight: bold; color: #64748b; text-transform: uppercase;">Departed</div>
            <div style="font-size: 16px; font-weight: bold; color: #1e293b;">{{.DepartureTime}}</div>
          </td>
        </tr>
      </table>
      <div style="background-color: #fffdf2; border: 1px solid #fef3c7; padding: 24px; border-radius: 24px; margin-bottom: 32px;">
        <h3 style="margin: 0 0 12px 0; color: #1e293b; font-size: 16px; font-weight: bold;">Special Moments</h3>
        <p style="margin: 0; color: #64748b; line-height: 1.6; font-style: italic;">"{{.Narrative}}"</p>
      </div>
{{- range .Sections}}
      <div style="margin-bottom: 24px;">
        <h3 style="color: #64748b; font-size: 12px; font-weight: 800; text-transform: uppercase; letter-spacing: 1px; border-bottom: 1px solid #fef3c7; padding-bottom: 8px; margin-bottom: 12px;">{{.Title}}</h3>
        <table width="100%" cellpadding="0" cellspacing="0">
{{- range .Items}}
          <tr>
            <td style="padding: 4px 0; font-size: 14px; vertical-align: top; width: 60px; color: #FBBF24; font-weight: bold;">{{.Time}}</td>
            <td style="padding: 4px 0; font-size: 14px; color: #1e293b;">
              <strong>{{.Title}}</strong>
              <div style="color: #64748b; font-size: 12px; font-style: italic;">{{.Detail}}</div>
            </td>
          </tr>
{{- end}}
        </table>
      </div>
{{- end}}
{{- if .Diapers}}
      <div style="margin-bottom: 24px;">
        <h3 style="color: #64748b; font-size: 12px; font-weight: 800; text-transform: uppercase; letter-spacing: 1px; border-bottom: 1px solid #fef3c7; padding-bottom: 8px; margin-bottom: 12px;">Potty</h3>
        <div style="color: #1e293b; font-size: 14px; font-weight: bold;">
{{- range .Diapers}}
          <span style="display: inline-block; padding: 4px 8px; background-color: #f8fafc; border-radius: 6px; margin: 2px; border: 1px solid #f1f5f9;">{{.Time}} - {{.Type}}</span>
{{- end}}
        </div>
      </div>
{{- end}}
{{- if .SuppliesNeeded}}
      <div style="background-color: #fef2f2; border: 1px solid #fee2e2; padding: 16px; border-radius: 16px; margin-bottom: 32px;">
        <span style="color: #ef4444; font-size: 10px; font-weight: bold; text-transform: uppercase; display: block; margin-bottom: 4px;">Needs</span>
        <p style="margin: 0; color: #b91c1c; font-weight: bold; font-size: 14px;">{{.SuppliesNeeded}}</p>
      </div>
{{- end}}
      <div style="text-align: center; border-top: 1px solid #fef3c7; padding-top: 32px; margin-top: 32px;">
        <p style="margin: 0; color: #64748b; font-size: 14px;">{{.Signature}}</p>
        <p style="margin: 8px 0 0 0; color: #64748b; font-size: 11px; font-style: italic;">Reply to this email if you have any questions.</p>
      </div>
    </div>
  </div>
</div>
`))

// HtmlBody renders the styled HTML report. Pure, same inputs as TextBody.
func HtmlBody(log store.DailyLog, child store.Child, settings store.Settings, aiSummary string, holidays []store.Holiday) (string, error) {
	sections := []htmlSection{}

	if len(log.Activities) > 0 {
		items := make([]htmlItem, 0, len(log.Activities))
		for _, a := range log.Activities {
			items = append(items, htmlItem{Time: a.Time, Title: a.Category, Detail: a.Description})
		}
		sections = append(sections, htmlSection{Title: "Activities & Learning", Items: items})
	}
	if len(log.Meals) > 0 || len(log.Bottles) > 0 {
		items := make([]htmlItem, 0, len(log.Meals)+len(log.Bottles))
		for _, m := range log.Meals {
			items = append(items, htmlItem{Time: m.Time, Title: m.Type, Detail: fmt.Sprintf("%s (%s)", m.Items, m.Amount)})
		}
		for _, b := range log.Bottles {
			items = append(items, htmlItem{Time: b.Time, Title: b.Type, Detail: fmt.Sprintf("Bottle (%s)", b.Amount)})
		}
		sections = append(sections, htmlSection{Title: "Nutrition", Items: items})
	}
	if len(log.Naps) > 0 {
		items := make([]htmlItem, 0, len(log.Naps))
		for _, n := range log.Naps {
			items = append(items, htmlItem{Time: n.StartTime, Title: "Nap", Detail: string(n.Quality)})
		}
		sections = append(sections, htmlSection{Title: "Rest", Items: items})
	}
	if len(log.Medications) > 0 {
		items := make([]htmlItem, 0, len(log.Medications))
		for _, m := range log.Medications {
			items = append(items, htmlItem{Time: m.Time, Title: m.Name, Detail: m.Dosage})
		}
		sections = append(sections, htmlSection{Title: "Medications", Items: items})
	}

	signature := template.HTMLEscapeString(settings.EmailSignature)
	signature = strings.Replace(signature, "\n", "<br>", -1)

	data := htmlReport{
		DaycareName:    settings.DaycareName,
		ChildFirstName: child.FirstName,
		Date:           log.Date,
		ArrivalTime:    log.ArrivalTime,
		DepartureTime:  log.DepartureTime,
		Mood:           log.OverallMood,
		Narrative:      narrative(log, aiSummary),
		Holidays:       holidays,
		Sections:       sections,
		Diapers:        log.Diapers,
		SuppliesNeeded: log.SuppliesNeeded,
		Signature:      template.HTML(signature),
	}

	buf := bytes.Buffer{}
	if err := htmlReportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
