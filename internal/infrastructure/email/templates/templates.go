// Package templates renders the HTML bodies of outbound notification emails.
package templates

import (
	"bytes"
	"html/template"
	"log"
)

// LayoutProps configures the shared email frame.
type LayoutProps struct {
	Preheader  string
	Content    string
	FooterText string
}

type layoutData struct {
	Preheader  string
	Content    template.HTML // rendered fragment, not re-escaped
	FooterText string
}

var layoutTemplate = template.Must(template.New("layout").Parse(`
<!doctype html>
<html lang="en">
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
    <title>iKnowAG</title>
  </head>
  <body style="font-family: Helvetica, sans-serif; font-size: 16px; line-height: 1.4; background-color: #f4f5f6; margin: 0; padding: 0;">
    <span style="color: transparent; display: none; height: 0; max-height: 0; overflow: hidden; visibility: hidden;">{{.Preheader}}</span>
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" width="100%" style="background-color: #f4f5f6;">
      <tr>
        <td>&nbsp;</td>
        <td style="max-width: 600px; width: 600px; margin: 0 auto; padding-top: 24px;">
          <table role="presentation" border="0" cellpadding="0" cellspacing="0" width="100%" style="background: #ffffff; border: 1px solid #eaebed; border-radius: 16px;">
            <tr>
              <td style="padding: 24px;">
                {{.Content}}
              </td>
            </tr>
          </table>
          <div style="padding-top: 24px; text-align: center; color: #9a9ea6; font-size: 14px;">
            {{.FooterText}}
          </div>
        </td>
        <td>&nbsp;</td>
      </tr>
    </table>
  </body>
</html>`))

// RenderLayout wraps a content fragment in the shared email frame.
func RenderLayout(props LayoutProps) string {
	data := layoutData{
		Preheader:  props.Preheader,
		Content:    template.HTML(props.Content),
		FooterText: props.FooterText,
	}
	if data.FooterText == "" {
		data.FooterText = "iKnowAG — AI enablement for local media"
	}

	var buf bytes.Buffer
	if err := layoutTemplate.Execute(&buf, data); err != nil {
		log.Printf("email layout render failed: %v", err)
		return props.Content
	}
	return buf.String()
}

// ApplicationNotificationProps fills the new-application admin alert.
type ApplicationNotificationProps struct {
	CompanyName     string
	ContactName     string
	ContactEmail    string
	PartnershipType string
	Timeline        string
}

var applicationTemplate = template.Must(template.New("application").Parse(`
<h2 style="margin: 0 0 16px;">New partnership application</h2>
<p><strong>{{.CompanyName}}</strong> just applied.</p>
<table role="presentation" border="0" cellpadding="4" cellspacing="0">
  <tr><td style="color: #9a9ea6;">Contact</td><td>{{.ContactName}} &lt;{{.ContactEmail}}&gt;</td></tr>
  <tr><td style="color: #9a9ea6;">Type</td><td>{{.PartnershipType}}</td></tr>
  <tr><td style="color: #9a9ea6;">Timeline</td><td>{{.Timeline}}</td></tr>
</table>
<p>Review it in the admin dashboard.</p>`))

// RenderApplicationNotification renders the new-application alert fragment.
func RenderApplicationNotification(props ApplicationNotificationProps) string {
	var buf bytes.Buffer
	if err := applicationTemplate.Execute(&buf, props); err != nil {
		log.Printf("application email render failed: %v", err)
		return ""
	}
	return buf.String()
}

// CaptureNotificationProps fills the new-signup admin alert.
type CaptureNotificationProps struct {
	Email  string
	Name   string
	Source string
}

var captureTemplate = template.Must(template.New("capture").Parse(`
<h2 style="margin: 0 0 16px;">New email signup</h2>
<p><strong>{{.Email}}</strong>{{if .Name}} ({{.Name}}){{end}} signed up via <strong>{{.Source}}</strong>.</p>`))

// RenderCaptureNotification renders the new-signup alert fragment.
func RenderCaptureNotification(props CaptureNotificationProps) string {
	var buf bytes.Buffer
	if err := captureTemplate.Execute(&buf, props); err != nil {
		log.Printf("capture email render failed: %v", err)
		return ""
	}
	return buf.String()
}
