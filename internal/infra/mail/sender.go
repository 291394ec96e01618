package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

var digestTemplate = template.Must(template.New("digest").Parse(`
<h2>Delayed leads digest</h2>
<p>{{.Total}} lead(s) have had no contact for more than {{.Threshold}} days.</p>
<ul>
{{- range .Categories}}
  <li>{{.Label}}: {{.Count}}</li>
{{- end}}
</ul>
`))

// SendDelayDigest mails the per-category delayed counts to the sales
// manager. Called by the scan worker, never from a request path.
func (s *EmailSender) SendDelayDigest(to string, data DelayDigestData) error {
	var body bytes.Buffer
	if err := digestTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed rendering digest template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("%d delayed lead(s) need follow-up", data.Total))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed sending digest over SMTP: %w", err)
	}

	return nil
}
