package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"
)

var callbackEmail = template.Must(template.New("callback").Parse(`<div style="font-family: Arial, sans-serif;">
<h2>Callback requested</h2>
<p>Session {{.SessionID}} needs a call back ({{.ReasonList}}).</p>
<p>Estimated volume: {{printf "%.0f" .EstimatedCubes}} cubes</p>
{{- with .Contact}}
<p>{{.FirstName}} {{.LastName}}<br>{{.Phone}}<br>{{.Email}}</p>
{{- end}}
</div>`))

// Mailer emails callback requests to the operations inbox.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewMailer(host string, port int, username, password, from, to string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		to:     to,
	}
}

type emailView struct {
	CallbackRequest
	ReasonList string
}

func (m *Mailer) message(req CallbackRequest) (*gomail.Message, error) {
	reasons := make([]string, 0, len(req.Reasons))
	for _, r := range req.Reasons {
		reasons = append(reasons, string(r))
	}

	var body bytes.Buffer
	if err := callbackEmail.Execute(&body, emailView{CallbackRequest: req, ReasonList: strings.Join(reasons, ", ")}); err != nil {
		return nil, fmt.Errorf("render callback email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	if req.Contact != nil && req.Contact.Email != "" {
		msg.SetHeader("Reply-To", req.Contact.Email)
	}
	msg.SetHeader("Subject", fmt.Sprintf("Callback request %s", req.SessionID))
	msg.SetBody("text/html", body.String())
	return msg, nil
}

func (m *Mailer) Notify(_ context.Context, req CallbackRequest) error {
	msg, err := m.message(req)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send callback email to %s: %w", m.to, err)
	}
	return nil
}
