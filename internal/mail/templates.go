package mail

import (
	"bytes"
	"text/template"
)

var passwordResetBody = template.Must(template.New("reset").Parse(`Hello,

Someone asked to reset the password for your Flipyard account.
Open the link below within the next hour to choose a new password:

{{.ResetURL}}

If you did not ask for this, you can ignore this email.
`))

var inquiryBody = template.Must(template.New("inquiry").Parse(`You have a new inquiry about "{{.ListingTitle}}".

From: {{.BuyerName}} <{{.BuyerEmail}}>

{{.Message}}

Reply to this email to answer them directly.
Listing: {{.ListingURL}}
`))

type PasswordResetData struct {
	ResetURL string
}

type InquiryData struct {
	ListingTitle string
	ListingURL   string
	BuyerName    string
	BuyerEmail   string
	Message      string
}

func PasswordReset(to string, data PasswordResetData) (Message, error) {
	body, err := render(passwordResetBody, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Reset your Flipyard password", Body: body}, nil
}

// Inquiry addresses the seller and sets Reply-To to the buyer.
func Inquiry(to string, data InquiryData) (Message, error) {
	body, err := render(inquiryBody, data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		ReplyTo: data.BuyerEmail,
		Subject: "New inquiry: " + data.ListingTitle,
		Body:    body,
	}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
