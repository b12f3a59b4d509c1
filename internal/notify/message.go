package notify

import (
	"context"
	"fmt"
	"html"
)

// Subjects of the lifecycle e-mails.
const (
	WelcomeSubject     = "Thanks for joining in!"
	CancelationSubject = "Sorry to see you go!"
)

// Address is an e-mail address with an optional display name.
type Address struct {
	Name  string
	Email string
}

// Message is a single outgoing e-mail. At least one of Text and HTML is set.
type Message struct {
	From    Address
	To      Address
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a Message to a provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// WelcomeMessage builds the plain-text greeting sent after signup.
func WelcomeMessage(from Address, email, name string) Message {
	return Message{
		From:    from,
		To:      Address{Name: name, Email: email},
		Subject: WelcomeSubject,
		Text:    fmt.Sprintf("Welcome to the app, %s!", name),
	}
}

// CancelationMessage builds the HTML goodbye sent after account deletion.
func CancelationMessage(from Address, email, name string) Message {
	return Message{
		From:    from,
		To:      Address{Name: name, Email: email},
		Subject: CancelationSubject,
		HTML:    fmt.Sprintf("<h4>Goodbye, %s! I hope to see you back sometime soon.</h4>", html.EscapeString(name)),
	}
}
