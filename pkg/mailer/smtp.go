package mailer

import (
	"fmt"
	"time"

	gomail "gopkg.in/gomail.v2"
)

const deadlineLayout = "Jan 2, 2006 3:04 PM MST"

type smtpMailer struct {
	dialer *gomail.Dialer
	sender string
}

func NewSMTPMailer(host string, port int, username string, password string, sender string) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		sender: sender,
	}
}

func (m *smtpMailer) SendReminder(to string, countyName string, taskTitle string, deadline time.Time) error {
	subject := fmt.Sprintf("%s Task Reminder", countyName)
	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Task Reminder</h2>
<p><strong>Task Name:</strong> %s</p>
<p><strong>Deadline:</strong> %s</p>
<p><strong>County:</strong> %s</p>
<p style="color: #6b7280; font-size: 14px;">This is an automated reminder from the county task portal.</p>
</div>`, taskTitle, deadline.Format(deadlineLayout), countyName)
	plain := fmt.Sprintf("Task Reminder\n\nTask Name: %s\nDeadline: %s\nCounty: %s",
		taskTitle, deadline.Format(deadlineLayout), countyName)

	return m.send(to, subject, html, plain)
}

func (m *smtpMailer) SendTaskAssignment(to string, countyName string, taskTitle string, deadline time.Time, assignedBy string) error {
	subject := fmt.Sprintf("New Task Assigned: %s", taskTitle)
	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>New Task Assigned</h2>
<p><strong>Task Name:</strong> %s</p>
<p><strong>County:</strong> %s</p>
<p><strong>Deadline:</strong> %s</p>
<p><strong>Assigned By:</strong> %s</p>
<p style="color: #6b7280; font-size: 14px;">Please log in to view task details and download required forms.</p>
</div>`, taskTitle, countyName, deadline.Format(deadlineLayout), assignedBy)
	plain := fmt.Sprintf("New Task Assigned\n\nTask Name: %s\nCounty: %s\nDeadline: %s\nAssigned By: %s",
		taskTitle, countyName, deadline.Format(deadlineLayout), assignedBy)

	return m.send(to, subject, html, plain)
}

func (m *smtpMailer) SendFormUpload(to string, countyName string, taskTitle string, formName string) error {
	subject := fmt.Sprintf("Form Available: %s", taskTitle)
	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Form Available for Download</h2>
<p><strong>Task Name:</strong> %s</p>
<p><strong>County:</strong> %s</p>
<p><strong>Form:</strong> %s</p>
<p style="color: #6b7280; font-size: 14px;">Please log in to download the form and submit your completed version.</p>
</div>`, taskTitle, countyName, formName)
	plain := fmt.Sprintf("Form Available for Download\n\nTask Name: %s\nCounty: %s\nForm: %s",
		taskTitle, countyName, formName)

	return m.send(to, subject, html, plain)
}

func (m *smtpMailer) send(to string, subject string, html string, plain string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plain)
	msg.AddAlternative("text/html", html)

	return m.dialer.DialAndSend(msg)
}
