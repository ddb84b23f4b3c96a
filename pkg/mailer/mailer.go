package mailer

import "time"

// Mailer is the best-effort email collaborator. Every caller catches and logs
// send failures; none of them surface a failed send to the API caller.
type Mailer interface {
	SendReminder(to string, countyName string, taskTitle string, deadline time.Time) error
	SendTaskAssignment(to string, countyName string, taskTitle string, deadline time.Time, assignedBy string) error
	SendFormUpload(to string, countyName string, taskTitle string, formName string) error
}
