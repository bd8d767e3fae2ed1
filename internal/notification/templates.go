package notification

import (
	"bytes"
	"fmt"
	"html/template"
)

var (
	resetHTML = template.Must(template.New("reset").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1>Reset Your Password</h1>
  <p>You've requested to reset your password for your PodPlanner account.</p>
  <p><a href="{{.Link}}">Reset Password</a></p>
  <p>If you didn't request this password reset, you can safely ignore this email. The link will expire in 1 hour.</p>
  <p>For your security, this password reset link can only be used once.</p>
</div>`))

	inviteHTML = template.Must(template.New("invite").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1>You're Invited to Join {{.Group}}</h1>
  <p>{{.Inviter}} has invited you to join their podcast planning group "{{.Group}}" on PodPlanner.</p>
  {{if .Code}}<p>Your Invite Code: <code>{{.Code}}</code></p>{{end}}
  <p><a href="{{.Link}}">Join Group</a></p>
  <p>This invitation will expire in 7 days.</p>
</div>`))

	activityHTML = template.Must(template.New("activity").Parse(`<h1>{{.Subject}}</h1>
<p>{{.Details}}</p>`))
)

// PasswordReset builds the reset email for link
func PasswordReset(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Reset Your PodPlanner Password",
		HTML:    render(resetHTML, struct{ Link string }{link}),
		Text: fmt.Sprintf(`Reset Your PodPlanner Password

You've requested to reset your password for your PodPlanner account.
Click the link below to set a new password:
%s

If you didn't request this password reset, you can safely ignore this email.
The link will expire in 1 hour.
For your security, this password reset link can only be used once.
`, link),
	}
}

// GroupInvitation builds an invitation email. code may be empty.
func GroupInvitation(to, group, inviter, code, link string) Message {
	text := fmt.Sprintf("You're Invited to Join %s\n\n%s has invited you to join their podcast planning group %q on PodPlanner.\n\n", group, inviter, group)
	if code != "" {
		text += fmt.Sprintf("Your Invite Code: %s\n\n", code)
	}
	text += fmt.Sprintf("Use this link to join:\n%s\n\nThis invitation will expire in 7 days.\n", link)

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Join %s on PodPlanner", group),
		HTML: render(inviteHTML, struct{ Group, Inviter, Code, Link string }{
			group, inviter, code, link,
		}),
		Text: text,
	}
}

// GroupActivity builds an activity notice for a group member
func GroupActivity(to, group string, kind ActivityKind, details string) Message {
	subject := ActivitySubject(kind, group)
	return Message{
		To:      to,
		Subject: subject,
		HTML:    render(activityHTML, struct{ Subject, Details string }{subject, details}),
		Text:    subject + "\n\n" + details + "\n",
	}
}

// ActivitySubject is the subject line used for kind
func ActivitySubject(kind ActivityKind, group string) string {
	switch kind {
	case ActivityNewEpisode:
		return "New Episode Planned - " + group
	case ActivityTopicAssigned:
		return "New Topic Assignment - " + group
	case ActivityScheduleChange:
		return "Schedule Update - " + group
	default:
		return "Group Update - " + group
	}
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}
