package notification

import (
	"bytes"
	"html/template"
)

const signature = `<p>Best regards,<br>TCW1 Team</p>`

var templates = template.Must(template.New("mail").Parse(`
{{define "welcome"}}
<h1>Welcome to TCW1!</h1>
<p>Hi {{.FirstName}},</p>
<p>Your account has been successfully created. You can now log in and start using TCW1 for your cryptocurrency payments.</p>
<p><a href="{{.BaseURL}}/login">Go to Login</a></p>
<p>If you have any questions, please reply to this email.</p>
{{end}}

{{define "login"}}
<h2>New Login Detected</h2>
<p>Your TCW1 account was just accessed from:</p>
<ul>
<li><strong>IP Address:</strong> {{.IP}}</li>
<li><strong>Device:</strong> {{.Device}}</li>
<li><strong>Time:</strong> {{.Time}}</li>
</ul>
<p>If this wasn't you, please change your password immediately.</p>
{{end}}

{{define "approval"}}
<h2>Approve New Login</h2>
<p>Someone is trying to sign in to your TCW1 account from {{.Device}} ({{.IP}}).</p>
<p><a href="{{.BaseURL}}/login-approval/{{.Token}}">Review this login</a></p>
<p>The request expires in 24 hours.</p>
{{end}}

{{define "password_changed"}}
<h2>Password Changed</h2>
<p>Your TCW1 account password has been successfully changed.</p>
<p>If you didn't make this change, please contact us immediately.</p>
{{end}}

{{define "2fa_enabled"}}
<h2>Two-Factor Authentication Enabled</h2>
<p>Two-factor authentication has been successfully enabled on your TCW1 account.</p>
<p>From now on, you'll need to provide a code from your authenticator app when logging in.</p>
<p>If you didn't enable this, please change your password immediately.</p>
{{end}}

{{define "2fa_disabled"}}
<h2>Two-Factor Authentication Disabled</h2>
<p>Two-factor authentication has been disabled on your TCW1 account.</p>
<p>You will no longer need an authenticator code when logging in.</p>
<p>If you didn't do this, please change your password immediately.</p>
{{end}}
`))

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	buf.WriteString(signature)
	return buf.String(), nil
}
