package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Text/HTML may be given directly, or a Template name plus Data to render in
// the worker.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "reset_password" or "welcome"
	Data     map[string]any `json:"data,omitempty"`
}
