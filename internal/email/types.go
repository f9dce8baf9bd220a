package email

// Email is a single outgoing message.
type Email struct {
	From     string
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData is passed to mail templates.
type TemplateData map[string]interface{}

// ActivationMail carries what the activation template needs.
type ActivationMail struct {
	To   string
	Name string
	Code string
}
