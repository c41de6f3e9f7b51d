package view

// Template names known by renderer
const (
	ListCustomersTemplate = "list-customers"
	CustomerFormTemplate  = "customer-form"
)

// Directive tells dispatch layer what to do with request outcome.
// It is either render directive (template with bound data) or redirect directive.
type Directive struct {
	Template string
	Data     map[string]any
	Path     string
}

// Render builds render directive for template with bound data
func Render(template string, data map[string]any) Directive {
	if data == nil {
		data = make(map[string]any)
	}
	return Directive{Template: template, Data: data}
}

// Redirect builds redirect directive to path
func Redirect(path string) Directive {
	return Directive{Path: path}
}

// IsRedirect reports whether directive is redirect
func (d Directive) IsRedirect() bool {
	return d.Path != ""
}
