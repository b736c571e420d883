package container

// FormSnapshot is the value of every new-bill form field, captured once at
// submit entry. Fields hold the raw strings read from the form; parsing into
// typed values happens during submit, never in the rendering surface.
type FormSnapshot struct {
	Type       string
	Name       string
	Amount     string
	Date       string
	Vat        string
	Pct        string
	Commentary string
}
