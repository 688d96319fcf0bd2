package config

import "fmt"

// Minimal returns a sensible default intake-form configuration when the
// caller only supplies the high-level details. The closing Authorisation
// section (printed name, date, signature) is a fixed convention and is
// always present.
func Minimal(logo, company, title, output string) *Document {
	if title == "" {
		title = "Document"
	}
	if output == "" {
		output = fmt.Sprintf("output/%s.pdf", Slug(title))
	}
	footer := ""
	if company != "" {
		footer = company + "  |  Confidential"
	}
	return &Document{
		Logo:             logo,
		CompanyName:      company,
		DocumentTitle:    title,
		DocumentSubtitle: "Please complete all sections. Fields marked * are required.",
		FooterText:       footer,
		PageSize:         "a4",
		Output:           output,
		Sections: []Section{
			{
				Title:   "Contact Information",
				Columns: 2,
				Fields: []Field{
					{Type: "text", Label: "First Name", Name: "first_name", Required: true},
					{Type: "text", Label: "Last Name", Name: "last_name", Required: true},
					{Type: "email", Label: "Email Address", Name: "email", Required: true},
					{Type: "phone", Label: "Phone Number", Name: "phone"},
					{Type: "date", Label: "Date of Birth", Name: "dob"},
					{Type: "text", Label: "Job Title", Name: "job_title"},
				},
			},
			{
				Title:   "Address",
				Columns: 1,
				Fields: []Field{
					{Type: "text", Label: "Street Address", Name: "address", Required: true},
					{Type: "text", Label: "City / Town", Name: "city"},
					{Type: "text", Label: "Postcode", Name: "postcode"},
				},
			},
			{
				Title:   "Additional Information",
				Columns: 1,
				Fields: []Field{
					{Type: "textarea", Label: "Notes / Comments", Name: "notes"},
					{Type: "checkbox", Label: "I agree to the Terms & Conditions", Name: "terms_agreed", Required: true},
				},
			},
			{
				Title:   "Authorisation",
				Columns: 2,
				Fields: []Field{
					{Type: "text", Label: "Printed Name", Name: "printed_name", Required: true},
					{Type: "date", Label: "Date", Name: "auth_date", Required: true},
					{Type: "signature", Label: "Signature", Name: "signature", Required: true, FullWidth: true},
				},
			},
		},
	}
}
