package services

// TemplateField describes one column in a product import template.
type TemplateField struct {
	Key            string   // internal name, matches PocketBase field name
	Label          string   // human-readable header shown in the template
	Description    string   // shown on the Instructions sheet
	FormatRule     string   // e.g. "YYYY-MM-DD", ""
	ExampleValue   string   // shown on the Instructions sheet
	AlwaysRequired bool     // true = row rejected when blank
	Synonyms       []string // alternate headers accepted when mapping columns
}

// ProductTemplateFields returns the ordered list of columns accepted by the
// product import.
func ProductTemplateFields() []TemplateField {
	fields := []TemplateField{
		{Key: "name", Label: "Product Name", Description: "Name of the fabricated item", ExampleValue: "Mezzanine staircase", AlwaysRequired: true, Synonyms: []string{"product", "item", "item name"}},
		{Key: "drawing_number", Label: "Drawing Number", Description: "Workshop drawing reference", ExampleValue: "SFL-DRG-1042", Synonyms: []string{"dwg", "dwg no", "drawing ref", "drawing no"}},
		{Key: "status", Label: "Status", Description: "One of: pending, in_progress, complete", ExampleValue: "pending", Synonyms: []string{"product status"}},
	}

	deptLabels := map[string]string{
		"design":       "Design",
		"ops":          "Ops",
		"production":   "Production",
		"installation": "Installation",
	}
	for _, dept := range Departments {
		label := deptLabels[dept]
		fields = append(fields,
			TemplateField{
				Key:          dept + "_hours",
				Label:        label + " Hours",
				Description:  "Estimated " + label + " effort in hours",
				FormatRule:   "Number",
				ExampleValue: "120",
				Synonyms:     []string{label + " hrs", label + " estimate"},
			},
			TemplateField{
				Key:          dept + "_start",
				Label:        label + " Start",
				Description:  "Planned " + label + " start date",
				FormatRule:   "YYYY-MM-DD",
				ExampleValue: "2026-01-05",
				Synonyms:     []string{label + " start date"},
			},
			TemplateField{
				Key:          dept + "_end",
				Label:        label + " End",
				Description:  "Target " + label + " end date",
				FormatRule:   "YYYY-MM-DD",
				ExampleValue: "2026-02-02",
				Synonyms:     []string{label + " end date", label + " target"},
			},
		)
	}
	return fields
}
