// internal/models/profile.go
package models

// Profile is the flat attribute map known about a user or company. Profile
// values serve as field-mapping candidates and lose to submission slots on
// name collision.
type Profile map[string]interface{}

// ProfileDescriptions gives each well-known profile attribute a short
// semantic description used by the field mapper when scoring labels.
var ProfileDescriptions = map[string]string{
	"name":           "company or organization name",
	"address":        "street address of the company",
	"city":           "city where the company is located",
	"postal_code":    "postal or zip code",
	"country":        "country of registration",
	"email":          "contact email address",
	"phone":          "contact phone number",
	"iban":           "bank account IBAN",
	"business_type":  "type or sector of the business",
	"employee_count": "number of employees",
}

// SlotDescriptions does the same for well-known slot names.
var SlotDescriptions = map[string]string{
	"kWh":     "total energy consumption in kilowatt hours",
	"city":    "city or location of the site",
	"tCO2e":   "total greenhouse gas emissions in tonnes CO2 equivalent",
	"purpose": "purpose of the data processing activity",
	"company": "company or organization name",
}
