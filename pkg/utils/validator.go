package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	err := validate.RegisterValidation("user_role", validateUserRole)
	if err != nil {
		return
	}
	err = validate.RegisterValidation("incident_type", validateIncidentType)
	if err != nil {
		return
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateUserRole(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	validRoles := []string{"resident", "tanod", "admin"}

	for _, validRole := range validRoles {
		if role == validRole {
			return true
		}
	}
	return false
}

func validateIncidentType(fl validator.FieldLevel) bool {
	incidentType := fl.Field().String()
	validTypes := []string{"Fire", "Theft", "Accident", "Flood", "Noise Complaint", "Vandalism", "Medical Emergency", "Other"}

	for _, validType := range validTypes {
		if incidentType == validType {
			return true
		}
	}
	return false
}
