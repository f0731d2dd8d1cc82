package appointments

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
)

// Accepted spellings per canonical field, in precedence order.
var (
	aliasPatientName    = []string{"patientName", "patient_name", "name"}
	aliasPatientEmail   = []string{"patientEmail", "patient_email", "email"}
	aliasPatientPhone   = []string{"patientPhone", "patient_phone", "phone"}
	aliasPatientAge     = []string{"patientAge", "patient_age", "age"}
	aliasPatientGender  = []string{"patientGender", "patient_gender", "gender"}
	aliasTelegramID     = []string{"telegramId", "telegram_id"}
	aliasSpecialization = []string{"specialization", "service"}
	aliasDoctorID       = []string{"doctorId", "doctor_id"}
	aliasDoctorName     = []string{"doctor", "doctorName", "doctor_name"}
	aliasDate           = []string{"appointmentDate", "appointment_date", "date"}
	aliasTime           = []string{"appointmentTime", "appointment_time", "time"}
	aliasNotes          = []string{"notes", "message"}
)

// NormalizeCreate maps a loosely shaped booking payload onto CreateInput.
// A nested "patient_data" object, as sent by the bot, is flattened first
// with top-level keys taking precedence. An "appointment_datetime" ISO value
// overrides the separate date and time fields.
func NormalizeCreate(raw map[string]interface{}) (CreateInput, error) {
	fields := flatten(raw)

	in := CreateInput{
		PatientName:    str(fields, aliasPatientName...),
		PatientEmail:   str(fields, aliasPatientEmail...),
		PatientPhone:   str(fields, aliasPatientPhone...),
		PatientGender:  str(fields, aliasPatientGender...),
		TelegramID:     str(fields, aliasTelegramID...),
		Specialization: str(fields, aliasSpecialization...),
		DoctorName:     str(fields, aliasDoctorName...),
		Date:           str(fields, aliasDate...),
		Time:           str(fields, aliasTime...),
		Notes:          str(fields, aliasNotes...),
	}

	age, err := integer(fields, aliasPatientAge...)
	if err != nil {
		return CreateInput{}, apperr.Validation("patientAge", "must be a whole number")
	}
	in.PatientAge = int(age)

	doctorID, err := integer(fields, aliasDoctorID...)
	if err != nil {
		return CreateInput{}, apperr.Validation("doctorId", "must be a number")
	}
	if doctorID > 0 {
		in.DoctorID = &doctorID
	}

	if dt := str(fields, "appointment_datetime"); dt != "" {
		date, clock, ok := splitDateTime(dt)
		if !ok {
			return CreateInput{}, apperr.Validation("appointment_datetime", "must be an ISO date-time")
		}
		in.Date, in.Time = date, clock
	}

	in.trim()
	return in, nil
}

func flatten(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	if nested, ok := raw["patient_data"].(map[string]interface{}); ok {
		for k, v := range nested {
			out[k] = v
		}
	}
	for k, v := range raw {
		if k == "patient_data" {
			continue
		}
		out[k] = v
	}
	return out
}

func str(fields map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := fields[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return ""
}

func integer(fields map[string]interface{}, keys ...string) (int64, error) {
	s := str(fields, keys...)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// splitDateTime keeps the wall clock written in the value; a zone suffix is
// not converted.
func splitDateTime(value string) (string, string, bool) {
	sep := strings.IndexAny(value, "T ")
	if sep != 10 || len(value) < 16 {
		return "", "", false
	}
	date, clock := value[:10], value[sep+1:sep+6]
	if clock[2] != ':' {
		return "", "", false
	}
	return date, clock, true
}
