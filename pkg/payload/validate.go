/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package payload

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/trustbloc/epf/pkg/restapi/models"
)

const (
	fullShare      = 100
	shareTolerance = 1e-9

	maritalStatusMarried = "married"
	maritalStatusWidow   = "widow"
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern     = regexp.MustCompile(`^[0-9]{10}$`)
	twelveDigits      = regexp.MustCompile(`^[0-9]{12}$`)
	ifscPattern       = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	passportPattern   = regexp.MustCompile(`^[A-Z0-9\s]{6,15}$`)
	employeeNoPattern = regexp.MustCompile(`^[0-9]{8}$`)
)

// ValidationError lists the problems found in each form, keyed by field.
// Form 2 keys are prefixed so they never collide with Form 11 keys.
type ValidationError struct {
	Form11 map[string]string `json:"form_11,omitempty"`
	Form2  map[string]string `json:"form_2,omitempty"`
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Form11)+len(e.Form2))

	for field := range e.Form11 {
		fields = append(fields, "form_11."+field)
	}

	for field := range e.Form2 {
		fields = append(fields, "form_2."+field)
	}

	sort.Strings(fields)

	return fmt.Sprintf("forms are incomplete or invalid: %s", strings.Join(fields, ", "))
}

// Validate checks both forms and the attachments against the submission rules.
// It returns nil or a *ValidationError.
func Validate(form11 models.Form11Data, form2 models.Form2Data, docs models.DocumentUploads) error {
	form11Errors := validateForm11(&form11)
	form2Errors := validateForm2(&form2, &form11, docs)

	if len(form11Errors) == 0 && len(form2Errors) == 0 {
		return nil
	}

	return &ValidationError{Form11: form11Errors, Form2: form2Errors}
}

type fieldErrors map[string]string

func (f fieldErrors) require(field, value, message string) {
	if value == "" {
		f[field] = message
	}
}

// match records requiredMessage for a blank value and formatMessage for a value not matching pattern.
func (f fieldErrors) match(field, value string, pattern *regexp.Regexp, requiredMessage, formatMessage string) {
	switch {
	case value == "":
		f[field] = requiredMessage
	case !pattern.MatchString(value):
		f[field] = formatMessage
	}
}

func validateForm11(form *models.Form11Data) fieldErrors {
	errs := fieldErrors{}

	errs.require("member_name", form.PersonalDetails.MemberName, "Name is required")
	errs.require("parent_spouse_name", form.PersonalDetails.ParentSpouseName, "This field is required")
	errs.require("date_of_birth", form.PersonalDetails.DateOfBirth, "Date of birth is required")

	errs.match("email", form.ContactDetails.Email, emailPattern, "Email is required", "Invalid email format")
	errs.match("mobile_no", form.ContactDetails.MobileNo, mobilePattern,
		"Mobile number is required", "Invalid mobile number (10 digits required)")

	previous := models.PreviousEmploymentDetails{}
	if form.PreviousEmployment != nil {
		previous = *form.PreviousEmployment
	}

	if form.WasEPFMember || form.WasEPSMember {
		errs.match("uan", previous.UAN, twelveDigits, "UAN is required", "UAN must be a 12-digit number")
		errs.require("previous_pf_account_no", previous.PreviousPFAccountNo, "Previous PF Account No is required")
		errs.require("exit_date", previous.ExitDate, "Exit date is required")
	} else if previous.UAN != "" && !twelveDigits.MatchString(previous.UAN) {
		errs["uan"] = "UAN must be a 12-digit number"
	}

	if worker := form.InternationalWorker; worker.IsInternationalWorker {
		errs.require("country_of_origin", worker.CountryOfOrigin, "Country is required")
		errs.match("passport_no", worker.PassportNo, passportPattern,
			"Passport number is required", "Passport number length invalid, please edit")
		errs.require("passport_validity_from", worker.PassportValidityFrom, "Start date is required")
		errs.require("passport_validity_to", worker.PassportValidityTo, "End date is required")
	}

	errs.require("bank_account_no", form.KYCDetails.BankAccountNo, "Bank account is required")
	errs.match("ifsc_code", form.KYCDetails.IFSCCode, ifscPattern, "IFSC code is required", "Invalid IFSC format")
	errs.match("aadhaar_no", form.KYCDetails.AadhaarNo, twelveDigits, "Aadhaar is required", "Aadhaar must be 12 digits")

	errs.require("place", form.Declaration.Place, "Place is required")
	errs.require("date", form.Declaration.Date, "Date is required")

	if message := signatureProblem(form.Declaration.SignatureData); message != "" {
		errs["signature_data"] = message
	}

	return errs
}

func validateForm2(form *models.Form2Data, form11 *models.Form11Data, docs models.DocumentUploads) fieldErrors {
	errs := fieldErrors{}

	errs.require("form2_member_name", form.MemberName, "Name is required")
	errs.require("form2_father_husband_name", form.FatherHusbandName, "This field is required")
	errs.require("form2_date_of_birth", form.DateOfBirth, "Date of birth is required")
	errs.require("form2_mobile_no", form.MobileNo, "Mobile number is required")
	errs.require("form2_permanent_address", form.PermanentAddress, "Address is required")

	if form.EmployeeNo != "" && !employeeNoPattern.MatchString(form.EmployeeNo) {
		errs["form2_employee_no"] = "Employee number must be a 8-digit number"
	}

	validateNominees(errs, form.EPFNominees)

	if form.MaritalStatus == maritalStatusMarried || form.MaritalStatus == maritalStatusWidow {
		validateFamily(errs, form.EPSFamilyMembers)
	} else {
		nominee := models.PensionNominee{}
		if form.PensionNominee != nil {
			nominee = *form.PensionNominee
		}

		errs.require("pension_nominee_name", nominee.Name, "Nominee name required")
		errs.require("pension_nominee_rel", nominee.Relationship, "Relationship required")
		errs.require("pension_nominee_dob", nominee.DateOfBirth, "Date of birth required")
		errs.require("pension_nominee_address", nominee.Address, "Address required")
	}

	errs.require("form2_place", form.Declaration.Place, "Place is required")
	errs.require("form2_date", form.Declaration.Date, "Date is required")

	if form.Declaration.SameSignature {
		if signatureProblem(form11.Declaration.SignatureData) != "" {
			errs["form2_signature"] = "Form 11 signature is invalid - please re-sign Form 11"
		}
	} else if message := signatureProblem(form.Declaration.SignatureData); message != "" {
		errs["form2_signature"] = message
	}

	if docs.Aadhaar == nil {
		errs["doc_aadhaar"] = "Aadhaar upload is required"
	}

	if docs.PAN == nil {
		errs["doc_pan"] = "PAN card upload is required"
	}

	if docs.Passbook == nil {
		errs["doc_passbook"] = "Passbook/cheque upload is required"
	}

	return errs
}

// validateNominees checks the total share first so that a missing share on the first nominee
// overrides the total message.
func validateNominees(errs fieldErrors, nominees []models.EPFNominee) {
	total := 0.0

	for _, n := range nominees {
		total += n.SharePercentage
	}

	if math.Abs(total-fullShare) > shareTolerance {
		errs["nominee_share_0"] = "Total share must equal 100%"
	}

	for i, n := range nominees {
		errs.require(fmt.Sprintf("nominee_name_%d", i), n.Name, "Name required")
		errs.require(fmt.Sprintf("nominee_rel_%d", i), n.Relationship, "Relationship required")

		if n.SharePercentage <= 0 {
			errs[fmt.Sprintf("nominee_share_%d", i)] = "Share required"
		}
	}
}

func validateFamily(errs fieldErrors, members []models.EPSFamilyMember) {
	if len(members) == 0 {
		errs["family_name_0"] = "At least one family member is required"

		return
	}

	for i, m := range members {
		errs.require(fmt.Sprintf("family_name_%d", i), m.Name, "Name required")
		errs.require(fmt.Sprintf("family_rel_%d", i), m.Relationship, "Relationship required")
		errs.require(fmt.Sprintf("family_dob_%d", i), m.DateOfBirth, "DOB required")
	}
}

func signatureProblem(sig *models.SignatureData) string {
	err := checkSignature(sig)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrResignRequired):
		return "Please re-sign - signature data is incomplete"
	default:
		return "Signature is required"
	}
}
