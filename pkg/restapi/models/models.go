/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package models

// PersonalDetails represents the member's personal details in Form 11.
type PersonalDetails struct {
	MemberName       string `json:"member_name"`
	ParentSpouseName string `json:"parent_spouse_name"`
	ParentSpouseType string `json:"parent_spouse_type"` // Valid values: Father, Husband
	DateOfBirth      string `json:"date_of_birth"`
	Gender           string `json:"gender"`         // Valid values: male, female, transgender
	MaritalStatus    string `json:"marital_status"` // Valid values: married, unmarried, widow, divorced
}

// ContactDetails represents the member's contact details in Form 11.
type ContactDetails struct {
	Email            string `json:"email"`
	MobileNo         string `json:"mobile_no"`
	PermanentAddress string `json:"permanent_address,omitempty"`
	TemporaryAddress string `json:"temporary_address,omitempty"`
}

// PreviousEmploymentDetails represents the member's previous PF account, if any.
type PreviousEmploymentDetails struct {
	UAN                 string `json:"uan"`
	PreviousPFAccountNo string `json:"previous_pf_account_no"`
	ExitDate            string `json:"exit_date"`
	SchemeCertificateNo string `json:"scheme_certificate_no,omitempty"`
	PPONo               string `json:"ppo_no,omitempty"`
}

// InternationalWorkerDetails represents the international worker section of Form 11.
type InternationalWorkerDetails struct {
	IsInternationalWorker bool   `json:"is_international_worker"`
	CountryOfOrigin       string `json:"country_of_origin,omitempty"`
	PassportNo            string `json:"passport_no,omitempty"`
	PassportValidityFrom  string `json:"passport_validity_from,omitempty"`
	PassportValidityTo    string `json:"passport_validity_to,omitempty"`
}

// KYCDetails represents the member's bank and identity numbers.
type KYCDetails struct {
	BankAccountNo string `json:"bank_account_no"`
	IFSCCode      string `json:"ifsc_code"`
	AadhaarNo     string `json:"aadhaar_no"`
	PANNo         string `json:"pan_no,omitempty"`
}

// SignatureBBox is the axis-aligned rectangle enclosing the ink of a signature, in drawing surface pixels.
type SignatureBBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SignatureData pairs a rendered signature (a PNG data URI) with its ink bounding box.
type SignatureData struct {
	Image string         `json:"image"`
	BBox  *SignatureBBox `json:"bbox"`
}

// DeclarationDetails represents the signed declaration that closes both forms.
type DeclarationDetails struct {
	Place         string         `json:"place"`
	Date          string         `json:"date"`
	SignatureData *SignatureData `json:"signature_data,omitempty"`
	SameSignature bool           `json:"same_signature,omitempty"`
}

// Form11Data represents a complete Form 11 (declaration) document.
type Form11Data struct {
	PersonalDetails     PersonalDetails            `json:"personal_details"`
	ContactDetails      ContactDetails             `json:"contact_details"`
	WasEPFMember        bool                       `json:"was_epf_member"`
	WasEPSMember        bool                       `json:"was_eps_member"`
	PreviousEmployment  *PreviousEmploymentDetails `json:"previous_employment,omitempty"`
	InternationalWorker InternationalWorkerDetails `json:"international_worker"`
	KYCDetails          KYCDetails                 `json:"kyc_details"`
	Declaration         DeclarationDetails         `json:"declaration"`
}

// EPFNominee represents a Part A (EPF) nominee in Form 2.
type EPFNominee struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Address              string  `json:"address"`
	Relationship         string  `json:"relationship"`
	OtherRelationship    string  `json:"other_relationship"` // Used when Relationship is "other"
	DateOfBirth          string  `json:"date_of_birth"`
	SharePercentage      float64 `json:"share_percentage"`
	IsMinor              bool    `json:"is_minor"`
	GuardianName         string  `json:"guardian_name,omitempty"`
	GuardianRelationship string  `json:"guardian_relationship,omitempty"`
	GuardianAddress      string  `json:"guardian_address,omitempty"`
}

// EPSFamilyMember represents a Part B (EPS) family member in Form 2.
type EPSFamilyMember struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Address           string `json:"address"`
	DateOfBirth       string `json:"date_of_birth"`
	Relationship      string `json:"relationship"`
	OtherRelationship string `json:"other_relationship"` // Used when Relationship is "other"
}

// PensionNominee represents the pension nominee named when there is no eligible family.
type PensionNominee struct {
	Name              string `json:"name,omitempty"`
	Address           string `json:"address,omitempty"`
	DateOfBirth       string `json:"date_of_birth,omitempty"`
	Relationship      string `json:"relationship,omitempty"`
	OtherRelationship string `json:"other_relationship"`
}

// Form2Data represents a complete Form 2 (nomination) document.
type Form2Data struct {
	MemberName        string `json:"member_name"`
	FatherHusbandName string `json:"father_husband_name"`
	DateOfBirth       string `json:"date_of_birth"`
	Gender            string `json:"gender"`
	EmployeeNo        string `json:"employee_no,omitempty"`
	PFAccountNo       string `json:"pf_account_no,omitempty"`
	MaritalStatus     string `json:"marital_status"`
	MobileNo          string `json:"mobile_no"`
	PermanentAddress  string `json:"permanent_address"`

	EPFNominees      []EPFNominee `json:"epf_nominees"`
	HasNoFamilyEPF   bool         `json:"has_no_family_epf"`
	DependentParents bool         `json:"dependent_parents"`

	EPSFamilyMembers []EPSFamilyMember `json:"eps_family_members"`
	HasNoFamilyEPS   bool              `json:"has_no_family_eps,omitempty"`

	PensionNominee *PensionNominee `json:"pension_nominee,omitempty"`

	Declaration DeclarationDetails `json:"declaration"`
}

// DocumentFile is the runtime form of an uploaded attachment.
type DocumentFile struct {
	Name    string
	Type    string
	Content []byte
	Preview string
}

// StoredDocument is the persisted form of an attachment. Base64 holds a data URI.
type StoredDocument struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Base64  string `json:"base64"`
	Preview string `json:"preview"`
}

// DocumentUploads holds the three optional attachment slots in runtime form.
type DocumentUploads struct {
	Aadhaar  *DocumentFile
	PAN      *DocumentFile
	Passbook *DocumentFile
}

// StoredDocumentUploads is the composite attachment record. Absent slots are omitted.
type StoredDocumentUploads struct {
	Aadhaar  *StoredDocument `json:"aadhaar,omitempty"`
	PAN      *StoredDocument `json:"pan,omitempty"`
	Passbook *StoredDocument `json:"passbook,omitempty"`
}

// Meta describes an exported payload.
type Meta struct {
	ExportedAt string `json:"exported_at"`
	Version    string `json:"version"`
}

// Forms bundles both form documents.
type Forms struct {
	Form11 Form11Data `json:"form_11"`
	Form2  Form2Data  `json:"form_2"`
}

// Payload is the submission document handed to the PDF rendering backend.
type Payload struct {
	Forms     Forms                  `json:"forms"`
	Documents *StoredDocumentUploads `json:"documents,omitempty"`
	Meta      Meta                   `json:"meta"`
	Password  string                 `json:"password,omitempty"`
}

// SignaturePoint is a position in on-screen pixel space.
type SignaturePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SignatureEvent is one recorded input event.
// Type is one of pointerdown, pointermove, pointerup, pointerleave, touchstart, touchmove, touchend.
type SignatureEvent struct {
	Type    string           `json:"type"`
	X       float64          `json:"x,omitempty"`
	Y       float64          `json:"y,omitempty"`
	Touches []SignaturePoint `json:"touches,omitempty"`
}

// SignatureReplayRequest carries a recorded drawing gesture to be rendered server side.
type SignatureReplayRequest struct {
	Width             int              `json:"width,omitempty"`
	Height            int              `json:"height,omitempty"`
	RenderedWidth     float64          `json:"renderedWidth,omitempty"`
	RenderedHeight    float64          `json:"renderedHeight,omitempty"`
	CrossStrokeBounds bool             `json:"crossStrokeBounds,omitempty"`
	InitialImage      string           `json:"initialImage,omitempty"`
	Events            []SignatureEvent `json:"events"`
}

// LogSpec is the body of a log specification change request.
// Spec format: ModuleName1=Level1:ModuleName2=Level2:ModuleNameN=LevelN:AllOtherModuleDefaultLevel
type LogSpec struct {
	Spec string `json:"spec"`
}
