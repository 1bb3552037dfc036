/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	dateLayout = "2006-01-02"

	defaultSharePercentage = 100
)

// NewForm11Data returns an empty Form 11 whose declaration is dated today.
func NewForm11Data(today time.Time) Form11Data {
	return Form11Data{
		PersonalDetails: PersonalDetails{
			ParentSpouseType: "Father",
			Gender:           "male",
			MaritalStatus:    "unmarried",
		},
		PreviousEmployment: &PreviousEmploymentDetails{},
		Declaration: DeclarationDetails{
			Date: today.Format(dateLayout),
		},
	}
}

// NewForm2Data returns an empty Form 2 with a single blank nominee holding the full share,
// dated today.
func NewForm2Data(today time.Time) Form2Data {
	return Form2Data{
		Gender:           "male",
		MaritalStatus:    "unmarried",
		EPFNominees:      []EPFNominee{NewEPFNominee()},
		EPSFamilyMembers: []EPSFamilyMember{},
		Declaration: DeclarationDetails{
			Date: today.Format(dateLayout),
		},
	}
}

// NewEPFNominee returns a blank nominee with a fresh ID.
func NewEPFNominee() EPFNominee {
	return EPFNominee{
		ID:              uuid.NewString(),
		SharePercentage: defaultSharePercentage,
	}
}

// NewEPSFamilyMember returns a blank family member with a fresh ID.
func NewEPSFamilyMember() EPSFamilyMember {
	return EPSFamilyMember{ID: uuid.NewString()}
}

// Normalize fills in fields that drafts saved by older versions may lack.
// Missing other_relationship values already decode as empty strings.
func (f *Form2Data) Normalize() {
	for i := range f.EPFNominees {
		if f.EPFNominees[i].ID == "" {
			f.EPFNominees[i].ID = uuid.NewString()
		}
	}

	if f.EPSFamilyMembers == nil {
		f.EPSFamilyMembers = []EPSFamilyMember{}
	}

	for i := range f.EPSFamilyMembers {
		if f.EPSFamilyMembers[i].ID == "" {
			f.EPSFamilyMembers[i].ID = uuid.NewString()
		}
	}
}

// ApplySameSignature makes a Form 2 that reuses the Form 11 signature carry a copy of it.
func (f *Form2Data) ApplySameSignature(form11 *Form11Data) {
	if !f.Declaration.SameSignature || form11.Declaration.SignatureData == nil {
		return
	}

	signature := *form11.Declaration.SignatureData

	if signature.BBox != nil {
		bbox := *signature.BBox
		signature.BBox = &bbox
	}

	f.Declaration.SignatureData = &signature
}

// SyncFromForm11 copies the member details Form 2 shares with Form 11 and marks Form 2 as signed
// with the Form 11 signature.
func (f *Form2Data) SyncFromForm11(form11 *Form11Data) {
	f.MemberName = form11.PersonalDetails.MemberName
	f.FatherHusbandName = form11.PersonalDetails.ParentSpouseName
	f.DateOfBirth = form11.PersonalDetails.DateOfBirth
	f.Gender = form11.PersonalDetails.Gender
	f.MaritalStatus = form11.PersonalDetails.MaritalStatus
	f.MobileNo = form11.ContactDetails.MobileNo

	if form11.PreviousEmployment != nil {
		f.PFAccountNo = form11.PreviousEmployment.PreviousPFAccountNo
	}

	f.Declaration.SameSignature = true
	f.ApplySameSignature(form11)
}
