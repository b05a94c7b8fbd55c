package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type EmployerType string

const (
	EmployerTypeCompany       EmployerType = "company"
	EmployerTypeContractor    EmployerType = "contractor"
	EmployerTypeIndividual    EmployerType = "individual"
	EmployerTypeStartup       EmployerType = "startup"
	EmployerTypeSmallBusiness EmployerType = "small_business"
	EmployerTypeOther         EmployerType = "other"
)

func (t EmployerType) Valid() bool {
	switch t {
	case EmployerTypeCompany, EmployerTypeContractor, EmployerTypeIndividual,
		EmployerTypeStartup, EmployerTypeSmallBusiness, EmployerTypeOther:
		return true
	}
	return false
}

type CompanySize string

const (
	CompanySizeIndividual CompanySize = "individual"
	CompanySize2To10      CompanySize = "2-10"
	CompanySize11To50     CompanySize = "11-50"
	CompanySize51To200    CompanySize = "51-200"
	CompanySize201To500   CompanySize = "201-500"
	CompanySize500Plus    CompanySize = "500+"
)

func (s CompanySize) Valid() bool {
	switch s {
	case CompanySizeIndividual, CompanySize2To10, CompanySize11To50,
		CompanySize51To200, CompanySize201To500, CompanySize500Plus:
		return true
	}
	return false
}

// DocumentStatus tracks review of uploaded KYC documents.
type DocumentStatus string

const (
	DocumentsPending  DocumentStatus = "pending"
	DocumentsVerified DocumentStatus = "verified"
	DocumentsRejected DocumentStatus = "rejected"
)

type Address struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Pincode string `json:"pincode" bson:"pincode"`
}

type ContactPerson struct {
	Name        string `json:"name" bson:"name"`
	Designation string `json:"designation,omitempty" bson:"designation,omitempty"`
	Phone       string `json:"phone" bson:"phone"`
}

type EmployerDocuments struct {
	GST           string         `json:"gst,omitempty" bson:"gst,omitempty"`
	PAN           string         `json:"pan,omitempty" bson:"pan,omitempty"`
	Incorporation string         `json:"incorporation,omitempty" bson:"incorporation,omitempty"`
	Aadhaar       string         `json:"aadhaar,omitempty" bson:"aadhaar,omitempty"`
	Status        DocumentStatus `json:"status" bson:"status"`
}

type Subscription struct {
	Plan              string     `json:"plan" bson:"plan"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty" bson:"expires_at,omitempty"`
	JobPostsRemaining int        `json:"jobPostsRemaining" bson:"job_posts_remaining"`
}

// EmployerProfile is the company data attached to an employer account.
type EmployerProfile struct {
	CompanyName   string            `json:"companyName" bson:"company_name"`
	EmployerType  EmployerType      `json:"employerType" bson:"employer_type"`
	CompanyType   string            `json:"companyType,omitempty" bson:"company_type,omitempty"`
	Industry      string            `json:"industry" bson:"industry"`
	CompanySize   CompanySize       `json:"companySize" bson:"company_size"`
	Website       string            `json:"website,omitempty" bson:"website,omitempty"`
	Description   string            `json:"description,omitempty" bson:"description,omitempty"`
	Logo          string            `json:"logo,omitempty" bson:"logo,omitempty"`
	Address       Address           `json:"address" bson:"address"`
	ContactPerson ContactPerson     `json:"contactPerson" bson:"contact_person"`
	Documents     EmployerDocuments `json:"documents" bson:"documents"`
	Subscription  Subscription      `json:"subscription" bson:"subscription"`
}

// NewEmployerProfile returns the profile a fresh signup starts with.
func NewEmployerProfile(companyName, contactName, phone string) *EmployerProfile {
	return &EmployerProfile{
		CompanyName:  companyName,
		EmployerType: EmployerTypeCompany,
		CompanyType:  "Private Limited",
		Industry:     "Other",
		CompanySize:  CompanySize2To10,
		ContactPerson: ContactPerson{
			Name:        contactName,
			Designation: "Manager",
			Phone:       phone,
		},
		Documents:    EmployerDocuments{Status: DocumentsPending},
		Subscription: Subscription{Plan: "free", JobPostsRemaining: 3},
	}
}

// WorkerProfile is the data attached to a worker account. Workers are created
// by the worker-facing app; this service only reads them.
type WorkerProfile struct {
	FirstName  string         `json:"firstName" bson:"first_name"`
	LastName   string         `json:"lastName" bson:"last_name"`
	Gender     string         `json:"gender,omitempty" bson:"gender,omitempty"`
	Address    Address        `json:"address" bson:"address"`
	Skills     []string       `json:"skills" bson:"skills"`
	Experience int            `json:"experience" bson:"experience"`
	Education  string         `json:"education,omitempty" bson:"education,omitempty"`
	Languages  []string       `json:"languages,omitempty" bson:"languages,omitempty"`
	Documents  DocumentStatus `json:"documentStatus" bson:"document_status"`
}

// Profile holds exactly one of the role-specific profiles.
type Profile struct {
	Employer *EmployerProfile `json:"employer,omitempty" bson:"employer,omitempty"`
	Worker   *WorkerProfile   `json:"worker,omitempty" bson:"worker,omitempty"`
}

// For returns the profile matching role, or nil when it is not set.
func (p Profile) For(role Role) any {
	switch role {
	case RoleEmployer:
		if p.Employer != nil {
			return p.Employer
		}
	case RoleWorker:
		if p.Worker != nil {
			return p.Worker
		}
	}
	return nil
}

// Value stores the profile as a JSON document column.
func (p Profile) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads a JSON document column.
func (p *Profile) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = Profile{}
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	}
	return fmt.Errorf("profile: unsupported column type %T", src)
}
