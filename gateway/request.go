package gateway

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Role is a requester role recognised by the gateway. The gateway decides,
// per jurisdiction, which roles may request reports.
type Role string

// The fixed list of recognised requester roles
const (
	RolePhysician                    Role = "Physician"
	RolePhysicianAssistant           Role = "PhysicianAssistant"
	RoleNursePractitioner            Role = "NursePractitioner"
	RoleDentist                      Role = "Dentist"
	RoleOptometrist                  Role = "Optometrist"
	RolePodiatrist                   Role = "Podiatrist"
	RoleMedicalResident              Role = "MedicalResident"
	RolePharmacist                   Role = "Pharmacist"
	RolePharmacistIntern             Role = "PharmacistIntern"
	RolePrescriberDelegateLicensed   Role = "PrescriberDelegateLicensed"
	RolePrescriberDelegateUnlicensed Role = "PrescriberDelegateUnlicensed"
	RolePharmacistDelegateLicensed   Role = "PharmacistDelegateLicensed"
	RolePharmacistDelegateUnlicensed Role = "PharmacistDelegateUnlicensed"
)

var roles = [...]Role{
	RolePhysician,
	RolePhysicianAssistant,
	RoleNursePractitioner,
	RoleDentist,
	RoleOptometrist,
	RolePodiatrist,
	RoleMedicalResident,
	RolePharmacist,
	RolePharmacistIntern,
	RolePrescriberDelegateLicensed,
	RolePrescriberDelegateUnlicensed,
	RolePharmacistDelegateLicensed,
	RolePharmacistDelegateUnlicensed,
}

// LookupRole matches a string against the recognised requester roles,
// ignoring case. It returns UnknownEndpoint-style failure as ok=false.
func LookupRole(s string) (Role, bool) {
	for _, r := range roles {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// Provider is the clinician or delegate making the request. At least one of
// DEA number, NPI number or professional licence (number and type) must be
// present for the gateway to accept the request; the gateway enforces this,
// not the client.
type Provider struct {
	FirstName     string
	LastName      string
	DEANumber     string
	NPINumber     string
	LicenseNumber string
	LicenseType   string
	Role          Role
	LocationName  string // name of the requesting location, e.g. practice or pharmacy
	StateCode     string // two-letter state code of the requesting location
}

// Patient is the subject of the lookup. DateOfBirth uses the fixed format
// "YYYY-MM-DD". The gateway requires either a zip code or a phone number to
// identify a patient; a request with neither is rejected remotely and that
// rejection is surfaced as an Outcome.
type Patient struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	SexCode     string // optional, e.g. "F", "M"
	Street      string
	Street2     string
	City        string
	StateCode   string
	ZipCode     string
	Phone       string // hyphens are stripped before transmission
}

// The gateway schema rejects empty-valued optional elements, so every
// optional field below is a pointer or omitempty: an element is emitted only
// when its source field is non-empty, fixed at construction time.

type patientRequest struct {
	XMLName             xml.Name            `xml:"PatientRequest"`
	Namespace           string              `xml:"xmlns,attr"`
	Requester           requester           `xml:"Requester"`
	PrescriptionRequest prescriptionRequest `xml:"PrescriptionRequest"`
}

type reportRequest struct {
	XMLName   xml.Name  `xml:"ReportRequest"`
	Namespace string    `xml:"xmlns,attr"`
	Requester requester `xml:"Requester"`
}

type requester struct {
	Provider providerElement `xml:"Provider"`
	Location locationElement `xml:"Location"`
}

type providerElement struct {
	Role      string          `xml:"Role"`
	FirstName string          `xml:"FirstName"`
	LastName  string          `xml:"LastName"`
	DEANumber string          `xml:"DEANumber,omitempty"`
	NPINumber string          `xml:"NPINumber,omitempty"`
	License   *licenseElement `xml:"ProfessionalLicenseNumber,omitempty"`
}

type licenseElement struct {
	Type  string `xml:"Type"`
	Value string `xml:"Value"`
}

type locationElement struct {
	Name      string `xml:"Name"`
	DEANumber string `xml:"DEANumber,omitempty"`
	StateCode string `xml:"StateCode,omitempty"`
}

type prescriptionRequest struct {
	Patient patientElement `xml:"Patient"`
}

type patientElement struct {
	Name      nameElement     `xml:"Name"`
	Birthdate string          `xml:"Birthdate"`
	SexCode   string          `xml:"SexCode,omitempty"`
	Address   *addressElement `xml:"Address,omitempty"`
	Phone     string          `xml:"Phone,omitempty"`
}

type nameElement struct {
	First string `xml:"First"`
	Last  string `xml:"Last"`
}

// addressElement keeps StateCode immediately after City and before ZipCode;
// the gateway is sensitive to element order.
type addressElement struct {
	Street    []string `xml:"Street,omitempty"`
	City      string   `xml:"City,omitempty"`
	StateCode string   `xml:"StateCode,omitempty"`
	ZipCode   string   `xml:"ZipCode,omitempty"`
}

// BuildPatientRequest returns the XML document submitted to the patient-stage
// endpoint. It is deterministic: identical inputs yield byte-identical text.
func BuildPatientRequest(provider Provider, patient Patient) (string, error) {
	doc := patientRequest{
		Namespace: Namespace,
		Requester: newRequester(provider),
		PrescriptionRequest: prescriptionRequest{
			Patient: patientElement{
				Name: nameElement{
					First: patient.FirstName,
					Last:  patient.LastName,
				},
				Birthdate: patient.DateOfBirth,
				SexCode:   patient.SexCode,
				Address:   newAddress(patient),
				Phone:     strings.ReplaceAll(patient.Phone, "-", ""),
			},
		},
	}
	return marshalRequest(doc)
}

// BuildReportRequest returns the XML document submitted to a report link. It
// carries the requester blocks only: the report is fetched by link token, not
// by patient identity.
func BuildReportRequest(provider Provider) (string, error) {
	doc := reportRequest{
		Namespace: Namespace,
		Requester: newRequester(provider),
	}
	return marshalRequest(doc)
}

func newRequester(provider Provider) requester {
	p := providerElement{
		Role:      string(provider.Role),
		FirstName: provider.FirstName,
		LastName:  provider.LastName,
		DEANumber: provider.DEANumber,
		NPINumber: provider.NPINumber,
	}
	if provider.LicenseNumber != "" {
		p.License = &licenseElement{
			Type:  provider.LicenseType,
			Value: provider.LicenseNumber,
		}
	}
	return requester{
		Provider: p,
		Location: locationElement{
			Name:      provider.LocationName,
			DEANumber: provider.DEANumber,
			StateCode: provider.StateCode,
		},
	}
}

func newAddress(patient Patient) *addressElement {
	var streets []string
	if patient.Street != "" {
		streets = append(streets, patient.Street)
	}
	if patient.Street2 != "" {
		streets = append(streets, patient.Street2)
	}
	if len(streets) == 0 && patient.City == "" && patient.StateCode == "" && patient.ZipCode == "" {
		return nil
	}
	return &addressElement{
		Street:    streets,
		City:      patient.City,
		StateCode: patient.StateCode,
		ZipCode:   patient.ZipCode,
	}
}

func marshalRequest(doc interface{}) (string, error) {
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("gateway: could not build request: %w", err)
	}
	return xml.Header + string(data), nil
}
