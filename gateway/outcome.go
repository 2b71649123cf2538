package gateway

import (
	"encoding/xml"
	"strings"

	"github.com/openpmp/pmpq/report"
)

// OutcomeKind discriminates the closed set of results a gateway stage can
// produce. Callers are expected to switch over every kind; there is no
// "other" case beyond Failure.
type OutcomeKind int

// The outcome taxonomy
const (
	Success                       OutcomeKind = iota // the stage produced its document
	BadRequest                                       // HTTP 400, request rejected
	Unauthorized                                     // HTTP 401, credentials or certificate rejected
	NotFound                                         // HTTP 404, endpoint or report link unknown
	InternalServerError                              // HTTP 500
	CouldNotIdentifyUniquePatient                    // gateway could not match exactly one patient
	PMPError                                         // domain-level rejection embedded in a 200 response
	Failure                                          // unexpected status or unparsable body
)

var outcomeNames = [...]string{
	"success",
	"bad request",
	"unauthorized",
	"not found",
	"internal server error",
	"could not identify unique patient",
	"pmp error",
	"failure",
}

// String returns a human-readable name for the kind
func (k OutcomeKind) String() string {
	if k < Success || k > Failure {
		return "unknown"
	}
	return outcomeNames[k]
}

// Outcome is the terminal result of one gateway stage. Exactly one of
// Document (patient stage) or Report (report stage) is set when Kind is
// Success; Message carries the gateway's explanation otherwise.
type Outcome struct {
	Kind     OutcomeKind
	Message  string
	Document *Element       // parsed patient-stage response
	Report   *report.Report // parsed report-stage response
}

func failure(message string) Outcome {
	return Outcome{Kind: Failure, Message: message}
}

// Element is one node of a parsed gateway XML response. Patient responses
// aggregate fragments from several jurisdictions, so interesting nodes
// (ViewableReport, Disallowed, Error) turn up at varying depths; Element
// supports finding them by name wherever they sit.
type Element struct {
	XMLName  xml.Name
	Chardata string    `xml:",chardata"`
	Children []Element `xml:",any"`
}

// ParseDocument parses a gateway XML response body.
func ParseDocument(body string) (*Element, error) {
	var root Element
	if err := xml.Unmarshal([]byte(body), &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// Find returns the first element with the given local name, searching the
// receiver and its descendants depth-first, or nil.
func (e *Element) Find(name string) *Element {
	if e.XMLName.Local == name {
		return e
	}
	for i := range e.Children {
		if found := e.Children[i].Find(name); found != nil {
			return found
		}
	}
	return nil
}

// Text returns the element's own character data, trimmed.
func (e *Element) Text() string {
	return strings.TrimSpace(e.Chardata)
}

// FindText returns the trimmed text of the first descendant with the given
// local name, or "".
func (e *Element) FindText(name string) string {
	if found := e.Find(name); found != nil {
		return found.Text()
	}
	return ""
}
