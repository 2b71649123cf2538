package gateway

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/openpmp/pmpq/report"
)

// detailsBoilerplate marks a Details value that carries no information
// beyond the gateway's stock phrasing; such details are dropped.
const detailsBoilerplate = "Details of error can be"

// roleNote is appended when a Disallowed message indicates a role-based
// request restriction.
const roleNote = " (the PMP may not allow requests from this provider role)"

// formatMessage combines a Message and Details pair as "message - details",
// omitting empty or boilerplate-only details.
func formatMessage(message string, details string) string {
	message = strings.TrimSpace(message)
	details = strings.TrimSpace(details)
	if details == "" || strings.HasPrefix(details, detailsBoilerplate) {
		return message
	}
	return message + " - " + details
}

// ClassifyPatientResponse assigns an Outcome to a patient-stage status/body
// pair.
//
// A 200 body containing a Disallowed node means the gateway could not match
// exactly one patient. A 200 body containing an Error node is still Success
// at this layer: responses aggregate fragments from several jurisdictions
// and may legitimately mix an error from one with a report from another.
// The workflow decides what an Error node means at the point it looks for
// the report link.
func ClassifyPatientResponse(status int, body string) Outcome {
	switch status {
	case http.StatusOK:
		doc, err := ParseDocument(body)
		if err != nil {
			return failure(fmt.Sprintf("could not parse patient response: %v", err))
		}
		if disallowed := doc.Find("Disallowed"); disallowed != nil {
			message := formatMessage(disallowed.FindText("Message"), disallowed.FindText("Details"))
			if strings.Contains(strings.ToLower(message), "role") {
				message += roleNote
			}
			return Outcome{Kind: CouldNotIdentifyUniquePatient, Message: message}
		}
		return Outcome{Kind: Success, Document: doc}
	case http.StatusBadRequest:
		if doc, err := ParseDocument(body); err == nil {
			if errNode := doc.Find("Error"); errNode != nil {
				return Outcome{
					Kind:    BadRequest,
					Message: formatMessage(errNode.FindText("Message"), errNode.FindText("Details")),
				}
			}
		}
		return Outcome{Kind: BadRequest, Message: body}
	case http.StatusUnauthorized:
		return Outcome{Kind: Unauthorized, Message: body}
	case http.StatusNotFound:
		return Outcome{Kind: NotFound, Message: body}
	case http.StatusInternalServerError:
		return Outcome{Kind: InternalServerError, Message: body}
	default:
		return failure(unexpectedStatus(status, body))
	}
}

// ClassifyReportResponse assigns an Outcome to a report-stage status/body
// pair. The report body is HTML, not XML; on 200 it is structured through
// the report package. There is no patient-identification or embedded-error
// variant at this stage.
func ClassifyReportResponse(status int, body string) Outcome {
	switch status {
	case http.StatusOK:
		r, err := report.Parse(body)
		if err != nil {
			return failure(fmt.Sprintf("could not parse report: %v", err))
		}
		return Outcome{Kind: Success, Report: r}
	case http.StatusBadRequest:
		return Outcome{Kind: BadRequest, Message: body}
	case http.StatusUnauthorized:
		return Outcome{Kind: Unauthorized, Message: body}
	case http.StatusNotFound:
		return Outcome{Kind: NotFound, Message: body}
	case http.StatusInternalServerError:
		return Outcome{Kind: InternalServerError, Message: body}
	default:
		return failure(unexpectedStatus(status, body))
	}
}

func unexpectedStatus(status int, body string) string {
	reason := http.StatusText(status)
	if reason == "" {
		reason = fmt.Sprintf("status %d", status)
	}
	if body == "" {
		return "unexpected response: " + reason
	}
	return "unexpected response: " + reason + ": " + body
}
