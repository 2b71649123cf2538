package gateway

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// SubmitPatient submits the patient's details to the gateway and classifies
// the response. On Success the returned Outcome carries the parsed response
// document, which holds a ViewableReport link when a report is available.
func (c *Client) SubmitPatient(ctx context.Context, provider Provider, patient Patient) Outcome {
	body, err := BuildPatientRequest(provider, patient)
	if err != nil {
		return failure(err.Error())
	}
	resp, err := c.post(ctx, c.patientURL(), body)
	if err != nil {
		return failure(fmt.Sprintf("patient request failed: %v", err))
	}
	return ClassifyPatientResponse(resp.status, resp.body)
}

// FetchReport fetches the rendered report from a one-time report link
// obtained from a patient-stage response.
func (c *Client) FetchReport(ctx context.Context, provider Provider, reportLink string) Outcome {
	body, err := BuildReportRequest(provider)
	if err != nil {
		return failure(err.Error())
	}
	resp, err := c.post(ctx, reportLink, body)
	if err != nil {
		return failure(fmt.Sprintf("report request failed: %v", err))
	}
	return ClassifyReportResponse(resp.status, resp.body)
}

// SubmitPatientAndFetchReport is the primary entry point: it submits the
// patient, extracts the report link from a successful response and fetches
// the report, stopping at the first non-success outcome.
//
// A successful patient response without a ViewableReport link is a
// domain-level rejection when it carries an Error node (PMPError), and a
// Failure otherwise. Any non-success outcome from the patient stage,
// including CouldNotIdentifyUniquePatient, is returned unchanged and no
// second call is made.
func (c *Client) SubmitPatientAndFetchReport(ctx context.Context, provider Provider, patient Patient) Outcome {
	outcome := c.SubmitPatient(ctx, provider, patient)
	if outcome.Kind != Success {
		log.Debug().Stringer("outcome", outcome.Kind).Msg("gateway: patient stage did not succeed")
		return outcome
	}
	if viewable := outcome.Document.Find("ViewableReport"); viewable != nil {
		return c.FetchReport(ctx, provider, viewable.Text())
	}
	if errNode := outcome.Document.Find("Error"); errNode != nil {
		return Outcome{
			Kind:    PMPError,
			Message: formatMessage(errNode.FindText("Message"), errNode.FindText("Details")),
		}
	}
	return failure("patient response contained neither a viewable report nor an error")
}
