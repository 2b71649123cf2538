package gateway

import (
	"strings"
	"testing"
)

const disallowedBody = `<PatientResponse xmlns="http://xml.appriss.com/gateway/v5">
  <Response>
    <Disallowed>
      <Message>X</Message>
      <Details>Y</Details>
    </Disallowed>
  </Response>
</PatientResponse>`

const disallowedRoleBody = `<PatientResponse xmlns="http://xml.appriss.com/gateway/v5">
  <Response>
    <Disallowed>
      <Message>Requests from this provider role are not permitted</Message>
    </Disallowed>
  </Response>
</PatientResponse>`

const reportLinkBody = `<PatientResponse xmlns="http://xml.appriss.com/gateway/v5">
  <Report>
    <ReportRequestURLs>
      <ViewableReport>https://gateway.example.com/report/123</ViewableReport>
    </ReportRequestURLs>
  </Report>
</PatientResponse>`

const embeddedErrorBody = `<PatientResponse xmlns="http://xml.appriss.com/gateway/v5">
  <Error>
    <Message>PMP is unavailable</Message>
    <Details>Scheduled maintenance</Details>
  </Error>
</PatientResponse>`

const badRequestBody = `<Error xmlns="http://xml.appriss.com/gateway/v5">
  <Message>A</Message>
  <Details>B</Details>
</Error>`

func TestClassifyDisallowed(t *testing.T) {
	outcome := ClassifyPatientResponse(200, disallowedBody)
	if outcome.Kind != CouldNotIdentifyUniquePatient {
		t.Fatalf("expected CouldNotIdentifyUniquePatient, got %s", outcome.Kind)
	}
	if outcome.Message != "X - Y" {
		t.Errorf("expected message 'X - Y', got %q", outcome.Message)
	}
}

func TestClassifyDisallowedRoleRestriction(t *testing.T) {
	outcome := ClassifyPatientResponse(200, disallowedRoleBody)
	if outcome.Kind != CouldNotIdentifyUniquePatient {
		t.Fatalf("expected CouldNotIdentifyUniquePatient, got %s", outcome.Kind)
	}
	if !strings.Contains(outcome.Message, "provider role") || !strings.Contains(outcome.Message, roleNote) {
		t.Errorf("expected role note appended, got %q", outcome.Message)
	}
}

func TestClassifySuccess(t *testing.T) {
	outcome := ClassifyPatientResponse(200, reportLinkBody)
	if outcome.Kind != Success {
		t.Fatalf("expected Success, got %s: %s", outcome.Kind, outcome.Message)
	}
	if outcome.Document == nil {
		t.Fatal("success outcome must carry the parsed document")
	}
	if got := outcome.Document.FindText("ViewableReport"); got != "https://gateway.example.com/report/123" {
		t.Errorf("viewable report link: got %q", got)
	}
}

// An Error node in a 200 patient response is not a failure at this layer:
// a multi-state response may mix a usable report with one state's error.
func TestClassifySuccessDespiteEmbeddedError(t *testing.T) {
	outcome := ClassifyPatientResponse(200, embeddedErrorBody)
	if outcome.Kind != Success {
		t.Fatalf("expected Success for 200 with embedded Error node, got %s", outcome.Kind)
	}
}

func TestClassifyUnparsableSuccessBody(t *testing.T) {
	outcome := ClassifyPatientResponse(200, "this is not xml")
	if outcome.Kind != Failure {
		t.Fatalf("expected Failure, got %s", outcome.Kind)
	}
}

func TestClassifyBadRequest(t *testing.T) {
	outcome := ClassifyPatientResponse(400, badRequestBody)
	if outcome.Kind != BadRequest {
		t.Fatalf("expected BadRequest, got %s", outcome.Kind)
	}
	if outcome.Message != "A - B" {
		t.Errorf("expected message 'A - B', got %q", outcome.Message)
	}
}

func TestClassifyBadRequestRawBody(t *testing.T) {
	outcome := ClassifyPatientResponse(400, "plain text rejection")
	if outcome.Kind != BadRequest {
		t.Fatalf("expected BadRequest, got %s", outcome.Kind)
	}
	if outcome.Message != "plain text rejection" {
		t.Errorf("expected raw body, got %q", outcome.Message)
	}
}

func TestClassifyStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		kind   OutcomeKind
	}{
		{401, Unauthorized},
		{404, NotFound},
		{500, InternalServerError},
	}
	for _, tt := range tests {
		outcome := ClassifyPatientResponse(tt.status, "raw body")
		if outcome.Kind != tt.kind {
			t.Errorf("status %d: expected %s, got %s", tt.status, tt.kind, outcome.Kind)
		}
		if outcome.Message != "raw body" {
			t.Errorf("status %d: expected raw body unchanged, got %q", tt.status, outcome.Message)
		}
		outcome = ClassifyReportResponse(tt.status, "raw body")
		if outcome.Kind != tt.kind {
			t.Errorf("report status %d: expected %s, got %s", tt.status, tt.kind, outcome.Kind)
		}
	}
}

func TestClassifyUnexpectedStatus(t *testing.T) {
	outcome := ClassifyPatientResponse(418, "odd body")
	if outcome.Kind != Failure {
		t.Fatalf("expected Failure, got %s", outcome.Kind)
	}
	if !strings.Contains(outcome.Message, "I'm a teapot") || !strings.Contains(outcome.Message, "odd body") {
		t.Errorf("failure message should carry reason phrase and body, got %q", outcome.Message)
	}
}

func TestClassifyReportSuccess(t *testing.T) {
	outcome := ClassifyReportResponse(200, "<html><head><title>Prescription Report</title></head><body><p>ok</p></body></html>")
	if outcome.Kind != Success {
		t.Fatalf("expected Success, got %s: %s", outcome.Kind, outcome.Message)
	}
	if outcome.Report == nil {
		t.Fatal("success outcome must carry the parsed report")
	}
	if got := outcome.Report.Title(); got != "Prescription Report" {
		t.Errorf("report title: got %q", got)
	}
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		message  string
		details  string
		expected string
	}{
		{"A", "B", "A - B"},
		{"A", "", "A"},
		{"A", "   ", "A"},
		{"A", "Details of error can be found in the gateway log", "A"},
		{" A ", " B ", "A - B"},
	}
	for _, tt := range tests {
		if got := formatMessage(tt.message, tt.details); got != tt.expected {
			t.Errorf("formatMessage(%q, %q): expected %q, got %q", tt.message, tt.details, tt.expected, got)
		}
	}
}

func TestOutcomeKindString(t *testing.T) {
	if Success.String() != "success" || Failure.String() != "failure" {
		t.Error("unexpected outcome kind names")
	}
	if OutcomeKind(99).String() != "unknown" {
		t.Error("out-of-range kind should be unknown")
	}
}
