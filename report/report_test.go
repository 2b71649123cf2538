package report

import (
	"strings"
	"testing"
)

const sample = `<html>
<head><title>Prescription Report - DOE, JOHN</title></head>
<body>
<h1>Prescription History</h1>
<table id="prescriptions">
<tr><th>Drug</th><th>Filled</th></tr>
<tr><td>Oxycodone 5mg</td><td>2026-07-01</td></tr>
</table>
</body>
</html>`

func TestParse(t *testing.T) {
	r, err := Parse(sample)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Title(); got != "Prescription Report - DOE, JOHN" {
		t.Errorf("title: got %q", got)
	}
	if !strings.Contains(r.Text(), "Oxycodone 5mg") {
		t.Errorf("text should include prescription rows, got %q", r.Text())
	}
	if r.HTML() != sample {
		t.Error("HTML() must return the body verbatim")
	}
	if r.Select("#prescriptions tr").Length() != 2 {
		t.Errorf("expected 2 prescription rows, got %d", r.Select("#prescriptions tr").Length())
	}
}

func TestParseToleratesFragment(t *testing.T) {
	r, err := Parse("<p>partial report")
	if err != nil {
		t.Fatal(err)
	}
	if r.Title() != "" {
		t.Errorf("fragment has no title, got %q", r.Title())
	}
	if !strings.Contains(r.Text(), "partial report") {
		t.Errorf("fragment text lost: %q", r.Text())
	}
}
