package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/modsync/pkg/reconcile"
)

func TestPrintReportListsUpToDate(t *testing.T) {
	rep := &reconcile.Report{
		GameVersion: "1.20.4",
		UpToDate:    []reconcile.Item{{ID: "ruins", Title: "Better Ruins"}},
		Updated:     []reconcile.Change{{ID: "trees", Title: "Tall Trees", From: "1.0.0", To: "1.1.0"}},
	}

	var buf bytes.Buffer
	printReport(&buf, rep)
	out := buf.String()

	for _, want := range []string{"Up to date", "Better Ruins", "(ruins)", "Updated", "Tall Trees"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Up to date") > strings.Index(out, "Updated") {
		t.Errorf("up-to-date section should come first:\n%s", out)
	}
}

func TestPrintReportNothingChanged(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &reconcile.Report{Cached: []reconcile.Item{{ID: "ruins"}}})
	out := buf.String()

	if strings.Contains(out, "Up to date") {
		t.Errorf("empty up-to-date section rendered:\n%s", out)
	}
	if !strings.Contains(out, "Nothing changed") || !strings.Contains(out, "1 cached") {
		t.Errorf("summary = %q", out)
	}
}
