// errlog_test.go

package util

import (
	"strings"
	"testing"
)

func TestErrorLogAccumulatesAndDrains(t *testing.T) {
	e := NewErrorLog("Test")
	if e.HasError() || e.HasMessage() {
		t.Error("fresh log reports content")
	}
	e.AddWarning("w %d", 1)
	if e.HasError() {
		t.Error("warning reported as error")
	}
	e.AddError("e %d", 2)
	if !e.HasError() || !e.HasMessage() {
		t.Error("error not recorded")
	}
	msg := e.Message()
	if !strings.Contains(msg, "Warning in Test: w 1") || !strings.Contains(msg, "ERROR in Test: e 2") {
		t.Errorf("unexpected message: %q", msg)
	}
	// Message drains the log.
	if e.HasError() || e.HasMessage() || e.Message() != "" {
		t.Error("log not drained")
	}
}

func TestErrorLogRingBound(t *testing.T) {
	e := NewErrorLog("Test")
	for i := 0; i < DefaultErrorLogLimit+5; i++ {
		e.AddError("entry %d", i)
	}
	msg := e.Message()
	if !strings.HasPrefix(msg, "[...] ") {
		t.Errorf("evicted log lacks marker: %q", msg[:20])
	}
	if n := strings.Count(msg, "\n"); n != DefaultErrorLogLimit {
		t.Errorf("got %d entries, expected %d", n, DefaultErrorLogLimit)
	}
	if strings.Contains(msg, "entry 0\n") || !strings.Contains(msg, "entry 29") {
		t.Error("wrong entries evicted")
	}
}

func TestErrorLogValidators(t *testing.T) {
	e := NewErrorLog("Test")
	if !e.IsPositive("m", 1) || e.IsPositive("m", 0) || e.IsPositive("m", -1) {
		t.Error("IsPositive misclassified")
	}
	if !e.IsNonNegative("m", 0) || e.IsNonNegative("m", -0.5) {
		t.Error("IsNonNegative misclassified")
	}
	if !e.HasError() {
		t.Error("validators did not log")
	}
}

func TestParamsRoundTrip(t *testing.T) {
	p := NewParams()
	if key, ok := p.ParseLine("DTHR = 4000.0000 [ft] # 1219.2000 [internal]"); !ok || key != "DTHR" {
		t.Fatalf("parse failed: key=%q ok=%v", key, ok)
	}
	if got := p.Value("DTHR"); got < 1219 || got > 1220 {
		t.Errorf("DTHR internal value: got %f", got)
	}
	if p.Unit("DTHR") != "ft" {
		t.Errorf("DTHR unit: got %q", p.Unit("DTHR"))
	}
	if key, ok := p.ParseLine("recovery_trk = true"); !ok || key != "recovery_trk" || !p.Bool("recovery_trk") {
		t.Error("boolean parse failed")
	}
	if key, ok := p.ParseLine("# just a comment"); !ok || key != "" {
		t.Error("comment line not skipped")
	}
	if got := p.FormatEntry("DTHR"); got != "DTHR = 4000.0000 [ft]" {
		t.Errorf("format: got %q", got)
	}
	// Keys preserve insertion order.
	keys := p.Keys()
	if len(keys) != 2 || keys[0] != "DTHR" || keys[1] != "recovery_trk" {
		t.Errorf("key order: %v", keys)
	}
}
