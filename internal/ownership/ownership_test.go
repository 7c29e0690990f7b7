package ownership

import (
	"math"
	"testing"
)

func TestEpsilonAnchors(t *testing.T) {
	if got := Epsilon(50000, true); math.Abs(got-0.13) > 0.005 {
		t.Errorf("Epsilon(50000) = %.4f, want ~0.13", got)
	}
	if got := Epsilon(300000, true); math.Abs(got-0.17) > 0.005 {
		t.Errorf("Epsilon(300000) = %.4f, want ~0.17", got)
	}
}

func TestEpsilonMonotone(t *testing.T) {
	sizes := []int{1, 100, 1000, 10000, 50000, 100000, 300000, 1000000, 10000000}
	prev := 0.0
	for _, n := range sizes {
		eps := Epsilon(n, true)
		if eps < prev {
			t.Fatalf("Epsilon(%d) = %.4f decreased below %.4f", n, eps, prev)
		}
		prev = eps
	}
	if prev > epsilonCeiling {
		t.Errorf("epsilon exceeded ceiling: %.4f", prev)
	}
	if Epsilon(10, true) != epsilonFloor {
		t.Errorf("small library should clamp to floor, got %.4f", Epsilon(10, true))
	}
}

func TestEpsilonDisabled(t *testing.T) {
	if got := Epsilon(300000, false); got != 0 {
		t.Errorf("disabled gate must force epsilon 0, got %.4f", got)
	}
}

func TestEvaluateNeverTouched(t *testing.T) {
	out := Evaluate(0, 3.9, nil, 0.13)
	if out.Action != ActionWrite || out.Class != ClassInferred {
		t.Errorf("unrated new item: got %+v, want write/inferred", out)
	}
}

func TestEvaluateNewManual(t *testing.T) {
	// Live rating with no shadow record means a human rated it first.
	out := Evaluate(4.0, 3.9, nil, 0.13)
	if out.Action != ActionBlock || out.Class != ClassManual {
		t.Errorf("pre-rated item: got %+v, want block/manual", out)
	}
}

func TestEvaluateManualSticky(t *testing.T) {
	rec := &Record{ItemID: "t1", Inferred: 3.5, Class: ClassManual}
	out := Evaluate(3.5, 3.5, rec, 0.13)
	if out.Action != ActionBlock || out.Class != ClassManual {
		t.Errorf("manual record: got %+v, want block/manual", out)
	}
}

func TestEvaluateTakeover(t *testing.T) {
	rec := &Record{ItemID: "t1", Inferred: 3.5, Class: ClassInferred}
	out := Evaluate(5.0, 3.6, rec, 0.13)
	if out.Action != ActionBlock || out.Class != ClassManual || !out.Takeover {
		t.Errorf("overridden item: got %+v, want block/manual/takeover", out)
	}

	// Clearing the rating is also a takeover.
	out = Evaluate(0, 3.6, rec, 0.13)
	if out.Action != ActionBlock || !out.Takeover {
		t.Errorf("cleared item: got %+v, want block/takeover", out)
	}
}

func TestEvaluateDriftSuppression(t *testing.T) {
	rec := &Record{ItemID: "t1", Inferred: 3.50, Class: ClassInferred}

	out := Evaluate(3.50, 3.55, rec, 0.13)
	if out.Action != ActionSuppress {
		t.Errorf("within tolerance: got %+v, want suppress", out)
	}

	out = Evaluate(3.50, 3.90, rec, 0.13)
	if out.Action != ActionWrite || out.Class != ClassInferred {
		t.Errorf("beyond tolerance: got %+v, want write/inferred", out)
	}
}

func TestEvaluateZeroEpsilonAlwaysWrites(t *testing.T) {
	rec := &Record{ItemID: "t1", Inferred: 3.50, Class: ClassInferred}
	out := Evaluate(3.50, 3.51, rec, 0)
	if out.Action != ActionWrite {
		t.Errorf("gate disabled: got %+v, want write", out)
	}
	out = Evaluate(3.50, 3.50, rec, 0)
	if out.Action != ActionSuppress {
		t.Errorf("identical value: got %+v, want suppress", out)
	}
}
