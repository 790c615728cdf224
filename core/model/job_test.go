package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestJobValidate(t *testing.T) {
	cases := []struct {
		name string
		job  Job
		ok   bool
	}{
		{"valid", Job{ID: "PRJ001", Title: "UI", Deadline: 2, Revenue: 10}, true},
		{"zero revenue", Job{ID: "PRJ001", Title: "UI", Deadline: 2}, true},
		{"missing id", Job{Title: "UI", Deadline: 1, Revenue: 1}, false},
		{"blank title", Job{ID: "PRJ001", Title: "  ", Deadline: 1, Revenue: 1}, false},
		{"negative revenue", Job{ID: "PRJ001", Title: "UI", Deadline: 1, Revenue: -1}, false},
		{"nan revenue", Job{ID: "PRJ001", Title: "UI", Deadline: 1, Revenue: math.NaN()}, false},
		{"inf revenue", Job{ID: "PRJ001", Title: "UI", Deadline: 1, Revenue: math.Inf(1)}, false},
	}
	for _, tc := range cases {
		err := tc.job.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			if !errors.Is(err, ErrInvalidJob) {
				t.Fatalf("%s: error %v does not wrap ErrInvalidJob", tc.name, err)
			}
		}
	}
}

func TestJobLatestSlot(t *testing.T) {
	if got := (Job{Deadline: 9}).LatestSlot(5); got != 4 {
		t.Fatalf("expected clamp to 4 got %d", got)
	}
	if got := (Job{Deadline: 2}).LatestSlot(5); got != 1 {
		t.Fatalf("expected 1 got %d", got)
	}
	if (Job{Deadline: 0}).Eligible() {
		t.Fatalf("deadline 0 must be ineligible")
	}
	if got := (Job{Deadline: 0}).LatestSlot(5); got >= 0 {
		t.Fatalf("expected negative latest slot got %d", got)
	}
}

func TestJobMarshalJSONNonFiniteRevenue(t *testing.T) {
	cases := []struct {
		revenue float64
		want    string
	}{
		{12.5, `{"id":"PRJ001","title":"UI","deadline":2,"revenue":12.5}`},
		{math.NaN(), `{"id":"PRJ001","title":"UI","deadline":2,"revenue":null}`},
		{math.Inf(1), `{"id":"PRJ001","title":"UI","deadline":2,"revenue":null}`},
		{math.Inf(-1), `{"id":"PRJ001","title":"UI","deadline":2,"revenue":null}`},
	}
	for _, c := range cases {
		b, err := json.Marshal(Job{ID: "PRJ001", Title: "UI", Deadline: 2, Revenue: c.revenue})
		if err != nil {
			t.Fatalf("marshal %v: %v", c.revenue, err)
		}
		if string(b) != c.want {
			t.Fatalf("revenue %v: got %s, want %s", c.revenue, b, c.want)
		}
	}
}
