// Package export renders scheduling results as JSON, CSV or a plain text
// weekly table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/promanage/core/model"
	"github.com/kilianp07/promanage/core/scheduler"
)

// Labeler names a 0-based slot. scheduler.SchedulerConfig implements it.
type Labeler interface {
	Label(i int) string
}

// SlotEntry is one period of the rendered schedule. Slot is 1-based.
type SlotEntry struct {
	Slot  int        `json:"slot"`
	Label string     `json:"label"`
	Job   *model.Job `json:"job"`
}

// Document is the presentation form of a scheduler.Result.
type Document struct {
	GeneratedAt        time.Time             `json:"generated_at"`
	Slots              []SlotEntry           `json:"slots"`
	Unscheduled        []model.Job           `json:"unscheduled"`
	Rejected           []scheduler.Rejection `json:"rejected,omitempty"`
	ScheduledRevenue   float64               `json:"scheduled_revenue"`
	UnscheduledRevenue float64               `json:"unscheduled_revenue"`
}

// MarshalJSON writes non-finite revenue totals as null. They only occur when
// unvalidated jobs carry NaN or infinite revenue.
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	return json.Marshal(struct {
		plain
		ScheduledRevenue   *float64 `json:"scheduled_revenue"`
		UnscheduledRevenue *float64 `json:"unscheduled_revenue"`
	}{plain(d), model.FiniteOrNil(d.ScheduledRevenue), model.FiniteOrNil(d.UnscheduledRevenue)})
}

// NewDocument converts res using labels for slot names.
func NewDocument(res scheduler.Result, labels Labeler, generatedAt time.Time) Document {
	doc := Document{
		GeneratedAt:        generatedAt,
		Slots:              make([]SlotEntry, len(res.Slots)),
		Unscheduled:        append([]model.Job{}, res.Unscheduled...),
		Rejected:           res.Rejected,
		ScheduledRevenue:   res.ScheduledRevenue(),
		UnscheduledRevenue: res.UnscheduledRevenue(),
	}
	for i, s := range res.Slots {
		e := SlotEntry{Slot: i + 1, Label: labels.Label(i)}
		if j, ok := s.Job(); ok {
			e.Job = &j
		}
		doc.Slots[i] = e
	}
	return doc
}

// WriteJSON writes the document to w in JSON format.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteCSV writes one row per slot, then one per unscheduled and rejected job.
func WriteCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"status", "slot", "label", "job_id", "title", "deadline", "revenue", "reason"}); err != nil {
		return err
	}
	for _, s := range doc.Slots {
		rec := []string{"empty", strconv.Itoa(s.Slot), s.Label, "", "", "", "", ""}
		if s.Job != nil {
			rec = append([]string{"scheduled", strconv.Itoa(s.Slot), s.Label}, jobFields(*s.Job)...)
			rec = append(rec, "")
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	for _, j := range doc.Unscheduled {
		rec := append([]string{"unscheduled", "", ""}, jobFields(j)...)
		if err := cw.Write(append(rec, "")); err != nil {
			return err
		}
	}
	for _, r := range doc.Rejected {
		rec := append([]string{"rejected", "", ""}, jobFields(r.Job)...)
		if err := cw.Write(append(rec, r.Reason)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func jobFields(j model.Job) []string {
	return []string{
		j.ID,
		j.Title,
		strconv.Itoa(j.Deadline),
		strconv.FormatFloat(j.Revenue, 'f', -1, 64),
	}
}
