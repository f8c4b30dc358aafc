package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestChangePayloadZeroValueIsUndefined(t *testing.T) {
	var p ChangePayload
	if p.Defined() {
		t.Fatalf("zero payload should be undefined")
	}
	if p.Raw() != nil {
		t.Fatalf("expected nil raw, got %s", p.Raw())
	}
	out, err := p.MarshalJSON()
	if err != nil || string(out) != "null" {
		t.Fatalf("expected null, got %s (%v)", out, err)
	}
	dst := Asset{ID: "keep"}
	if err := p.Decode(&dst); err != nil || dst.ID != "keep" {
		t.Fatalf("decode of undefined payload must leave dst untouched: %+v %v", dst, err)
	}
}

func TestNewChangePayloadClonesInput(t *testing.T) {
	raw := json.RawMessage(`{"id":"AST-101"}`)
	p := NewChangePayload(raw)
	raw[8] = 'X'

	got := p.Raw()
	if string(got) != `{"id":"AST-101"}` {
		t.Fatalf("payload mutated through caller slice: %s", got)
	}
	got[0] = '['
	if string(p.Raw()) != `{"id":"AST-101"}` {
		t.Fatalf("payload mutated through Raw result")
	}
}

func TestNewChangePayloadNilIsDefinedButEmpty(t *testing.T) {
	p := NewChangePayload(nil)
	if !p.Defined() {
		t.Fatalf("expected defined payload")
	}
	if p.Raw() != nil {
		t.Fatalf("expected nil raw for empty payload")
	}
}

func TestChangePayloadFromValueRoundTripsRecord(t *testing.T) {
	in := User{Email: "priya.nair@example.com", Name: "Priya Nair", Role: "Admin", Status: "Active"}
	p, err := NewChangePayloadFromValue(in)
	if err != nil {
		t.Fatalf("from value: %v", err)
	}
	var out User
	if err := p.Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v != %+v", out, in)
	}
}

func TestChangePayloadFromValueReportsMarshalError(t *testing.T) {
	if _, err := NewChangePayloadFromValue(math.Inf(1)); err == nil {
		t.Fatalf("expected marshal error for +Inf")
	}
}

func TestChangeMarshalsUndefinedSidesAsNull(t *testing.T) {
	after, err := NewChangePayloadFromValue(Block{ID: "B7K2QX", Name: "North"})
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	c := Change{
		Entity:     EntityBlock,
		Action:     ActionCreate,
		ID:         "B7K2QX",
		After:      after,
		OccurredAt: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
	}
	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(decoded["before"]) != "null" {
		t.Fatalf("expected null before, got %s", decoded["before"])
	}
	if string(decoded["action"]) != `"create"` {
		t.Fatalf("unexpected action %s", decoded["action"])
	}
}
