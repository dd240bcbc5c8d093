package calendaritem

import (
	"encoding/json"
	"testing"
)

func TestOptionalUnmarshalTriState(t *testing.T) {
	var p Patch
	payload := `{"is_opened": true, "position": null}`
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !p.IsOpened.Set || !p.IsOpened.Valid || !p.IsOpened.Value {
		t.Error("is_opened carried a value and should be Set+Valid")
	}
	if !p.Position.Set || p.Position.Valid {
		t.Error("an explicit null should be Set but not Valid")
	}
	if p.Rotation.Set {
		t.Error("an omitted key must not be Set")
	}
}

func TestOptionalUnmarshalValue(t *testing.T) {
	var p Patch
	payload := `{"position": [1.5, 0, -2.25], "rotation": [0, 3.14, 0]}`
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !p.Position.Valid || len(p.Position.Value) != 3 {
		t.Fatalf("position = %v, want a 3-vector", p.Position.Value)
	}
	if p.Position.Value[0] != 1.5 || p.Position.Value[2] != -2.25 {
		t.Errorf("position = %v", p.Position.Value)
	}
}

func TestPatchMarshalRoundTrip(t *testing.T) {
	p := Patch{
		IsOpened: Some(true),
		Position: Null[[]float64](),
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal into map: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("marshaled %d keys (%s), want only the set ones", len(m), b)
	}
	if string(m["is_opened"]) != "true" {
		t.Errorf("is_opened = %s, want true", m["is_opened"])
	}
	if string(m["position"]) != "null" {
		t.Errorf("position = %s, want null", m["position"])
	}

	// The round trip preserves all three states: unset keys must not come
	// back as explicit nulls.
	var back Patch
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal back: %v", err)
	}
	if back.Rotation.Set {
		t.Error("rotation was never set and must stay unset")
	}
	if !back.Position.Set || back.Position.Valid {
		t.Error("position must come back as an explicit null")
	}
	if !back.IsOpened.Valid || !back.IsOpened.Value {
		t.Error("is_opened must come back as true")
	}
}

func TestOptionalConstructors(t *testing.T) {
	s := Some(true)
	if !s.Set || !s.Valid || !s.Value {
		t.Errorf("Some(true) = %+v", s)
	}
	n := Null[[]float64]()
	if !n.Set || n.Valid {
		t.Errorf("Null() = %+v", n)
	}
}

func TestPatchEmpty(t *testing.T) {
	if !(Patch{}).Empty() {
		t.Error("zero patch should be empty")
	}
	p := Patch{IsOpened: Some(true)}
	if p.Empty() {
		t.Error("patch with a field should not be empty")
	}
}

func TestPlaced(t *testing.T) {
	var c CalendarItem
	if c.Placed() {
		t.Error("no position means inventory")
	}
	c.Position = []float64{1, 2, 3}
	if !c.Placed() {
		t.Error("a 3-vector position means placed")
	}
}
