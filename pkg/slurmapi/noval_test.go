package slurmapi

import (
	"encoding/json"
	"testing"
)

func TestNoValDecode(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
		set  bool
	}{
		{"set positive", `{"number": 42, "set": true, "infinite": false}`, 42, true},
		{"set zero", `{"number": 0, "set": true, "infinite": false}`, 0, true},
		{"set negative", `{"number": -9, "set": true, "infinite": false}`, -9, true},
		{"unset ignores number", `{"number": 7, "set": false, "infinite": false}`, 0, false},
		{"empty object", `{}`, 0, false},
		{"null", `null`, 0, false},
		{"malformed", `"not an envelope"`, 0, false},
		{"wrong field types", `{"number": "seven", "set": "yes"}`, 0, false},
	}
	for _, tc := range cases {
		var v NoVal
		if err := json.Unmarshal([]byte(tc.in), &v); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		got, ok := v.Int()
		if ok != tc.set {
			t.Fatalf("%s: set = %v, want %v", tc.name, ok, tc.set)
		}
		if ok && got != tc.want {
			t.Fatalf("%s: value = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestNoValFloatKeepsFraction(t *testing.T) {
	var v NoVal
	if err := json.Unmarshal([]byte(`{"number": 1700000000.25, "set": true}`), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := v.Float()
	if !ok || f != 1700000000.25 {
		t.Fatalf("got %v (set=%v), want 1700000000.25", f, ok)
	}
}

func TestNoValMarshalRoundTrip(t *testing.T) {
	b, err := json.Marshal(NewNoVal(90))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"number":90,"set":true,"infinite":false}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}
