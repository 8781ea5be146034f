package json

import (
	"testing"

	"github.com/Velocidex/ordereddict"
)

func TestMarshalPreservesDictOrder(t *testing.T) {
	dict := ordereddict.NewDict().
		Set("zebra", 1).
		Set("apple", "two").
		Set("mango", nil)

	got, err := Marshal(dict)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := `{"zebra":1,"apple":"two","mango":null}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestMarshalNestedDict(t *testing.T) {
	inner := ordereddict.NewDict().
		Set("b", 2).
		Set("a", 1)
	outer := ordereddict.NewDict().Set("values", inner)

	got, err := Marshal(outer)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := `{"values":{"b":2,"a":1}}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestMarshalIndent(t *testing.T) {
	dict := ordereddict.NewDict().
		Set("name", "Invoices").
		Set("rowCount", 2)

	got, err := MarshalIndent(dict)
	if err != nil {
		t.Fatalf("MarshalIndent: %v", err)
	}

	want := "{\n  \"name\": \"Invoices\",\n  \"rowCount\": 2\n}"
	if string(got) != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestMarshalIndentEmptyDict(t *testing.T) {
	got, err := MarshalIndent(ordereddict.NewDict())
	if err != nil {
		t.Fatalf("MarshalIndent: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("got %s, want {}", got)
	}
}

func TestMustMarshalIndent(t *testing.T) {
	got := MustMarshalIndent(ordereddict.NewDict().Set("ok", true))
	want := "{\n  \"ok\": true\n}"
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestUnmarshalRoundtrip(t *testing.T) {
	raw := []byte(`{"id":"r1","values":{"Date":"2024-01-01","Total":42}}`)

	dict := ordereddict.NewDict()
	if err := Unmarshal(raw, dict); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	got, err := Marshal(dict)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(got) != string(raw) {
		t.Errorf("got %s, want %s", got, raw)
	}
}
