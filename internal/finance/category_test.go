package finance

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseCategoryKey(t *testing.T) {
	t.Run("core keys round trip", func(t *testing.T) {
		for _, k := range CoreCategories() {
			got, err := ParseCategoryKey(k.String())
			if err != nil {
				t.Fatalf("ParseCategoryKey(%q): %v", k, err)
			}
			if got != k {
				t.Errorf("expected %v, got %v", k, got)
			}
			if got.IsCustom() {
				t.Errorf("%v should not be custom", got)
			}
		}
	})

	t.Run("custom key", func(t *testing.T) {
		got, err := ParseCategoryKey("custom:Pet Care ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.IsCustom() || got.Name() != "pet care" {
			t.Errorf("expected custom pet care, got %#v", got)
		}
		if got.String() != "custom:pet care" {
			t.Errorf("unexpected canonical form %q", got.String())
		}
	})

	t.Run("typo is rejected", func(t *testing.T) {
		_, err := ParseCategoryKey("grocceries")
		if !errors.Is(err, ErrUnknownCategory) {
			t.Errorf("expected ErrUnknownCategory, got %v", err)
		}
	})

	t.Run("empty custom name is rejected", func(t *testing.T) {
		_, err := ParseCategoryKey("custom:  ")
		if !errors.Is(err, ErrInvalidCustomName) {
			t.Errorf("expected ErrInvalidCustomName, got %v", err)
		}
	})
}

func TestCategoryKey_JSON(t *testing.T) {
	type wrapper struct {
		Key CategoryKey `json:"key"`
	}

	custom, err := Custom("Hobbies")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := json.Marshal(wrapper{Key: custom})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"key":"custom:hobbies"}` {
		t.Errorf("unexpected JSON %s", data)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"key":"dining"}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.Key != Dining {
		t.Errorf("expected dining, got %v", w.Key)
	}

	if err := json.Unmarshal([]byte(`{"key":"dinning"}`), &w); err == nil {
		t.Error("expected error decoding unknown category")
	}
}

func TestCategoryKey_Scan(t *testing.T) {
	var k CategoryKey
	if err := k.Scan([]byte("custom:gym")); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if k.String() != "custom:gym" {
		t.Errorf("unexpected key %q", k)
	}

	v, err := k.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != "custom:gym" {
		t.Errorf("unexpected driver value %v", v)
	}

	if err := k.Scan(42); err == nil {
		t.Error("expected error scanning an int")
	}
}
