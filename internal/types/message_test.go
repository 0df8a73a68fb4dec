package types

import "testing"

func TestKindOf(t *testing.T) {
	if KindOf("AUTHORIZE") != KindAuthorize {
		t.Error("expected AUTHORIZE to map to its kind")
	}
	if KindOf("LSAT") != KindSaveLSAT {
		t.Error("expected LSAT discriminant to map to the save operation")
	}
	if KindOf("authorize") != KindUnknown {
		t.Error("discriminants are case sensitive")
	}
	if KindOf("SELFDESTRUCT") != KindUnknown {
		t.Error("expected unrecognized discriminant to map to KindUnknown")
	}
}

func TestRequestAccessors(t *testing.T) {
	req := &Request{Payload: map[string]interface{}{
		"dest":     "abc",
		"amt":      float64(300),
		"count":    int64(2),
		"fraction": 99.9,
		"nested":   map[string]interface{}{"type": float64(1)},
	}}

	if v, ok := req.String("dest"); !ok || v != "abc" {
		t.Errorf("String: got %q ok=%v", v, ok)
	}
	if _, ok := req.String("amt"); ok {
		t.Error("String must reject non-string values")
	}
	if v, ok := req.Int64("amt"); !ok || v != 300 {
		t.Errorf("Int64 float64: got %d ok=%v", v, ok)
	}
	if v, ok := req.Int64("count"); !ok || v != 2 {
		t.Errorf("Int64 int64: got %d ok=%v", v, ok)
	}
	if _, ok := req.Int64("dest"); ok {
		t.Error("Int64 must reject strings")
	}
	if _, ok := req.Int64("fraction"); ok {
		t.Error("Int64 must reject fractional numbers, not truncate them")
	}
	if m, ok := req.Map("nested"); !ok || len(m) != 1 {
		t.Errorf("Map: got %v ok=%v", m, ok)
	}
	if _, ok := req.Map("dest"); ok {
		t.Error("Map must reject non-objects")
	}
}
