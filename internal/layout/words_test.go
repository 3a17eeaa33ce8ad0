package layout

import "testing"

func TestSmiRoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 42, -42, MaxSmi, MinSmi} {
		w := SmiWord(v)
		if !IsSmi(w) {
			t.Fatalf("SmiWord(%d) not tagged as smi", v)
		}
		if IsRef(w) {
			t.Fatalf("SmiWord(%d) tagged as ref", v)
		}
		if got := SmiValue(w); got != v {
			t.Fatalf("SmiValue(SmiWord(%d)) = %d", v, got)
		}
	}
}

func TestFitsSmi(t *testing.T) {
	if !FitsSmi(MaxSmi) || !FitsSmi(MinSmi) || !FitsSmi(0) {
		t.Fatalf("range endpoints should fit")
	}
	if FitsSmi(MaxSmi+1) || FitsSmi(MinSmi-1) {
		t.Fatalf("out-of-range values should not fit")
	}
}

func TestRefRoundTrip(t *testing.T) {
	for _, addr := range []uint32{BlockHeaderSize, BlockSize + BlockHeaderSize, 7 * BlockSize} {
		w := RefWord(addr)
		if !IsRef(w) || IsSmi(w) {
			t.Fatalf("RefWord(%#x) not tagged as ref", addr)
		}
		if got := RefAddress(w); got != addr {
			t.Fatalf("RefAddress(RefWord(%#x)) = %#x", addr, got)
		}
	}
}

func TestPackHeader(t *testing.T) {
	cases := []struct {
		classID uint32
		tag     uint8
	}{
		{0, 0},
		{1, 3},
		{12345, 5},
		{MaxClassID, HeaderTagMask},
	}
	for _, tc := range cases {
		w := PackHeader(tc.classID, tc.tag)
		if !IsSmi(w) {
			t.Fatalf("header word for class %d must be smi tagged", tc.classID)
		}
		if got := HeaderClassID(w); got != tc.classID {
			t.Fatalf("HeaderClassID = %d, want %d", got, tc.classID)
		}
		if got := HeaderTag(w); got != tc.tag {
			t.Fatalf("HeaderTag = %d, want %d", got, tc.tag)
		}
	}
}

func TestExternalLengthEncoding(t *testing.T) {
	for _, n := range []int{0, 1, 4056, 1 << 20} {
		raw := EncodeExternalLength(n)
		if !IsExternalLength(raw) {
			t.Fatalf("encoded length %d not negative: %d", n, raw)
		}
		if got := DecodeExternalLength(raw); got != n {
			t.Fatalf("DecodeExternalLength(%d) = %d, want %d", raw, got, n)
		}
	}
	if IsExternalLength(0) || IsExternalLength(100) {
		t.Fatalf("non-negative stored lengths are internal")
	}
}
