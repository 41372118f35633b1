package validate_test

import (
	"testing"

	"shopchat/internal/validate"
)

func TestProductID(t *testing.T) {
	good := []string{"LISTING123", "Honda-Civic-2020-ab12cd34", "1FTEW1EP5LKD12345", "Ford-F-150-2020 XLT", "https://example.com/l/1"}
	for _, s := range good {
		if _, ok := validate.ProductID(s); !ok {
			t.Errorf("%q should be a valid product id", s)
		}
	}
	bad := []string{"", "  ", "<script>", "a\nb", string(make([]byte, 200))}
	for _, s := range bad {
		if _, ok := validate.ProductID(s); ok {
			t.Errorf("%q should be rejected", s)
		}
	}
}

func TestSessionID(t *testing.T) {
	if _, ok := validate.SessionID("sess-abc_123"); !ok {
		t.Error("plain session id rejected")
	}
	for _, s := range []string{"", "has space", "../../etc"} {
		if _, ok := validate.SessionID(s); ok {
			t.Errorf("%q should be rejected", s)
		}
	}
}

func TestClampQty(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 7: 7, 50: 50, 999: 50}
	for in, want := range cases {
		if got := validate.ClampQty(in); got != want {
			t.Errorf("ClampQty(%d) = %d, want %d", in, got, want)
		}
	}
}
