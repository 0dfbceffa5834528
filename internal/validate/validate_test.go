package validate

import "testing"

func TestQty(t *testing.T) {
	cases := []struct {
		in   int
		want int
		ok   bool
	}{
		{0, 0, false},
		{-3, 0, false},
		{1, 1, true},
		{50, 50, true},
		{51, 50, true},
	}
	for _, tc := range cases {
		got, ok := Qty(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("Qty(%d) = %d,%v; want %d,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIDAndSeller(t *testing.T) {
	if _, ok := ID("tee-001"); !ok {
		t.Fatal("tee-001 should be a valid id")
	}
	if _, ok := ID("../etc"); ok {
		t.Fatal("path-like id accepted")
	}
	if _, ok := Seller(""); !ok {
		t.Fatal("empty seller scope should be valid")
	}
	if _, ok := Seller("north; drop"); ok {
		t.Fatal("bad seller accepted")
	}
}

func TestEmailAndPassword(t *testing.T) {
	if _, ok := Email(" alice@storecart.test "); !ok {
		t.Fatal("valid email rejected")
	}
	if _, ok := Email("not-an-email"); ok {
		t.Fatal("invalid email accepted")
	}
	if !Password("Passw0rd!") {
		t.Fatal("seed password rejected")
	}
	if Password("password") {
		t.Fatal("weak password accepted")
	}
}
