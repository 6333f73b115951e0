package config

import "testing"

func TestParseAdminIDs(t *testing.T) {
	got := ParseAdminIDs(" 1001, 1002;abc 1001\n-5 1003 ")
	want := []int64{1001, 1002, 1003}
	if len(got) != len(want) {
		t.Fatalf("ids want %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids want %v got %v", want, got)
		}
	}
	if ids := ParseAdminIDs(""); len(ids) != 0 {
		t.Fatalf("empty input should yield no ids, got %v", ids)
	}
}
