package imap

import "testing"

func TestSeqSetString(t *testing.T) {
	s := SeqSet{{Num(1), Num(1)}, {Num(3), Num(5)}, {Num(9), StarBound}}
	if want := "1,3:5,9:*"; s.String() != want {
		t.Errorf("String() = %q, want %q", s.String(), want)
	}
}

func TestSeqSetDynamic(t *testing.T) {
	if SeqSetNum(1, 2, 3).Dynamic() {
		t.Errorf("Dynamic() = true for a concrete set, want false")
	}
	if !SeqSetRange(Num(1), StarBound).Dynamic() {
		t.Errorf("Dynamic() = false for a set containing '*', want true")
	}
}

func TestSeqSetNums(t *testing.T) {
	nums, ok := SeqSet{{Num(3), Num(1)}}.Nums()
	if !ok {
		t.Fatalf("Nums() ok = false, want true")
	}
	want := []uint32{1, 2, 3}
	if len(nums) != len(want) {
		t.Fatalf("Nums() = %v, want %v", nums, want)
	}
	for i := range want {
		if nums[i] != want[i] {
			t.Errorf("Nums()[%d] = %d, want %d", i, nums[i], want[i])
		}
	}
}

func TestSeqSetNumsRejectsDynamic(t *testing.T) {
	if _, ok := SeqSetRange(Num(1), StarBound).Nums(); ok {
		t.Errorf("Nums() ok = true for a dynamic range, want false")
	}
}

func TestUIDSetContains(t *testing.T) {
	s := UIDSetRange(Num(10), Num(20))
	if !s.Contains(15) {
		t.Errorf("Contains(15) = false, want true")
	}
	if s.Contains(25) {
		t.Errorf("Contains(25) = true, want false")
	}
}

func TestStarBoundNeverEqualsConcreteBound(t *testing.T) {
	if StarBound == Num(0) {
		t.Errorf("StarBound compared equal to Num(0); the sentinel must never collide with a real number")
	}
	if _, ok := StarBound.Value(); ok {
		t.Errorf("StarBound.Value() ok = true, want false")
	}
}
