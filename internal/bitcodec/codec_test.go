package bitcodec

import (
	"reflect"
	"testing"
)

func TestPoly2BlockXEXVector(t *testing.T) {
	block, err := Poly2BlockXEX([]int{12, 127, 9, 0})
	if err != nil {
		t.Fatalf("Poly2BlockXEX error: %v", err)
	}
	if got := BlockToB64(block); got != "ARIAAAAAAAAAAAAAAAAAgA==" {
		t.Fatalf("Poly2BlockXEX([12,127,9,0]) = %s, want ARIAAAAAAAAAAAAAAAAAgA==", got)
	}
}

func TestBlock2PolyXEXInvertsPoly2Block(t *testing.T) {
	block, err := B64ToBlock("ARIAAAAAAAAAAAAAAAAAgA==")
	if err != nil {
		t.Fatalf("B64ToBlock error: %v", err)
	}
	got := Block2PolyXEX(block)
	want := []int{0, 9, 12, 127}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Block2PolyXEX = %v, want %v", got, want)
	}
}

func TestPoly2BlockGCMVector(t *testing.T) {
	block, err := Poly2BlockGCM([]int{12, 127, 9, 0})
	if err != nil {
		t.Fatalf("Poly2BlockGCM error: %v", err)
	}
	if got := BlockToB64(block); got != "gEgAAAAAAAAAAAAAAAAAAQ==" {
		t.Fatalf("Poly2BlockGCM([12,127,9,0]) = %s, want gEgAAAAAAAAAAAAAAAAAAQ==", got)
	}
}

func TestBlock2PolyGCMInvertsPoly2Block(t *testing.T) {
	block, err := B64ToBlock("gEgAAAAAAAAAAAAAAAAAAQ==")
	if err != nil {
		t.Fatalf("B64ToBlock error: %v", err)
	}
	got := Block2PolyGCM(block)
	want := []int{0, 9, 12, 127}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Block2PolyGCM = %v, want %v", got, want)
	}
}

func TestToGCMSemIsInvolution(t *testing.T) {
	block, err := B64ToBlock("ARIAAAAAAAAAAAAAAAAAgA==")
	if err != nil {
		t.Fatalf("B64ToBlock error: %v", err)
	}
	if roundTrip := FromGCMSem(ToGCMSem(block)); roundTrip != block {
		t.Fatalf("ToGCMSem/FromGCMSem did not round-trip: got %v, want %v", roundTrip, block)
	}
}

func TestB64BlocksRoundTrip(t *testing.T) {
	blocks := [][16]byte{
		{1, 2, 3},
		{4, 5, 6, 7, 8},
	}
	encoded := BlocksToB64(blocks)
	decoded, err := B64ToBlocks(encoded)
	if err != nil {
		t.Fatalf("B64ToBlocks error: %v", err)
	}
	if !reflect.DeepEqual(decoded, blocks) {
		t.Fatalf("B64ToBlocks(BlocksToB64(blocks)) = %v, want %v", decoded, blocks)
	}
}

func TestB64ToBlockRejectsWrongLength(t *testing.T) {
	if _, err := B64ToBlock(BytesToB64([]byte{1, 2, 3})); err == nil {
		t.Fatalf("expected error decoding a non-16-byte block")
	}
}
