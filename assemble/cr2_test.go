/*
NAME
  cr2_test.go - tests for CR2 sRAW reassembly and YCbCr conversion.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package assemble

import "testing"

func TestConvertYCbCr(t *testing.T) {
	wb := [4]float64{2, 2, 2, 0}
	pixels := []uint16{100, 16380, 16390} // cb offset 0, cr offset +10
	ConvertYCbCr(pixels, wb)

	want := []uint16{28672, 0, 8192}
	for i := range want {
		if pixels[i] != want[i] {
			t.Errorf("pixels[%d] = %d, want %d", i, pixels[i], want[i])
		}
	}
}

func TestCR2StripesPairedIdentityWithOneField(t *testing.T) {
	in := make([]uint16, 16)
	for i := range in {
		in[i] = uint16(i)
	}
	out := CR2StripesPaired(in, []int{4}, 4, 4)
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %d, want %d (identity with a single field)", i, out[i], in[i])
		}
	}
}

func TestCR2StripesPairedTwoFields(t *testing.T) {
	in := make([]uint16, 16)
	for i := range in {
		in[i] = uint16(i)
	}
	out := CR2StripesPaired(in, []int{2, 2}, 4, 4)
	want := []uint16{0, 1, 8, 9, 4, 5, 12, 13, 2, 3, 10, 11, 6, 7, 14, 15}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestCR2StripesScaled(t *testing.T) {
	in := make([]uint16, 16)
	for i := range in {
		in[i] = uint16(i)
	}
	out := CR2StripesScaled(in, []int{4, 4}, 8, 2, 1, 1)
	want := []uint16{0, 1, 2, 3, 8, 9, 10, 11, 4, 5, 6, 7, 12, 13, 14, 15}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}
