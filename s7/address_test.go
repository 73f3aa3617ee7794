package s7

import "testing"

func TestParseTagAddress(t *testing.T) {
	cases := []struct {
		in   string
		want TagAddress
	}{
		{"DB1.DBX0.0", TagAddress{Area: AreaDataBlock, WordLength: WLBit, DBNumber: 1, Start: 0, BitNum: 0}},
		{"db1.dbx0.7", TagAddress{Area: AreaDataBlock, WordLength: WLBit, DBNumber: 1, Start: 0, BitNum: 7}},
		{"DB10.DBB4", TagAddress{Area: AreaDataBlock, WordLength: WLByte, DBNumber: 10, Start: 4, BitNum: -1}},
		{"DB10.DBW4", TagAddress{Area: AreaDataBlock, WordLength: WLWord, DBNumber: 10, Start: 4, BitNum: -1}},
		{"DB10.DBD4", TagAddress{Area: AreaDataBlock, WordLength: WLDWord, DBNumber: 10, Start: 4, BitNum: -1}},
		{"M0.0", TagAddress{Area: AreaMerker, WordLength: WLBit, Start: 0, BitNum: 0}},
		{"MB5", TagAddress{Area: AreaMerker, WordLength: WLByte, Start: 5, BitNum: -1}},
		{"MW5", TagAddress{Area: AreaMerker, WordLength: WLWord, Start: 5, BitNum: -1}},
		{"MD5", TagAddress{Area: AreaMerker, WordLength: WLDWord, Start: 5, BitNum: -1}},
		{"IB0", TagAddress{Area: AreaProcessInput, WordLength: WLByte, Start: 0, BitNum: -1}},
		{"QW2", TagAddress{Area: AreaProcessOutput, WordLength: WLWord, Start: 2, BitNum: -1}},
		{"T5", TagAddress{Area: AreaTimer, WordLength: WLTimer, Start: 5, BitNum: -1}},
		{"C12", TagAddress{Area: AreaCounter, WordLength: WLCounter, Start: 12, BitNum: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTagAddress(tc.in)
			if err != nil {
				t.Fatalf("ParseTagAddress(%q): %v", tc.in, err)
			}
			if *got != tc.want {
				t.Fatalf("ParseTagAddress(%q) = %+v, want %+v", tc.in, *got, tc.want)
			}
		})
	}
}

func TestParseTagAddressErrors(t *testing.T) {
	cases := []string{"", "XYZ", "DB1.DBX0", "DB1.DBQ0", "M0.9", "DBfoo"}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseTagAddress(in); err == nil {
				t.Fatalf("ParseTagAddress(%q): expected error, got nil", in)
			}
		})
	}
}

func TestTagAddressDataItem(t *testing.T) {
	addr, err := ParseTagAddress("DB3.DBW10")
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 2)
	item := addr.DataItem(1, buf)
	if item.Area != AreaDataBlock || item.WordLength != WLWord || item.DBNumber != 3 || item.Start != 10 {
		t.Fatalf("unexpected DataItem: %+v", item)
	}
}
