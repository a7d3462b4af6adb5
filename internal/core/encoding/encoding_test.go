package encoding

import (
	"testing"

	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/stretchr/testify/require"
)

func TestBerReadLength(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    uint16
		wantErr bool
	}{
		{name: "short form zero", input: []byte{0x00}, want: 0},
		{name: "short form 1", input: []byte{0x01}, want: 1},
		{name: "short form 127", input: []byte{0x7F}, want: 127},
		{name: "long form 1 byte - 128", input: []byte{0x81, 0x80}, want: 128},
		{name: "long form 2 bytes - 0xFFFF", input: []byte{0x82, 0xFF, 0xFF}, want: 0xFFFF},
		{name: "long form 2 bytes - 1000", input: []byte{0x82, 0x03, 0xE8}, want: 1000},
		{name: "empty input", input: []byte{}, wantErr: true},
		{name: "invalid long form size 3", input: []byte{0x83}, wantErr: true},
		{name: "truncated long form 2 bytes", input: []byte{0x82, 0x01}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BerReadLength(buffer.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBerWriteReadLengthRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 50, 127, 128, 200, 255, 256, 1000, 0x7FFF, 0xFFFF}
	for _, size := range sizes {
		w := buffer.NewWriter(4)
		require.NoError(t, BerWriteLength(size, w))

		got, err := BerReadLength(buffer.NewReader(w.Bytes()))
		require.NoError(t, err)
		require.Equal(t, size, int(got))
	}
}

func TestBerReadInteger(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    int
		wantErr bool
	}{
		{name: "1 byte - zero", input: []byte{0x02, 0x01, 0x00}, want: 0},
		{name: "2 bytes - 256", input: []byte{0x02, 0x02, 0x01, 0x00}, want: 256},
		{name: "3 bytes", input: []byte{0x02, 0x03, 0x01, 0x02, 0x03}, want: 0x010203},
		{name: "4 bytes", input: []byte{0x02, 0x04, 0x01, 0x02, 0x03, 0x04}, want: 0x01020304},
		{name: "wrong tag", input: []byte{0x03, 0x01, 0x00}, wantErr: true},
		{name: "truncated", input: []byte{0x02, 0x02, 0x01}, wantErr: true},
		{name: "invalid size 5", input: []byte{0x02, 0x05, 0x01, 0x02, 0x03, 0x04, 0x05}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BerReadInteger(buffer.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBerWriteInteger(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want []byte
	}{
		{name: "zero", n: 0, want: []byte{0x02, 0x01, 0x00}},
		{name: "255", n: 255, want: []byte{0x02, 0x01, 0xFF}},
		{name: "256", n: 256, want: []byte{0x02, 0x02, 0x01, 0x00}},
		{name: "0x10000", n: 0x10000, want: []byte{0x02, 0x04, 0x00, 0x01, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := buffer.NewWriter(8)
			require.NoError(t, BerWriteInteger(tt.n, w))
			require.Equal(t, tt.want, w.Bytes())
		})
	}
}

func TestBerWriteOctetString(t *testing.T) {
	tests := []struct {
		name string
		str  []byte
		want []byte
	}{
		{name: "empty", str: []byte{}, want: []byte{0x04, 0x00}},
		{name: "hello", str: []byte("hello"), want: []byte{0x04, 0x05, 'h', 'e', 'l', 'l', 'o'}},
		{name: "binary data", str: []byte{0x00, 0xFF, 0x80}, want: []byte{0x04, 0x03, 0x00, 0xFF, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := buffer.NewWriter(16)
			require.NoError(t, BerWriteOctetString(tt.str, w))
			require.Equal(t, tt.want, w.Bytes())
		})
	}
}

func TestBerApplicationTagRoundTrip(t *testing.T) {
	w := buffer.NewWriter(8)
	require.NoError(t, BerWriteApplicationTag(101, 42, w))

	got, err := BerReadApplicationTag(buffer.NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, uint8(101), got)
}

func TestBerReadEnumerated(t *testing.T) {
	w := buffer.NewWriter(8)
	require.NoError(t, w.WriteUint8(TagEnumerated))
	require.NoError(t, BerWriteLength(1, w))
	require.NoError(t, w.WriteUint8(3))

	got, err := BerReadEnumerated(buffer.NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, uint8(3), got)
}

func TestBerInteger16RoundTrip(t *testing.T) {
	w := buffer.NewWriter(8)
	require.NoError(t, BerWriteInteger16(0x1234, w))

	got, err := BerReadInteger16(buffer.NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), got)
}

func TestPerLengthRoundTrip(t *testing.T) {
	values := []uint16{0, 1, 0x7f, 0x80, 0xff, 0x1234, 0x7fff}
	for _, v := range values {
		w := buffer.NewWriter(4)
		require.NoError(t, PerWriteLength(v, w))

		got, err := PerReadLength(buffer.NewReader(w.Bytes()))
		require.NoError(t, err)
		require.Equal(t, int(v), got)
	}
}

func TestPerIntegerRoundTrip(t *testing.T) {
	values := []int{0, 1, 0xff, 0x100, 0xffff, 0x10000, 0x12345678}
	for _, v := range values {
		w := buffer.NewWriter(8)
		require.NoError(t, PerWriteInteger(v, w))

		got, err := PerReadInteger(buffer.NewReader(w.Bytes()))
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestPerInteger16RoundTrip(t *testing.T) {
	w := buffer.NewWriter(4)
	require.NoError(t, PerWriteInteger16(1001, 1001, w))

	got, err := PerReadInteger16(1001, buffer.NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, uint16(1001), got)
}

func TestPerObjectIdentifierRoundTrip(t *testing.T) {
	oid := [6]byte{0, 0, 20, 124, 0, 1}

	w := buffer.NewWriter(8)
	require.NoError(t, PerWriteObjectIdentifier(oid, w))

	ok, err := PerReadObjectIdentifier(oid, buffer.NewReader(w.Bytes()))
	require.NoError(t, err)
	require.True(t, ok)

	other := oid
	other[5] = 2
	ok, err = PerReadObjectIdentifier(other, buffer.NewReader(w.Bytes()))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPerOctetStreamRoundTrip(t *testing.T) {
	w := buffer.NewWriter(8)
	require.NoError(t, PerWriteOctetStream("\x01\x00", 2, w))

	ok, err := PerReadOctetStream([]byte{0x01, 0x00}, 2, buffer.NewReader(w.Bytes()))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPerWriteNumericString(t *testing.T) {
	w := buffer.NewWriter(8)
	require.NoError(t, PerWriteNumericString("1234", 4, w))
	require.Equal(t, []byte{0x00, 0x12, 0x34}, w.Bytes())
}

func TestPerChoiceAndSelection(t *testing.T) {
	w := buffer.NewWriter(4)
	require.NoError(t, PerWriteChoice(0x01, w))
	require.NoError(t, PerWriteSelection(0x02, w))

	r := buffer.NewReader(w.Bytes())
	choice, err := PerReadChoice(r)
	require.NoError(t, err)
	require.Equal(t, uint8(0x01), choice)
}
