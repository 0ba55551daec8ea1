package flate

import (
	"bytes"
	"testing"
)

// storedBlock builds a single final BTYPE=00 block by hand, bypassing the
// encoder, so the decoder's framing can be tested in isolation.
func storedBlock(payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(1) // BFINAL=1, BTYPE=00, rest of byte zero-padded
	length := uint16(len(payload))
	nlen := ^length
	buf.WriteByte(byte(length))
	buf.WriteByte(byte(length >> 8))
	buf.WriteByte(byte(nlen))
	buf.WriteByte(byte(nlen >> 8))
	buf.Write(payload)
	return buf.Bytes()
}

func TestInflateStoredBlock(t *testing.T) {
	want := []byte("hello world")
	got, err := Inflate(storedBlock(want), 0)
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Inflate = %q, want %q", got, want)
	}
}

func TestInflateStoredBlockRejectsBadNlen(t *testing.T) {
	raw := storedBlock([]byte("abc"))
	raw[3] ^= 0xff // corrupt NLEN
	if _, err := Inflate(raw, 0); err != ErrInvalidStoredLen {
		t.Fatalf("err = %v, want ErrInvalidStoredLen", err)
	}
}

func TestInflateRejectsReservedBlockType(t *testing.T) {
	raw := []byte{0b111} // BFINAL=1, BTYPE=11
	if _, err := Inflate(raw, 0); err != ErrInvalidBlockType {
		t.Fatalf("err = %v, want ErrInvalidBlockType", err)
	}
}

func TestInflateEmptyStoredBlock(t *testing.T) {
	got, err := Inflate(storedBlock(nil), 0)
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Inflate = %q, want empty", got)
	}
}

func TestInflateRespectsMaxOutput(t *testing.T) {
	payload := bytes.Repeat([]byte{'x'}, 100)
	if _, err := Inflate(storedBlock(payload), 10); err != ErrOutputTooLarge {
		t.Fatalf("err = %v, want ErrOutputTooLarge", err)
	}
}

func TestInflateFixedHuffmanBlock(t *testing.T) {
	want := []byte("the quick brown fox jumps over the lazy dog")
	encoded := deflateFixed(tokenize(want, LevelFast))
	got, err := Inflate(encoded, 0)
	if err != nil {
		t.Fatalf("Inflate: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Inflate = %q, want %q", got, want)
	}
}
