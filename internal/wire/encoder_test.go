package wire

import (
	"bytes"
	"testing"

	imap "github.com/arkemlar/imapengine"
)

func TestEncoderQuotedEscaping(t *testing.T) {
	enc := NewEncoder()
	enc.Quoted(`a"b\c`)
	lines := enc.Lines()
	if len(lines) != 1 {
		t.Fatalf("Lines() = %d chunks, want 1", len(lines))
	}
	if want := `"a\"b\\c"`; string(lines[0]) != want {
		t.Errorf("Quoted() wrote %q, want %q", lines[0], want)
	}
}

func TestEncoderQuotedRejectsCRLF(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Quoted() did not panic on embedded CRLF")
		}
	}()
	NewEncoder().Quoted("a\r\nb")
}

func TestEncoderStringPrefersLiteralForCRLF(t *testing.T) {
	enc := NewEncoder()
	enc.String("a\r\nb")
	lines := enc.Lines()
	if len(lines) != 2 {
		t.Fatalf("Lines() = %d chunks, want 2 (literal length line + payload)", len(lines))
	}
	if want := "{4}\r\n"; string(lines[0]) != want {
		t.Errorf("first chunk = %q, want %q", lines[0], want)
	}
	if string(lines[1]) != "a\r\nb" {
		t.Errorf("second chunk = %q, want %q", lines[1], "a\r\nb")
	}
}

func TestEncoderStringPrefersQuotedForShortPlainText(t *testing.T) {
	enc := NewEncoder()
	enc.String("INBOX")
	lines := enc.Lines()
	if len(lines) != 1 || string(lines[0]) != `"INBOX"` {
		t.Errorf("Lines() = %q, want one chunk %q", lines, `"INBOX"`)
	}
}

func TestEncoderLiteralNeedsContinuation(t *testing.T) {
	enc := NewEncoder()
	enc.Atom("A1").SP().Atom("APPEND").SP().Literal([]byte("hi")).CRLF()
	lines := enc.Lines()
	if len(lines) != 2 {
		t.Fatalf("Lines() = %d chunks, want 2", len(lines))
	}
	if !NeedsContinuation(lines[0]) {
		t.Errorf("NeedsContinuation(%q) = false, want true", lines[0])
	}
	if NeedsContinuation(lines[1]) {
		t.Errorf("NeedsContinuation(%q) = true, want false", lines[1])
	}
	if want := "hi\r\n"; string(lines[1]) != want {
		t.Errorf("second chunk = %q, want %q", lines[1], want)
	}
}

func TestEncoderList(t *testing.T) {
	enc := NewEncoder()
	enc.List(func(e *Encoder) {
		e.Flag(imap.FlagSeen).SP().Flag(imap.FlagDeleted)
	})
	if want := `(\Seen \Deleted)`; string(bytes.Join(enc.Lines(), nil)) != want {
		t.Errorf("List() wrote %q, want %q", enc.Lines(), want)
	}
}

func TestEncoderNumSet(t *testing.T) {
	enc := NewEncoder()
	enc.NumSet(imap.SeqSetRange(imap.Num(1), imap.StarBound))
	if want := "1:*"; string(bytes.Join(enc.Lines(), nil)) != want {
		t.Errorf("NumSet() wrote %q, want %q", enc.Lines(), want)
	}
}
