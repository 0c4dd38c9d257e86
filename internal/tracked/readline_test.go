package tracked

import (
	"os"
	"runtime"
	"testing"
)

func expectLine(t *testing.T, f *File, want string) {
	t.Helper()
	got, ok := f.ReadLine()
	if want == "" {
		if ok || got != "" {
			t.Fatalf("ReadLine() = %q, %v; want nothing", got, ok)
		}
		return
	}
	if !ok || got != want {
		t.Fatalf("ReadLine() = %q, %v; want %q, true", got, ok, want)
	}
}

func TestFile_ReadLine_NotExists(t *testing.T) {
	f, _ := setupTestFile(t, "")

	expectLine(t, f, "")
	expectLine(t, f, "")
}

func TestFile_ReadLine_EmptyFile(t *testing.T) {
	f, path := setupTestFile(t, "")
	writeFile(t, path, "")

	expectLine(t, f, "")
	expectLine(t, f, "")
}

func TestFile_ReadLine_Simple(t *testing.T) {
	f, path := setupTestFile(t, "hello\nworld\n")

	expectLine(t, f, "hello\n")
	expectLine(t, f, "world\n")
	expectLine(t, f, "")

	appendFile(t, path, "hello\n\n")
	expectLine(t, f, "hello\n")
	expectLine(t, f, "\n")
	expectLine(t, f, "")
}

func TestFile_ReadLine_WithoutNewline(t *testing.T) {
	f, path := setupTestFile(t, "hello\nworld\n")

	expectLine(t, f, "hello\n")
	expectLine(t, f, "world\n")
	expectLine(t, f, "")

	appendFile(t, path, "hello")
	expectLine(t, f, "")
	expectLine(t, f, "")

	appendFile(t, path, "\n")
	expectLine(t, f, "hello\n")
	expectLine(t, f, "")
}

func TestFile_ReadLine_PartialKeepsPosition(t *testing.T) {
	f, path := setupTestFile(t, "hello\n")

	expectLine(t, f, "hello\n")
	appendFile(t, path, "partial")

	for range 3 {
		expectLine(t, f, "")
		if f.Offset() != int64(len("hello\n")) {
			t.Fatalf("Offset() = %d, want %d", f.Offset(), len("hello\n"))
		}
	}

	appendFile(t, path, "\n")
	expectLine(t, f, "partial\n")
}

func TestFile_ReadLine_CarriageReturn(t *testing.T) {
	f, path := setupTestFile(t, "dos\r\n")

	expectLine(t, f, "dos\r\n")
	appendFile(t, path, "mac\r")
	expectLine(t, f, "mac\r")
}

func TestFile_ReadLine_CreatedLater(t *testing.T) {
	f, path := setupTestFile(t, "")

	expectLine(t, f, "")
	writeFile(t, path, "late\n")
	expectLine(t, f, "late\n")
}

func TestFile_ReadLine_ContinueAfterRemove(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("can't unlink an open file")
	}
	f, path := setupTestFile(t, "hello\nworld\n")

	expectLine(t, f, "hello\n")
	expectLine(t, f, "world\n")
	expectLine(t, f, "")

	appendFile(t, path, "hello\n")
	expectLine(t, f, "hello\n")

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	expectLine(t, f, "")

	writeFile(t, path, "second\nfile\n")
	expectLine(t, f, "second\n")
	expectLine(t, f, "file\n")
	expectLine(t, f, "")
}

func TestFile_ReadLine_DrainsDeletedFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("can't unlink an open file")
	}
	f, path := setupTestFile(t, "one\n")

	expectLine(t, f, "one\n")

	// Written by a process that still holds the old file open.
	w, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteString("two\nthree\n"); err != nil {
		t.Fatal(err)
	}

	expectLine(t, f, "two\n")
	expectLine(t, f, "three\n")
	expectLine(t, f, "")

	writeFile(t, path, "fresh\n")
	expectLine(t, f, "fresh\n")
}
