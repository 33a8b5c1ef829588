package locafile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleLoca = `<?xml version="1.0" encoding="utf-8"?>
<contentList>
	<!-- generated by the toolkit -->
	<content contentuid="h1" version="1">Hello</content>
	<content contentuid="h2" version="1"></content>
	<content contentuid="h3" version="2">World &amp; &lt;LSTag Tooltip="x"&gt;friends&lt;/LSTag&gt;</content>
	<content contentuid="h4" version="1"/>
	<group name="nested">
		<content contentuid="h5" version="1"><![CDATA[Raw <b>text</b>]]></content>
	</group>
	<other attr='single'>keep me</other>
</contentList>
`

func mustParse(t *testing.T, s string) *File {
	t.Helper()
	f, err := Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return f
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

func TestParseContents(t *testing.T) {
	f := mustParse(t, sampleLoca)

	if root := f.Root(); root == nil || root.Name.Local != "contentList" {
		t.Fatalf("Root() = %v, want contentList", root)
	}

	contents := f.Contents()
	if len(contents) != 5 {
		t.Fatalf("got %d content nodes, want 5", len(contents))
	}

	wantIDs := []string{"h1", "h2", "h3", "h4", "h5"}
	for i, n := range contents {
		id, ok := n.AttrValue(UIDAttr)
		if !ok || id != wantIDs[i] {
			t.Errorf("contents[%d] uid = %q (%v), want %q", i, id, ok, wantIDs[i])
		}
	}

	if got := contents[0].Text(); got != "Hello" {
		t.Errorf("contents[0].Text() = %q, want Hello", got)
	}
	if got := contents[1].Text(); got != "" {
		t.Errorf("contents[1].Text() = %q, want empty", got)
	}
	if got := contents[2].Text(); got != `World & <LSTag Tooltip="x">friends</LSTag>` {
		t.Errorf("contents[2].Text() = %q", got)
	}
	if got := contents[3].Text(); got != "" {
		t.Errorf("contents[3].Text() = %q, want empty", got)
	}
	if got := contents[4].Text(); got != "Raw <b>text</b>" {
		t.Errorf("contents[4].Text() = %q, want CDATA payload", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only declaration", `<?xml version="1.0"?>`},
		{"unclosed root", `<contentList><content contentuid="1">Hi</content>`},
		{"mismatched tags", `<contentList><content>Hi</contnt></contentList>`},
		{"bad entity", `<contentList><content>&bogus;</content></contentList>`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.input)); err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tc.input)
			}
		})
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.xml"))
	if err == nil {
		t.Fatal("ParseFile(missing) succeeded, want error")
	}
}

// ---------------------------------------------------------------------------
// Round trip
// ---------------------------------------------------------------------------

func TestMarshalNoOpIsByteIdentical(t *testing.T) {
	f := mustParse(t, sampleLoca)
	got := string(f.Marshal())
	if got != sampleLoca {
		t.Fatalf("Marshal() changed unmodified document:\n got: %q\nwant: %q", got, sampleLoca)
	}
}

func TestMarshalReplacesDeclaration(t *testing.T) {
	input := "<?xml version='1.0' encoding='UTF-8' standalone='yes'?>\n<contentList><content contentuid=\"a\">x</content></contentList>"
	f := mustParse(t, input)
	want := Header + "\n<contentList><content contentuid=\"a\">x</content></contentList>"
	if got := string(f.Marshal()); got != want {
		t.Fatalf("Marshal() = %q, want %q", got, want)
	}
}

func TestMarshalAddsMissingDeclaration(t *testing.T) {
	input := `<contentList><content contentuid="a">x</content></contentList>`
	f := mustParse(t, input)
	want := Header + "\n" + input
	if got := string(f.Marshal()); got != want {
		t.Fatalf("Marshal() = %q, want %q", got, want)
	}
}

func TestSetTextEscapesAndKeepsNeighbours(t *testing.T) {
	f := mustParse(t, sampleLoca)
	contents := f.Contents()

	contents[0].SetText(`Bonjour & <LSTag>ami</LSTag>`)
	out := string(f.Marshal())

	want := `<content contentuid="h1" version="1">Bonjour &amp; &lt;LSTag&gt;ami&lt;/LSTag&gt;</content>`
	if !strings.Contains(out, want) {
		t.Fatalf("output missing %q:\n%s", want, out)
	}
	expected := strings.Replace(sampleLoca,
		`<content contentuid="h1" version="1">Hello</content>`, want, 1)
	if out != expected {
		t.Fatalf("unrelated bytes changed:\n got: %q\nwant: %q", out, expected)
	}

	reparsed := mustParse(t, out)
	if got := reparsed.Contents()[0].Text(); got != `Bonjour & <LSTag>ami</LSTag>` {
		t.Errorf("reparsed text = %q", got)
	}
}

func TestSetTextSameValueKeepsRawBytes(t *testing.T) {
	f := mustParse(t, sampleLoca)
	n := f.Contents()[2]
	n.SetText(n.Text())
	if got := string(f.Marshal()); got != sampleLoca {
		t.Fatalf("SetText(same) changed output:\n%s", got)
	}
}

func TestSetTextOnSelfClosingElement(t *testing.T) {
	input := `<contentList><content contentuid="a" version="1" /></contentList>`
	f := mustParse(t, input)
	f.Contents()[0].SetText("Filled")

	want := Header + "\n" + `<contentList><content contentuid="a" version="1">Filled</content></contentList>`
	if got := string(f.Marshal()); got != want {
		t.Fatalf("Marshal() = %q, want %q", got, want)
	}
}

func TestSetTextOnEmptyElement(t *testing.T) {
	input := `<contentList><content contentuid="a"></content></contentList>`
	f := mustParse(t, input)
	n := f.Contents()[0]

	n.SetText("")
	if got := string(f.Marshal()); got != Header+"\n"+input {
		t.Fatalf("SetText(\"\") changed output: %q", got)
	}

	n.SetText("New")
	want := Header + "\n" + `<contentList><content contentuid="a">New</content></contentList>`
	if got := string(f.Marshal()); got != want {
		t.Fatalf("Marshal() = %q, want %q", got, want)
	}
}

func TestTextJoinsMixedCharacterData(t *testing.T) {
	input := `<contentList><content contentuid="1">Hello <![CDATA[<b>]]> big<!-- note --> World</content></contentList>`
	f := mustParse(t, input)
	n := f.Contents()[0]

	if got, want := n.Text(), "Hello <b> big World"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
	if got := string(f.Marshal()); got != Header+"\n"+input {
		t.Fatalf("untouched mixed content changed: %q", got)
	}

	n.SetText("HELLO <B> BIG WORLD")
	want := Header + "\n" + `<contentList><content contentuid="1">HELLO &lt;B&gt; BIG WORLD</content></contentList>`
	if got := string(f.Marshal()); got != want {
		t.Fatalf("Marshal() = %q, want %q", got, want)
	}
	if got := mustParse(t, string(f.Marshal())).Contents()[0].Text(); got != "HELLO <B> BIG WORLD" {
		t.Errorf("reparsed text = %q", got)
	}
}

func TestSetTextKeepsChildElements(t *testing.T) {
	input := `<contentList><content contentuid="1">Hi <![CDATA[there]]><br/>tail</content></contentList>`
	f := mustParse(t, input)
	n := f.Contents()[0]
	if got := n.Text(); got != "Hi there" {
		t.Fatalf("Text() = %q, want %q", got, "Hi there")
	}

	n.SetText("Salut")
	want := Header + "\n" + `<contentList><content contentuid="1">Salut<br/>tail</content></contentList>`
	if got := string(f.Marshal()); got != want {
		t.Fatalf("Marshal() = %q, want %q", got, want)
	}
}

func TestSetTextDropsInvalidXMLCharacters(t *testing.T) {
	f := mustParse(t, `<contentList><content contentuid="1">Hello</content></contentList>`)
	f.Contents()[0].SetText("Bon\x00jour\x1b[0m\tami\uFFFE")

	out := string(f.Marshal())
	if !strings.Contains(out, ">Bonjour[0m\tami</content>") {
		t.Fatalf("invalid characters not dropped: %q", out)
	}
	reparsed, err := Parse([]byte(out))
	if err != nil {
		t.Fatalf("output does not parse again: %v", err)
	}
	if got := reparsed.Contents()[0].Text(); got != "Bonjour[0m\tami" {
		t.Errorf("reparsed text = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Encodings
// ---------------------------------------------------------------------------

func TestParseStripsUTF8BOM(t *testing.T) {
	input := "\xEF\xBB\xBF" + `<?xml version="1.0" encoding="utf-8"?><contentList><content contentuid="a">Hi</content></contentList>`
	f := mustParse(t, input)
	if got := f.Contents()[0].Text(); got != "Hi" {
		t.Fatalf("Text() = %q, want Hi", got)
	}
	if got := string(f.Marshal()); strings.HasPrefix(got, "\xEF\xBB\xBF") {
		t.Fatalf("Marshal() kept BOM: %q", got)
	}
}

func TestParseTranscodesLegacyEncoding(t *testing.T) {
	// "Café" in windows-1252: é = 0xE9.
	input := "<?xml version=\"1.0\" encoding=\"windows-1252\"?>\n<contentList><content contentuid=\"a\">Caf\xE9</content></contentList>"
	f := mustParse(t, input)
	if got := f.Contents()[0].Text(); got != "Café" {
		t.Fatalf("Text() = %q, want Café", got)
	}
	want := Header + "\n<contentList><content contentuid=\"a\">Café</content></contentList>"
	if got := string(f.Marshal()); got != want {
		t.Fatalf("Marshal() = %q, want %q", got, want)
	}
}

func TestParseTranscodesUTF16(t *testing.T) {
	src := `<contentList><content contentuid="a">Hi</content></contentList>`
	data := []byte{0xFF, 0xFE}
	for _, r := range src {
		data = append(data, byte(r), 0)
	}
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(UTF-16): %v", err)
	}
	if got := f.Contents()[0].Text(); got != "Hi" {
		t.Fatalf("Text() = %q, want Hi", got)
	}
}

func TestParseUnknownEncoding(t *testing.T) {
	input := `<?xml version="1.0" encoding="x-made-up"?><contentList/>`
	if _, err := Parse([]byte(input)); err == nil {
		t.Fatal("Parse(unknown encoding) succeeded, want error")
	}
}

// ---------------------------------------------------------------------------
// WriteFile
// ---------------------------------------------------------------------------

func TestWriteFileCreatesDirectories(t *testing.T) {
	f := mustParse(t, sampleLoca)
	path := filepath.Join(t.TempDir(), "Localization", "Chinese", "chinese.xml")

	if err := f.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != sampleLoca {
		t.Fatalf("written data differs:\n%s", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("directory has %d entries, want only the output file", len(entries))
	}
}

func TestWriteFileFailsWithoutPartialOutput(t *testing.T) {
	f := mustParse(t, sampleLoca)
	dir := t.TempDir()
	// The target path is an existing directory, so the final rename fails.
	target := filepath.Join(dir, "out.xml")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := f.WriteFile(target); err == nil {
		t.Fatal("WriteFile over a directory succeeded, want error")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}
