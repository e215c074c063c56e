package plan

import (
	"bytes"
	stdgzip "compress/gzip"
	"io"
	"testing"
)

func TestTransformers_Reversible(t *testing.T) {
	inputs := map[string][]byte{
		"empty": {},
		"short": []byte("hello"),
		"large": bytes.Repeat([]byte{0, 1, 2, 3, 250}, 50000),
	}
	transformers := []Transformer{GzipTransformer{}, GzipTransformer{Level: 9}, ByteReverser{}}

	for _, tr := range transformers {
		for name, in := range inputs {
			t.Run(tr.Name()+"/"+name, func(t *testing.T) {
				fwd, err := tr.Forward(in)
				if err != nil {
					t.Fatalf("Forward() error = %v", err)
				}
				back, err := tr.Reverse(fwd)
				if err != nil {
					t.Fatalf("Reverse() error = %v", err)
				}
				if !bytes.Equal(back, in) {
					t.Error("Reverse(Forward(x)) != x")
				}
			})
		}
	}
}

func TestGzipTransformer_RejectsGarbage(t *testing.T) {
	if _, err := (GzipTransformer{}).Reverse([]byte("not gzip")); err == nil {
		t.Error("Reverse() error = nil, want error")
	}
}

func TestByteReverser(t *testing.T) {
	out, _ := ByteReverser{}.Forward([]byte("abc"))
	if string(out) != "cba" {
		t.Errorf("Forward(abc) = %q, want cba", out)
	}
}

// Objects written before the codec change must stay readable, and the
// output must stay plain RFC 1952 gzip.
func TestGzipTransformer_InteroperatesWithStdlib(t *testing.T) {
	payload := bytes.Repeat([]byte("interop "), 4096)

	var buf bytes.Buffer
	w := stdgzip.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	got, err := GzipTransformer{}.Reverse(buf.Bytes())
	if err != nil || !bytes.Equal(got, payload) {
		t.Fatalf("Reverse(stdlib gzip) = (%d bytes, %v)", len(got), err)
	}

	fwd, err := GzipTransformer{Level: 1}.Forward(payload)
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	r, err := stdgzip.NewReader(bytes.NewReader(fwd))
	if err != nil {
		t.Fatalf("stdlib NewReader() error = %v", err)
	}
	back, err := io.ReadAll(r)
	if err != nil || !bytes.Equal(back, payload) {
		t.Errorf("stdlib read of Forward() = (%d bytes, %v)", len(back), err)
	}
}

func TestLookupTransformer(t *testing.T) {
	for _, name := range []string{"gzip", "reverse"} {
		tr, ok := LookupTransformer(name)
		if !ok || tr.Name() != name {
			t.Errorf("LookupTransformer(%q) = (%v, %v)", name, tr, ok)
		}
	}
	if _, ok := LookupTransformer("rot13"); ok {
		t.Error("LookupTransformer(rot13) found a transformer")
	}
}
