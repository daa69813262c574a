package runtime

import (
	"context"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/dukt/value"
)

func TestCBOR_RoundTrip(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()

	s, err := Eval[string](ctx, rt, `
		var v = {name: "dukt", n: 3, pi: 1.5, ok: true, none: null, list: [1, "two"], nested: {a: []}};
		JSON.stringify(CBOR.decode(CBOR.encode(v)));
	`)
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	want := `{"list":[1,"two"],"n":3,"name":"dukt","nested":{"a":[]},"none":null,"ok":true,"pi":1.5}`
	if s != want {
		t.Errorf("round trip = %s\nwant %s", s, want)
	}
}

func TestCBOR_EncodeMatchesGo(t *testing.T) {
	rt := newRuntime(t, nil)

	buf, err := Eval[value.Buffer](context.Background(), rt, `CBOR.encode({b: 2, a: "x"})`)
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}

	var got map[string]any
	if err := cbor.Unmarshal(buf, &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if got["a"] != "x" || got["b"] != uint64(2) {
		t.Errorf("decoded %v", got)
	}

	want, err := cborEncMode.Marshal(map[string]any{"a": "x", "b": int64(2)})
	if err != nil {
		t.Fatal(err)
	}
	if string(want) != string(buf) {
		t.Errorf("encoding is not canonical: %x vs %x", buf, want)
	}
}

func TestCBOR_Buffers(t *testing.T) {
	rt := newRuntime(t, nil)

	n, err := Eval[int32](context.Background(), rt, `
		var raw = new Uint8Array([7, 8, 9]).buffer;
		var back = CBOR.decode(CBOR.encode(raw));
		new Uint8Array(back)[2];
	`)
	if err != nil || n != 9 {
		t.Errorf("buffer round trip = %d, %v", n, err)
	}
}

func TestCBOR_Errors(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()

	tests := []struct {
		src  string
		want string
	}{
		{`CBOR.encode(function () {})`, "functions cannot be encoded"},
		{`var o = {}; o.self = o; CBOR.encode(o)`, "too deeply"},
		{`CBOR.decode("text")`, "buffer required"},
		{`CBOR.decode(new Uint8Array([0xff]).buffer)`, "CBOR.decode"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Eval[value.Buffer](ctx, rt, tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
