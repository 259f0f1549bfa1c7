package pool

import "testing"

func TestByteBufferPoolRoundTrip(t *testing.T) {
	p := NewByteBufferPool(64)

	buf := p.Get()
	if len(buf) != 0 {
		t.Fatalf("Get: want zero-length buffer, got len %d", len(buf))
	}
	buf = append(buf, make([]byte, 64)...)
	p.Put(buf)

	again := p.Get()
	if len(again) != 0 {
		t.Fatalf("Get after Put: want zero-length buffer, got len %d", len(again))
	}
	if cap(again) < 64 {
		t.Fatalf("Get after Put: want capacity >= 64, got %d", cap(again))
	}
}
