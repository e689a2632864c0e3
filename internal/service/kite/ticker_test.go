package kite

import (
	"encoding/binary"
	"sync"
	"testing"
)

func ltpFrame(token uint32, paise uint32) []byte {
	frame := []byte{0, 1, 0, 8}
	frame = binary.BigEndian.AppendUint32(frame, token)
	frame = binary.BigEndian.AppendUint32(frame, paise)
	return frame
}

// Frame decoding and the connection lifecycle run on different goroutines,
// so the shared state must stay consistent under concurrent access.
func TestTickerConcurrentFrameAndLifecycle(t *testing.T) {
	tk := &Ticker{spotToken: NiftySpotToken, vixToken: IndiaVIXToken, spotSymbol: "NIFTY 50"}

	vix := ltpFrame(IndiaVIXToken, 1325)
	spot := ltpFrame(NiftySpotToken, 2501240)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tk.parseFrame(vix)
			tk.parseFrame(spot)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = tk.Close()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = tk.IsConnected()
		}
	}()
	wg.Wait()

	ticks := tk.parseFrame(spot)
	if len(ticks) != 1 || ticks[0].VIX != 13.25 {
		t.Fatalf("expected a spot tick carrying the last VIX, got %+v", ticks)
	}
}
