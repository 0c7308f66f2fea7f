package irq

import "testing"

func TestNewGateSplitsOffset(t *testing.T) {
	g := newGate(0xDEADBEEF)

	if g.offsetLow != 0xBEEF {
		t.Fatalf("expected offsetLow 0xBEEF; got %#x", g.offsetLow)
	}
	if g.offsetHigh != 0xDEAD {
		t.Fatalf("expected offsetHigh 0xDEAD; got %#x", g.offsetHigh)
	}
	if g.selector != kernelCodeSelector {
		t.Fatalf("expected selector %#x; got %#x", kernelCodeSelector, g.selector)
	}
	if g.typeAttr != gateTypeInterrupt {
		t.Fatalf("expected type/attr byte %#x; got %#x", gateTypeInterrupt, g.typeAttr)
	}
}
