package voice

import "testing"

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry(NewVapiAdapter(""), NewRetellAdapter(""))

	if a := reg.Resolve("vapi"); a == nil || a.Name() != ProviderVapi {
		t.Fatalf("expected vapi adapter")
	}
	if a := reg.Resolve("retell"); a == nil || a.Name() != ProviderRetell {
		t.Fatalf("expected retell adapter")
	}
	if a := reg.Resolve("bland"); a != nil {
		t.Fatalf("unknown provider must resolve to nil")
	}

	providers := reg.Providers()
	if len(providers) != 2 || providers[0] != "retell" || providers[1] != "vapi" {
		t.Fatalf("unexpected providers: %v", providers)
	}
}
