package redfish

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// mockBMC builds a TLS mock serving the given paths; anything else 404s.
func mockBMC(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range handlers {
		mux.HandleFunc(path, h)
	}
	ts := httptest.NewTLSServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}
}

func TestDiscoverVirtualMedia_Standard(t *testing.T) {
	ts := mockBMC(t, map[string]http.HandlerFunc{
		virtualMediaCollection: jsonBody(`{"Members":[
			{"@odata.id":"/redfish/v1/Managers/1/VirtualMedia/Floppy1"},
			{"@odata.id":"/redfish/v1/Managers/1/VirtualMedia/CD1"}]}`),
		"/redfish/v1/Managers/1/VirtualMedia/Floppy1": jsonBody(`{"Id":"Floppy1","MediaTypes":["Floppy"]}`),
		"/redfish/v1/Managers/1/VirtualMedia/CD1":     jsonBody(`{"Id":"CD1","MediaTypes":["CD","DVD"]}`),
	})

	c := newTestClient(ts)
	h, err := c.DiscoverVirtualMedia(context.Background())
	if err != nil {
		t.Fatalf("DiscoverVirtualMedia: %v", err)
	}
	if h.Variant != VariantStandard {
		t.Errorf("variant = %v, want %v", h.Variant, VariantStandard)
	}
	if h.Path != "/redfish/v1/Managers/1/VirtualMedia/CD1" {
		t.Errorf("path = %q", h.Path)
	}
	if h.UnmountPath != "/redfish/v1/Managers/1/VirtualMedia/CD1"+ejectMediaAction {
		t.Errorf("unmount path = %q", h.UnmountPath)
	}
}

func TestDiscoverVirtualMedia_StandardByName(t *testing.T) {
	ts := mockBMC(t, map[string]http.HandlerFunc{
		virtualMediaCollection: jsonBody(`{"Members":[
			{"@odata.id":"/redfish/v1/Managers/1/VirtualMedia/1"}]}`),
		"/redfish/v1/Managers/1/VirtualMedia/1": jsonBody(`{"Id":"1","Name":"Virtual CD"}`),
	})

	c := newTestClient(ts)
	h, err := c.DiscoverVirtualMedia(context.Background())
	if err != nil {
		t.Fatalf("DiscoverVirtualMedia: %v", err)
	}
	if h.Variant != VariantStandard {
		t.Errorf("variant = %v, want %v", h.Variant, VariantStandard)
	}
}

func TestDiscoverVirtualMedia_FallsBackToProprietary(t *testing.T) {
	ts := mockBMC(t, map[string]http.HandlerFunc{
		// Collection exists but is empty: standard probe must be rejected.
		virtualMediaCollection: jsonBody(`{"Members":[]}`),
		cfgCDPath: jsonBody(`{"Actions":{
			"#IsoConfig.Mount":{"target":"/redfish/v1/Managers/1/VM1/CfgCD/Actions/IsoConfig.Mount"},
			"#IsoConfig.UnMount":{"target":"/redfish/v1/Managers/1/VM1/CfgCD/Actions/IsoConfig.UnMount"}}}`),
	})

	c := newTestClient(ts)
	h, err := c.DiscoverVirtualMedia(context.Background())
	if err != nil {
		t.Fatalf("DiscoverVirtualMedia: %v", err)
	}
	if h.Variant != VariantProprietary {
		t.Errorf("variant = %v, want %v", h.Variant, VariantProprietary)
	}
	if h.Path != "/redfish/v1/Managers/1/VM1/CfgCD/Actions/IsoConfig.Mount" {
		t.Errorf("path = %q", h.Path)
	}
	if h.UnmountPath != "/redfish/v1/Managers/1/VM1/CfgCD/Actions/IsoConfig.UnMount" {
		t.Errorf("unmount path = %q", h.UnmountPath)
	}
}

func TestDiscoverVirtualMedia_DerivesUnmountTarget(t *testing.T) {
	ts := mockBMC(t, map[string]http.HandlerFunc{
		cfgCDPath: jsonBody(`{"Actions":{
			"#IsoConfig.Mount":{"target":"/redfish/v1/Managers/1/VM1/CfgCD/Actions/IsoConfig.Mount"}}}`),
	})

	c := newTestClient(ts)
	h, err := c.DiscoverVirtualMedia(context.Background())
	if err != nil {
		t.Fatalf("DiscoverVirtualMedia: %v", err)
	}
	if h.UnmountPath != "/redfish/v1/Managers/1/VM1/CfgCD/Actions/IsoConfig.UnMount" {
		t.Errorf("derived unmount path = %q", h.UnmountPath)
	}
}

func TestDiscoverVirtualMedia_NeitherVariant(t *testing.T) {
	ts := mockBMC(t, nil)

	c := newTestClient(ts)
	_, err := c.DiscoverVirtualMedia(context.Background())
	if err == nil {
		t.Fatal("expected discovery failure")
	}
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if rerr.Kind != KindDiscovery {
		t.Errorf("kind = %v, want %v", rerr.Kind, KindDiscovery)
	}
	if rerr.Retryable() {
		t.Error("discovery failures must not be retryable")
	}
}

func TestMountISO_Standard(t *testing.T) {
	var got string
	ts := mockBMC(t, map[string]http.HandlerFunc{
		"/redfish/v1/Managers/1/VirtualMedia/CD1/Actions/VirtualMedia.InsertMedia": func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			got = string(body)
			w.WriteHeader(http.StatusNoContent)
		},
	})

	c := newTestClient(ts)
	h := &MediaHandle{
		Path:        "/redfish/v1/Managers/1/VirtualMedia/CD1",
		Variant:     VariantStandard,
		UnmountPath: "/redfish/v1/Managers/1/VirtualMedia/CD1" + ejectMediaAction,
	}
	if err := c.MountISO(context.Background(), h, "http://10.10.1.1/images/foo.iso"); err != nil {
		t.Fatalf("MountISO: %v", err)
	}
	want := `{"Image":"http://10.10.1.1/images/foo.iso","Inserted":true,"WriteProtected":true}`
	if got != want {
		t.Errorf("payload = %s, want %s", got, want)
	}
}

func TestMountISO_ProprietaryPayload(t *testing.T) {
	var got string
	ts := mockBMC(t, map[string]http.HandlerFunc{
		"/mount": func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			got = string(body)
			w.WriteHeader(http.StatusOK)
		},
		"/unmount": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	})

	c := newTestClient(ts)
	h := &MediaHandle{Path: "/mount", Variant: VariantProprietary, UnmountPath: "/unmount"}
	if err := c.MountISO(context.Background(), h, "http://10.10.1.1/images/foo.iso"); err != nil {
		t.Fatalf("MountISO: %v", err)
	}
	want := `{"Host":"10.10.1.1","Path":"/images/foo.iso","Protocol":"HTTP","Username":"","Password":""}`
	if got != want {
		t.Errorf("payload = %s, want %s", got, want)
	}
}

func TestMountISO_ProprietaryIgnoresUnmountFailure(t *testing.T) {
	ts := mockBMC(t, map[string]http.HandlerFunc{
		"/mount": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
		// Unmount 404s: nothing was mounted. The mount must still run.
	})

	c := newTestClient(ts)
	h := &MediaHandle{Path: "/mount", Variant: VariantProprietary, UnmountPath: "/unmount"}
	if err := c.MountISO(context.Background(), h, "http://10.10.1.1/images/foo.iso"); err != nil {
		t.Fatalf("MountISO: %v", err)
	}
}

func TestMountISO_ProprietaryFallbackPayload(t *testing.T) {
	var bodies []string
	ts := mockBMC(t, map[string]http.HandlerFunc{
		"/mount": func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			bodies = append(bodies, string(body))
			if len(bodies) == 1 {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusOK)
		},
		"/unmount": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	})

	c := newTestClient(ts)
	h := &MediaHandle{Path: "/mount", Variant: VariantProprietary, UnmountPath: "/unmount"}
	if err := c.MountISO(context.Background(), h, "http://10.10.1.1/images/foo.iso"); err != nil {
		t.Fatalf("MountISO: %v", err)
	}
	if len(bodies) != 2 {
		t.Fatalf("mount attempts = %d, want 2", len(bodies))
	}
	want := `{"Image":"http://10.10.1.1/images/foo.iso","Inserted":true,"WriteProtected":true}`
	if bodies[1] != want {
		t.Errorf("fallback payload = %s, want %s", bodies[1], want)
	}
}

func TestMountISO_InvalidURL(t *testing.T) {
	ts := mockBMC(t, map[string]http.HandlerFunc{
		"/unmount": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	})

	c := newTestClient(ts)
	h := &MediaHandle{Path: "/mount", Variant: VariantProprietary, UnmountPath: "/unmount"}
	if err := c.MountISO(context.Background(), h, "not a url"); err == nil {
		t.Fatal("expected error for unparseable image URL")
	}
}

func TestUnmountISO_ProprietaryClientRejectionIsClean(t *testing.T) {
	ts := mockBMC(t, nil) // unmount target 404s

	c := newTestClient(ts)
	h := &MediaHandle{Path: "/mount", Variant: VariantProprietary, UnmountPath: "/unmount"}
	if err := c.UnmountISO(context.Background(), h); err != nil {
		t.Fatalf("UnmountISO should treat a client rejection as already-unmounted, got %v", err)
	}
}

func TestUnmountISO_StandardFailureSurfaces(t *testing.T) {
	ts := mockBMC(t, nil)

	c := newTestClient(ts)
	h := &MediaHandle{
		Path:        "/redfish/v1/Managers/1/VirtualMedia/CD1",
		Variant:     VariantStandard,
		UnmountPath: "/redfish/v1/Managers/1/VirtualMedia/CD1" + ejectMediaAction,
	}
	if err := c.UnmountISO(context.Background(), h); err == nil {
		t.Fatal("expected error from standard eject failure")
	}
}

func TestBootToCD(t *testing.T) {
	var patched, reset bool
	ts := mockBMC(t, map[string]http.HandlerFunc{
		systemPath: func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPatch {
				body, _ := io.ReadAll(r.Body)
				want := `{"Boot":{"BootSourceOverrideEnabled":"Once","BootSourceOverrideTarget":"Cd"}}`
				if string(body) != want {
					t.Errorf("override payload = %s, want %s", body, want)
				}
				patched = true
			}
			w.WriteHeader(http.StatusOK)
		},
		resetAction: func(w http.ResponseWriter, r *http.Request) {
			reset = true
			w.WriteHeader(http.StatusNoContent)
		},
	})

	c := newTestClient(ts)
	if err := c.BootToCD(context.Background()); err != nil {
		t.Fatalf("BootToCD: %v", err)
	}
	if !patched || !reset {
		t.Errorf("patched = %v, reset = %v, want both", patched, reset)
	}
}

func TestBootToCD_RestartFailureIsDistinct(t *testing.T) {
	ts := mockBMC(t, map[string]http.HandlerFunc{
		systemPath: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
		// Reset action 404s.
	})

	c := newTestClient(ts)
	err := c.BootToCD(context.Background())
	if err == nil {
		t.Fatal("expected error when restart fails")
	}
	if got := err.Error(); !strings.Contains(got, "boot override set but restart failed") {
		t.Errorf("error = %q, want restart-failure wording", got)
	}
}
